package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"financehub/portal/internal/api"
	"financehub/portal/internal/cache"
	"financehub/portal/internal/config"
	"financehub/portal/internal/ids"
	"financehub/portal/internal/models"
	"financehub/portal/internal/session"
)

// fakeSuporteAPI serves the mensagens endpoints. falhaEnvio makes sends fail
// so the local pending path can be exercised, and lidas records which ids the
// backend was asked to mark read.
type fakeSuporteAPI struct {
	mu         sync.Mutex
	mensagens  []models.Mensagem
	falhaEnvio bool
	lidas      []string
}

func (f *fakeSuporteAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /mensagens", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]any{"mensagens": f.mensagens})
	})
	mux.HandleFunc("POST /mensagens", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.falhaEnvio {
			w.WriteHeader(http.StatusBadGateway)
			json.NewEncoder(w).Encode(map[string]string{"error": "backend indisponível"})
			return
		}
		var m models.Mensagem
		_ = json.NewDecoder(r.Body).Decode(&m)
		m.ID = "srv-" + ids.New()
		f.mensagens = append(f.mensagens, m)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(m)
	})
	mux.HandleFunc("POST /mensagens/{id}/lida", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.lidas = append(f.lidas, r.PathValue("id"))
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

func (f *fakeSuporteAPI) marcadas() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.lidas))
	copy(out, f.lidas)
	return out
}

func newSuporte(t *testing.T, url string) (*Suporte, *cache.Mirror) {
	t.Helper()
	logger := zerolog.Nop()
	mirror := cache.NewMirror(cache.NewMemory())
	client := api.NewClient(config.BackendConfig{BaseURL: url, Timeout: 2 * time.Second}, logger)
	s := NewSuporte(client, mirror, logger)
	s.agora = func() time.Time { return time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC) }
	return s, mirror
}

func ativar(ctx context.Context, s *Suporte) {
	s.HandleSessionChange(ctx, session.Change{Token: "tok-a", OwnerID: "u1"})
	s.Recarregar(ctx)
}

func TestAdicionarMensagemConfirmada(t *testing.T) {
	ctx := context.Background()
	fa := &fakeSuporteAPI{}
	srv := httptest.NewServer(fa.handler())
	defer srv.Close()

	s, _ := newSuporte(t, srv.URL)
	ativar(ctx, s)

	enviada, err := s.AdicionarMensagem(ctx, models.Mensagem{
		Direcao:  models.DirecaoEnviada,
		Assunto:  "Boleto de março",
		Conteudo: "Poderiam reemitir?",
	})
	if err != nil {
		t.Fatalf("adicionar: %v", err)
	}
	if enviada.ID == "" || enviada.Pendente {
		t.Errorf("expected confirmed record, got %+v", enviada)
	}
	if !enviada.Lida {
		t.Error("mensagens enviadas are created already read")
	}
	if enviada.DataHora.IsZero() {
		t.Error("DataHora must default to the local clock")
	}
	if len(s.Pendentes()) != 0 {
		t.Error("confirmed send must leave no pendings")
	}
}

func TestAdicionarMensagemFalhaCriaPendente(t *testing.T) {
	ctx := context.Background()
	fa := &fakeSuporteAPI{falhaEnvio: true}
	srv := httptest.NewServer(fa.handler())
	defer srv.Close()

	s, mirror := newSuporte(t, srv.URL)
	ativar(ctx, s)

	local, err := s.AdicionarMensagem(ctx, models.Mensagem{
		Direcao:  models.DirecaoEnviada,
		Conteudo: "Poderiam reemitir?",
	})
	if err == nil {
		t.Fatal("a failed send must still propagate the error")
	}
	if local.ID == "" || !local.Pendente {
		t.Errorf("expected a local pending record, got %+v", local)
	}
	if !local.Lida {
		t.Error("the local record keeps enviada semantics, created read")
	}

	mensagens, _ := s.Mensagens()
	if len(mensagens) != 1 || mensagens[0].ID != local.ID {
		t.Fatalf("exactly one local record expected, got %+v", mensagens)
	}
	snap, ok := cache.Carregar[snapshot[models.Mensagem]](ctx, mirror, cache.ChaveMensagens)
	if !ok || len(snap.Itens) != 1 || !snap.Itens[0].Pendente {
		t.Error("the pending record must be mirrored so it survives a restart")
	}
}

func TestReenviarPendentes(t *testing.T) {
	ctx := context.Background()
	fa := &fakeSuporteAPI{falhaEnvio: true}
	srv := httptest.NewServer(fa.handler())
	defer srv.Close()

	s, _ := newSuporte(t, srv.URL)
	ativar(ctx, s)

	local, _ := s.AdicionarMensagem(ctx, models.Mensagem{Direcao: models.DirecaoEnviada, Conteudo: "oi"})
	if len(s.Pendentes()) != 1 {
		t.Fatal("expected one pending")
	}

	// Backend still down: nothing delivered, pending survives.
	if n := s.ReenviarPendentes(ctx); n != 0 {
		t.Fatalf("expected 0 delivered, got %d", n)
	}
	if len(s.Pendentes()) != 1 {
		t.Fatal("pending must survive a failed retry")
	}

	fa.mu.Lock()
	fa.falhaEnvio = false
	fa.mu.Unlock()

	if n := s.ReenviarPendentes(ctx); n != 1 {
		t.Fatalf("expected 1 delivered, got %d", n)
	}
	if len(s.Pendentes()) != 0 {
		t.Error("delivered pending must be replaced by the confirmed record")
	}

	mensagens, _ := s.Mensagens()
	if len(mensagens) != 1 {
		t.Fatalf("confirmed record must replace the local one, got %d", len(mensagens))
	}
	confirmada := mensagens[0]
	if confirmada.ID == local.ID || confirmada.ID == "" {
		t.Errorf("expected a server-assigned id, got %q", confirmada.ID)
	}
	if !confirmada.Lida {
		t.Error("read state must be preserved across redelivery")
	}
}

func TestMarcarLidaIdempotente(t *testing.T) {
	ctx := context.Background()
	fa := &fakeSuporteAPI{mensagens: []models.Mensagem{
		{ID: "m1", Direcao: models.DirecaoRecebida, Conteudo: "resposta", Lida: false},
		{ID: "m2", Direcao: models.DirecaoEnviada, Conteudo: "pergunta", Lida: true},
	}}
	srv := httptest.NewServer(fa.handler())
	defer srv.Close()

	s, _ := newSuporte(t, srv.URL)
	ativar(ctx, s)

	s.MarcarLida(ctx, "m1")
	s.MarcarLida(ctx, "m1") // repeat is a no-op
	s.MarcarLida(ctx, "inexistente")

	mensagens, _ := s.Mensagens()
	for _, m := range mensagens {
		if !m.Lida {
			t.Errorf("mensagem %s should be read", m.ID)
		}
	}
	// Every call is forwarded while the token is live, even when the local
	// flip was a no-op, so the backend converges too.
	if marcadas := fa.marcadas(); len(marcadas) != 3 {
		t.Errorf("backend saw %v", marcadas)
	}
}

func TestMarcarLidaOptimisticOnBackendFailure(t *testing.T) {
	ctx := context.Background()
	fa := &fakeSuporteAPI{mensagens: []models.Mensagem{
		{ID: "m1", Direcao: models.DirecaoRecebida, Lida: false},
	}}
	srv := httptest.NewServer(fa.handler())

	s, _ := newSuporte(t, srv.URL)
	ativar(ctx, s)
	srv.Close() // backend now unreachable

	s.MarcarLida(ctx, "m1")

	mensagens, _ := s.Mensagens()
	if len(mensagens) != 1 || !mensagens[0].Lida {
		t.Error("local read flip must happen even when the backend is down")
	}
}

func TestMarcarTodasLidas(t *testing.T) {
	ctx := context.Background()
	fa := &fakeSuporteAPI{mensagens: []models.Mensagem{
		{ID: "m1", Direcao: models.DirecaoRecebida, Lida: false},
		{ID: "m2", Direcao: models.DirecaoRecebida, Lida: false},
		{ID: "m3", Direcao: models.DirecaoEnviada, Lida: true},
	}}
	srv := httptest.NewServer(fa.handler())
	defer srv.Close()

	s, mirror := newSuporte(t, srv.URL)
	ativar(ctx, s)

	s.MarcarTodasLidas(ctx)

	mensagens, _ := s.Mensagens()
	for _, m := range mensagens {
		if !m.Lida {
			t.Errorf("mensagem %s should be read", m.ID)
		}
	}
	if marcadas := fa.marcadas(); len(marcadas) != 2 {
		t.Errorf("only the two unread ids reach the backend, got %v", marcadas)
	}
	snap, ok := cache.Carregar[snapshot[models.Mensagem]](ctx, mirror, cache.ChaveMensagens)
	if !ok {
		t.Fatal("mirror must be refreshed")
	}
	for _, m := range snap.Itens {
		if !m.Lida {
			t.Errorf("mirrored mensagem %s should be read", m.ID)
		}
	}

	// Second call is a no-op end to end.
	s.MarcarTodasLidas(ctx)
	if marcadas := fa.marcadas(); len(marcadas) != 2 {
		t.Errorf("no further backend calls expected, got %v", marcadas)
	}
}

func TestAdicionarMensagemSemToken(t *testing.T) {
	srv := httptest.NewServer((&fakeSuporteAPI{}).handler())
	defer srv.Close()

	s, _ := newSuporte(t, srv.URL)
	if _, err := s.AdicionarMensagem(context.Background(), models.Mensagem{Conteudo: "oi"}); err != ErrSessaoExpirada {
		t.Errorf("expected ErrSessaoExpirada, got %v", err)
	}
}
