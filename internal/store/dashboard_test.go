package store

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"financehub/portal/internal/api"
	"financehub/portal/internal/cache"
	"financehub/portal/internal/config"
	"financehub/portal/internal/models"
	"financehub/portal/internal/session"
)

// fakeAPI serves the list endpoints the stores fetch from. gate, when
// non-nil, blocks every list response until released, making clear-vs-fetch
// ordering observable.
type fakeAPI struct {
	mu           sync.Mutex
	empresas     []models.Empresa
	solicitacoes []models.Solicitacao
	falhaListas  bool
	gate         chan struct{}
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /empresas", func(w http.ResponseWriter, r *http.Request) {
		if f.gate != nil {
			<-f.gate
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.falhaListas {
			w.WriteHeader(http.StatusBadGateway)
			json.NewEncoder(w).Encode(map[string]string{"error": "backend indisponível"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"empresas": f.empresas})
	})
	mux.HandleFunc("GET /solicitacoes", func(w http.ResponseWriter, r *http.Request) {
		if f.gate != nil {
			<-f.gate
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.falhaListas {
			w.WriteHeader(http.StatusBadGateway)
			json.NewEncoder(w).Encode(map[string]string{"error": "backend indisponível"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"solicitacoes": f.solicitacoes})
	})
	mux.HandleFunc("POST /empresas", func(w http.ResponseWriter, r *http.Request) {
		var e models.Empresa
		_ = json.NewDecoder(r.Body).Decode(&e)
		e.ID = "srv-" + e.Nome
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(e)
	})
	mux.HandleFunc("DELETE /empresas/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

func newDashboard(t *testing.T, url string) (*Dashboard, *cache.Mirror) {
	t.Helper()
	logger := zerolog.Nop()
	mirror := cache.NewMirror(cache.NewMemory())
	client := api.NewClient(config.BackendConfig{BaseURL: url, Timeout: 2 * time.Second}, logger)
	return NewDashboard(client, mirror, logger), mirror
}

func esperar(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition never reached")
}

func TestFetchReplacesAndMirrors(t *testing.T) {
	ctx := context.Background()
	fa := &fakeAPI{empresas: []models.Empresa{{ID: "e1", Nome: "Alfa"}, {ID: "e2", Nome: "Beta"}}}
	srv := httptest.NewServer(fa.handler())
	defer srv.Close()

	d, mirror := newDashboard(t, srv.URL)
	d.HandleSessionChange(ctx, session.Change{Token: "tok-a", OwnerID: "u1"})

	var snap snapshot[models.Empresa]
	esperar(t, func() bool {
		s, ok := cache.Carregar[snapshot[models.Empresa]](ctx, mirror, cache.ChaveEmpresas)
		snap = s
		return ok
	})
	if snap.Owner != "u1" || len(snap.Itens) != 2 {
		t.Errorf("mirror snapshot wrong: %+v", snap)
	}
	if empresas, erro := d.Empresas(); len(empresas) != 2 || erro != "" {
		t.Errorf("in-memory collection wrong: %d itens erro=%q", len(empresas), erro)
	}
}

func TestEmptyFetchDoesNotClobberMirror(t *testing.T) {
	ctx := context.Background()
	fa := &fakeAPI{} // empty successful lists
	srv := httptest.NewServer(fa.handler())
	defer srv.Close()

	d, mirror := newDashboard(t, srv.URL)
	seed := snapshot[models.Empresa]{Owner: "u1", Itens: []models.Empresa{{ID: "e1", Nome: "Alfa"}}}
	if err := cache.Salvar(ctx, mirror, cache.ChaveEmpresas, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	d.HandleSessionChange(ctx, session.Change{Token: "tok-a", OwnerID: "u1"})
	d.Recarregar(ctx)

	empresas, erro := d.Empresas()
	if len(empresas) != 0 || erro != "" {
		t.Errorf("in-memory must be the empty server result, got %d itens erro=%q", len(empresas), erro)
	}
	snap, ok := cache.Carregar[snapshot[models.Empresa]](ctx, mirror, cache.ChaveEmpresas)
	if !ok || len(snap.Itens) != 1 {
		t.Error("empty fetch must not overwrite the non-empty mirror snapshot")
	}
}

func TestNetworkFailureFallsBackToMirror(t *testing.T) {
	ctx := context.Background()
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // every call is now a network failure

	d, mirror := newDashboard(t, srv.URL)
	seed := snapshot[models.Empresa]{Owner: "u1", Itens: []models.Empresa{{ID: "e1", Nome: "Alfa"}}}
	if err := cache.Salvar(ctx, mirror, cache.ChaveEmpresas, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	d.HandleSessionChange(ctx, session.Change{Token: "tok-a", OwnerID: "u1"})
	d.Recarregar(ctx)

	empresas, erro := d.Empresas()
	if len(empresas) != 1 || empresas[0].ID != "e1" {
		t.Errorf("expected mirror fallback, got %+v", empresas)
	}
	if erro == "" {
		t.Error("fallback must still record the error")
	}
}

func TestNetworkFailureIgnoresOtherOwnersMirror(t *testing.T) {
	ctx := context.Background()
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	d, mirror := newDashboard(t, srv.URL)
	seed := snapshot[models.Empresa]{Owner: "outro-usuario", Itens: []models.Empresa{{ID: "e1"}}}
	if err := cache.Salvar(ctx, mirror, cache.ChaveEmpresas, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	d.HandleSessionChange(ctx, session.Change{Token: "tok-b", OwnerID: "u2"})
	d.Recarregar(ctx)

	empresas, _ := d.Empresas()
	if len(empresas) != 0 {
		t.Error("another owner's mirror snapshot must never be served")
	}
}

func TestRemoteFailureEmptiesAndRecordsError(t *testing.T) {
	ctx := context.Background()
	fa := &fakeAPI{falhaListas: true}
	srv := httptest.NewServer(fa.handler())
	defer srv.Close()

	d, mirror := newDashboard(t, srv.URL)
	seed := snapshot[models.Empresa]{Owner: "u1", Itens: []models.Empresa{{ID: "e1"}}}
	if err := cache.Salvar(ctx, mirror, cache.ChaveEmpresas, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	d.HandleSessionChange(ctx, session.Change{Token: "tok-a", OwnerID: "u1"})
	d.Recarregar(ctx)

	empresas, erro := d.Empresas()
	if len(empresas) != 0 {
		t.Error("a backend rejection empties the collection, no mirror fallback")
	}
	if erro == "" {
		t.Error("error must be recorded for the UI")
	}
	if _, ok := cache.Carregar[snapshot[models.Empresa]](ctx, mirror, cache.ChaveEmpresas); !ok {
		t.Error("failed fetch must leave the mirror untouched")
	}
}

func TestTokenSwitchClearsSynchronously(t *testing.T) {
	ctx := context.Background()
	fa := &fakeAPI{
		empresas: []models.Empresa{{ID: "e1", Nome: "Alfa"}},
		gate:     make(chan struct{}),
	}
	srv := httptest.NewServer(fa.handler())
	defer srv.Close()

	d, _ := newDashboard(t, srv.URL)
	d.HandleSessionChange(ctx, session.Change{Token: "tok-a", OwnerID: "u1"})

	// Fetch for A is parked on the gate. Switch to B: the collection must
	// read empty immediately, before any fetch resolves.
	d.HandleSessionChange(ctx, session.Change{Token: "tok-b", OwnerID: "u2"})
	if empresas, _ := d.Empresas(); len(empresas) != 0 {
		t.Fatal("collection must be empty right after a token switch")
	}
	close(fa.gate)
}

func TestSessionEndClearsCollectionAndMirror(t *testing.T) {
	ctx := context.Background()
	fa := &fakeAPI{empresas: []models.Empresa{{ID: "e1", Nome: "Alfa"}}}
	srv := httptest.NewServer(fa.handler())
	defer srv.Close()

	d, mirror := newDashboard(t, srv.URL)
	d.HandleSessionChange(ctx, session.Change{Token: "tok-a", OwnerID: "u1"})
	esperar(t, func() bool {
		empresas, _ := d.Empresas()
		return len(empresas) == 1
	})

	d.HandleSessionChange(ctx, session.Change{})

	if empresas, _ := d.Empresas(); len(empresas) != 0 {
		t.Error("collection must clear when the token goes away")
	}
	if _, ok := cache.Carregar[snapshot[models.Empresa]](ctx, mirror, cache.ChaveEmpresas); ok {
		t.Error("mirror slot must be removed when the token goes away")
	}
}

func TestStaleFetchResponseIsDiscarded(t *testing.T) {
	ctx := context.Background()
	mirror := cache.NewMirror(cache.NewMemory())
	logger := zerolog.Nop()

	var c colecao[models.Empresa]
	c.limparPara("tok-a")

	bloqueio := make(chan struct{})
	list := func(context.Context, string) ([]models.Empresa, error) {
		<-bloqueio
		return []models.Empresa{{ID: "de-a"}}, nil
	}

	done := make(chan struct{})
	go func() {
		carregar(ctx, &c, mirror, cache.ChaveEmpresas, "tok-a", "u1", list, logger)
		close(done)
	}()

	// Token switches while A's fetch is in flight.
	c.limparPara("tok-b")
	close(bloqueio)
	<-done

	itens, _ := c.snapshot()
	if len(itens) != 0 {
		t.Error("a response tagged with a stale token must be discarded")
	}
	if _, ok := cache.Carregar[snapshot[models.Empresa]](ctx, mirror, cache.ChaveEmpresas); ok {
		t.Error("a discarded response must not touch the mirror")
	}
}

func TestMutationWithoutTokenFails(t *testing.T) {
	ctx := context.Background()
	fa := &fakeAPI{}
	srv := httptest.NewServer(fa.handler())
	defer srv.Close()

	d, _ := newDashboard(t, srv.URL)

	if _, err := d.CriarEmpresa(ctx, models.Empresa{Nome: "Alfa"}); !errors.Is(err, ErrSessaoExpirada) {
		t.Errorf("expected ErrSessaoExpirada, got %v", err)
	}
}

func TestCreateAppendsAndMirrors(t *testing.T) {
	ctx := context.Background()
	fa := &fakeAPI{}
	srv := httptest.NewServer(fa.handler())
	defer srv.Close()

	d, mirror := newDashboard(t, srv.URL)
	d.HandleSessionChange(ctx, session.Change{Token: "tok-a", OwnerID: "u1"})
	d.Recarregar(ctx)

	criada, err := d.CriarEmpresa(ctx, models.Empresa{Nome: "Alfa", CNPJs: []string{"11222333000181"}, Ativo: true})
	if err != nil {
		t.Fatalf("criar: %v", err)
	}
	if criada.ID != "srv-Alfa" {
		t.Errorf("expected server-assigned id, got %q", criada.ID)
	}

	empresas, _ := d.Empresas()
	if len(empresas) != 1 {
		t.Fatalf("expected 1 empresa in memory, got %d", len(empresas))
	}
	snap, ok := cache.Carregar[snapshot[models.Empresa]](ctx, mirror, cache.ChaveEmpresas)
	if !ok || len(snap.Itens) != 1 || snap.Itens[0].ID != "srv-Alfa" {
		t.Error("mutation must be mirrored")
	}
}

func TestResumo(t *testing.T) {
	ctx := context.Background()
	fa := &fakeAPI{
		empresas: []models.Empresa{{ID: "e1"}},
		solicitacoes: []models.Solicitacao{
			{ID: "s1", Status: models.StatusPendente, Estagio: models.EstagioNovo},
			{ID: "s2", Status: models.StatusAguardandoPagamento, Estagio: models.EstagioEmAndamento, Visualizado: true},
			{ID: "s3", Status: models.StatusAguardandoPagamento, Estagio: models.EstagioEmAndamento, Boleto: "chave/boleto.pdf"},
		},
	}
	srv := httptest.NewServer(fa.handler())
	defer srv.Close()

	d, _ := newDashboard(t, srv.URL)
	d.HandleSessionChange(ctx, session.Change{Token: "tok-a", OwnerID: "u1"})
	d.Recarregar(ctx)

	r := d.Resumo()
	if r.TotalEmpresas != 1 || r.TotalSolicitacoes != 3 {
		t.Errorf("totais errados: %+v", r)
	}
	if r.PorStatus[models.StatusAguardandoPagamento] != 2 {
		t.Errorf("por status errado: %+v", r.PorStatus)
	}
	if r.PorEstagio[models.EstagioEmAndamento] != 2 {
		t.Errorf("por estágio errado: %+v", r.PorEstagio)
	}
	if r.NaoVisualizadas != 2 {
		t.Errorf("não visualizadas: %d", r.NaoVisualizadas)
	}
	if r.BoletosPendentes != 1 {
		t.Errorf("boletos pendentes: %d", r.BoletosPendentes)
	}
}
