package store

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"financehub/portal/internal/api"
	"financehub/portal/internal/cache"
	"financehub/portal/internal/ids"
	"financehub/portal/internal/models"
	"financehub/portal/internal/session"
)

// Suporte owns the support mensagens. A failed send still leaves a local
// pending record so the user never sees a message they wrote vanish; the
// reconciler retries those until the backend confirms them.
type Suporte struct {
	backend *api.Client
	mirror  *cache.Mirror
	log     zerolog.Logger
	agora   func() time.Time

	mu    sync.RWMutex
	token string
	owner string

	mensagens colecao[models.Mensagem]
}

func NewSuporte(backend *api.Client, mirror *cache.Mirror, log zerolog.Logger) *Suporte {
	return &Suporte{
		backend: backend,
		mirror:  mirror,
		log:     log.With().Str("store", "suporte").Logger(),
		agora:   time.Now,
	}
}

func (s *Suporte) HandleSessionChange(ctx context.Context, change session.Change) {
	s.mu.Lock()
	s.token = change.Token
	s.owner = change.OwnerID
	s.mu.Unlock()

	s.mensagens.limparPara(change.Token)

	if change.Token == "" {
		if err := s.mirror.Delete(ctx, cache.ChaveMensagens); err != nil {
			s.log.Warn().Err(err).Msg("limpar espelho falhou")
		}
		return
	}

	go s.Recarregar(context.WithoutCancel(ctx))
}

func (s *Suporte) Recarregar(ctx context.Context) {
	token, owner := s.credenciais()
	if token == "" {
		return
	}
	carregar(ctx, &s.mensagens, s.mirror, cache.ChaveMensagens, token, owner, s.backend.ListarMensagens, s.log)
}

func (s *Suporte) credenciais() (string, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.owner
}

func (s *Suporte) Mensagens() ([]models.Mensagem, string) {
	return s.mensagens.snapshot()
}

// AdicionarMensagem sends a message. Mensagens enviadas are created already
// read. When the backend rejects or cannot be reached, a local pending
// record (client id, local clock) is still inserted and the error propagates
// alongside it, so the caller can surface the failure while the list stays
// truthful to what the user wrote.
func (s *Suporte) AdicionarMensagem(ctx context.Context, m models.Mensagem) (models.Mensagem, error) {
	token, owner := s.credenciais()
	if token == "" {
		return models.Mensagem{}, ErrSessaoExpirada
	}

	if m.Direcao == models.DirecaoEnviada {
		m.Lida = true
	}
	if m.DataHora.IsZero() {
		m.DataHora = s.agora()
	}

	enviada, err := s.backend.EnviarMensagem(ctx, token, m)
	if err != nil {
		local := m
		local.ID = ids.New()
		local.Pendente = true
		itens := s.mensagens.mutar(func(xs []models.Mensagem) []models.Mensagem {
			return append(xs, local)
		})
		espelhar(ctx, s.mirror, cache.ChaveMensagens, owner, itens, s.log)
		s.log.Warn().Err(err).Str("mensagem", local.ID).Msg("envio falhou, registro local pendente criado")
		return local, err
	}

	if enviada.Direcao == models.DirecaoEnviada {
		enviada.Lida = true
	}
	itens := s.mensagens.mutar(func(xs []models.Mensagem) []models.Mensagem {
		return append(xs, enviada)
	})
	espelhar(ctx, s.mirror, cache.ChaveMensagens, owner, itens, s.log)
	return enviada, nil
}

// MarcarLida is idempotent and optimistic: the local record flips to read
// even when the backend call fails, and lida never goes from true back to
// false.
func (s *Suporte) MarcarLida(ctx context.Context, id string) {
	token, owner := s.credenciais()

	alterou := false
	itens := s.mensagens.mutar(func(xs []models.Mensagem) []models.Mensagem {
		for i := range xs {
			if xs[i].ID == id && !xs[i].Lida {
				xs[i].Lida = true
				alterou = true
			}
		}
		return xs
	})
	if alterou {
		espelhar(ctx, s.mirror, cache.ChaveMensagens, owner, itens, s.log)
	}

	if token == "" {
		return
	}
	if err := s.backend.MarcarLida(ctx, token, id); err != nil {
		s.log.Warn().Err(err).Str("mensagem", id).Msg("marcar lida no servidor falhou")
	}
}

// MarcarTodasLidas applies MarcarLida semantics to every unread message.
func (s *Suporte) MarcarTodasLidas(ctx context.Context) {
	token, owner := s.credenciais()

	var pendentes []string
	itens := s.mensagens.mutar(func(xs []models.Mensagem) []models.Mensagem {
		for i := range xs {
			if !xs[i].Lida {
				xs[i].Lida = true
				pendentes = append(pendentes, xs[i].ID)
			}
		}
		return xs
	})
	if len(pendentes) == 0 {
		return
	}
	espelhar(ctx, s.mirror, cache.ChaveMensagens, owner, itens, s.log)

	if token == "" {
		return
	}
	for _, id := range pendentes {
		if err := s.backend.MarcarLida(ctx, token, id); err != nil {
			s.log.Warn().Err(err).Str("mensagem", id).Msg("marcar lida no servidor falhou")
		}
	}
}

// Pendentes lists locally synthesized records still awaiting delivery.
func (s *Suporte) Pendentes() []models.Mensagem {
	itens, _ := s.mensagens.snapshot()
	var pendentes []models.Mensagem
	for _, m := range itens {
		if m.Pendente {
			pendentes = append(pendentes, m)
		}
	}
	return pendentes
}

// ReenviarPendentes retries delivery of pending records, replacing each with
// the server-confirmed record on success. Read state is preserved.
func (s *Suporte) ReenviarPendentes(ctx context.Context) int {
	token, owner := s.credenciais()
	if token == "" {
		return 0
	}

	entregues := 0
	for _, pendente := range s.Pendentes() {
		envio := pendente
		envio.ID = ""
		envio.Pendente = false

		confirmada, err := s.backend.EnviarMensagem(ctx, token, envio)
		if err != nil {
			s.log.Debug().Err(err).Str("mensagem", pendente.ID).Msg("reenvio pendente falhou")
			continue
		}
		confirmada.Lida = confirmada.Lida || pendente.Lida
		confirmada.Pendente = false

		localID := pendente.ID
		itens := s.mensagens.mutar(func(xs []models.Mensagem) []models.Mensagem {
			for i := range xs {
				if xs[i].ID == localID {
					xs[i] = confirmada
				}
			}
			return xs
		})
		espelhar(ctx, s.mirror, cache.ChaveMensagens, owner, itens, s.log)
		entregues++
	}
	return entregues
}
