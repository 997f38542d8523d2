package store

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"financehub/portal/internal/api"
	"financehub/portal/internal/cache"
	"financehub/portal/internal/models"
	"financehub/portal/internal/session"
)

// Historico owns the raw lançamentos; registros are derived on read by the
// pure mapping, never stored.
type Historico struct {
	backend *api.Client
	mirror  *cache.Mirror
	log     zerolog.Logger

	mu    sync.RWMutex
	token string
	owner string

	lancamentos colecao[models.Lancamento]
}

func NewHistorico(backend *api.Client, mirror *cache.Mirror, log zerolog.Logger) *Historico {
	return &Historico{
		backend: backend,
		mirror:  mirror,
		log:     log.With().Str("store", "historico").Logger(),
	}
}

func (h *Historico) HandleSessionChange(ctx context.Context, change session.Change) {
	h.mu.Lock()
	h.token = change.Token
	h.owner = change.OwnerID
	h.mu.Unlock()

	h.lancamentos.limparPara(change.Token)

	if change.Token == "" {
		if err := h.mirror.Delete(ctx, cache.ChaveLancamentos); err != nil {
			h.log.Warn().Err(err).Msg("limpar espelho falhou")
		}
		return
	}

	go h.Recarregar(context.WithoutCancel(ctx))
}

func (h *Historico) Recarregar(ctx context.Context) {
	h.mu.RLock()
	token, owner := h.token, h.owner
	h.mu.RUnlock()
	if token == "" {
		return
	}
	carregar(ctx, &h.lancamentos, h.mirror, cache.ChaveLancamentos, token, owner, h.backend.ListarLancamentos, h.log)
}

func (h *Historico) Lancamentos() ([]models.Lancamento, string) {
	return h.lancamentos.snapshot()
}

func (h *Historico) Registros() ([]models.HistoricoRegistro, string) {
	lancamentos, erro := h.lancamentos.snapshot()
	return models.MapearHistorico(lancamentos), erro
}
