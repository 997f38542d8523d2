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

// Dashboard owns the empresas and solicitações collections.
type Dashboard struct {
	backend *api.Client
	mirror  *cache.Mirror
	log     zerolog.Logger

	mu    sync.RWMutex
	token string
	owner string

	empresas     colecao[models.Empresa]
	solicitacoes colecao[models.Solicitacao]
}

func NewDashboard(backend *api.Client, mirror *cache.Mirror, log zerolog.Logger) *Dashboard {
	return &Dashboard{
		backend: backend,
		mirror:  mirror,
		log:     log.With().Str("store", "dashboard").Logger(),
	}
}

// HandleSessionChange clears both collections synchronously, then refetches
// in the background when a token is present. With no token the mirror slots
// are removed as well, so no previous user's data survives even a crash.
func (d *Dashboard) HandleSessionChange(ctx context.Context, change session.Change) {
	d.mu.Lock()
	d.token = change.Token
	d.owner = change.OwnerID
	d.mu.Unlock()

	d.empresas.limparPara(change.Token)
	d.solicitacoes.limparPara(change.Token)

	if change.Token == "" {
		if err := d.mirror.Delete(ctx, cache.ChaveEmpresas, cache.ChaveSolicitacoes); err != nil {
			d.log.Warn().Err(err).Msg("limpar espelho falhou")
		}
		return
	}

	go d.Recarregar(context.WithoutCancel(ctx))
}

// Recarregar fetches both collections with the current token. Safe to call
// concurrently; stale responses are discarded by tag.
func (d *Dashboard) Recarregar(ctx context.Context) {
	token, owner := d.credenciais()
	if token == "" {
		return
	}
	carregar(ctx, &d.empresas, d.mirror, cache.ChaveEmpresas, token, owner, d.backend.ListarEmpresas, d.log)
	carregar(ctx, &d.solicitacoes, d.mirror, cache.ChaveSolicitacoes, token, owner, d.backend.ListarSolicitacoes, d.log)
}

func (d *Dashboard) credenciais() (string, string) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.token, d.owner
}

func (d *Dashboard) Empresas() ([]models.Empresa, string) {
	return d.empresas.snapshot()
}

func (d *Dashboard) Solicitacoes() ([]models.Solicitacao, string) {
	return d.solicitacoes.snapshot()
}

func (d *Dashboard) CriarEmpresa(ctx context.Context, e models.Empresa) (models.Empresa, error) {
	token, owner := d.credenciais()
	if token == "" {
		return models.Empresa{}, ErrSessaoExpirada
	}
	criada, err := d.backend.CriarEmpresa(ctx, token, e)
	if err != nil {
		return models.Empresa{}, err
	}
	itens := d.empresas.mutar(func(xs []models.Empresa) []models.Empresa {
		return append(xs, criada)
	})
	espelhar(ctx, d.mirror, cache.ChaveEmpresas, owner, itens, d.log)
	return criada, nil
}

func (d *Dashboard) AtualizarEmpresa(ctx context.Context, e models.Empresa) (models.Empresa, error) {
	token, owner := d.credenciais()
	if token == "" {
		return models.Empresa{}, ErrSessaoExpirada
	}
	atualizada, err := d.backend.AtualizarEmpresa(ctx, token, e)
	if err != nil {
		return models.Empresa{}, err
	}
	itens := d.empresas.mutar(func(xs []models.Empresa) []models.Empresa {
		for i := range xs {
			if xs[i].ID == atualizada.ID {
				xs[i] = atualizada
			}
		}
		return xs
	})
	espelhar(ctx, d.mirror, cache.ChaveEmpresas, owner, itens, d.log)
	return atualizada, nil
}

func (d *Dashboard) RemoverEmpresa(ctx context.Context, id string) error {
	token, owner := d.credenciais()
	if token == "" {
		return ErrSessaoExpirada
	}
	if err := d.backend.RemoverEmpresa(ctx, token, id); err != nil {
		return err
	}
	itens := d.empresas.mutar(func(xs []models.Empresa) []models.Empresa {
		out := xs[:0]
		for _, x := range xs {
			if x.ID != id {
				out = append(out, x)
			}
		}
		return out
	})
	espelhar(ctx, d.mirror, cache.ChaveEmpresas, owner, itens, d.log)
	return nil
}

func (d *Dashboard) CriarSolicitacao(ctx context.Context, s models.Solicitacao) (models.Solicitacao, error) {
	token, owner := d.credenciais()
	if token == "" {
		return models.Solicitacao{}, ErrSessaoExpirada
	}
	criada, err := d.backend.CriarSolicitacao(ctx, token, s)
	if err != nil {
		return models.Solicitacao{}, err
	}
	itens := d.solicitacoes.mutar(func(xs []models.Solicitacao) []models.Solicitacao {
		return append(xs, criada)
	})
	espelhar(ctx, d.mirror, cache.ChaveSolicitacoes, owner, itens, d.log)
	return criada, nil
}

func (d *Dashboard) AtualizarSolicitacao(ctx context.Context, s models.Solicitacao) (models.Solicitacao, error) {
	token, owner := d.credenciais()
	if token == "" {
		return models.Solicitacao{}, ErrSessaoExpirada
	}
	atualizada, err := d.backend.AtualizarSolicitacao(ctx, token, s)
	if err != nil {
		return models.Solicitacao{}, err
	}
	itens := d.solicitacoes.mutar(func(xs []models.Solicitacao) []models.Solicitacao {
		for i := range xs {
			if xs[i].ID == atualizada.ID {
				xs[i] = atualizada
			}
		}
		return xs
	})
	espelhar(ctx, d.mirror, cache.ChaveSolicitacoes, owner, itens, d.log)
	return atualizada, nil
}

// Resumo summarizes the visible collections for the dashboard landing page.
type Resumo struct {
	TotalEmpresas     int                              `json:"totalEmpresas"`
	TotalSolicitacoes int                              `json:"totalSolicitacoes"`
	PorStatus         map[models.StatusSolicitacao]int `json:"porStatus"`
	PorEstagio        map[models.Estagio]int           `json:"porEstagio"`
	NaoVisualizadas   int                              `json:"naoVisualizadas"`
	BoletosPendentes  int                              `json:"boletosPendentes"`
}

func (d *Dashboard) Resumo() Resumo {
	empresas, _ := d.empresas.snapshot()
	solicitacoes, _ := d.solicitacoes.snapshot()

	r := Resumo{
		TotalEmpresas:     len(empresas),
		TotalSolicitacoes: len(solicitacoes),
		PorStatus:         make(map[models.StatusSolicitacao]int),
		PorEstagio:        make(map[models.Estagio]int),
	}
	for _, s := range solicitacoes {
		r.PorStatus[s.Status]++
		r.PorEstagio[s.Estagio]++
		if !s.Visualizado {
			r.NaoVisualizadas++
		}
		if s.Status == models.StatusAguardandoPagamento && s.Boleto == "" {
			r.BoletosPendentes++
		}
	}
	return r
}
