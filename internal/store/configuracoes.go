package store

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"financehub/portal/internal/api"
	"financehub/portal/internal/cache"
	"financehub/portal/internal/models"
	"financehub/portal/internal/permissions"
	"financehub/portal/internal/session"
)

// Configuracoes owns the usuarios collection and the per-user preferencias.
// Capability checks delegate to the pure permission evaluator; the store
// itself does not gate mutations by role, the handlers do.
type Configuracoes struct {
	backend *api.Client
	mirror  *cache.Mirror
	log     zerolog.Logger

	mu           sync.RWMutex
	token        string
	owner        string
	preferencias models.Preferencia

	usuarios colecao[models.User]
}

func NewConfiguracoes(backend *api.Client, mirror *cache.Mirror, log zerolog.Logger) *Configuracoes {
	return &Configuracoes{
		backend: backend,
		mirror:  mirror,
		log:     log.With().Str("store", "configuracoes").Logger(),
		preferencias: models.Preferencia{
			NotificarPorEmail: true,
			Idioma:            "pt-BR",
			Tema:              "claro",
		},
	}
}

func (c *Configuracoes) HandleSessionChange(ctx context.Context, change session.Change) {
	c.mu.Lock()
	c.token = change.Token
	c.owner = change.OwnerID
	c.mu.Unlock()

	c.usuarios.limparPara(change.Token)

	if change.Token == "" {
		if err := c.mirror.Delete(ctx, cache.ChaveUsuarios, cache.ChavePreferencias); err != nil {
			c.log.Warn().Err(err).Msg("limpar espelho falhou")
		}
		return
	}

	if snap, ok := cache.Carregar[snapshot[models.Preferencia]](ctx, c.mirror, cache.ChavePreferencias); ok && snap.Owner == change.OwnerID && len(snap.Itens) == 1 {
		c.mu.Lock()
		c.preferencias = snap.Itens[0]
		c.mu.Unlock()
	}

	go c.Recarregar(context.WithoutCancel(ctx))
}

func (c *Configuracoes) Recarregar(ctx context.Context) {
	token, owner := c.credenciais()
	if token == "" {
		return
	}
	carregar(ctx, &c.usuarios, c.mirror, cache.ChaveUsuarios, token, owner, c.backend.ListarUsuarios, c.log)
}

func (c *Configuracoes) credenciais() (string, string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token, c.owner
}

func (c *Configuracoes) Usuarios() ([]models.User, string) {
	return c.usuarios.snapshot()
}

func (c *Configuracoes) CriarUsuario(ctx context.Context, u models.User) (models.User, error) {
	token, owner := c.credenciais()
	if token == "" {
		return models.User{}, ErrSessaoExpirada
	}
	criado, err := c.backend.CriarUsuario(ctx, token, u)
	if err != nil {
		return models.User{}, err
	}
	itens := c.usuarios.mutar(func(xs []models.User) []models.User {
		return append(xs, criado)
	})
	espelhar(ctx, c.mirror, cache.ChaveUsuarios, owner, itens, c.log)
	return criado, nil
}

func (c *Configuracoes) AtualizarUsuario(ctx context.Context, u models.User) (models.User, error) {
	token, owner := c.credenciais()
	if token == "" {
		return models.User{}, ErrSessaoExpirada
	}
	atualizado, err := c.backend.AtualizarUsuario(ctx, token, u)
	if err != nil {
		return models.User{}, err
	}
	itens := c.usuarios.mutar(func(xs []models.User) []models.User {
		for i := range xs {
			if xs[i].ID == atualizado.ID {
				xs[i] = atualizado
			}
		}
		return xs
	})
	espelhar(ctx, c.mirror, cache.ChaveUsuarios, owner, itens, c.log)
	return atualizado, nil
}

func (c *Configuracoes) RemoverUsuario(ctx context.Context, id string) error {
	token, owner := c.credenciais()
	if token == "" {
		return ErrSessaoExpirada
	}
	if err := c.backend.RemoverUsuario(ctx, token, id); err != nil {
		return err
	}
	itens := c.usuarios.mutar(func(xs []models.User) []models.User {
		out := xs[:0]
		for _, x := range xs {
			if x.ID != id {
				out = append(out, x)
			}
		}
		return out
	})
	espelhar(ctx, c.mirror, cache.ChaveUsuarios, owner, itens, c.log)
	return nil
}

func (c *Configuracoes) Preferencias() models.Preferencia {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.preferencias
}

// SalvarPreferencias is local-only: preferences live with the portal, not
// the backend.
func (c *Configuracoes) SalvarPreferencias(ctx context.Context, p models.Preferencia) error {
	c.mu.Lock()
	c.preferencias = p
	owner := c.owner
	c.mu.Unlock()

	return cache.Salvar(ctx, c.mirror, cache.ChavePreferencias, snapshot[models.Preferencia]{
		Owner: owner,
		Itens: []models.Preferencia{p},
	})
}

// Permissoes evaluates the capability set for a role.
type Permissoes struct {
	AcessarConfiguracoes bool `json:"acessarConfiguracoes"`
	AcessarGestao        bool `json:"acessarGestao"`
	GerenciarUsuarios    bool `json:"gerenciarUsuarios"`
	VerUsuarios          bool `json:"verUsuarios"`
}

func (c *Configuracoes) Permissoes(role models.Role) Permissoes {
	return Permissoes{
		AcessarConfiguracoes: permissions.CanAccessSettings(role),
		AcessarGestao:        permissions.CanAccessUserManagement(role),
		GerenciarUsuarios:    permissions.CanCreateEditDeleteUsers(role),
		VerUsuarios:          permissions.CanViewUsers(role),
	}
}
