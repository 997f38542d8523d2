// Package store holds the domain data stores. Each store owns one or two
// collections in memory, fetched from the backend on session change and
// shadowed in the mirror cache for degraded fallback. All stores follow the
// same policy: remote is the source of truth while reachable, the mirror is
// consulted only when it is not.
package store

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"financehub/portal/internal/api"
	"financehub/portal/internal/cache"
)

// ErrSessaoExpirada is returned by every mutation attempted without a token.
var ErrSessaoExpirada = errors.New("sessão expirada, faça login novamente")

// snapshot wraps a mirrored collection with the owner it belongs to, so a
// stale snapshot from another user is never served after a user switch.
type snapshot[T any] struct {
	Owner string `json:"owner"`
	Itens []T    `json:"itens"`
}

// colecao is one token-tagged in-memory collection. Every load is tagged
// with the token it was issued under; a response whose tag no longer matches
// the current token is discarded, so a slow fetch for user A can never
// overwrite user B's data.
type colecao[T any] struct {
	mu    sync.RWMutex
	itens []T
	erro  string
	token string
}

// limparPara synchronously empties the collection and re-tags it. Runs
// before any fetch for the new token is issued.
func (c *colecao[T]) limparPara(token string) {
	c.mu.Lock()
	c.itens = nil
	c.erro = ""
	c.token = token
	c.mu.Unlock()
}

// aplicar installs a fetched result if its tag is still current.
func (c *colecao[T]) aplicar(token string, itens []T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != token {
		return false
	}
	c.itens = itens
	c.erro = ""
	return true
}

// falhar records a fetch failure if its tag is still current. The collection
// empties; the mirror is left untouched.
func (c *colecao[T]) falhar(token string, itens []T, msg string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != token {
		return false
	}
	c.itens = itens
	c.erro = msg
	return true
}

func (c *colecao[T]) snapshot() ([]T, string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	itens := make([]T, len(c.itens))
	copy(itens, c.itens)
	return itens, c.erro
}

// mutar applies fn to the collection under lock and returns the resulting
// slice for mirroring.
func (c *colecao[T]) mutar(fn func([]T) []T) []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.itens = fn(c.itens)
	out := make([]T, len(c.itens))
	copy(out, c.itens)
	return out
}

// carregar runs the remote-then-mirror policy for one collection:
//   - remote success replaces the collection wholesale and refreshes the
//     mirror only when non-empty (a transient empty response must not wipe a
//     previously cached snapshot);
//   - a network failure falls back to the mirror snapshot when one exists
//     for the same owner, still surfacing the error;
//   - any other failure empties the collection and records the error.
func carregar[T any](
	ctx context.Context,
	c *colecao[T],
	m *cache.Mirror,
	chave string,
	token string,
	owner string,
	list func(context.Context, string) ([]T, error),
	log zerolog.Logger,
) {
	itens, err := list(ctx, token)
	if err == nil {
		if !c.aplicar(token, itens) {
			log.Debug().Str("chave", chave).Msg("descartando resposta de token obsoleto")
			return
		}
		if len(itens) > 0 {
			if err := cache.Salvar(ctx, m, chave, snapshot[T]{Owner: owner, Itens: itens}); err != nil {
				log.Warn().Err(err).Str("chave", chave).Msg("espelhar coleção falhou")
			}
		}
		return
	}

	var fallback []T
	if api.IsNetwork(err) {
		if snap, ok := cache.Carregar[snapshot[T]](ctx, m, chave); ok && snap.Owner == owner {
			fallback = snap.Itens
		}
	}
	if c.falhar(token, fallback, err.Error()) {
		log.Warn().Err(err).Str("chave", chave).Int("espelho", len(fallback)).Msg("carregar coleção falhou")
	}
}

// espelhar rewrites a collection's mirror slot after a confirmed mutation.
func espelhar[T any](ctx context.Context, m *cache.Mirror, chave, owner string, itens []T, log zerolog.Logger) {
	if err := cache.Salvar(ctx, m, chave, snapshot[T]{Owner: owner, Itens: itens}); err != nil {
		log.Warn().Err(err).Str("chave", chave).Msg("espelhar mutação falhou")
	}
}
