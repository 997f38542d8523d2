// Package session owns the authenticated identity and bearer token. The two
// are always set or cleared together; domain stores observe token changes
// through registered listeners.
package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"financehub/portal/internal/api"
	"financehub/portal/internal/cache"
	"financehub/portal/internal/identity"
	"financehub/portal/internal/models"
)

// Change carries the new token to domain-store listeners. An empty token
// means the session ended and collections must be cleared.
type Change struct {
	Token   string
	OwnerID string
}

// Listener is invoked synchronously after every session transition, in
// registration order. Listeners must clear state synchronously and defer any
// refetch to a goroutine.
type Listener func(ctx context.Context, change Change)

// Snapshot is a point-in-time read of the session state.
type Snapshot struct {
	User          *models.User
	Token         string
	Authenticated bool
	Loading       bool
}

type Store struct {
	backend  *api.Client
	provider *identity.Client
	mirror   *cache.Mirror
	log      zerolog.Logger

	mu        sync.RWMutex
	user      *models.User
	token     string
	loading   bool
	listeners []Listener

	loadOnce sync.Once
}

func NewStore(backend *api.Client, provider *identity.Client, mirror *cache.Mirror, log zerolog.Logger) *Store {
	return &Store{
		backend:  backend,
		provider: provider,
		mirror:   mirror,
		log:      log.With().Str("store", "sessao").Logger(),
		loading:  true,
	}
}

// OnChange registers a listener. Registration happens during wiring, before
// Load runs; there is no unregister.
func (s *Store) OnChange(l Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var user *models.User
	if s.user != nil {
		u := *s.user
		user = &u
	}
	return Snapshot{
		User:          user,
		Token:         s.token,
		Authenticated: s.user != nil && s.token != "",
		Loading:       s.loading,
	}
}

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.token != ""
}

// Load restores a previous session on startup. Order: a persisted provider
// session first, then the mirrored token+user pair. A definitive backend
// rejection clears everything; a transient failure keeps the mirrored
// identity as-is, trading strict correctness for availability while the
// backend is down. Loading flips to false exactly once, whatever path runs.
func (s *Store) Load(ctx context.Context) {
	s.loadOnce.Do(func() {
		defer func() {
			s.mu.Lock()
			s.loading = false
			s.mu.Unlock()
		}()

		if token, ok := s.mirror.GetString(ctx, cache.ChaveProviderToken); ok && token != "" {
			user, err := s.backend.ValidarSessao(ctx, token)
			if err == nil {
				s.adopt(ctx, user, token)
				return
			}
			if api.IsInvalidSession(err) {
				s.log.Info().Msg("provider token rejected, clearing session")
				s.clear(ctx)
				return
			}
			s.log.Warn().Err(err).Msg("provider token validation unreachable")
			// fall through to the mirrored pair
		}

		token, okToken := s.mirror.GetString(ctx, cache.ChaveToken)
		cachedUser, okUser := cache.Carregar[models.User](ctx, s.mirror, cache.ChaveUsuario)
		if !okToken || token == "" || !okUser {
			return
		}

		user, err := s.backend.ValidarSessao(ctx, token)
		switch {
		case err == nil:
			// Server user is authoritative for role and profile fields.
			s.adopt(ctx, user, token)
		case api.IsInvalidSession(err):
			s.log.Info().Msg("cached token rejected, clearing session")
			s.clear(ctx)
		default:
			// Backend unreachable: keep the cached identity without
			// re-validation.
			s.log.Warn().Err(err).Msg("validation unreachable, keeping cached identity")
			s.adopt(ctx, cachedUser, token)
		}
	})
}

// Login verifies credentials with the identity provider, then validates the
// issued token with the backend. The backend has the final word: a provider
// acceptance with a failed validation is a failed login.
func (s *Store) Login(ctx context.Context, email, senha string) (models.User, error) {
	providerSession, err := s.provider.SignInWithPassword(ctx, email, senha)
	if err != nil {
		return models.User{}, err
	}

	user, err := s.backend.ValidarSessao(ctx, providerSession.AccessToken)
	if err != nil {
		return models.User{}, err
	}

	if err := s.mirror.SetString(ctx, cache.ChaveProviderToken, providerSession.AccessToken); err != nil {
		s.log.Warn().Err(err).Msg("persist provider token failed")
	}
	s.adopt(ctx, user, providerSession.AccessToken)
	return user, nil
}

// Logout never fails outwardly. Remote sign-outs are best-effort; the local
// session and every mirrored collection are cleared unconditionally.
func (s *Store) Logout(ctx context.Context) {
	token := s.Token()
	if token != "" {
		if err := s.provider.SignOut(ctx, token); err != nil {
			s.log.Warn().Err(err).Msg("provider signout failed")
		}
		if err := s.backend.EncerrarSessao(ctx, token); err != nil {
			s.log.Warn().Err(err).Msg("backend logout failed")
		}
	}
	s.clear(ctx)
}

// Validate re-checks the current token. On a transient failure it reports
// the current authentication state, not a freshly confirmed one.
func (s *Store) Validate(ctx context.Context) bool {
	token := s.Token()
	if token == "" {
		return false
	}

	user, err := s.backend.ValidarSessao(ctx, token)
	switch {
	case err == nil:
		s.adopt(ctx, user, token)
		return true
	case api.IsInvalidSession(err):
		s.clear(ctx)
		return false
	default:
		s.log.Warn().Err(err).Msg("validation unreachable, keeping session")
		return s.Authenticated()
	}
}

// adopt installs user+token as the current session, persists both, and
// notifies listeners. Token and user always move together.
func (s *Store) adopt(ctx context.Context, user models.User, token string) {
	s.mu.Lock()
	u := user
	s.user = &u
	s.token = token
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	if err := s.mirror.SetString(ctx, cache.ChaveToken, token); err != nil {
		s.log.Warn().Err(err).Msg("persist token failed")
	}
	if err := cache.Salvar(ctx, s.mirror, cache.ChaveUsuario, user); err != nil {
		s.log.Warn().Err(err).Msg("persist user failed")
	}

	change := Change{Token: token, OwnerID: user.OwnerID()}
	for _, l := range listeners {
		l(ctx, change)
	}
}

// clear removes the in-memory session, the persisted session artifacts, and
// every mirrored domain collection, then notifies listeners with an empty
// token.
func (s *Store) clear(ctx context.Context) {
	s.mu.Lock()
	s.user = nil
	s.token = ""
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	chaves := append([]string{cache.ChaveToken, cache.ChaveProviderToken, cache.ChaveUsuario}, cache.ChavesDominio...)
	if err := s.mirror.Delete(ctx, chaves...); err != nil {
		s.log.Warn().Err(err).Msg("clear mirror failed")
	}

	for _, l := range listeners {
		l(ctx, Change{})
	}
}
