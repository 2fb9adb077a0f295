package session

import (
	"context"
	"sync"
	"time"

	"github.com/dulceria/storefront/internal/client/route"
	"github.com/dulceria/storefront/internal/models"
	"go.uber.org/zap"
)

// defaultBootstrapTimeout bounds the startup validation call so a hung
// backend cannot keep the UI in the initializing state indefinitely.
const defaultBootstrapTimeout = 2 * time.Second

// ProfileClient validates a bearer token and returns its identity.
type ProfileClient interface {
	Profile(ctx context.Context, token string) (*models.Identity, error)
}

// Bootstrapper rehydrates a persisted session at process start. It runs
// exactly once per process lifetime, before any route-guarded view is
// rendered; re-running it on navigation is a defect, and the sync.Once
// makes it impossible.
type Bootstrapper struct {
	once    sync.Once
	store   *Store
	api     ProfileClient
	nav     route.Navigator
	timeout time.Duration
	log     *zap.Logger
}

// NewBootstrapper wires a Bootstrapper to the store, the backend client,
// and the navigation boundary.
func NewBootstrapper(store *Store, api ProfileClient, nav route.Navigator, log *zap.Logger) *Bootstrapper {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bootstrapper{
		store:   store,
		api:     api,
		nav:     nav,
		timeout: defaultBootstrapTimeout,
		log:     log,
	}
}

// Run executes the bootstrap sequence. currentPath is the route the user
// opened the app on; a redirect is issued only when it is a public route,
// so deep links survive a restart. Subsequent calls are no-ops.
func (b *Bootstrapper) Run(ctx context.Context, currentPath string) {
	b.once.Do(func() { b.run(ctx, currentPath) })
}

func (b *Bootstrapper) run(ctx context.Context, currentPath string) {
	// Whatever happens, the store leaves the initializing state.
	defer b.store.finishInitializing()

	rec, err := b.store.creds.Load()
	if err != nil {
		b.log.Warn("failed to read credential record", zap.Error(err))
		_ = b.store.creds.Clear()
		return
	}
	if rec == nil {
		return
	}

	gen := b.store.generation()

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	identity, err := b.api.Profile(ctx, rec.Token)
	if err != nil || !identity.Active() {
		// Expired or rejected token: recover silently. The user simply
		// appears logged out; the downstream route guard bounces them.
		b.log.Info("stored token rejected, clearing session", zap.Error(err))
		if cerr := b.store.creds.Clear(); cerr != nil {
			b.log.Warn("failed to clear credentials", zap.Error(cerr))
		}
		b.store.discardIf(gen)
		return
	}

	if !b.store.hydrateIf(gen, identity, rec.Token) {
		// Someone logged in or out while we were waiting; the response
		// is stale and must not overwrite the newer session.
		return
	}

	if route.IsPublic(currentPath) {
		b.nav.Replace(route.ForRole(identity.Role))
	}
}

// hydrateIf installs the validated identity and token, unless the session
// generation moved on while the validation call was in flight. Reports
// whether the session was installed.
func (s *Store) hydrateIf(gen uint64, identity *models.Identity, token string) bool {
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return false
	}
	s.state = State{User: identity, Token: token, Initializing: s.state.Initializing}
	s.gen++
	snapshot := s.state
	s.mu.Unlock()

	s.notify(snapshot)
	return true
}

// discardIf clears the in-memory session, unless the generation moved on.
func (s *Store) discardIf(gen uint64) {
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return
	}
	s.state = State{Initializing: s.state.Initializing}
	s.gen++
	snapshot := s.state
	s.mu.Unlock()

	s.notify(snapshot)
}
