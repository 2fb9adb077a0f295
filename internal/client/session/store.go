// Package session owns the client's authenticated state: the in-memory
// session, its persisted mirror, and the startup routine that revalidates
// a stored token against the backend. All writers funnel through Login and
// Logout; everything else only reads snapshots.
package session

import (
	"sync"

	"github.com/dulceria/storefront/internal/models"
	"go.uber.org/zap"
)

// State is an immutable snapshot of the session. User and Token change as
// one unit; readers never observe one without the other.
type State struct {
	// User is the authenticated identity, nil when logged out.
	User *models.Identity
	// Token is the bearer credential paired with User.
	Token string
	// Initializing is true until the bootstrap routine has finished.
	Initializing bool
}

// LoggedIn reports whether the snapshot holds a live session.
func (s State) LoggedIn() bool { return s.User != nil && s.Token != "" }

// Listener receives every state change.
type Listener func(State)

// Store holds the current session. It is safe for concurrent use; login
// and logout replace the (identity, token) pair atomically and notify
// subscribers.
type Store struct {
	mu        sync.RWMutex
	state     State
	gen       uint64
	creds     CredentialStore
	log       *zap.Logger
	listeners map[int]Listener
	nextID    int
}

// NewStore returns a Store in the pre-bootstrap state (initializing, no
// session), persisting through creds.
func NewStore(creds CredentialStore, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		state:     State{Initializing: true},
		creds:     creds,
		log:       log,
		listeners: make(map[int]Listener),
	}
}

// Login installs the identity and token as the current session, keeping
// only the whitelisted identity fields, mirrors them to the credential
// store, and returns the role so a navigation boundary can redirect. It
// assumes the pair already passed backend validation and never fails for
// normal inputs.
func (s *Store) Login(identity models.Identity, token string) models.Role {
	// Copy field by field so stray data a caller tacked onto the struct
	// via embedding or future fields never reaches disk.
	user := &models.Identity{
		ID:              identity.ID,
		Name:            identity.Name,
		PaternalSurname: identity.PaternalSurname,
		MaternalSurname: identity.MaternalSurname,
		Email:           identity.Email,
		Phone:           identity.Phone,
		SecretQuestion:  identity.SecretQuestion,
		SecretAnswer:    identity.SecretAnswer,
		Role:            identity.Role,
		Status:          identity.Status,
	}

	s.mu.Lock()
	s.state = State{User: user, Token: token, Initializing: s.state.Initializing}
	s.gen++
	snapshot := s.state
	s.mu.Unlock()

	if err := s.creds.Save(&Record{User: user, Token: token}); err != nil {
		s.log.Warn("failed to persist credentials", zap.Error(err))
	}

	s.notify(snapshot)
	return user.Role
}

// Logout clears the session and the persisted record. The caller redirects
// to the public root afterwards.
func (s *Store) Logout() {
	s.mu.Lock()
	s.state = State{Initializing: s.state.Initializing}
	s.gen++
	snapshot := s.state
	s.mu.Unlock()

	if err := s.creds.Clear(); err != nil {
		s.log.Warn("failed to clear credentials", zap.Error(err))
	}

	s.notify(snapshot)
}

// CurrentUser returns the authenticated identity, or nil.
func (s *Store) CurrentUser() *models.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.User
}

// CurrentToken returns the bearer token, or "".
func (s *Store) CurrentToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token
}

// Initializing reports whether the bootstrap routine is still running.
// Consumers must treat true as "decision pending" and defer role-gated
// rendering.
func (s *Store) Initializing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Initializing
}

// Snapshot returns the current state as one consistent unit.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers fn for every subsequent state change and returns a
// function that removes the subscription.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// generation returns a counter bumped on every login/logout. Asynchronous
// routines capture it before suspending; a completion whose generation no
// longer matches must be dropped so it cannot resurrect a cleared session.
func (s *Store) generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

// finishInitializing flips Initializing to false. Called exactly once by
// the bootstrapper as its final step.
func (s *Store) finishInitializing() {
	s.mu.Lock()
	s.state.Initializing = false
	snapshot := s.state
	s.mu.Unlock()
	s.notify(snapshot)
}

func (s *Store) notify(snapshot State) {
	s.mu.RLock()
	fns := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(snapshot)
	}
}
