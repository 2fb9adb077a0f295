// Package login implements the two-step login sequence: a primary
// credential exchange followed, when the account has a second factor
// enrolled, by a 6-digit code challenge.
package login

import (
	"context"
	"errors"
	"sync"

	"github.com/dulceria/storefront/internal/client/api"
	"github.com/dulceria/storefront/internal/models"
)

// Step marks where a login attempt currently is.
type Step int

const (
	// StepCredentials is the initial email+password step.
	StepCredentials Step = iota
	// StepSecondFactor is the 6-digit code step.
	StepSecondFactor
)

// Fallback messages shown when the backend does not supply one.
const (
	msgLoginFailed  = "Error al iniciar sesión."
	msgInvalidCode  = "Código TOTP inválido."
	msgMissingField = "Ingresa tu correo y contraseña."
	msgBadCode      = "Ingresa un código de 6 dígitos."
)

var (
	// ErrSubmitInFlight is returned when a submission arrives while a
	// previous one is still awaiting its response. The caller treats it
	// as a no-op.
	ErrSubmitInFlight = errors.New("login: submission already in flight")
	// ErrWrongStep is returned when a submission does not match the
	// attempt's current step.
	ErrWrongStep = errors.New("login: wrong step for this submission")
)

// Client is the slice of the backend API the sequencer needs.
type Client interface {
	Login(ctx context.Context, email, password string) (*api.LoginResponse, error)
	VerifyMFA(ctx context.Context, userID int64, code string) (*api.LoginResponse, error)
}

// SessionStore receives the final identity and token.
type SessionStore interface {
	Login(identity models.Identity, token string) models.Role
}

// Result is the outcome of a submission.
type Result struct {
	// LoggedIn is true when the attempt reached the terminal state and
	// the session store now owns the identity and token.
	LoggedIn bool
	// Role is set when LoggedIn, for the navigation boundary.
	Role models.Role
	// SecondFactor is true when the backend demanded a 6-digit code and
	// the attempt moved to StepSecondFactor.
	SecondFactor bool
	// Message is the user-facing error text when neither flag is set.
	Message string
}

// Flow is a single login attempt. It is transient: created when the user
// opens the login view, destroyed on success or abandonment. The session
// itself always lives in the SessionStore, never here.
type Flow struct {
	mu            sync.Mutex
	step          Step
	email         string
	password      string
	pendingUserID int64
	submitting    bool
	message       string

	api   Client
	store SessionStore
}

// NewFlow returns a Flow in StepCredentials.
func NewFlow(apiClient Client, store SessionStore) *Flow {
	return &Flow{api: apiClient, store: store}
}

// Step returns the attempt's current step.
func (f *Flow) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

// Message returns the last user-facing error, or "".
func (f *Flow) Message() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.message
}

// PendingUserID returns the identifier retained for the second-factor
// step, or 0.
func (f *Flow) PendingUserID() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pendingUserID
}

// SubmitCredentials posts the email and password. Empty fields are
// rejected locally. A token in the response finishes the attempt; a
// userId moves it to the second-factor step.
func (f *Flow) SubmitCredentials(ctx context.Context, email, password string) (Result, error) {
	f.mu.Lock()
	if f.step != StepCredentials {
		f.mu.Unlock()
		return Result{}, ErrWrongStep
	}
	if f.submitting {
		f.mu.Unlock()
		return Result{}, ErrSubmitInFlight
	}
	if email == "" || password == "" {
		f.message = msgMissingField
		msg := f.message
		f.mu.Unlock()
		return Result{Message: msg}, nil
	}
	f.submitting = true
	f.email = email
	f.password = password
	f.message = ""
	f.mu.Unlock()

	resp, err := f.api.Login(ctx, email, password)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitting = false

	if err != nil {
		f.message = failureMessage(err, msgLoginFailed)
		return Result{Message: f.message}, nil
	}

	switch {
	case resp.Token != "" && resp.User != nil:
		role := f.store.Login(*resp.User, resp.Token)
		f.reset()
		return Result{LoggedIn: true, Role: role}, nil
	case resp.UserID != 0:
		f.step = StepSecondFactor
		f.pendingUserID = resp.UserID
		return Result{SecondFactor: true}, nil
	default:
		f.message = msgLoginFailed
		return Result{Message: f.message}, nil
	}
}

// SubmitCode posts the 6-digit second-factor code. Anything that is not
// exactly six digits is rejected locally, without a network call.
func (f *Flow) SubmitCode(ctx context.Context, code string) (Result, error) {
	f.mu.Lock()
	if f.step != StepSecondFactor {
		f.mu.Unlock()
		return Result{}, ErrWrongStep
	}
	if f.submitting {
		f.mu.Unlock()
		return Result{}, ErrSubmitInFlight
	}
	if !validCode(code) {
		f.message = msgBadCode
		msg := f.message
		f.mu.Unlock()
		return Result{Message: msg}, nil
	}
	f.submitting = true
	f.message = ""
	userID := f.pendingUserID
	f.mu.Unlock()

	resp, err := f.api.VerifyMFA(ctx, userID, code)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitting = false

	if err != nil {
		f.message = failureMessage(err, msgInvalidCode)
		return Result{Message: f.message}, nil
	}

	if resp.Token == "" || resp.User == nil {
		f.message = msgInvalidCode
		return Result{Message: f.message}, nil
	}

	role := f.store.Login(*resp.User, resp.Token)
	f.reset()
	return Result{LoggedIn: true, Role: role}, nil
}

// Cancel returns the attempt to the credentials step, dropping the pending
// identifier, any entered code state, and the error message. The backend
// will demand the full sequence again on the next attempt.
func (f *Flow) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reset()
}

// reset clears the attempt back to a fresh StepCredentials. Callers hold
// the lock.
func (f *Flow) reset() {
	f.step = StepCredentials
	f.email = ""
	f.password = ""
	f.pendingUserID = 0
	f.message = ""
}

// validCode reports whether code is exactly six ASCII digits.
func validCode(code string) bool {
	if len(code) != 6 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// failureMessage prefers the backend-supplied error text, falling back to
// the given generic message for connectivity failures and empty payloads.
func failureMessage(err error, fallback string) string {
	if apiErr, ok := api.IsBackend(err); ok && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
