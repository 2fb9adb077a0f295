package register

import (
	"context"
	"sync"

	"github.com/dulceria/storefront/internal/client/api"
	"github.com/dulceria/storefront/internal/client/route"
)

// Submission-level messages.
const (
	msgFormErrors   = "Por favor, corrige los errores antes de continuar."
	msgCompromised  = "Esta contraseña ha sido filtrada en brechas de datos. Por favor, elige otra."
	msgConnectivity = "No te pudiste registrar. Por favor, intenta de nuevo."
)

// Draft is a transient registration form: the nine submitted fields, the
// per-field error map, and the derived password strength. It is mutated on
// every keystroke and discarded after submission.
type Draft struct {
	mu       sync.Mutex
	values   map[string]string
	errors   map[string]string
	gateMsg  string
	strength int
}

// NewDraft returns an empty Draft with the client role preselected, the
// registration form's default.
func NewDraft() *Draft {
	d := &Draft{
		values: map[string]string{FieldRole: "Cliente"},
		errors: make(map[string]string),
	}
	return d
}

// SetField records a field value and re-validates it, as the form does on
// every change. The password field additionally refreshes the strength
// score and the common-sequence gate.
func (d *Draft) SetField(name, value string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.values[name] = value
	if msg := ValidateField(name, value); msg != "" {
		d.errors[name] = msg
	} else {
		delete(d.errors, name)
	}

	if name == FieldPassword {
		d.strength = Strength(value)
		d.gateMsg = GateMessage(value)
	}
}

// FieldError returns the current error for a field, or "".
func (d *Draft) FieldError(name string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.errors[name]
}

// Strength returns the password strength score, 0 through 4.
func (d *Draft) Strength() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.strength
}

// GateError returns the common-sequence gate message, or "".
func (d *Draft) GateError() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gateMsg
}

// Valid re-evaluates every entered field and reports whether the draft may
// be submitted.
func (d *Draft) Valid() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	for name, value := range d.values {
		if msg := ValidateField(name, value); msg != "" {
			d.errors[name] = msg
		} else {
			delete(d.errors, name)
		}
	}
	// Required fields that were never touched count as errors too.
	for _, name := range []string{
		FieldName, FieldPaternalSurname, FieldMaternalSurname, FieldPhone,
		FieldEmail, FieldPassword, FieldRole, FieldSecretQuestion, FieldSecretAnswer,
	} {
		if _, ok := d.values[name]; !ok {
			d.errors[name] = ValidateField(name, "")
		}
	}
	return len(d.errors) == 0 && d.gateMsg == ""
}

// value returns the current value of a field.
func (d *Draft) value(name string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.values[name]
}

// payload builds the wire payload from the draft values.
func (d *Draft) payload() api.RegisterRequest {
	d.mu.Lock()
	defer d.mu.Unlock()
	return api.RegisterRequest{
		Name:            d.values[FieldName],
		PaternalSurname: d.values[FieldPaternalSurname],
		MaternalSurname: d.values[FieldMaternalSurname],
		Email:           d.values[FieldEmail],
		Phone:           d.values[FieldPhone],
		Password:        d.values[FieldPassword],
		Role:            d.values[FieldRole],
		SecretQuestion:  d.values[FieldSecretQuestion],
		SecretAnswer:    d.values[FieldSecretAnswer],
	}
}

// RegisterClient is the slice of the backend API the guard needs.
type RegisterClient interface {
	Register(ctx context.Context, reg api.RegisterRequest) (*api.RegisterResponse, error)
}

// Outcome is the result of a submission attempt.
type Outcome struct {
	// OK is true when the backend accepted the registration.
	OK bool
	// Route is the page to move to on success (the email-verification
	// page).
	Route string
	// Role echoes the registered account kind on success.
	Role string
	// Message is the user-facing error when OK is false.
	Message string
	// Compromised is true when the breach check blocked the submission.
	Compromised bool
}

// Guard gates registration submissions: the whole draft must validate,
// the password must clear the breach check, and only then is the backend
// called.
type Guard struct {
	api    RegisterClient
	breach *BreachChecker
}

// NewGuard wires a Guard to the backend client and the breach checker.
func NewGuard(apiClient RegisterClient, breach *BreachChecker) *Guard {
	return &Guard{api: apiClient, breach: breach}
}

// Submit runs the full submission sequence for the draft.
//
// A breach-check failure does not block the submission: the password is
// treated as not compromised and registration proceeds. Login and
// registration connectivity failures, by contrast, block their action.
func (g *Guard) Submit(ctx context.Context, d *Draft) Outcome {
	if !d.Valid() {
		msg := d.GateError()
		if msg == "" {
			msg = msgFormErrors
		}
		return Outcome{Message: msg}
	}

	compromised, err := g.breach.Compromised(ctx, d.value(FieldPassword))
	if err == nil && compromised {
		return Outcome{Message: msgCompromised, Compromised: true}
	}

	resp, err := g.api.Register(ctx, d.payload())
	if err != nil {
		if apiErr, ok := api.IsBackend(err); ok && apiErr.Message != "" {
			return Outcome{Message: apiErr.Message}
		}
		return Outcome{Message: msgConnectivity}
	}

	role := resp.Role
	if role == "" {
		role = d.value(FieldRole)
	}
	return Outcome{OK: true, Route: route.VerifyEmail, Role: role}
}
