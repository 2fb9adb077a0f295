// Package route maps user roles to their landing routes and defines the
// navigation boundary the session layer drives. Keeping navigation behind
// the Navigator interface keeps the session and login logic testable
// without a UI harness.
package route

import "github.com/dulceria/storefront/internal/models"

// Well-known routes of the storefront.
const (
	Root        = "/"
	Login       = "/login"
	Register    = "/registro"
	VerifyEmail = "/verificar-correo"
	ClientHome  = "/cliente"
	AdminHome   = "/admin"
	CourierHome = "/repartidor"
)

// ForRole returns the landing route for the given role. Unknown or empty
// roles land on the public root.
func ForRole(role models.Role) string {
	switch role {
	case models.RoleClient:
		return ClientHome
	case models.RoleAdmin:
		return AdminHome
	case models.RoleCourier:
		return CourierHome
	default:
		return Root
	}
}

// IsPublic reports whether path is one of the routes an anonymous visitor
// may sit on. The bootstrapper only redirects away from these; a deep link
// into the rest of the app is left alone.
func IsPublic(path string) bool {
	switch path {
	case Root, Login, Register, VerifyEmail:
		return true
	}
	return false
}

// Navigator performs route changes on behalf of the auth layer. Replace
// swaps the current history entry so a stale redirect never becomes a
// back-button loop.
type Navigator interface {
	Replace(path string)
}

// History is an in-memory Navigator for the CLI and for tests. It tracks
// only the current path.
type History struct {
	path string
}

// NewHistory returns a History positioned at the given path.
func NewHistory(path string) *History {
	return &History{path: path}
}

// Replace sets the current path.
func (h *History) Replace(path string) { h.path = path }

// Current returns the current path.
func (h *History) Current() string { return h.path }
