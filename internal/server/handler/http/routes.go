// Package http also wires the backend's routing and middleware chain.
package http

import (
	"net/http"

	"github.com/dulceria/storefront/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs the HTTP handler serving the storefront API.
//
// Routes:
//
//	POST /api/login             → authHandler.Login
//	POST /api/login/verify-mfa  → authHandler.VerifyMFA
//	GET  /api/login/perfilF     → authHandler.Profile (bearer token required)
//	POST /api/registro          → authHandler.Register
func NewRouter(authHandler *AuthHandler, tokens middleware.TokenVerifier, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(logger))

	r.Route("/api", func(r chi.Router) {
		// Public endpoints; bodies must be JSON
		r.Group(func(r chi.Router) {
			r.Use(chiMiddleware.AllowContentType("application/json"))
			r.Post("/login", authHandler.Login)
			r.Post("/login/verify-mfa", authHandler.VerifyMFA)
			r.Post("/registro", authHandler.Register)
		})

		// Protected group: requires a valid bearer token
		r.Group(func(r chi.Router) {
			r.Use(middleware.BearerAuth(tokens))
			r.Get("/login/perfilF", authHandler.Profile)
		})
	})

	return r
}
