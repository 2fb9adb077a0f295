// Package middleware provides HTTP middlewares for authentication and
// logging on the backend.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

type ctxKey string

const userIDKey ctxKey = "userID"

// TokenVerifier checks a bearer token and returns the user id it was
// issued to.
type TokenVerifier interface {
	Verify(tokenString string) (int64, error)
}

// BearerAuth enforces bearer-token authentication. A missing token is a
// 401; an invalid or expired one is a 403. On success the user id is
// stored in the request context for the handler.
func BearerAuth(tokens TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tok, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tok == "" {
				writeAuthError(w, http.StatusUnauthorized, "Token requerido.")
				return
			}

			userID, err := tokens.Verify(tok)
			if err != nil {
				writeAuthError(w, http.StatusForbidden, "Token inválido.")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext extracts the authenticated user id from the request
// context. Returns 0 if absent.
func UserIDFromContext(ctx context.Context) int64 {
	if id, ok := ctx.Value(userIDKey).(int64); ok {
		return id
	}
	return 0
}

func writeAuthError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
