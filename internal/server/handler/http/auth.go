// Package http provides the backend's HTTP handlers for login, the
// second-factor step, profile validation, and registration.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dulceria/storefront/internal/middleware"
	"github.com/dulceria/storefront/internal/models"
	"github.com/dulceria/storefront/internal/server/service"
)

// AuthService defines the operations required by the HTTP handlers.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*service.LoginResult, error)
	VerifyMFA(ctx context.Context, userID int64, code string) (*service.LoginResult, error)
	Profile(ctx context.Context, userID int64) (*models.Identity, error)
	Register(ctx context.Context, reg service.Registration) (*models.Identity, error)
}

// AuthHandler handles the /api/login and /api/registro endpoints.
type AuthHandler struct {
	// AuthService performs the underlying authentication operations.
	AuthService AuthService
}

type loginRequest struct {
	Email    string `json:"correo"`
	Password string `json:"password"`
}

type verifyMFARequest struct {
	UserID  int64  `json:"userId"`
	MFACode string `json:"mfaCode"`
}

type registerRequest struct {
	Name            string `json:"nombre"`
	PaternalSurname string `json:"apellidopa"`
	MaternalSurname string `json:"apellidoma"`
	Email           string `json:"correo"`
	Phone           string `json:"telefono"`
	Password        string `json:"password"`
	Role            string `json:"tipousuario"`
	SecretQuestion  string `json:"preguntaSecreta"`
	SecretAnswer    string `json:"respuestaSecreta"`
}

// Login handles POST /api/login. The response carries either a final
// token with the user, or a userId when a second factor is required.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Ingresa tu correo y contraseña.")
		return
	}

	result, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeLoginError(w, err)
		return
	}

	if result.PendingUserID != 0 {
		writeJSON(w, http.StatusOK, map[string]any{"userId": result.PendingUserID})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": result.Token, "user": result.Identity})
}

// VerifyMFA handles POST /api/login/verify-mfa.
func (h *AuthHandler) VerifyMFA(w http.ResponseWriter, r *http.Request) {
	var req verifyMFARequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == 0 || req.MFACode == "" {
		writeError(w, http.StatusBadRequest, "Código TOTP inválido.")
		return
	}

	result, err := h.AuthService.VerifyMFA(r.Context(), req.UserID, req.MFACode)
	if err != nil {
		writeLoginError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": result.Token, "user": result.Identity})
}

// Profile handles GET /api/login/perfilF. The bearer middleware has
// already verified the token; the identity check here enforces that only
// Activo accounts validate.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	identity, err := h.AuthService.Profile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrInactiveAccount) {
			writeError(w, http.StatusUnauthorized, "Usuario no válido o inactivo.")
			return
		}
		writeError(w, http.StatusInternalServerError, "Error interno.")
		return
	}
	writeJSON(w, http.StatusOK, identity)
}

// Register handles POST /api/registro.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Solicitud inválida.")
		return
	}

	identity, err := h.AuthService.Register(r.Context(), service.Registration{
		Name:            req.Name,
		PaternalSurname: req.PaternalSurname,
		MaternalSurname: req.MaternalSurname,
		Email:           req.Email,
		Phone:           req.Phone,
		Password:        req.Password,
		Role:            models.Role(req.Role),
		SecretQuestion:  req.SecretQuestion,
		SecretAnswer:    req.SecretAnswer,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			writeError(w, http.StatusConflict, "El correo ya está registrado.")
			return
		}
		writeError(w, http.StatusInternalServerError, "Error interno.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"tipousuario": identity.Role,
		"message":     "Registro exitoso. Revisa tu correo para verificar tu cuenta.",
	})
}

func writeLoginError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Correo o contraseña incorrectos.")
	case errors.Is(err, service.ErrInvalidCode), errors.Is(err, service.ErrMFANotPending):
		writeError(w, http.StatusUnauthorized, "Código TOTP inválido.")
	case errors.Is(err, service.ErrInactiveAccount):
		writeError(w, http.StatusForbidden, "Usuario no válido o inactivo.")
	default:
		writeError(w, http.StatusInternalServerError, "Error interno.")
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
