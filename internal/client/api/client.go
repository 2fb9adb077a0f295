// Package api implements the HTTP client for the storefront backend.
// Every endpoint the auth flows depend on lives here; callers never build
// requests themselves.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dulceria/storefront/internal/models"
	"go.uber.org/zap"
)

const (
	pathLogin     = "/api/login"
	pathVerifyMFA = "/api/login/verify-mfa"
	pathProfile   = "/api/login/perfilF"
	pathRegister  = "/api/registro"
)

// Error is a backend-rejected request: a 4xx/5xx status with the message
// from the response's {"error": ...} payload. Connectivity failures are
// returned as plain errors, never as *Error.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("backend: %d %s", e.Status, e.Message)
}

// Client talks to the storefront backend over JSON/HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

// New returns a Client for the given base URL. httpClient may be nil, in
// which case a client with a 10 second timeout is used.
func New(baseURL string, httpClient *http.Client, log *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		log:     log,
	}
}

// LoginRequest is the primary-credential payload for POST /api/login.
type LoginRequest struct {
	Email    string `json:"correo"`
	Password string `json:"password"`
}

// VerifyMFARequest is the second-factor payload for POST /api/login/verify-mfa.
type VerifyMFARequest struct {
	UserID  int64  `json:"userId"`
	MFACode string `json:"mfaCode"`
}

// LoginResponse is the backend's answer to either login step. Exactly one
// of Token or UserID is set: a token means the session is final, a userId
// means a second factor is still required.
type LoginResponse struct {
	Token  string           `json:"token,omitempty"`
	User   *models.Identity `json:"user,omitempty"`
	UserID int64            `json:"userId,omitempty"`
}

// RegisterRequest is the nine-field payload for POST /api/registro.
type RegisterRequest struct {
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

// RegisterResponse is the backend's answer to a successful registration.
type RegisterResponse struct {
	Role    string `json:"tipousuario"`
	Message string `json:"message,omitempty"`
}

// Login posts the primary credentials and returns the backend's decision.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var out LoginResponse
	if err := c.postJSON(ctx, pathLogin, LoginRequest{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyMFA posts the second-factor code for the pending user.
func (c *Client) VerifyMFA(ctx context.Context, userID int64, code string) (*LoginResponse, error) {
	var out LoginResponse
	if err := c.postJSON(ctx, pathVerifyMFA, VerifyMFARequest{UserID: userID, MFACode: code}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Profile validates the bearer token against the backend and returns the
// identity it belongs to. A 401/403 comes back as *Error.
func (c *Client) Profile(ctx context.Context, token string) (*models.Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+pathProfile, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("profile request failed", zap.Error(err))
		return nil, fmt.Errorf("profile request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	var identity models.Identity
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &identity, nil
}

// Register posts the registration payload.
func (c *Client) Register(ctx context.Context, reg RegisterRequest) (*RegisterResponse, error) {
	var out RegisterResponse
	if err := c.postJSON(ctx, pathRegister, reg, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("request failed", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeError turns a non-2xx response into an *Error, pulling the message
// out of the {"error": ...} body when present.
func decodeError(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	return &Error{Status: resp.StatusCode, Message: payload.Error}
}

// IsBackend reports whether err is a backend rejection (as opposed to a
// connectivity failure) and returns it when so.
func IsBackend(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
