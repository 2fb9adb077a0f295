package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dulceria/storefront/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginParsesFinalToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "m@x.com", req.Email)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"token": "tok-1",
			"user":  models.Identity{ID: 3, Role: models.RoleClient, Status: models.StatusActive},
		})
	}))
	t.Cleanup(srv.Close)

	resp, err := New(srv.URL, nil, nil).Login(context.Background(), "m@x.com", "Sunrise9!")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", resp.Token)
	require.NotNil(t, resp.User)
	assert.Equal(t, int64(3), resp.User.ID)
	assert.Zero(t, resp.UserID)
}

func TestLoginParsesPendingUserID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"userId": 42})
	}))
	t.Cleanup(srv.Close)

	resp, err := New(srv.URL, nil, nil).Login(context.Background(), "m@x.com", "Sunrise9!")
	require.NoError(t, err)
	assert.Empty(t, resp.Token)
	assert.Nil(t, resp.User)
	assert.Equal(t, int64(42), resp.UserID)
}

func TestBackendErrorCarriesMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Correo o contraseña incorrectos."})
	}))
	t.Cleanup(srv.Close)

	_, err := New(srv.URL, nil, nil).Login(context.Background(), "m@x.com", "bad")
	require.Error(t, err)

	apiErr, ok := IsBackend(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Correo o contraseña incorrectos.", apiErr.Message)
}

func TestConnectivityErrorIsNotBackend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := New(srv.URL, nil, nil).Login(context.Background(), "m@x.com", "Sunrise9!")
	require.Error(t, err)
	_, ok := IsBackend(err)
	assert.False(t, ok)
}

func TestVerifyMFAPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/login/verify-mfa", r.URL.Path)
		var req VerifyMFARequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(42), req.UserID)
		assert.Equal(t, "123456", req.MFACode)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"token": "tok-2",
			"user":  models.Identity{ID: 42, Role: models.RoleAdmin, Status: models.StatusActive},
		})
	}))
	t.Cleanup(srv.Close)

	resp, err := New(srv.URL, nil, nil).VerifyMFA(context.Background(), 42, "123456")
	require.NoError(t, err)
	assert.Equal(t, "tok-2", resp.Token)
}

func TestProfileSendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/login/perfilF", r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(models.Identity{ID: 3, Status: models.StatusActive})
	}))
	t.Cleanup(srv.Close)

	identity, err := New(srv.URL, nil, nil).Profile(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), identity.ID)
}

func TestBaseURLTrailingSlashTrimmed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/login", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{"userId": 1})
	}))
	t.Cleanup(srv.Close)

	_, err := New(srv.URL+"/", nil, nil).Login(context.Background(), "m@x.com", "pw")
	require.NoError(t, err)
}
