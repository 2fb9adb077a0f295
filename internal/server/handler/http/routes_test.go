package http

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dulceria/storefront/internal/server/service"
	"github.com/dulceria/storefront/internal/server/token"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T, svc AuthService, tokens *token.Manager) *httptest.Server {
	t.Helper()
	h := &AuthHandler{AuthService: svc}
	srv := httptest.NewServer(NewRouter(h, tokens, zap.NewNop()))
	t.Cleanup(srv.Close)
	return srv
}

func TestRouterProfileRequiresBearerToken(t *testing.T) {
	tokens := token.NewManager([]byte("secret"), time.Hour)
	srv := newTestServer(t, &fakeAuthService{profile: activeIdentity()}, tokens)

	resp, err := http.Get(srv.URL + "/api/login/perfilF")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", resp.StatusCode)
	}
}

func TestRouterProfileAcceptsIssuedToken(t *testing.T) {
	tokens := token.NewManager([]byte("secret"), time.Hour)
	srv := newTestServer(t, &fakeAuthService{profile: activeIdentity()}, tokens)

	tok, err := tokens.Issue(7)
	if err != nil {
		t.Fatal(err)
	}

	req, err := http.NewRequest("GET", srv.URL+"/api/login/perfilF", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer "+tok)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestRouterProfileRejectsForgedToken(t *testing.T) {
	tokens := token.NewManager([]byte("secret"), time.Hour)
	srv := newTestServer(t, &fakeAuthService{profile: activeIdentity()}, tokens)

	forged, err := token.NewManager([]byte("other"), time.Hour).Issue(7)
	if err != nil {
		t.Fatal(err)
	}

	req, err := http.NewRequest("GET", srv.URL+"/api/login/perfilF", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer "+forged)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for forged token, got %d", resp.StatusCode)
	}
}

func TestRouterRejectsNonJSONLogin(t *testing.T) {
	tokens := token.NewManager([]byte("secret"), time.Hour)
	srv := newTestServer(t, &fakeAuthService{loginResult: &service.LoginResult{PendingUserID: 1}}, tokens)

	resp, err := http.Post(srv.URL+"/api/login", "text/plain", bytes.NewBufferString("correo=m@x.com"))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnsupportedMediaType {
		t.Errorf("expected 415 for non-JSON body, got %d", resp.StatusCode)
	}
}
