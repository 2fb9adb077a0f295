package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// fakeVerifier accepts a single token string.
type fakeVerifier struct {
	accept string
	userID int64
}

func (f *fakeVerifier) Verify(tokenString string) (int64, error) {
	if tokenString == f.accept {
		return f.userID, nil
	}
	return 0, errors.New("invalid token")
}

// captureHandler records whether it ran and the user id it saw.
type captureHandler struct {
	called bool
	userID int64
}

func (c *captureHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c.called = true
	c.userID = UserIDFromContext(r.Context())
	w.WriteHeader(http.StatusOK)
}

func TestBearerAuth_MissingToken(t *testing.T) {
	next := &captureHandler{}
	h := BearerAuth(&fakeVerifier{accept: "tok", userID: 7})(next)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/login/perfilF", nil)
	h.ServeHTTP(rec, req)

	if next.called {
		t.Error("handler must not run without a token")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestBearerAuth_MalformedHeader(t *testing.T) {
	next := &captureHandler{}
	h := BearerAuth(&fakeVerifier{accept: "tok", userID: 7})(next)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/login/perfilF", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwdw==")
	h.ServeHTTP(rec, req)

	if next.called {
		t.Error("handler must not run with a non-bearer header")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestBearerAuth_InvalidToken(t *testing.T) {
	next := &captureHandler{}
	h := BearerAuth(&fakeVerifier{accept: "tok", userID: 7})(next)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/login/perfilF", nil)
	req.Header.Set("Authorization", "Bearer forged")
	h.ServeHTTP(rec, req)

	if next.called {
		t.Error("handler must not run with an invalid token")
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
}

func TestBearerAuth_ValidToken(t *testing.T) {
	next := &captureHandler{}
	h := BearerAuth(&fakeVerifier{accept: "tok", userID: 7})(next)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/login/perfilF", nil)
	req.Header.Set("Authorization", "Bearer tok")
	h.ServeHTTP(rec, req)

	if !next.called {
		t.Fatal("expected handler to run")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if next.userID != 7 {
		t.Errorf("expected user id 7 in context, got %d", next.userID)
	}
}

func TestUserIDFromContext_Absent(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	if id := UserIDFromContext(req.Context()); id != 0 {
		t.Errorf("expected 0 for absent user id, got %d", id)
	}
}
