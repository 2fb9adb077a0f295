// Package token issues and verifies the bearer tokens the backend hands
// out on login.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for expired, malformed, or forged tokens.
var ErrInvalidToken = errors.New("token: invalid")

// Claims carries the standard claims plus the user id the token was
// issued to.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"uid"`
}

// Manager signs and verifies HS256 tokens with a shared secret.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

// NewManager returns a Manager issuing tokens valid for ttl.
func NewManager(secret []byte, ttl time.Duration) *Manager {
	return &Manager{secret: secret, ttl: ttl}
}

// Issue signs a token for the given user id.
func (m *Manager) Issue(userID int64) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID: userID,
	})
	return t.SignedString(m.secret)
}

// Verify parses the token string and returns the user id it was issued
// to, or ErrInvalidToken.
func (m *Manager) Verify(tokenString string) (int64, error) {
	claims := &Claims{}
	t, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil || !t.Valid {
		return 0, ErrInvalidToken
	}
	return claims.UserID, nil
}
