// Package service provides the backend's authentication business logic,
// delegating persistence to a repository interface.
package service

import (
	"context"
	"errors"

	"github.com/dulceria/storefront/internal/models"
	"github.com/dulceria/storefront/internal/server/repository"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials covers both unknown emails and wrong
	// passwords, so responses never reveal which one it was.
	ErrInvalidCredentials = errors.New("service: invalid credentials")
	// ErrInactiveAccount is returned when the account is not Activo.
	ErrInactiveAccount = errors.New("service: account not active")
	// ErrInvalidCode is returned for a wrong or expired TOTP code.
	ErrInvalidCode = errors.New("service: invalid mfa code")
	// ErrEmailTaken is returned when the registration email exists.
	ErrEmailTaken = errors.New("service: email already registered")
	// ErrMFANotPending is returned when verify-mfa is called for a user
	// with no second factor enrolled.
	ErrMFANotPending = errors.New("service: no mfa challenge pending")
)

// UserRepository defines the persistence operations required by the
// authentication service.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*repository.User, error)
	GetByID(ctx context.Context, id int64) (*repository.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, u *repository.User) (int64, error)
	SetMFA(ctx context.Context, id int64, secret string, enabled bool) error
}

// TokenIssuer signs bearer tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID int64) (string, error)
}

// LoginResult is the outcome of either login step. Token and Identity are
// set when the session is final; PendingUserID is set when a second
// factor is still required.
type LoginResult struct {
	Token         string
	Identity      *models.Identity
	PendingUserID int64
}

// Registration is the validated input for creating an account.
type Registration struct {
	Name            string
	PaternalSurname string
	MaternalSurname string
	Email           string
	Phone           string
	Password        string
	Role            models.Role
	SecretQuestion  string
	SecretAnswer    string
}

// AuthService implements the login, second-factor, profile, and
// registration operations.
type AuthService struct {
	repo   UserRepository
	tokens TokenIssuer
}

// NewAuthService constructs an AuthService over the given repository and
// token issuer.
func NewAuthService(repo UserRepository, tokens TokenIssuer) *AuthService {
	return &AuthService{repo: repo, tokens: tokens}
}

// Login checks the primary credentials. Accounts with a second factor
// enrolled get a pending user id instead of a token; the session becomes
// final only after VerifyMFA.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	if user.Status != models.StatusActive {
		return nil, ErrInactiveAccount
	}

	if user.MFAEnabled {
		return &LoginResult{PendingUserID: user.ID}, nil
	}
	return s.finalize(user)
}

// VerifyMFA checks the 6-digit code for the pending user and finalizes
// the session.
func (s *AuthService) VerifyMFA(ctx context.Context, userID int64, code string) (*LoginResult, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCode
	}
	if err != nil {
		return nil, err
	}

	if !user.MFAEnabled || user.TOTPSecret == "" {
		return nil, ErrMFANotPending
	}
	if user.Status != models.StatusActive {
		return nil, ErrInactiveAccount
	}
	if !totp.Validate(code, user.TOTPSecret) {
		return nil, ErrInvalidCode
	}
	return s.finalize(user)
}

// Profile returns the identity for an authenticated user id. Only Activo
// accounts validate; anything else behaves like an invalid token.
func (s *AuthService) Profile(ctx context.Context, userID int64) (*models.Identity, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInactiveAccount
	}
	if err != nil {
		return nil, err
	}
	if user.Status != models.StatusActive {
		return nil, ErrInactiveAccount
	}
	return user.Identity(), nil
}

// Register creates a new account with a bcrypt-hashed password.
func (s *AuthService) Register(ctx context.Context, reg Registration) (*models.Identity, error) {
	if !reg.Role.Valid() {
		return nil, errors.New("service: invalid role")
	}

	exists, err := s.repo.EmailExists(ctx, reg.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &repository.User{
		Name:            reg.Name,
		PaternalSurname: reg.PaternalSurname,
		MaternalSurname: reg.MaternalSurname,
		Email:           reg.Email,
		Phone:           reg.Phone,
		PasswordHash:    string(hash),
		SecretQuestion:  reg.SecretQuestion,
		SecretAnswer:    reg.SecretAnswer,
		Role:            reg.Role,
		Status:          models.StatusActive,
	}

	id, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	user.ID = id
	return user.Identity(), nil
}

// EnrollMFA generates a TOTP secret for the user, stores it, and returns
// the otpauth:// provisioning URL for an authenticator app.
func (s *AuthService) EnrollMFA(ctx context.Context, userID int64) (string, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "Dulceria",
		AccountName: user.Email,
	})
	if err != nil {
		return "", err
	}

	if err := s.repo.SetMFA(ctx, user.ID, key.Secret(), true); err != nil {
		return "", err
	}
	return key.URL(), nil
}

func (s *AuthService) finalize(user *repository.User) (*LoginResult, error) {
	tok, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: tok, Identity: user.Identity()}, nil
}
