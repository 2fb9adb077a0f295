// Package repository provides persistence implementations for the
// backend's services.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dulceria/storefront/internal/models"
)

// ErrNotFound is returned when no user matches the lookup.
var ErrNotFound = errors.New("repository: user not found")

// User is the full user row, including the columns that never leave the
// backend (password hash, TOTP secret).
type User struct {
	ID              int64
	Name            string
	PaternalSurname string
	MaternalSurname string
	Email           string
	Phone           string
	PasswordHash    string
	SecretQuestion  string
	SecretAnswer    string
	Role            models.Role
	Status          models.Status
	MFAEnabled      bool
	TOTPSecret      string
}

// Identity projects the row onto the client-visible identity fields.
func (u *User) Identity() *models.Identity {
	return &models.Identity{
		ID:              u.ID,
		Name:            u.Name,
		PaternalSurname: u.PaternalSurname,
		MaternalSurname: u.MaternalSurname,
		Email:           u.Email,
		Phone:           u.Phone,
		SecretQuestion:  u.SecretQuestion,
		SecretAnswer:    u.SecretAnswer,
		Role:            u.Role,
		Status:          u.Status,
	}
}

// PostgresUserRepository implements user persistence on PostgreSQL.
type PostgresUserRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository with the
// given database connection.
func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

const userColumns = `id_usuarios, nombre, apellidop, apellidom, correo, telefono, password_hash, pregunta_secreta, respuesta_secreta, tipousuario, estado, mfa_enabled, totp_secret`

func scanUser(row *sql.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Name, &u.PaternalSurname, &u.MaternalSurname, &u.Email,
		&u.Phone, &u.PasswordHash, &u.SecretQuestion, &u.SecretAnswer,
		&u.Role, &u.Status, &u.MFAEnabled, &u.TOTPSecret,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail fetches the user with the given login email.
func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	row := r.DB.QueryRowContext(
		ctx,
		`SELECT `+userColumns+` FROM usuarios WHERE correo = $1`,
		email,
	)
	return scanUser(row)
}

// GetByID fetches the user with the given id.
func (r *PostgresUserRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	row := r.DB.QueryRowContext(
		ctx,
		`SELECT `+userColumns+` FROM usuarios WHERE id_usuarios = $1`,
		id,
	)
	return scanUser(row)
}

// EmailExists checks whether a user with the given email is already
// registered.
func (r *PostgresUserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(
		ctx,
		`SELECT EXISTS(SELECT 1 FROM usuarios WHERE correo = $1)`,
		email,
	).Scan(&exists)
	return exists, err
}

// SetMFA stores the TOTP secret for a user and flips the enrollment flag.
func (r *PostgresUserRepository) SetMFA(ctx context.Context, id int64, secret string, enabled bool) error {
	res, err := r.DB.ExecContext(
		ctx,
		`UPDATE usuarios SET totp_secret = $1, mfa_enabled = $2 WHERE id_usuarios = $3`,
		secret, enabled, id,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Create inserts a new user and returns its assigned id.
func (r *PostgresUserRepository) Create(ctx context.Context, u *User) (int64, error) {
	var id int64
	err := r.DB.QueryRowContext(
		ctx,
		`INSERT INTO usuarios (nombre, apellidop, apellidom, correo, telefono, password_hash, pregunta_secreta, respuesta_secreta, tipousuario, estado, mfa_enabled, totp_secret)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING id_usuarios`,
		u.Name, u.PaternalSurname, u.MaternalSurname, u.Email, u.Phone,
		u.PasswordHash, u.SecretQuestion, u.SecretAnswer, u.Role, u.Status,
		u.MFAEnabled, u.TOTPSecret,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}
