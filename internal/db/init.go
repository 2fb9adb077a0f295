// Package db opens the backend's PostgreSQL connection and applies the
// schema.
package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS usuarios (
    id_usuarios BIGSERIAL PRIMARY KEY,
    nombre TEXT NOT NULL,
    apellidop TEXT NOT NULL,
    apellidom TEXT NOT NULL,
    correo TEXT UNIQUE NOT NULL,
    telefono TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    pregunta_secreta TEXT NOT NULL,
    respuesta_secreta TEXT NOT NULL,
    tipousuario TEXT NOT NULL,
    estado TEXT NOT NULL DEFAULT 'Activo',
    mfa_enabled BOOLEAN NOT NULL DEFAULT FALSE,
    totp_secret TEXT NOT NULL DEFAULT ''
);
`

// InitPostgres opens the database at dsn, verifies the connection, and
// creates the schema if missing.
func InitPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return db, nil
}
