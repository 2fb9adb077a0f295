// Package models defines the core data structures shared by the storefront
// client and the backend: the authenticated identity, user roles, and
// account statuses.
package models

// Role identifies the kind of account a user holds. The values are the
// wire values the backend stores and returns in the TipoUsuario field.
type Role string

const (
	// RoleClient is a regular shopper account.
	RoleClient Role = "Cliente"
	// RoleAdmin is a store administrator account.
	RoleAdmin Role = "Administrador"
	// RoleCourier is a delivery-person account.
	RoleCourier Role = "Repartidor"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleClient, RoleAdmin, RoleCourier:
		return true
	}
	return false
}

// Status is the account state stored in the Estado column.
type Status string

const (
	// StatusActive marks an account allowed to hold a live session.
	StatusActive Status = "Activo"
	// StatusPending marks an account awaiting email verification.
	StatusPending Status = "Pendiente"
)

// Identity is the authenticated user's profile record as the backend
// serializes it. Only these fields are ever cached client-side; the
// password never leaves the backend after registration.
type Identity struct {
	// ID is the unique numeric identifier for the user.
	ID int64 `json:"id_usuarios"`
	// Name is the user's given name.
	Name string `json:"Nombre"`
	// PaternalSurname is the first (paternal) surname.
	PaternalSurname string `json:"ApellidoP"`
	// MaternalSurname is the second (maternal) surname.
	MaternalSurname string `json:"ApellidoM"`
	// Email is the login email address.
	Email string `json:"Correo"`
	// Phone is the ten-digit contact phone number.
	Phone string `json:"Telefono"`
	// SecretQuestion is the recovery question chosen at registration.
	SecretQuestion string `json:"PreguntaSecreta"`
	// SecretAnswer is the recovery answer chosen at registration.
	SecretAnswer string `json:"RespuestaSecreta"`
	// Role is the account kind (Cliente, Administrador, Repartidor).
	Role Role `json:"TipoUsuario"`
	// Status is the account state; only Activo accounts may log in.
	Status Status `json:"Estado"`
}

// Active reports whether the account may hold a live session.
func (i *Identity) Active() bool {
	return i != nil && i.Status == StatusActive
}
