// Package register implements the registration form's guard: per-field
// validation, password strength scoring, the compromised-password check,
// and the final submission.
package register

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dulceria/storefront/internal/models"
	"github.com/nbutton23/zxcvbn-go"
)

// Field names, matching the wire payload of POST /api/registro.
const (
	FieldName            = "nombre"
	FieldPaternalSurname = "apellidopa"
	FieldMaternalSurname = "apellidoma"
	FieldPhone           = "telefono"
	FieldEmail           = "correo"
	FieldPassword        = "password"
	FieldRole            = "tipousuario"
	FieldSecretQuestion  = "preguntaSecreta"
	FieldSecretAnswer    = "respuestaSecreta"
)

var (
	nameRe     = regexp.MustCompile(`^[a-zA-ZáéíóúÁÉÍÓÚñÑüÜ\s]{4,16}$`)
	phoneRe    = regexp.MustCompile(`^\d{10}$`)
	passwordRe = regexp.MustCompile(`^[a-zA-ZáéíóúÁÉÍÓÚñÑüÜ0-9!@#$%^&*()_+\-=\[\]{};':"\\|,.<>/?]{8,15}$`)
	emailRe    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// commonSequences are literal substrings the password gate rejects
// regardless of what the character-set rule says.
var commonSequences = []string{"12345", "password", "qwerty", "abcdef"}

// Validation messages, per field.
const (
	msgName          = "Solo letras entre 4 y 16 caracteres."
	msgPhone         = "Contener exactamente 10 dígitos."
	msgPassword      = "Tener entre 8 y 15 caracteres."
	msgEmail         = "Introduce un correo electrónico válido."
	msgRole          = "Selecciona un tipo de usuario válido."
	msgQuestion      = "Selecciona una pregunta de seguridad."
	msgAnswer        = "Mínimo 3 caracteres."
	msgCommonPattern = "Evita usar secuencias comunes como '12345' o 'password'."
)

// SecretQuestions is the fixed list the registration form offers.
var SecretQuestions = []string{
	"¿En qué ciudad naciste?",
	"¿Cuál es el nombre de tu primera mascota?",
	"¿Cuál es tu comida favorita?",
	"¿Cómo se llama tu escuela primaria?",
}

// ValidateField checks a single field value and returns the error message
// for it, or "" when the value is acceptable.
func ValidateField(name, value string) string {
	switch name {
	case FieldName, FieldPaternalSurname, FieldMaternalSurname:
		if !nameRe.MatchString(value) {
			return msgName
		}
	case FieldPhone:
		if !phoneRe.MatchString(value) {
			return msgPhone
		}
	case FieldPassword:
		if !passwordRe.MatchString(value) {
			return msgPassword
		}
	case FieldEmail:
		if !emailRe.MatchString(value) {
			return msgEmail
		}
	case FieldRole:
		if !models.Role(value).Valid() {
			return msgRole
		}
	case FieldSecretQuestion:
		if value == "" {
			return msgQuestion
		}
	case FieldSecretAnswer:
		if utf8.RuneCountInString(value) < 3 {
			return msgAnswer
		}
	}
	return ""
}

// GateMessage applies the common-sequence gate: a case-insensitive
// substring match against known throwaway sequences. It is independent of
// the character-set rule, so a password may pass ValidateField and still
// be gated here.
func GateMessage(password string) string {
	lower := strings.ToLower(password)
	for _, seq := range commonSequences {
		if strings.Contains(lower, seq) {
			return msgCommonPattern
		}
	}
	return ""
}

// Strength scores the password 0 (guessable) to 4 (very strong).
func Strength(password string) int {
	return zxcvbn.PasswordStrength(password, nil).Score
}
