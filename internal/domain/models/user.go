package models

import "time"

// Roles stored in the usuarios.rol column.
const (
	RoleClient = "cliente"
	RoleAdmin  = "admin"
)

// User is a row in usuarios. PassHash is nil for accounts created
// through Google sign-in.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"nombre"`
	Email     string    `json:"email"`
	PassHash  []byte    `json:"-"`
	Address   *string   `json:"direccion,omitempty"`
	Phone     *string   `json:"telefono,omitempty"`
	Role      string    `json:"rol"`
	Picture   *string   `json:"picture,omitempty"`
	CreatedAt time.Time `json:"-"`
}
