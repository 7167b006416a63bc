package domain

import "time"

// User is an account in the mesh. The password hash is never serialized; the
// only consumer that needs it is the auth service's credential RPC, which
// uses its own wire shape.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name,omitempty"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DefaultRole is assigned to accounts created without an explicit role.
const DefaultRole = "USER"
