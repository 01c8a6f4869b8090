package domain

import "time"

// Role is the coarse authorization label attached to a user.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// IsValid reports whether r belongs to the closed set of roles.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User models an account able to log in. Username is the unique identifier
// and may hold either a plain username or an email address.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
