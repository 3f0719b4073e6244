package users

import "time"

// Role is the closed set of account roles.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether the role is one of the known variants.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser:
		return true
	}
	return false
}

// User represents a registered account.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	FullName     string
	Avatar       *string
	RefreshToken *string
	Confirmed    bool
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
