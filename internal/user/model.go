package user

import (
	"errors"
	"time"
)

// Roles understood by the platform. A "gerant" manages terrains and the
// reservations made on them, an "admin" manages everything.
const (
	RoleUser    = "user"
	RoleManager = "gerant"
	RoleAdmin   = "admin"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailAlreadyUsed   = errors.New("email already used")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailRequired      = errors.New("email is required")
	ErrPasswordTooShort   = errors.New("password is too short")
	ErrInvalidRole        = errors.New("invalid role")
)

// User represents a user in the system.
type User struct {
	ID           string // UUID
	Name         string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// UserFilter defines filter options for listing users.
type UserFilter struct {
	Name  string
	Email string
	Role  string

	Page     int
	PageSize int
}

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleManager, RoleAdmin:
		return true
	}
	return false
}
