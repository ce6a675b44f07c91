package auth

import (
	"errors"
	"net/mail"
	"strings"
)

// Role represents an authorisation tier in the system.
type Role string

const (
	// RoleUser is a household member. Can manage rooms, devices, sensors,
	// events and rules, and read analytics.
	RoleUser Role = "user"

	// RoleAdmin additionally manages homes and users and reads the audit trail.
	RoleAdmin Role = "admin"
)

// IsValidRole returns true if r is one of the two account roles.
func IsValidRole(r Role) bool {
	return r == RoleUser || r == RoleAdmin
}

// maxEmailLength matches the users.email column width.
const maxEmailLength = 255

// IsValidEmail reports whether s is a bare RFC 5322 address of sane length.
// Display-name forms ("Bob <bob@x>") are rejected.
func IsValidEmail(s string) bool {
	if s == "" || len(s) > maxEmailLength || strings.ContainsAny(s, " <>") {
		return false
	}
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

// User represents an account. The password hash never leaves the server.
type User struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Role         Role   `json:"role"`
	HomeID       *int64 `json:"home_id"`
}

// Sentinel errors for auth operations.
var (
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrAdminExists        = errors.New("an admin account already exists")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrUnauthenticated    = errors.New("could not validate credentials")
	ErrForbidden          = errors.New("insufficient permissions")
)
