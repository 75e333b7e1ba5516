package domain

import "errors"

var (
	ErrNotFound = errors.New("record not found")

	// ErrInvalidCredentials deliberately does not distinguish an unknown
	// username from a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrTokenExpired   = errors.New("token expired")
	ErrTokenRevoked   = errors.New("token revoked")
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenNotFound  = errors.New("token not found")

	ErrUsernameTaken = errors.New("username already registered")
	ErrEmailTaken    = errors.New("email already registered")
	ErrRoleInUse     = errors.New("role still assigned to users")
	ErrRoleExists    = errors.New("role already exists")
)
