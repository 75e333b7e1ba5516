package domain

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type User struct {
	ID           int64
	Username     string
	Email        string
	FullName     string
	PasswordHash string
	Active       bool
	Roles        []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasRole reports whether the user carries the named role.
func (u User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r == name {
			return true
		}
	}
	return false
}

type Role struct {
	ID          int64
	Name        string
	Description string
}

// AuthToken is a persisted JWT. Tokens are stored so that logout and user
// deactivation can revoke them before their natural expiry.
type AuthToken struct {
	ID        int64
	UserID    int64
	JTI       string
	Token     string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Revoked   bool
}
