package domain

import "time"

// Role names carried in identity tokens.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// Identity is the verified content of a bearer token.
type Identity struct {
	Subject   string
	Roles     []string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// HasRole reports whether the identity carries role.
func (i Identity) HasRole(role string) bool {
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}
