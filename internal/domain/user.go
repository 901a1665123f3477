package domain

import "time"

// User is an API account able to obtain bearer tokens.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Roles        []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
