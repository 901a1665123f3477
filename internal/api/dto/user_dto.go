package dto

import (
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9._@-]+$`)

// CredentialsRequest is the payload for register and login.
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r CredentialsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(3, 100), validation.Match(usernamePattern)),
		validation.Field(&r.Password, validation.Required, validation.Length(1, 72)),
	)
}

// ResetPasswordRequest replaces a user's password.
type ResetPasswordRequest struct {
	Username    string `json:"username"`
	NewPassword string `json:"newPassword"`
}

func (r ResetPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.NewPassword, validation.Required, validation.Length(1, 72)),
	)
}

// RegisterResponse is returned after registration.
type RegisterResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Message   string    `json:"message"`
}

// AuthResponse standard response for login.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}
