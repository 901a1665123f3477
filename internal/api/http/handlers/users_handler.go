package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/attendance-service/internal/api/dto"
	"github.com/spec-kit/attendance-service/internal/service"
)

// UsersHandler exposes account endpoints.
type UsersHandler struct {
	auth *service.AuthService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService) *UsersHandler {
	return &UsersHandler{auth: authService}
}

// Register handles POST /auth/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	req := new(dto.CredentialsRequest)
	if err := bindJSON(c, req); err != nil {
		return err
	}

	res, err := h.auth.Register(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(dto.OK("User registered.", dto.RegisterResponse{
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
		Message:   "You have been successfully registered with the username: " + res.User.Username,
	}))
}

// Login handles POST /auth/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	req := new(dto.CredentialsRequest)
	if err := bindJSON(c, req); err != nil {
		return err
	}

	res, err := h.auth.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK("Authenticated.", dto.AuthResponse{Token: res.Token, ExpiresAt: res.ExpiresAt}))
}

// VerifyUsername handles GET /auth/verify-username/:username.
func (h *UsersHandler) VerifyUsername(c *fiber.Ctx) error {
	username := c.Params("username")
	if err := h.auth.VerifyUsername(c.UserContext(), username); err != nil {
		return err
	}
	return c.JSON(dto.OK("Username actually exists.", fiber.Map{"username": username}))
}

// ResetPassword handles POST /auth/reset-password.
func (h *UsersHandler) ResetPassword(c *fiber.Ctx) error {
	req := new(dto.ResetPasswordRequest)
	if err := bindJSON(c, req); err != nil {
		return err
	}
	if err := h.auth.ResetPassword(c.UserContext(), req.Username, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(dto.OK[any]("Password reset successfully.", nil))
}
