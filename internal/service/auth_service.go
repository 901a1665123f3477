package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/attendance-service/internal/auth"
	"github.com/spec-kit/attendance-service/internal/config"
	"github.com/spec-kit/attendance-service/internal/domain"
	"github.com/spec-kit/attendance-service/internal/repository"
	apperrors "github.com/spec-kit/attendance-service/pkg/util"
)

// CodeUsernameTaken is returned when registering an existing username.
const CodeUsernameTaken = "USERNAME_TAKEN"

// AuthResult is the outcome of a successful register or login.
type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
	admins     map[string]struct{}
	logger     *zap.Logger
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	UserRepo     repository.UserRepository
	TokenManager *auth.TokenManager
	Logger       *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	admins := make(map[string]struct{}, len(cfg.AdminUsernames))
	for _, name := range cfg.AdminUsernames {
		admins[name] = struct{}{}
	}
	tokenMgr := deps.TokenManager
	if tokenMgr == nil {
		tokenMgr = auth.NewTokenManager(cfg.JWTSecret)
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		tokenMgr:   tokenMgr,
		bcryptCost: cfg.BcryptCost,
		admins:     admins,
		logger:     logger,
	}
}

// Register creates an account and signs a token for it.
func (s *AuthService) Register(ctx context.Context, username, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, usernameTaken(username)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	roles := []string{domain.RoleUser}
	if _, ok := s.admins[username]; ok {
		roles = append(roles, domain.RoleAdmin)
	}
	user := &domain.User{
		Username:     username,
		PasswordHash: hash,
		Roles:        roles,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, usernameTaken(username)
		}
		return nil, err
	}
	s.logger.Info("user registered", zap.String("username", username), zap.Strings("roles", roles))

	return s.issue(user)
}

// Login authenticates a user by password.
func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid username or password")
		}
		return nil, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid username or password")
	}
	return s.issue(user)
}

// VerifyUsername reports NotFound when no account carries username.
func (s *AuthService) VerifyUsername(ctx context.Context, username string) error {
	if _, err := s.users.GetByUsername(ctx, username); err != nil {
		return userNotFound(username, err)
	}
	return nil
}

// ResetPassword replaces the password of an existing account. Callers may
// reset their own password; ADMIN may reset anyone's.
func (s *AuthService) ResetPassword(ctx context.Context, username, newPassword string) error {
	username = strings.TrimSpace(username)
	principal, ok := auth.PrincipalFrom(ctx)
	if !ok || (principal.Subject != username && !principal.HasRole(domain.RoleAdmin)) {
		return apperrors.NewForbidden("cannot reset the password of another account")
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return userNotFound(username, err)
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	s.logger.Info("password reset",
		zap.String("username", user.Username),
		zap.String("by", principal.Subject))
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) issue(user *domain.User) (*AuthResult, error) {
	token, exp, err := s.tokenMgr.Issue(user.Username, user.Roles)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: exp}, nil
}

func usernameTaken(username string) error {
	return apperrors.NewConflict(CodeUsernameTaken, "username already exists", map[string]any{"username": username})
}

func userNotFound(username string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("username", map[string]any{"username": username})
	}
	return err
}
