package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/attendance-service/internal/domain"
)

const principalKey = "auth_principal"

// UnauthorizedMessage is returned by the unauthorized responder.
const UnauthorizedMessage = "Unauthorized.. Please authenticate.."

// DefaultPublicPaths are reachable without a bearer token. Entries ending in
// "/" match as prefixes.
var DefaultPublicPaths = []string{
	"/auth/login",
	"/auth/register",
	"/health/",
	"/metrics",
}

// Principal represents the authenticated caller.
type Principal struct {
	Subject string
	Roles   []string
}

// HasRole reports whether the principal carries role.
func (p *Principal) HasRole(role string) bool {
	if p == nil {
		return false
	}
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// GateConfig controls the gate behavior.
type GateConfig struct {
	// PublicPaths extends DefaultPublicPaths.
	PublicPaths []string
	// StrictTokens rejects a present but invalid token with 401 instead of
	// continuing anonymously.
	StrictTokens bool
}

// Gate validates bearer tokens and establishes the request principal.
type Gate struct {
	tokens *TokenManager
	logger *zap.Logger
	public []string
	strict bool
}

// NewGate constructs the middleware pair.
func NewGate(tokens *TokenManager, logger *zap.Logger, cfg GateConfig) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	public := append([]string{}, DefaultPublicPaths...)
	public = append(public, cfg.PublicPaths...)
	return &Gate{tokens: tokens, logger: logger, public: public, strict: cfg.StrictTokens}
}

// IsPublic reports whether path is on the allow-list. Matching follows
// fiber's default routing: case-insensitive, trailing slash ignored.
func (g *Gate) IsPublic(path string) bool {
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	for _, p := range g.public {
		if strings.HasSuffix(p, "/") {
			if len(path) >= len(p) && strings.EqualFold(path[:len(p)], p) {
				return true
			}
			continue
		}
		if strings.EqualFold(path, strings.TrimRight(p, "/")) {
			return true
		}
	}
	return false
}

// Authenticate extracts and verifies the bearer token. Requests without a
// header, or with an invalid token in non-strict mode, continue anonymously.
func (g *Gate) Authenticate(c *fiber.Ctx) error {
	if g.IsPublic(c.Path()) {
		return c.Next()
	}

	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return c.Next()
	}

	identity, err := g.verifyHeader(authHeader)
	if err != nil {
		g.logger.Warn("bearer token rejected",
			zap.String("path", c.Path()),
			zap.Error(err))
		if g.strict {
			return unauthorized(c, "invalid token")
		}
		return c.Next()
	}

	principal := &Principal{Subject: identity.Subject, Roles: identity.Roles}
	c.Locals(principalKey, principal)
	c.SetUserContext(WithPrincipal(c.UserContext(), principal))
	return c.Next()
}

// Authorize is the unauthorized responder: protected paths without an
// established principal get a 401.
func (g *Gate) Authorize(c *fiber.Ctx) error {
	if g.IsPublic(c.Path()) {
		return c.Next()
	}
	if _, ok := PrincipalFromContext(c); !ok {
		return unauthorized(c, UnauthorizedMessage)
	}
	return c.Next()
}

func (g *Gate) verifyHeader(header string) (*domain.Identity, error) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, errors.New("invalid authorization header")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return nil, errors.New("empty bearer token")
	}
	return g.tokens.Verify(token)
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": message})
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}

type principalCtxKey struct{}

// WithPrincipal stores the principal on a context.Context for code below the
// transport layer.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey{}, p)
}

// PrincipalFrom reads the principal stored by WithPrincipal.
func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalCtxKey{}).(*Principal)
	return p, ok && p != nil
}
