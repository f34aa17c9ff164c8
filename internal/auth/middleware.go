package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/user-management/pkg/util"
)

const adminKey = "auth_admin"

// Middleware validates bearer tokens on mutating API routes. When auth is
// disabled it passes every request through, matching the unauthenticated
// default deployment.
type Middleware struct {
	tokens  *TokenManager
	enabled bool
}

// NewMiddleware constructs middleware.
func NewMiddleware(tokens *TokenManager, enabled bool) *Middleware {
	return &Middleware{tokens: tokens, enabled: enabled}
}

// Handle enforces authentication for protected routes.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	if !m.enabled {
		return c.Next()
	}

	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	c.Locals(adminKey, claims.Username)
	return c.Next()
}

// AdminFromContext retrieves the authenticated admin username.
func AdminFromContext(c *fiber.Ctx) (string, bool) {
	username, ok := c.Locals(adminKey).(string)
	return username, ok && username != ""
}
