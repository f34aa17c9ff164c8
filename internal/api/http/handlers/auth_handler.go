package handlers

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/user-management/internal/api/dto"
	"github.com/spec-kit/user-management/internal/auth"
	"github.com/spec-kit/user-management/internal/config"
	apperrors "github.com/spec-kit/user-management/pkg/util"
)

// AuthHandler issues admin API tokens. Only relevant when AUTH_ENABLED is
// set; the route is still registered so a misconfigured client gets a
// clear error instead of a 404.
type AuthHandler struct {
	tokens *auth.TokenManager
	cfg    config.AuthConfig
}

// NewAuthHandler constructs handler.
func NewAuthHandler(tokens *auth.TokenManager, cfg config.AuthConfig) *AuthHandler {
	return &AuthHandler{tokens: tokens, cfg: cfg}
}

// Token handles POST /api/auth/token.
func (h *AuthHandler) Token(c *fiber.Ctx) error {
	var req dto.TokenRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Username == "" || req.Password == "" {
		return apperrors.NewValidationError("username and password required", nil)
	}

	if !h.cfg.Enabled || h.cfg.AdminPassword == "" {
		return apperrors.NewUnauthorized("token auth not enabled")
	}
	if req.Username != h.cfg.AdminUsername || !h.credentialsMatch(req.Password) {
		return apperrors.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := h.tokens.GenerateToken(req.Username)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(dto.TokenResponse{Token: token, ExpiresAt: expiresAt})
}

// credentialsMatch accepts either a bcrypt hash or a plaintext value in
// AUTH_ADMIN_PASSWORD.
func (h *AuthHandler) credentialsMatch(password string) bool {
	if strings.HasPrefix(h.cfg.AdminPassword, "$2") {
		return auth.ComparePassword(h.cfg.AdminPassword, password) == nil
	}
	return subtle.ConstantTimeCompare([]byte(h.cfg.AdminPassword), []byte(password)) == 1
}
