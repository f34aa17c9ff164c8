package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/user-management/internal/api/dto"
	"github.com/spec-kit/user-management/internal/api/validation"
	"github.com/spec-kit/user-management/internal/domain"
	"github.com/spec-kit/user-management/internal/service"
	apperrors "github.com/spec-kit/user-management/pkg/util"
)

// UsersHandler exposes the REST CRUD surface for users.
type UsersHandler struct {
	users    *service.UserService
	validate *validation.Validator
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService, validate *validation.Validator) *UsersHandler {
	return &UsersHandler{users: userService, validate: validate}
}

// List handles GET /api/users with an optional status filter.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	var (
		users []dto.UserResponse
		err   error
	)

	if raw := c.Query("status"); raw != "" {
		status, parseErr := domain.ParseUserStatus(raw)
		if parseErr != nil {
			return apperrors.NewValidationError(parseErr.Error(), map[string]any{"status": raw})
		}
		users, err = h.users.GetUsersByStatus(c.UserContext(), status)
	} else {
		users, err = h.users.GetAllUsers(c.UserContext())
	}
	if err != nil {
		return err
	}

	total, err := h.users.GetUserCount(c.UserContext())
	if err != nil {
		return err
	}

	return c.JSON(dto.UserListResponse{
		Users:      users,
		Count:      len(users),
		TotalCount: total,
	})
}

// Get handles GET /api/users/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	id, err := parseUserID(c)
	if err != nil {
		return err
	}

	user, err := h.users.GetUserByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

// Create handles POST /api/users.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	var req dto.UserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.validate.ValidateCreate(req); err != nil {
		return err
	}

	user, err := h.users.CreateUser(c.UserContext(), req)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "User created successfully",
		"user":    user,
	})
}

// Update handles PUT /api/users/:id.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	id, err := parseUserID(c)
	if err != nil {
		return err
	}

	var req dto.UserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.validate.ValidateUpdate(req); err != nil {
		return err
	}

	user, err := h.users.UpdateUser(c.UserContext(), id, req)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "User updated successfully",
		"user":    user,
	})
}

// Delete handles DELETE /api/users/:id.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	id, err := parseUserID(c)
	if err != nil {
		return err
	}

	if err := h.users.DeleteUser(c.UserContext(), id); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "User deleted successfully",
		"id":      strconv.FormatInt(id, 10),
	})
}

// CheckUsername handles GET /api/users/check-username?username=...
func (h *UsersHandler) CheckUsername(c *fiber.Ctx) error {
	username := c.Query("username")
	if username == "" {
		return apperrors.NewValidationError("username query parameter required", nil)
	}

	available, err := h.users.IsUsernameAvailable(c.UserContext(), username)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"available": available})
}

// CheckEmail handles GET /api/users/check-email?email=...
func (h *UsersHandler) CheckEmail(c *fiber.Ctx) error {
	email := c.Query("email")
	if email == "" {
		return apperrors.NewValidationError("email query parameter required", nil)
	}

	available, err := h.users.IsEmailAvailable(c.UserContext(), email)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"available": available})
}

// Count handles GET /api/users/count.
func (h *UsersHandler) Count(c *fiber.Ctx) error {
	count, err := h.users.GetUserCount(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"count": count})
}

func parseUserID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, apperrors.NewValidationError("invalid user id", map[string]any{"id": c.Params("id")})
	}
	return id, nil
}
