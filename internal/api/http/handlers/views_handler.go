package handlers

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/user-management/internal/api/dto"
	"github.com/spec-kit/user-management/internal/api/validation"
	"github.com/spec-kit/user-management/internal/domain"
	"github.com/spec-kit/user-management/internal/service"
	apperrors "github.com/spec-kit/user-management/pkg/util"
)

// ViewsHandler serves the server-rendered management pages. It talks to
// the same domain service as the REST surface; only the response shape
// differs (HTML instead of JSON envelopes).
type ViewsHandler struct {
	users    *service.UserService
	validate *validation.Validator
}

// NewViewsHandler constructs handler.
func NewViewsHandler(userService *service.UserService, validate *validation.Validator) *ViewsHandler {
	return &ViewsHandler{users: userService, validate: validate}
}

// ListPage handles GET /users.
func (h *ViewsHandler) ListPage(c *fiber.Ctx) error {
	var (
		users []dto.UserResponse
		err   error
	)

	filterStatus := c.Query("status")
	if filterStatus != "" {
		status, parseErr := domain.ParseUserStatus(filterStatus)
		if parseErr != nil {
			return apperrors.NewValidationError(parseErr.Error(), map[string]any{"status": filterStatus})
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

	return c.Render("users", fiber.Map{
		"Users":        users,
		"TotalCount":   total,
		"Statuses":     domain.UserStatuses(),
		"FilterStatus": filterStatus,
		"Message":      c.Query("message"),
	})
}

// DetailPage handles GET /users/:id.
func (h *ViewsHandler) DetailPage(c *fiber.Ctx) error {
	id, err := parseUserID(c)
	if err != nil {
		return err
	}

	user, err := h.users.GetUserByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.Render("user-detail", fiber.Map{"User": user})
}

// NewPage handles GET /users/new.
func (h *ViewsHandler) NewPage(c *fiber.Ctx) error {
	return h.renderForm(c, "create", nil, dto.UserRequest{}, "")
}

// CreateForm handles POST /users.
func (h *ViewsHandler) CreateForm(c *fiber.Ctx) error {
	req, err := userRequestFromForm(c)
	if err != nil {
		return h.renderForm(c, "create", nil, req, err.Error())
	}
	if err := h.validate.ValidateCreate(req); err != nil {
		return h.renderForm(c, "create", nil, req, err.Error())
	}

	user, err := h.users.CreateUser(c.UserContext(), req)
	if err != nil {
		return h.renderForm(c, "create", nil, req, err.Error())
	}

	return redirectWithMessage(c, "User created successfully: "+user.Username)
}

// EditPage handles GET /users/:id/edit.
func (h *ViewsHandler) EditPage(c *fiber.Ctx) error {
	id, err := parseUserID(c)
	if err != nil {
		return err
	}

	user, err := h.users.GetUserByID(c.UserContext(), id)
	if err != nil {
		return err
	}

	req := dto.UserRequest{
		Username:    user.Username,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		PhoneNumber: user.PhoneNumber,
		Status:      &user.Status,
		Role:        &user.Role,
	}
	return h.renderForm(c, "edit", &user.ID, req, "")
}

// UpdateForm handles POST /users/:id.
func (h *ViewsHandler) UpdateForm(c *fiber.Ctx) error {
	id, err := parseUserID(c)
	if err != nil {
		return err
	}

	req, err := userRequestFromForm(c)
	if err != nil {
		return h.renderForm(c, "edit", &id, req, err.Error())
	}
	if err := h.validate.ValidateUpdate(req); err != nil {
		return h.renderForm(c, "edit", &id, req, err.Error())
	}

	user, err := h.users.UpdateUser(c.UserContext(), id, req)
	if err != nil {
		return h.renderForm(c, "edit", &id, req, err.Error())
	}

	return redirectWithMessage(c, "User updated successfully: "+user.Username)
}

// DeleteForm handles POST /users/:id/delete.
func (h *ViewsHandler) DeleteForm(c *fiber.Ctx) error {
	id, err := parseUserID(c)
	if err != nil {
		return err
	}

	if err := h.users.DeleteUser(c.UserContext(), id); err != nil {
		return err
	}
	return redirectWithMessage(c, "User deleted successfully")
}

func (h *ViewsHandler) renderForm(c *fiber.Ctx, action string, id *int64, req dto.UserRequest, errorMessage string) error {
	return c.Render("user-form", fiber.Map{
		"FormAction":   action,
		"UserID":       id,
		"Form":         req,
		"Statuses":     domain.UserStatuses(),
		"Roles":        domain.UserRoles(),
		"ErrorMessage": errorMessage,
	})
}

func redirectWithMessage(c *fiber.Ctx, message string) error {
	return c.Redirect("/users?message=" + url.QueryEscape(message))
}

// userRequestFromForm maps form fields onto the wire DTO. Empty optional
// fields become nil so the patch semantics match the JSON surface, and
// enum values are parsed up front so bad input never reaches the service.
func userRequestFromForm(c *fiber.Ctx) (dto.UserRequest, error) {
	req := dto.UserRequest{
		Username:  c.FormValue("username"),
		Email:     c.FormValue("email"),
		Password:  c.FormValue("password"),
		FirstName: c.FormValue("first_name"),
		LastName:  c.FormValue("last_name"),
	}

	if phone := c.FormValue("phone_number"); phone != "" {
		req.PhoneNumber = &phone
	}
	if raw := c.FormValue("status"); raw != "" {
		status, err := domain.ParseUserStatus(raw)
		if err != nil {
			return req, apperrors.NewValidationError(err.Error(), map[string]any{"status": raw})
		}
		req.Status = &status
	}
	if raw := c.FormValue("role"); raw != "" {
		role, err := domain.ParseUserRole(raw)
		if err != nil {
			return req, apperrors.NewValidationError(err.Error(), map[string]any{"role": raw})
		}
		req.Role = &role
	}
	return req, nil
}
