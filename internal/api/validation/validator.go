package validation

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/spec-kit/user-management/internal/api/dto"
	apperrors "github.com/spec-kit/user-management/pkg/util"
)

// Validator applies format-level checks to inbound DTOs before they reach
// the domain service. Uniqueness and existence rules stay in the service;
// only shape, length and pattern live here.
type Validator struct {
	validate *validator.Validate
}

// New builds a validator that reports fields by their JSON tag names.
func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// ValidateCreate checks a payload destined for user creation. Password is
// mandatory on create only.
func (v *Validator) ValidateCreate(req dto.UserRequest) error {
	if strings.TrimSpace(req.Password) == "" {
		return apperrors.NewValidationError("invalid user payload", map[string]any{"password": "is required"})
	}
	return v.check(req)
}

// ValidateUpdate checks a payload destined for user update. An empty
// password means "leave unchanged" and passes.
func (v *Validator) ValidateUpdate(req dto.UserRequest) error {
	return v.check(req)
}

func (v *Validator) check(req dto.UserRequest) error {
	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.NewValidationError("invalid user payload", nil)
	}
	details := make(map[string]any, len(verrs))
	for _, fe := range verrs {
		details[fe.Field()] = fieldMessage(fe)
	}
	return apperrors.NewValidationError("invalid user payload", details)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return "must be at least " + fe.Param() + " characters"
		}
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return "must be at most " + fe.Param() + " characters"
		}
		return "must be at most " + fe.Param()
	case "number":
		return "must contain only digits"
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "is invalid"
	}
}
