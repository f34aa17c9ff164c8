package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/user-management/internal/api/dto"
	"github.com/spec-kit/user-management/internal/api/validation"
	apperrors "github.com/spec-kit/user-management/pkg/util"
)

func validPayload() dto.UserRequest {
	return dto.UserRequest{
		Username:  "alice",
		Email:     "alice@x.com",
		Password:  "secret1",
		FirstName: "Alice",
		LastName:  "Smith",
	}
}

func details(t *testing.T, err error) map[string]any {
	t.Helper()
	var de *apperrors.DomainError
	require.ErrorAs(t, err, &de)
	require.Equal(t, "VALIDATION_FAILED", de.Code)
	return de.Details
}

func TestValidateCreate_Valid(t *testing.T) {
	v := validation.New()
	assert.NoError(t, v.ValidateCreate(validPayload()))
}

func TestValidateCreate_PasswordRequired(t *testing.T) {
	v := validation.New()
	req := validPayload()
	req.Password = "  "

	d := details(t, v.ValidateCreate(req))
	assert.Contains(t, d, "password")
}

func TestValidateUpdate_EmptyPasswordAllowed(t *testing.T) {
	v := validation.New()
	req := validPayload()
	req.Password = ""

	assert.NoError(t, v.ValidateUpdate(req))
}

func TestValidate_ShortPasswordRejected(t *testing.T) {
	v := validation.New()
	req := validPayload()
	req.Password = "12345"

	d := details(t, v.ValidateUpdate(req))
	assert.Contains(t, d, "password")
}

func TestValidate_FieldRules(t *testing.T) {
	v := validation.New()

	req := validPayload()
	req.Username = "ab"
	assert.Contains(t, details(t, v.ValidateCreate(req)), "username")

	req = validPayload()
	req.Email = "not-an-email"
	assert.Contains(t, details(t, v.ValidateCreate(req)), "email")

	req = validPayload()
	req.FirstName = ""
	assert.Contains(t, details(t, v.ValidateCreate(req)), "first_name")

	req = validPayload()
	phone := "12ab"
	req.PhoneNumber = &phone
	assert.Contains(t, details(t, v.ValidateCreate(req)), "phone_number")

	req = validPayload()
	shortPhone := "123"
	req.PhoneNumber = &shortPhone
	assert.Contains(t, details(t, v.ValidateCreate(req)), "phone_number")
}

func TestValidate_FieldsNamedByJSONTag(t *testing.T) {
	v := validation.New()
	req := validPayload()
	req.LastName = ""

	d := details(t, v.ValidateCreate(req))
	assert.Contains(t, d, "last_name")
	assert.NotContains(t, d, "LastName")
}
