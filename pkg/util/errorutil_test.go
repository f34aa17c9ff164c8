package util_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/user-management/pkg/util"
)

func TestToDomainError_PassesThrough(t *testing.T) {
	err := apperrors.NewDuplicateUsername("alice")

	de := apperrors.ToDomainError(err)
	assert.Equal(t, "DUPLICATE_USERNAME", de.Code)
	assert.Equal(t, http.StatusConflict, de.HTTPStatus)
	assert.Equal(t, "alice", de.Details["username"])
}

func TestToDomainError_NoRowsBecomesNotFound(t *testing.T) {
	de := apperrors.ToDomainError(pgx.ErrNoRows)
	assert.Equal(t, "NOT_FOUND", de.Code)
	assert.Equal(t, http.StatusNotFound, de.HTTPStatus)
}

func TestToDomainError_GenericBecomesInternal(t *testing.T) {
	de := apperrors.ToDomainError(errors.New("boom"))
	assert.Equal(t, "INTERNAL_ERROR", de.Code)
	assert.Equal(t, http.StatusInternalServerError, de.HTTPStatus)
}

func TestToDomainError_WrappedDomainError(t *testing.T) {
	inner := apperrors.NewUserNotFound(17)
	wrapped := errors.Join(errors.New("context"), inner)

	de := apperrors.ToDomainError(wrapped)
	require.Equal(t, "NOT_FOUND", de.Code)
	assert.Equal(t, int64(17), de.Details["id"])
}

func TestDomainError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := apperrors.NewInternalError(cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "disk full")
}
