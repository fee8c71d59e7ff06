package errors_test

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/vytor/profilehub/internal/errors"
)

func TestHasCode_FollowsWrapping(t *testing.T) {
	err := fmt.Errorf("create: %w", apperrors.NewDuplicateProfileError("alice"))

	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeDuplicate))
	assert.False(t, apperrors.HasCode(err, apperrors.ErrCodeNotFound))
	assert.False(t, apperrors.HasCode(nil, apperrors.ErrCodeDuplicate))
}

func TestCodeOf_PlainErrorIsInternal(t *testing.T) {
	assert.Equal(t, apperrors.ErrCodeInternal, apperrors.CodeOf(stderrors.New("boom")))
	assert.Equal(t, "", apperrors.CodeOf(nil))
}

func TestPersistenceError_Unwraps(t *testing.T) {
	cause := stderrors.New("disk full")
	err := apperrors.NewPersistenceError("save profiles", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.Contains(t, err.Error(), "disk full")
}

func TestStatuses(t *testing.T) {
	cases := map[*apperrors.AppError]int{
		apperrors.NewInvalidInputError("username", "cannot be empty"): http.StatusBadRequest,
		apperrors.NewInvalidAgeError(151):                             http.StatusBadRequest,
		apperrors.NewDuplicateProfileError("bob"):                     http.StatusConflict,
		apperrors.NewNotFoundError("profile", "bob"):                  http.StatusNotFound,
		apperrors.NewAgeRestrictionError(25, 10, 30):                  http.StatusUnprocessableEntity,
		apperrors.NewTransientError("load", nil):                      http.StatusServiceUnavailable,
	}
	for err, status := range cases {
		assert.Equal(t, status, err.Status, err.Code)
	}
}

func TestAsAppError(t *testing.T) {
	appErr, ok := apperrors.AsAppError(fmt.Errorf("wrap: %w", apperrors.NewInvalidAgeError(-1)))
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeInvalidAge, appErr.Code)
}
