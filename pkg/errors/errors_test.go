package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/gradebook-api/internal/gradebook"
)

func TestFromEngine(t *testing.T) {
	cases := []struct {
		err    error
		code   string
		status int
	}{
		{gradebook.ErrNoData, ErrNoData.Code, http.StatusUnprocessableEntity},
		{fmt.Errorf("course math: %w", gradebook.ErrInvalidTarget), ErrInvalidTarget.Code, http.StatusUnprocessableEntity},
		{gradebook.ErrInvalidWeight, ErrInvalidWeight.Code, http.StatusBadRequest},
		{gradebook.ErrInvalidScale, ErrInvalidScale.Code, http.StatusUnprocessableEntity},
		{errors.New("boom"), ErrInternal.Code, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		mapped := FromEngine(tc.err)
		assert.Equal(t, tc.code, mapped.Code)
		assert.Equal(t, tc.status, mapped.Status)
		assert.ErrorIs(t, mapped, tc.err)
	}
	assert.Nil(t, FromEngine(nil))
}

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", Clone(ErrNotFound, "course not found"))
	appErr := FromError(wrapped)
	assert.Equal(t, ErrNotFound.Code, appErr.Code)
	assert.Equal(t, "course not found", appErr.Message)
	assert.Equal(t, "internal server error", FromError(errors.New("x")).Message)
}
