package errors_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/carelink/dispatch-api/pkg/errors"
)

func TestStatusCodes(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, apperrors.Validation("bad", nil).StatusCode())
	assert.Equal(t, http.StatusNotFound, apperrors.NotFound("request", nil).StatusCode())
	assert.Equal(t, http.StatusConflict, apperrors.Conflict("taken", nil).StatusCode())
	assert.Equal(t, http.StatusForbidden, apperrors.Unauthorized("nope", nil).StatusCode())
	assert.Equal(t, http.StatusInternalServerError, apperrors.Internal(errors.New("db down")).StatusCode())
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("row not found")
	err := apperrors.NotFound("assignment", cause)

	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "assignment not found")
	assert.Contains(t, err.Error(), "row not found")
}

func TestIsKind(t *testing.T) {
	err := fmt.Errorf("accept failed: %w", apperrors.Conflict("request is no longer available", nil))

	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
	assert.False(t, apperrors.IsKind(err, apperrors.KindNotFound))
	assert.False(t, apperrors.IsKind(errors.New("plain"), apperrors.KindConflict))
}
