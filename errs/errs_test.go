package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestApiErrUnwrapsToSentinel(t *testing.T) {
	err := fmt.Errorf("submit: %w", NewSubmitInFlightError())

	assert.True(t, IsSubmitInFlight(err))
	assert.False(t, IsConfirmationRequired(err))

	var apiErr *ApiErr
	assert.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
}

func TestErrorIncludesDetails(t *testing.T) {
	err := NewRelayMisconfiguredError("endpoint missing")
	assert.Equal(t, "contact relay not configured: endpoint missing", err.Error())
}

func TestGetFullErrorFollowsCauses(t *testing.T) {
	inner := NewMissingRequiredFieldError("title")
	outer := NewInternalErrorWithCause("save failed", inner)

	assert.Equal(t, "save failed -> missing required field: Missing required field: title", outer.GetFullError())
}

func TestNewDatabaseErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		cause  error
		status int
	}{
		{"not found", gorm.ErrRecordNotFound, http.StatusNotFound},
		{"duplicate", errors.New("ERROR: duplicate key value violates unique constraint"), http.StatusConflict},
		{"sqlite unique", errors.New("UNIQUE constraint failed: projects.id"), http.StatusConflict},
		{"connection", errors.New("failed to connect: connection refused"), http.StatusServiceUnavailable},
		{"generic", errors.New("syntax error"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewDatabaseError("update", "project", tt.cause)
			assert.Equal(t, tt.status, err.StatusCode)
			assert.ErrorIs(t, err.Cause, tt.cause)
		})
	}

	assert.True(t, IsNotFound(NewDatabaseError("find", "project", gorm.ErrRecordNotFound)))
}
