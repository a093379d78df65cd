package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid shipment", NewInvalidShipmentInputError("invoice"), http.StatusBadRequest},
		{"invalid request", NewInvalidRequestError("body"), http.StatusBadRequest},
		{"not found", NewNotFoundError("carrier", "x"), http.StatusNotFound},
		{"duplicate", NewDuplicateError("user", "bob"), http.StatusConflict},
		{"auth", NewAuthenticationError("bad password"), http.StatusUnauthorized},
		{"persistence", NewPersistenceError("append history", errors.New("disk full")), http.StatusServiceUnavailable},
		{"wrapped", fmt.Errorf("simulate: %w", NewNotFoundError("branch", "1")), http.StatusNotFound},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestPersistenceErrorIsRetryableAndUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("save: %w", NewPersistenceError("append history", cause))

	assert.True(t, IsRetryable(err))
	assert.True(t, Is(err, ErrCodePersistenceFailed))
	assert.ErrorIs(t, err, cause)
	assert.False(t, IsRetryable(NewInvalidShipmentInputError("x")))
}
