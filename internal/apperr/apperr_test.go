package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsKind(t *testing.T) {
	errPending := Conflict("you already have a pending request")
	wrapped := fmt.Errorf("submit: %w", errPending)

	assert.True(t, errors.Is(wrapped, ErrConflict))
	assert.True(t, errors.Is(wrapped, errPending))
	assert.False(t, errors.Is(wrapped, ErrValidation))
	assert.False(t, errors.Is(wrapped, Conflict("you already have a pending request")))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{Validation("x"), http.StatusBadRequest},
		{Unauthorized("x"), http.StatusUnauthorized},
		{NotFound("x"), http.StatusNotFound},
		{Conflict("x"), http.StatusConflict},
		{InvalidState("x"), http.StatusConflict},
		{Store(errors.New("dial tcp")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestPublicMessage_HidesStoreDetail(t *testing.T) {
	err := Store(errors.New("pq: relation \"users\" does not exist"))

	assert.Equal(t, "internal server error", PublicMessage(err))
	assert.Contains(t, err.Error(), "relation")
	assert.Equal(t, "request already processed", PublicMessage(InvalidState("request already processed")))
}
