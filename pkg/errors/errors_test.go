package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid argument", InvalidArgumentf("bad id %d", -1), http.StatusBadRequest},
		{"invalid input alias", fmt.Errorf("decode: %w", ErrInvalidInput), http.StatusBadRequest},
		{"not found", NotFoundf("document %d", 3), http.StatusNotFound},
		{"rate limited", ErrRateLimited, http.StatusTooManyRequests},
		{"timeout", fmt.Errorf("load: %w", ErrTimeout), http.StatusServiceUnavailable},
		{"unavailable", ErrUnavailable, http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
		{"app error wins", New(ErrNotFound, http.StatusGone, "gone"), http.StatusGone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatusCode(tt.err))
		})
	}
}

func TestWrappedSentinels(t *testing.T) {
	err := InvalidArgumentf("word %q contains control characters", "a\x01")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Contains(t, err.Error(), "invalid argument: word")

	appErr := Newf(ErrInternal, http.StatusInternalServerError, "engine %s", "broken")
	assert.ErrorIs(t, appErr, ErrInternal)
	assert.Equal(t, "internal error: engine broken", appErr.Error())
}
