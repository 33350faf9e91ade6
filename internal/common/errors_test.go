package common

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"bad content type", NewAppError(CodeBadContentType, "nope", ErrBadContentType), http.StatusBadRequest},
		{"too large", NewAppError(CodeBadLength, "too big", ErrPayloadTooLarge), http.StatusRequestEntityTooLarge},
		{"timeout", fmt.Errorf("buffer: %w", ErrTimeout), http.StatusRequestTimeout},
		{"not found", ErrNotFound, http.StatusNotFound},
		{"unavailable", ErrServiceUnavailable, http.StatusServiceUnavailable},
		{"unknown", context.Canceled, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, HTTPStatus(tc.err))
		})
	}
}

func TestPublicMessageRedactsInternal(t *testing.T) {
	err := fmt.Errorf("db exploded: %w", ErrInternal)
	assert.Equal(t, "internal server error", PublicMessage(err, true))
	assert.Equal(t, err.Error(), PublicMessage(err, false))

	appErr := NewAppError(CodeNoFileFound, "No file found in the upload data", ErrNoFileFound)
	assert.Equal(t, "No file found in the upload data", PublicMessage(appErr, true))
	assert.Equal(t, CodeNoFileFound, ErrorCode(fmt.Errorf("wrap: %w", appErr)))
}
