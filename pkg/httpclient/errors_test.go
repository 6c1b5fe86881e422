package httpclient

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

func makeResponse(status int, body string) *http.Response {
	return &http.Response{StatusCode: status, Body: io.NopCloser(strings.NewReader(body))}
}

func envelope(code, message string) string {
	return `{"error":{"code":"` + code + `","message":"` + message + `"}}`
}

func TestParseResponseError_Mapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		code     string
		sentinel error
	}{
		{"not found", http.StatusNotFound, "NOT_FOUND", apperrors.ErrNotFound},
		{"bad request", http.StatusBadRequest, "VALIDATION_ERROR", apperrors.ErrInvalidInput},
		{"unprocessable", http.StatusUnprocessableEntity, "INVALID_INPUT", apperrors.ErrInvalidInput},
		{"conflict", http.StatusConflict, "CONFLICT", apperrors.ErrConflict},
		{"unavailable", http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", apperrors.ErrServiceUnavail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ParseResponseError(makeResponse(tt.status, envelope(tt.code, "cart item with id x not found")), "storefront")

			var appErr *apperrors.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tt.status, appErr.Status)
			assert.Equal(t, tt.code, appErr.Code)
			assert.Equal(t, "cart item with id x not found", appErr.Message)
			assert.ErrorIs(t, err, tt.sentinel)
		})
	}
}

func TestParseResponseError_Unstructured(t *testing.T) {
	err := ParseResponseError(makeResponse(http.StatusBadGateway, "upstream down"), "storefront")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storefront returned status 502: upstream down")
}

func TestParseResponseError_OtherServerError(t *testing.T) {
	err := ParseResponseError(makeResponse(http.StatusInternalServerError, envelope("INTERNAL_ERROR", "boom")), "storefront")

	var appErr *apperrors.AppError
	assert.False(t, errors.As(err, &appErr))
	assert.Contains(t, err.Error(), "INTERNAL_ERROR")
}

func TestFromServerError(t *testing.T) {
	se := &ServerError{StatusCode: http.StatusServiceUnavailable, Body: []byte(envelope("SERVICE_UNAVAILABLE", "draining"))}
	assert.ErrorIs(t, FromServerError(se, "storefront"), apperrors.ErrServiceUnavail)

	other := errors.New("dial tcp: refused")
	assert.Same(t, other, FromServerError(other, "storefront"))
}

func TestIsClientError(t *testing.T) {
	assert.True(t, IsClientError(http.StatusNotFound))
	assert.False(t, IsClientError(http.StatusOK))
	assert.False(t, IsClientError(http.StatusBadGateway))
}
