package httpclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// errorEnvelope mirrors the error half of httputil.Response.
type errorEnvelope struct {
	Error *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

// ParseResponseError consumes and closes the body of a non-2xx response and
// turns it into an AppError carrying the same status and code when the body
// is the standard error envelope.
func ParseResponseError(resp *http.Response, serviceName string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", serviceName, resp.StatusCode, err)
	}
	return decodeError(resp.StatusCode, body, serviceName)
}

// FromServerError translates a breaker ServerError into an AppError where possible.
func FromServerError(err error, serviceName string) error {
	var se *ServerError
	if !errors.As(err, &se) {
		return err
	}
	return decodeError(se.StatusCode, se.Body, serviceName)
}

func decodeError(status int, body []byte, serviceName string) error {
	var env errorEnvelope
	if json.Unmarshal(body, &env) == nil && env.Error != nil {
		return mapDownstreamError(status, env.Error.Code, env.Error.Message, serviceName)
	}
	return fmt.Errorf("%s returned status %d: %s", serviceName, status, string(body))
}

// mapDownstreamError keeps the remote message and code and attaches the
// matching sentinel so callers can use errors.Is.
func mapDownstreamError(status int, code, message, serviceName string) error {
	appErr := &apperrors.AppError{Code: code, Message: message, Status: status}

	switch {
	case status == http.StatusNotFound:
		appErr.Err = apperrors.ErrNotFound
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		appErr.Err = apperrors.ErrInvalidInput
	case status == http.StatusConflict:
		appErr.Err = apperrors.ErrConflict
	case status == http.StatusServiceUnavailable:
		appErr.Err = apperrors.ErrServiceUnavail
	case status >= 500:
		return fmt.Errorf("%s server error (%d/%s): %s", serviceName, status, code, message)
	}

	if appErr.Code == "" {
		appErr.Code = http.StatusText(status)
	}
	return appErr
}

// IsClientError reports whether status is a 4xx code.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
