package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/smnsjas/go-attackmate/rest/transport"
)

var (
	// ErrMalformedResponse is returned when a 2xx body cannot be decoded.
	ErrMalformedResponse = errors.New("rest: malformed response")

	// ErrMissingToken is returned when a login succeeds without issuing a token.
	ErrMissingToken = errors.New("rest: login response contains no token")
)

// APIError represents a non-2xx answer from the API server.
type APIError struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Detail is the server's "detail" field, or the raw response text.
	Detail string

	err *transport.StatusError
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("api error: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("api error: HTTP %d: %s", e.StatusCode, e.Detail)
}

// Unwrap exposes the transport error so errors.Is(err, transport.ErrUnauthorized) works.
func (e *APIError) Unwrap() error {
	if e.err == nil {
		return nil
	}
	return e.err
}

// IsUnauthorized returns true if the server rejected the credentials or token.
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// IsAPIError returns true if the error is an APIError.
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

// ParseDetail extracts the error detail from a response body. FastAPI-style
// {"detail": ...} bodies yield the detail value; anything else yields the
// trimmed body text.
func ParseDetail(body []byte) string {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err == nil {
		if raw, ok := payload["detail"]; ok {
			var s string
			if err := json.Unmarshal(raw, &s); err == nil {
				return s
			}
			return string(raw)
		}
	}
	return strings.TrimSpace(string(body))
}

// toAPIError converts a transport status error into an APIError and passes
// every other error through unchanged.
func toAPIError(err error) error {
	var statusErr *transport.StatusError
	if !errors.As(err, &statusErr) {
		return err
	}
	return &APIError{
		StatusCode: statusErr.StatusCode,
		Detail:     ParseDetail(statusErr.Body),
		err:        statusErr,
	}
}
