package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/smnsjas/go-attackmate/rest"
	"github.com/smnsjas/go-attackmate/rest/transport"
)

// Failure taxonomy. Errors returned by the *Context methods match exactly
// one of these with errors.Is; the underlying cause stays reachable with
// errors.As (e.g. *rest.APIError for status and detail).
var (
	// ErrAuthentication means the login was rejected with 401 or 403.
	ErrAuthentication = errors.New("authentication failed")

	// ErrTokenExpired means an authenticated request was rejected with 401.
	ErrTokenExpired = errors.New("token expired or invalid")

	// ErrNetwork covers DNS, connection and TLS failures.
	ErrNetwork = errors.New("network failure")

	// ErrTimeout means the request exceeded the configured timeout.
	ErrTimeout = errors.New("request timed out")

	// ErrServer means the server answered with a non-2xx status other than 401.
	ErrServer = errors.New("server error")

	// ErrMalformedResponse means a 2xx body could not be decoded.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrNoCredentials means no token was cached and no credentials were configured.
	ErrNoCredentials = errors.New("credentials not provided")

	// ErrInvalidCommand means the command could not be serialized.
	ErrInvalidCommand = errors.New("invalid command")
)

// classifyError maps a rest/transport error onto the taxonomy.
// login selects how rejected and non-2xx answers are reported.
func classifyError(err error, login bool) error {
	if err == nil {
		return nil
	}

	var kind error
	switch {
	case errors.Is(err, transport.ErrTimeout):
		kind = ErrTimeout
	case errors.Is(err, transport.ErrConnection):
		kind = ErrNetwork
	case errors.Is(err, rest.ErrMalformedResponse), errors.Is(err, rest.ErrMissingToken):
		kind = ErrMalformedResponse
	case login && isRejected(err):
		kind = ErrAuthentication
	case errors.Is(err, transport.ErrUnauthorized):
		kind = ErrTokenExpired
	case rest.IsAPIError(err):
		kind = ErrServer
	default:
		kind = ErrNetwork
	}

	return fmt.Errorf("%w: %w", kind, err)
}

// isRejected reports whether the server refused the credentials.
func isRejected(err error) bool {
	var apiErr *rest.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
}
