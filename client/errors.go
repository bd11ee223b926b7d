package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrMissingToken is returned before any request is sent without credentials.
var ErrMissingToken = errors.New("client: token is required")

// ErrLoginFailed is returned when the backend answers a login without a token.
var ErrLoginFailed = errors.New("client: login failed")

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	// Detail is the human readable reason taken from the response body.
	Detail string
	Body   []byte
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("client: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("client: HTTP %d: %s", e.StatusCode, e.Detail)
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool { return hasStatus(err, http.StatusNotFound) }

// IsUnauthorized reports whether err is a 401 or 403 from the backend.
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized) || hasStatus(err, http.StatusForbidden)
}

func hasStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

// newAPIError picks the message out of detail, message or error, in that order.
func newAPIError(status int, body []byte) *APIError {
	e := &APIError{StatusCode: status, Body: body}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		e.Detail = strings.TrimSpace(string(body))
		return e
	}
	for _, key := range []string{"detail", "message", "error"} {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if s != "" {
				e.Detail = s
				return e
			}
			continue
		}
		e.Detail = string(raw)
		return e
	}
	return e
}
