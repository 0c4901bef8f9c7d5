package remote

import (
	"errors"
	"fmt"
)

// Sentinel errors for the two categories that carry no payload.
var (
	// ErrUnauthorized maps HTTP 401. The caller decides whether that means
	// a missing token or an expired one.
	ErrUnauthorized = errors.New("remote: unauthorized")

	// ErrDecoding is returned when a 2xx response body does not match the
	// expected schema.
	ErrDecoding = errors.New("remote: response decoding failed")
)

// ServerError is any non-2xx status other than 401. Message is taken from a
// JSON {message} body when present, else the HTTP status text.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("remote: server error %d: %s", e.StatusCode, e.Message)
}

// NetworkError wraps a transport-level failure (DNS, TCP, timeout).
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("remote: network error: %v", e.Err) }
func (e *NetworkError) Unwrap() error { return e.Err }
