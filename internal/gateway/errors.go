package gateway

import (
	"errors"
	"fmt"
)

// ErrSessionExpired is returned when the backend rejects the bearer token.
// By the time a caller sees it the session has already been torn down;
// the only valid reaction is a redirect to the login entry point.
var ErrSessionExpired = errors.New("session expired")

// NetworkError wraps a transport-level failure where no response was
// received.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ServerError carries a non-2xx backend response, with the parsed detail
// payload when one was present and a synthesized message otherwise.
type ServerError struct {
	Status int
	Detail string
}

func (e *ServerError) Error() string {
	return e.Detail
}
