package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnavailable      = errors.New("server unavailable")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrUsernameTaken    = errors.New("username already taken")
	ErrBadRequest       = errors.New("bad request")
	ErrUnexpectedStatus = errors.New("unexpected status")
	ErrInvalidFormat    = errors.New("invalid response format")
)

// StatusError is returned for every non-2xx response. It unwraps to the
// sentinel matching the status so callers can use errors.Is.
type StatusError struct {
	Code int
	Body []byte
	kind error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %d %s", e.kind, e.Code, http.StatusText(e.Code))
}

func (e *StatusError) Unwrap() error {
	return e.kind
}

func newStatusError(code int, body []byte) *StatusError {
	kind := ErrUnexpectedStatus
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		kind = ErrUnauthorized
	case code == http.StatusBadRequest:
		kind = ErrBadRequest
	}
	return &StatusError{Code: code, Body: body, kind: kind}
}
