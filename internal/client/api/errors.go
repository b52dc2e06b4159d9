package api

import (
	"errors"
	"net/http"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrUnavailable  = errors.New("server unavailable")
	ErrRejected     = errors.New("request rejected")
)

const (
	msgLoginFailed         = "Login failed"
	msgSecuritySetupFailed = "Security setup failed"
)

// AuthError is returned by Login and SecuritySetup. Error() yields the
// message meant for the user.
type AuthError struct {
	// Op is the API operation that failed, e.g. "login".
	Op string
	// Status is the HTTP status code, 0 when no response was received.
	Status int
	// Message is the server-supplied error text or a generic fallback.
	Message string
	// Err is one of the package sentinels.
	Err error
}

func (e *AuthError) Error() string {
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// errorBody is the failure payload the API may send.
type errorBody struct {
	Error string `json:"error"`
}

func newAuthError(op string, status int, body *errorBody, fallback string) *AuthError {
	msg := fallback
	if body != nil && body.Error != "" {
		msg = body.Error
	}
	return &AuthError{Op: op, Status: status, Message: msg, Err: causeFor(status)}
}

func causeFor(status int) error {
	switch {
	case status == 0, status >= http.StatusInternalServerError:
		return ErrUnavailable
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return ErrUnauthorized
	default:
		return ErrRejected
	}
}
