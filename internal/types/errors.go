package types

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrNotAuthenticated is returned when the session tokens are missing,
	// invalid, or expired
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrTwoFactorRequired is returned when the remote side demands a
	// second factor before completing a login
	ErrTwoFactorRequired = errors.New("two-factor verification required")

	// ErrLoginFailed is returned when credentials are rejected
	ErrLoginFailed = errors.New("login failed")

	// ErrSessionExpired is returned when a refresh token is rejected and a
	// full re-authentication is required
	ErrSessionExpired = errors.New("session expired, re-authentication required")

	// ErrAntiBotChallenge is returned when the remote side demands anti-bot
	// proof before continuing
	ErrAntiBotChallenge = errors.New("anti-bot challenge issued")

	// ErrRateLimited is returned when rate limited
	ErrRateLimited = errors.New("rate limited")

	// ErrTimeout is returned on timeout
	ErrTimeout = errors.New("request timeout")

	// ErrServerError is returned for server errors
	ErrServerError = errors.New("server error")
)

// Error represents an API error
type Error struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
	RawBody    []byte `json:"-"`
	Err        error  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("error: %s", e.Code)
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is checks if the error matches target
func (e *Error) Is(target error) bool {
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}

	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}
