package vinted

import (
	"errors"

	"github.com/vintedapi/vinted-go/internal/types"
)

// Error is the structured API error. It carries the remote status code and
// raw body verbatim so callers can branch without string-parsing error
// text.
type Error = types.Error

// Sentinel errors. These are the same values the internal packages return,
// so errors.Is works across the module boundary.
var (
	// ErrNotAuthenticated is returned when tokens are missing, invalid, or
	// expired; signals "re-establish session"
	ErrNotAuthenticated = types.ErrNotAuthenticated

	// ErrTwoFactorRequired is returned by single-shot login when the
	// account has a second factor enabled
	ErrTwoFactorRequired = types.ErrTwoFactorRequired

	// ErrLoginFailed is returned when credentials or a verification code
	// are rejected
	ErrLoginFailed = types.ErrLoginFailed

	// ErrSessionExpired is returned when a refresh token is rejected;
	// terminal for the refresh path
	ErrSessionExpired = types.ErrSessionExpired

	// ErrAntiBotChallenge is returned when the remote side demands
	// anti-bot proof; fetch a fresh clearance cookie and retry
	ErrAntiBotChallenge = types.ErrAntiBotChallenge

	// ErrRateLimited is returned when rate limited
	ErrRateLimited = types.ErrRateLimited

	// ErrTimeout is returned on timeout
	ErrTimeout = types.ErrTimeout

	// ErrServerError is returned for server errors
	ErrServerError = types.ErrServerError
)

// IsAuthError checks if error signals a broken session
func IsAuthError(err error) bool {
	return errors.Is(err, ErrNotAuthenticated) ||
		errors.Is(err, ErrLoginFailed) ||
		errors.Is(err, ErrSessionExpired)
}

// IsAntiBotError checks if error is an anti-bot challenge
func IsAntiBotError(err error) bool {
	return errors.Is(err, ErrAntiBotChallenge)
}

// IsRetryable checks if retrying the same call unchanged can help.
// Auth and anti-bot failures are deliberately excluded: they need a
// recovery action first.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrServerError) {
		return true
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500 || apiErr.StatusCode == 429
	}

	return false
}
