package client

import (
	"strings"

	"github.com/goliatone/go-errors"
)

// ErrNetworkFailure is returned when the server cannot be reached. It is kept
// distinct from auth failures so callers never clear a session over a flaky
// connection.
var ErrNetworkFailure = errors.New("auth server unreachable", errors.CategoryOperation).
	WithTextCode("network_failure")

// ErrNoSession is returned when no stored session exists locally.
var ErrNoSession = errors.New("no active session", errors.CategoryAuth).
	WithTextCode("no_session").
	WithCode(errors.CodeUnauthorized)

// ErrUnauthorized is returned when the server rejects the credentials or token.
var ErrUnauthorized = errors.New("unauthorized", errors.CategoryAuth).
	WithTextCode("unauthorized").
	WithCode(errors.CodeUnauthorized)

// ErrConflict is returned when registration hits an already used email.
var ErrConflict = errors.New("identifier already registered", errors.CategoryConflict).
	WithTextCode("duplicate_identifier").
	WithCode(errors.CodeConflict)

// IsUnauthorizedError reports whether the server definitively rejected the
// caller's token or credentials.
func IsUnauthorizedError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUnauthorized) {
		return true
	}
	return strings.Contains(err.Error(), "unauthorized")
}

// IsNetworkError reports whether the failure was transport-level.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNetworkFailure) {
		return true
	}
	return strings.Contains(err.Error(), "auth server unreachable")
}

// IsConflictError reports whether registration failed on a duplicate email.
func IsConflictError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrConflict) {
		return true
	}
	return strings.Contains(err.Error(), "already registered")
}
