// Package api implements the authenticated HTTP client for the admin API.
package api

import (
	"errors"
	"fmt"
)

// Kind classifies request failures for user-facing handling.
type Kind int

const (
	// KindUnknown covers anything not otherwise classified.
	KindUnknown Kind = iota
	// KindInvalidCredentials is a 401 during the password grant.
	KindInvalidCredentials
	// KindSessionExpired means refresh failed or a retry after refresh was still rejected.
	KindSessionExpired
	// KindConnectivity is a network-level failure with no HTTP response.
	KindConnectivity
)

// String returns the string representation of a Kind.
func (k Kind) String() string {
	switch k {
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindSessionExpired:
		return "session_expired"
	case KindConnectivity:
		return "connectivity"
	default:
		return "unknown"
	}
}

// Error is a classified request failure. Status is zero when no HTTP
// response was received.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("request failed (%s)", e.Kind)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// StatusError builds an Error for a non-success HTTP response.
func StatusError(status int, body string) *Error {
	return &Error{
		Kind:    KindUnknown,
		Status:  status,
		Message: fmt.Sprintf("request failed (status %d): %s", status, body),
	}
}

// ConnectivityError wraps a transport-level failure.
func ConnectivityError(err error) *Error {
	return &Error{
		Kind:    KindConnectivity,
		Message: "network error: no response from server",
		Err:     err,
	}
}

// SessionExpiredError builds the terminal session-expired failure.
func SessionExpiredError(err error) *Error {
	return &Error{
		Kind:    KindSessionExpired,
		Message: "session expired, please sign in again",
		Err:     err,
	}
}

// KindOf extracts the Kind from an error chain, KindUnknown otherwise.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

// StatusOf extracts the HTTP status from an error chain, 0 when absent.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
