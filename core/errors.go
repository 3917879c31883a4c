package core

import "github.com/pkg/errors"

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"message"`
}

// ValidationError carries per-field errors for malformed input, whether
// rejected locally or by the server.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

func IsValidationError(err error) bool {
	_, ok := errors.Cause(err).(*ValidationError)
	return ok
}

// AuthenticationError means the session token is missing, expired or was
// rejected by the server; the holder must re-authenticate.
type AuthenticationError struct {
	Err error
}

func NewAuthenticationError(err error) error {
	return &AuthenticationError{err}
}

func (err AuthenticationError) Error() string {
	if err.Err == nil {
		return "not authenticated"
	}
	return err.Err.Error()
}

func IsAuthenticationError(err error) bool {
	_, ok := errors.Cause(err).(*AuthenticationError)
	return ok
}

// AuthorizationError means the current user's role or ownership does not
// permit the attempted action.
type AuthorizationError struct {
	msg string
}

func NewAuthorizationError(msg string) error {
	if msg == "" {
		msg = "permission denied"
	}
	return &AuthorizationError{msg}
}

func (err AuthorizationError) Error() string { return err.msg }

func IsAuthorizationError(err error) bool {
	_, ok := errors.Cause(err).(*AuthorizationError)
	return ok
}

// ResourceRef points at a resource blocking a mutation, so the caller can
// redirect the user to resolve it.
type ResourceRef struct {
	Kind  string `json:"kind"`
	ID    string `json:"id"`
	Label string `json:"label,omitempty"`
}

// ConflictError means a mutation was rejected because it would violate a
// dependency or capacity invariant. Remediation tells the user what to
// resolve; Blocking names the offending resources.
type ConflictError struct {
	Err         error
	Remediation string
	Blocking    []ResourceRef
}

func NewConflictError(err error, remediation string, blocking ...ResourceRef) error {
	return &ConflictError{err, remediation, blocking}
}

func (err ConflictError) Error() string {
	if err.Err == nil {
		return err.Remediation
	}
	return err.Err.Error()
}

func IsConflictError(err error) bool {
	_, ok := errors.Cause(err).(*ConflictError)
	return ok
}

// NetworkError means the transport failed or the server response could not
// be understood. It is only retried by explicit user action.
type NetworkError struct {
	Err error
}

func NewNetworkError(err error) error {
	return &NetworkError{err}
}

func (err NetworkError) Error() string {
	if err.Err == nil {
		return "network failure"
	}
	return err.Err.Error()
}

func IsNetworkError(err error) bool {
	_, ok := errors.Cause(err).(*NetworkError)
	return ok
}
