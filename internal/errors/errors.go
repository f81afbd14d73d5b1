// internal/errors/errors.go
package errors

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed input, rejected before any store call.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// AuthError reports missing sessions, bad credentials, unconfirmed
// accounts or rate limiting. Message is stable and user-presentable.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// ConflictError reports a duplicate account on signup.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// NotFoundError is used sparingly; most missing rows degrade to empty or
// stub results instead so list and chat views never hard-fail.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

// TransientError wraps a network or store failure on an otherwise valid
// request. Read paths swallow these into empty results; write paths
// propagate them so callers can revert optimistic state.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *TransientError) Unwrap() error { return e.Err }

func Validation(msg string) error    { return &ValidationError{Message: msg} }
func Auth(msg string) error          { return &AuthError{Message: msg} }
func Conflict(msg string) error      { return &ConflictError{Message: msg} }
func NotFound(resource string) error { return &NotFoundError{Resource: resource} }
func Transient(op string, err error) error {
	return &TransientError{Op: op, Err: err}
}

func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

func IsAuth(err error) bool {
	var e *AuthError
	return errors.As(err, &e)
}

func IsConflict(err error) bool {
	var e *ConflictError
	return errors.As(err, &e)
}

func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

func IsTransient(err error) bool {
	var e *TransientError
	return errors.As(err, &e)
}
