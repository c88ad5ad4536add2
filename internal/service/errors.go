package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation marks a client-correctable input problem.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned when a submission id is unknown.
	ErrNotFound = errors.New("submission not found")
	// ErrStoreUnavailable wraps any persistence failure.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrNotify marks a failed email dispatch on a path that reports it.
	ErrNotify = errors.New("notification failed")
	// ErrInvalidCredentials is returned by Login for any username/password mismatch.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated is returned for a missing, malformed, forged or expired token.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// ValidationError lists the required fields that were missing.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NotifyError carries the notifier's diagnostic message.
type NotifyError struct {
	Err error
}

func (e *NotifyError) Error() string { return e.Err.Error() }

func (e *NotifyError) Unwrap() []error { return []error{ErrNotify, e.Err} }

func storeError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
