package common

import (
	"errors"
	"fmt"
)

// Error categories. Every business error wraps exactly one of these so
// handlers can map to an HTTP status with a single errors.Is chain.
var (
	ErrNotFound   = errors.New("resource not found")
	ErrForbidden  = errors.New("forbidden")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("invalid input")
	// ErrInternal wraps unexpected storage failures. The underlying cause is
	// logged, never returned to the caller.
	ErrInternal = errors.New("internal error")
)

// Business errors
var (
	// Not found
	ErrPostNotFound     = fmt.Errorf("post: %w", ErrNotFound)
	ErrRevisionNotFound = fmt.Errorf("revision: %w", ErrNotFound)
	ErrRequestNotFound  = fmt.Errorf("deletion request: %w", ErrNotFound)
	ErrUserNotFound     = fmt.Errorf("user: %w", ErrNotFound)

	// Conflict
	ErrSlugTaken            = fmt.Errorf("%w: slug already in use", ErrConflict)
	ErrVersionMismatch      = fmt.Errorf("%w: post was modified concurrently", ErrConflict)
	ErrIllegalTransition    = fmt.Errorf("%w: status transition not allowed", ErrConflict)
	ErrRevisionNotActive    = fmt.Errorf("%w: revision is no longer active", ErrConflict)
	ErrPendingRequestExists = fmt.Errorf("%w: post already has a pending deletion request", ErrConflict)
	ErrRequestResolved      = fmt.Errorf("%w: deletion request is already resolved", ErrConflict)

	// Auth errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)

// Internal wraps err as an internal error, preserving the cause for
// logging while callers only see the category.
func Internal(err error) error {
	return fmt.Errorf("%w: %w", ErrInternal, err)
}

// Forbidden returns a permission error with a caller-facing reason
func Forbidden(reason string) error {
	return fmt.Errorf("%w: %s", ErrForbidden, reason)
}

// Validation returns a validation error with a caller-facing reason
func Validation(reason string) error {
	return fmt.Errorf("%w: %s", ErrValidation, reason)
}

// IllegalTransition describes a rejected workflow transition
func IllegalTransition(action, from string) error {
	return fmt.Errorf("%w: cannot %s from status %s", ErrIllegalTransition, action, from)
}
