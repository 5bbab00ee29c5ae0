package errors

import (
	"errors"
	"fmt"
)

// Common application errors with proper types for error handling

var (
	// ErrNotFound indicates a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates invalid input data
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates missing or invalid authentication
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUnavailable indicates the backing store could not be reached
	ErrUnavailable = errors.New("store unavailable")

	// ErrUploadFailed indicates a media upload did not complete
	ErrUploadFailed = errors.New("upload failed")
)

// NotFoundError creates a not found error with context
func NotFoundError(resource string) error {
	return fmt.Errorf("%s %w", resource, ErrNotFound)
}

// InvalidInputError creates an invalid input error with context
func InvalidInputError(field, reason string) error {
	return fmt.Errorf("%s: %s: %w", field, reason, ErrInvalidInput)
}

// UnavailableError creates a store-unavailable error with context
func UnavailableError(reason string) error {
	if reason != "" {
		return fmt.Errorf("%s: %w", reason, ErrUnavailable)
	}
	return ErrUnavailable
}

// UploadError creates an upload error with context
func UploadError(reason string) error {
	if reason != "" {
		return fmt.Errorf("%s: %w", reason, ErrUploadFailed)
	}
	return ErrUploadFailed
}

// Is checks if an error matches a target error (works with wrapped errors)
func Is(err, target error) bool {
	return errors.Is(err, target)
}
