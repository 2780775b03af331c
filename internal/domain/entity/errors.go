package entity

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain layer operations.
var (
	// ErrNotFound indicates that a requested credential was not found
	ErrNotFound = errors.New("credential not found")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptySecret indicates an attempt to encrypt an empty secret
	ErrEmptySecret = errors.New("secret must not be empty")

	// ErrDecryptionFailed indicates ciphertext that is empty, malformed,
	// or failed authentication. The cause is never attached to responses.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrPrimaryConflict indicates an attempt to mark a second active credential
	// as primary for the same (owner, provider). The existing primary must be
	// demoted first.
	ErrPrimaryConflict = errors.New("another active primary credential exists for this provider")

	// ErrNoUsableCredential indicates the selector exhausted every tier.
	// Callers must surface this as a configuration problem, not a transient failure.
	ErrNoUsableCredential = errors.New("no usable credential for this provider")
)

// ValidationError represents a validation error with detailed field information.
// It implements the error interface and provides context about which field failed validation.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns a formatted error message for the validation error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}
