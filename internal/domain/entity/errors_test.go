package entity

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		message  string
		expected string
	}{
		{
			name:     "simple validation error",
			field:    "provider",
			message:  "unsupported provider",
			expected: "validation error on field 'provider': unsupported provider",
		},
		{
			name:     "required field error",
			field:    "display_name",
			message:  "required",
			expected: "validation error on field 'display_name': required",
		},
		{
			name:     "range validation error",
			field:    "consecutive_failures",
			message:  "must not be negative",
			expected: "validation error on field 'consecutive_failures': must not be negative",
		},
		{
			name:     "empty field name",
			field:    "",
			message:  "test message",
			expected: "validation error on field '': test message",
		},
		{
			name:     "empty message",
			field:    "test",
			message:  "",
			expected: "validation error on field 'test': ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &ValidationError{
				Field:   tt.field,
				Message: tt.message,
			}

			assert.Equal(t, tt.expected, err.Error())
		})
	}
}

func TestValidationError_AsError(t *testing.T) {
	err := &ValidationError{
		Field:   "provider",
		Message: "unsupported provider",
	}

	// ValidationError should implement error interface
	var _ error = err

	// Should be usable as error
	assert.Error(t, err)
}

func TestValidationError_WithErrors(t *testing.T) {
	err := &ValidationError{
		Field:   "provider",
		Message: "unsupported provider",
	}

	// Not a sentinel, so errors.Is against sentinels must not match
	assert.False(t, errors.Is(err, ErrInvalidInput))

	// Should work with errors.As
	var validationErr *ValidationError
	assert.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "provider", validationErr.Field)
	assert.Equal(t, "unsupported provider", validationErr.Message)
}

func TestSentinelErrors_ErrorMessages(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "ErrNotFound",
			err:      ErrNotFound,
			expected: "credential not found",
		},
		{
			name:     "ErrInvalidInput",
			err:      ErrInvalidInput,
			expected: "invalid input",
		},
		{
			name:     "ErrEmptySecret",
			err:      ErrEmptySecret,
			expected: "secret must not be empty",
		},
		{
			name:     "ErrDecryptionFailed",
			err:      ErrDecryptionFailed,
			expected: "decryption failed",
		},
		{
			name:     "ErrPrimaryConflict",
			err:      ErrPrimaryConflict,
			expected: "another active primary credential exists for this provider",
		},
		{
			name:     "ErrNoUsableCredential",
			err:      ErrNoUsableCredential,
			expected: "no usable credential for this provider",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestSentinelErrors_WithErrorsIs(t *testing.T) {
	assert.True(t, errors.Is(ErrNotFound, ErrNotFound))
	assert.False(t, errors.Is(ErrNotFound, ErrInvalidInput))
	assert.False(t, errors.Is(ErrNotFound, ErrNoUsableCredential))

	assert.True(t, errors.Is(ErrPrimaryConflict, ErrPrimaryConflict))
	assert.False(t, errors.Is(ErrPrimaryConflict, ErrInvalidInput))

	// Wrapped sentinels still match
	wrapped := fmt.Errorf("credential.Get: %w", ErrNotFound)
	assert.True(t, errors.Is(wrapped, ErrNotFound))
}

func TestSentinelErrors_Uniqueness(t *testing.T) {
	sentinels := []error{
		ErrNotFound,
		ErrInvalidInput,
		ErrEmptySecret,
		ErrDecryptionFailed,
		ErrPrimaryConflict,
		ErrNoUsableCredential,
	}

	for i := range sentinels {
		for j := range sentinels {
			if i == j {
				continue
			}
			assert.NotErrorIs(t, sentinels[i], sentinels[j])
		}
	}
}

func TestValidationError_InErrorChain(t *testing.T) {
	baseErr := &ValidationError{
		Field:   "provider",
		Message: "unsupported provider",
	}

	wrappedErr := errors.Join(ErrInvalidInput, baseErr)

	// Should be able to unwrap to get ValidationError
	var validationErr *ValidationError
	assert.True(t, errors.As(wrappedErr, &validationErr))
	assert.Equal(t, "provider", validationErr.Field)

	// Should also match the sentinel
	assert.True(t, errors.Is(wrappedErr, ErrInvalidInput))
}

func TestValidationError_ZeroValue(t *testing.T) {
	var err ValidationError

	assert.Equal(t, "", err.Field)
	assert.Equal(t, "", err.Message)
	assert.Equal(t, "validation error on field '': ", err.Error())
}
