// Package apperr defines the error taxonomy shared by the planning engine,
// the storage-backed services and the CLI.
//
// Client errors (ErrInvalidSelector, ErrInvalidTimeFormat) and the missing
// target precondition (ErrConfigurationMissing) are user facing. Storage
// failures wrap the driver error in a *StorageError so callers can match
// ErrStorageFailure with errors.Is and still reach the underlying cause.
package apperr

import (
	"errors"
	"fmt"
)

var (
	Is  = errors.Is
	As  = errors.As
	New = errors.New
)

var (
	// ErrConfigurationMissing means no target is set for the user.
	ErrConfigurationMissing = New("no target configured")
	// ErrInvalidSelector means a slot selection in a submission is malformed.
	ErrInvalidSelector = New("invalid slot selection")
	// ErrInvalidTimeFormat means a ketone reading date or time did not parse.
	ErrInvalidTimeFormat = New("invalid reading time")
	// ErrInvalidReading means a ketone or glucose value is negative or not a number.
	ErrInvalidReading = New("invalid reading value")
	// ErrStorageFailure marks an opaque failure of the persistent store.
	ErrStorageFailure = New("storage failure")
)

// StorageError records which storage operation failed.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, ErrStorageFailure)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is reports ErrStorageFailure for every StorageError.
func (e *StorageError) Is(target error) bool {
	return target == ErrStorageFailure
}

// Storage wraps err as a StorageError for op. A nil err stays nil.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// InvalidSelectorf wraps ErrInvalidSelector with a formatted detail.
func InvalidSelectorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidSelector, fmt.Sprintf(format, args...))
}

// InvalidTimef wraps ErrInvalidTimeFormat with a formatted detail.
func InvalidTimef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidTimeFormat, fmt.Sprintf(format, args...))
}

func InvalidReadingf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidReading, fmt.Sprintf(format, args...))
}

// MissingTarget wraps ErrConfigurationMissing for a user.
func MissingTarget(userID int64) error {
	return fmt.Errorf("%w for user %d; run `keto target set` first", ErrConfigurationMissing, userID)
}

// IsUserFacing reports whether err is caused by input or setup the user can fix.
func IsUserFacing(err error) bool {
	return Is(err, ErrConfigurationMissing) || Is(err, ErrInvalidSelector) || Is(err, ErrInvalidTimeFormat) || Is(err, ErrInvalidReading)
}
