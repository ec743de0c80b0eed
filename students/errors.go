package students

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports an absent record. It is a result, not a failure.
	ErrNotFound = errors.New("students: not found")
	// ErrInvalid reports input rejected before it reaches storage.
	ErrInvalid = errors.New("students: invalid input")
	// ErrConflict reports a natural-key constraint violation that could not be
	// resolved to an existing row.
	ErrConflict = errors.New("students: natural key conflict")
	// ErrStorage matches every *StorageError.
	ErrStorage = errors.New("students: storage failure")
)

// StorageError wraps a persistence backend failure with the operation name.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("students: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrStorage) match any storage error.
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// NewStorageError wraps err unless it is nil or already classified.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalid) || errors.Is(err, ErrConflict) {
		return err
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
