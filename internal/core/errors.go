package core

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a referenced entity id does not exist.
var ErrNotFound = errors.New("registro não encontrado")

// ValidationError signals malformed input or a violated entity invariant.
// No mutation has happened when one is returned.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Validationf builds a ValidationError with a formatted message.
func Validationf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// BackupError is the validation error raised by the backup engine before the
// mutation phase. It is a distinct kind so callers can tell a rejected
// snapshot apart from a storage failure mid-restore.
type BackupError struct {
	Message string
}

func (e *BackupError) Error() string { return e.Message }

// Backupf builds a BackupError with a formatted message.
func Backupf(format string, args ...any) error {
	return &BackupError{Message: fmt.Sprintf(format, args...)}
}

// IsBackup reports whether err is (or wraps) a BackupError.
func IsBackup(err error) bool {
	var be *BackupError
	return errors.As(err, &be)
}

// ConflictError signals a deletion blocked by dependent records.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// Conflictf builds a ConflictError with a formatted message.
func Conflictf(format string, args ...any) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// IsConflict reports whether err is (or wraps) a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
