// internal/errors/mapper.go
package errors

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Map converts store/infra errors into the client taxonomy with stable
// messages. Keeps the repository layer clean by centralizing the mapping.
func Map(op string, err error) error {
	if err == nil {
		return nil
	}

	// already classified
	switch {
	case IsValidation(err), IsAuth(err), IsConflict(err), IsNotFound(err), IsTransient(err):
		return err
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NotFound(op)

	case isDuplicateKey(err):
		return Conflict("An account with this email already exists.")

	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return Transient(op, err)

	default:
		// network/store failure on an otherwise valid request
		return Transient(op, err)
	}
}

// isDuplicateKey detects unique constraint violations across the SQLite
// and MySQL drivers by error text, since neither exposes a shared sentinel.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "duplicate") ||
		strings.Contains(s, "unique constraint") ||
		strings.Contains(s, "constraint failed")
}
