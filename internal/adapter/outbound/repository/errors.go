package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Common error types
var (
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrNotFound            = errors.New("record not found")
	ErrAlreadyExists       = errors.New("record already exists")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrConnectionFailed    = errors.New("database connection failed")
)

// IsNotFoundError checks if an error is a "not found" error
func IsNotFoundError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || errors.Is(err, ErrNotFound)
}

// pgErrorCode returns the SQLSTATE of a PostgreSQL error, or "".
func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsConstraintViolationError checks if an error is an integrity constraint violation (class 23).
func IsConstraintViolationError(err error) bool {
	if code := pgErrorCode(err); len(code) == 5 && code[:2] == "23" {
		return true
	}
	return errors.Is(err, ErrConstraintViolation) || errors.Is(err, ErrAlreadyExists)
}

// IsConnectionError checks if an error is a connection exception (class 08) or
// operator intervention (class 57).
func IsConnectionError(err error) bool {
	if code := pgErrorCode(err); len(code) == 5 {
		switch code[:2] {
		case "08", "57":
			return true
		}
	}
	return errors.Is(err, ErrConnectionFailed)
}

// WrapError wraps a database error with the failed operation and a sentinel cause.
func WrapError(err error, operation string) error {
	switch {
	case err == nil:
		return nil
	case IsNotFoundError(err):
		return fmt.Errorf("%s failed: %w", operation, ErrNotFound)
	case pgErrorCode(err) == "23505":
		return fmt.Errorf("%s failed: %w: %w", operation, ErrAlreadyExists, err)
	case IsConstraintViolationError(err):
		return fmt.Errorf("%s failed: %w: %w", operation, ErrConstraintViolation, err)
	case IsConnectionError(err):
		return fmt.Errorf("%s failed: %w: %w", operation, ErrConnectionFailed, err)
	default:
		return fmt.Errorf("%s failed: %w", operation, err)
	}
}
