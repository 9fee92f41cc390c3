// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a run or line item does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDatabaseCorrupted means a stored run could not be decoded.
	ErrDatabaseCorrupted = errors.New("database corrupted")

	ErrMissingColumn     = errors.New("missing required column")
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrNoTransactions is returned when a filter leaves nothing to mine.
	ErrNoTransactions = errors.New("no transactions to mine")

	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError carries a message meant for the terminal alongside the cause.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err == nil {
		return e.UserMessage
	}
	return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError wraps err with a message for the user.
func NewUserError(userMessage string, err error) error {
	return &UserError{UserMessage: userMessage, Err: err}
}
