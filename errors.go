package sqldatabase

import (
	"errors"
	"fmt"
)

// ErrTxStarted is returned when attempting to start a new transaction
// within an existing transaction.
var ErrTxStarted = errors.New("sqldatabase: cannot start a transaction within a transaction")

// ConstraintError represents a database constraint violation error.
type ConstraintError struct {
	msg  string
	wrap error
}

// Error returns the error string.
func (e ConstraintError) Error() string {
	return fmt.Sprintf("sqldatabase: constraint failed: %s", e.msg)
}

// Unwrap returns the underlying driver error.
func (e ConstraintError) Unwrap() error {
	return e.wrap
}

// NewConstraintError returns a new ConstraintError with the given message.
func NewConstraintError(msg string, wrap error) error {
	return ConstraintError{msg: msg, wrap: wrap}
}

// IsConstraintError returns true if the error is a ConstraintError.
func IsConstraintError(err error) bool {
	if err == nil {
		return false
	}
	var e ConstraintError
	return errors.As(err, &e)
}

// QueryError wraps a read operation error with the table and operation.
type QueryError struct {
	Table string // Table being queried
	Op    string // Operation (e.g., "select", "count")
	Err   error  // Underlying error
}

// Error returns the error string.
func (e *QueryError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("sqldatabase: querying %s (%s): %v", e.Table, e.Op, e.Err)
	}
	return fmt.Sprintf("sqldatabase: querying %s: %v", e.Table, e.Err)
}

// Unwrap returns the underlying error.
func (e *QueryError) Unwrap() error {
	return e.Err
}

// IsQueryError returns true if the error is a QueryError.
func IsQueryError(err error) bool {
	if err == nil {
		return false
	}
	var e *QueryError
	return errors.As(err, &e)
}

// MutationError wraps a write operation error with the table and operation.
type MutationError struct {
	Table string // Table being written
	Op    string // Operation (e.g., "insert", "update", "delete", "create table")
	Err   error  // Underlying error
}

// Error returns the error string.
func (e *MutationError) Error() string {
	return fmt.Sprintf("sqldatabase: %s %s: %v", e.Op, e.Table, e.Err)
}

// Unwrap returns the underlying error.
func (e *MutationError) Unwrap() error {
	return e.Err
}

// IsMutationError returns true if the error is a MutationError.
func IsMutationError(err error) bool {
	if err == nil {
		return false
	}
	var e *MutationError
	return errors.As(err, &e)
}

// RollbackError reports a rollback that itself failed after an operation
// error forced it.
type RollbackError struct {
	Err      error // Error that triggered the rollback
	Rollback error // Error returned by the rollback
}

// Error returns the error string.
func (e *RollbackError) Error() string {
	return fmt.Sprintf("sqldatabase: rollback failed: %v (rolling back after: %v)", e.Rollback, e.Err)
}

// Unwrap returns the error that triggered the rollback.
func (e *RollbackError) Unwrap() error {
	return e.Err
}
