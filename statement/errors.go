package statement

import (
	"errors"
	"fmt"
)

// OperatorArityError reports a condition constructed with the wrong number
// of values for its operator. The violation is recorded at construction and
// surfaces before any SQL renders.
type OperatorArityError struct {
	Op   Op
	Want int
	Got  int
}

// NewOperatorArityError creates an OperatorArityError.
func NewOperatorArityError(op Op, want, got int) *OperatorArityError {
	return &OperatorArityError{Op: op, Want: want, Got: got}
}

// Error implements error.
func (e *OperatorArityError) Error() string {
	if e.Op.set() {
		return fmt.Sprintf("statement: wrong value count for operator %s: want at least %d, got %d", e.Op, e.Want, e.Got)
	}
	return fmt.Sprintf("statement: wrong value count for operator %s: want %d, got %d", e.Op, e.Want, e.Got)
}

// IsOperatorArity reports whether err is an OperatorArityError.
func IsOperatorArity(err error) bool {
	var e *OperatorArityError
	return errors.As(err, &e)
}
