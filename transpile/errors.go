package transpile

import (
	"errors"
	"fmt"
)

// DuplicateParameterError is returned when a parameter name is bound twice
// within one collection. Generated parameter names are globally unique, so
// a duplicate signals a naming bug rather than recoverable caller input.
type DuplicateParameterError struct {
	Name string
}

// Error returns the error string.
func (e *DuplicateParameterError) Error() string {
	return fmt.Sprintf("transpile: duplicate parameter %q", e.Name)
}

// NewDuplicateParameterError returns a new DuplicateParameterError.
func NewDuplicateParameterError(name string) *DuplicateParameterError {
	return &DuplicateParameterError{Name: name}
}

// IsDuplicateParameter returns true if the error is a DuplicateParameterError.
func IsDuplicateParameter(err error) bool {
	if err == nil {
		return false
	}
	var e *DuplicateParameterError
	return errors.As(err, &e)
}

// MissingParameterError is returned when a template references a parameter
// name the supplied collection does not contain.
type MissingParameterError struct {
	Name string
}

// Error returns the error string.
func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("transpile: template references parameter %q but no value was supplied", e.Name)
}

// NewMissingParameterError returns a new MissingParameterError.
func NewMissingParameterError(name string) *MissingParameterError {
	return &MissingParameterError{Name: name}
}

// IsMissingParameter returns true if the error is a MissingParameterError.
func IsMissingParameter(err error) bool {
	if err == nil {
		return false
	}
	var e *MissingParameterError
	return errors.As(err, &e)
}

// ParameterCountError is returned when the number of supplied positional
// values does not match the placeholders of the template.
type ParameterCountError struct {
	Want int // placeholder slots in the template
	Got  int // values supplied by the caller
}

// Error returns the error string.
func (e *ParameterCountError) Error() string {
	return fmt.Sprintf("transpile: template has %d parameter slots but %d values were supplied", e.Want, e.Got)
}

// NewParameterCountError returns a new ParameterCountError.
func NewParameterCountError(want, got int) *ParameterCountError {
	return &ParameterCountError{Want: want, Got: got}
}

// IsParameterCount returns true if the error is a ParameterCountError.
func IsParameterCount(err error) bool {
	if err == nil {
		return false
	}
	var e *ParameterCountError
	return errors.As(err, &e)
}
