package schema

import (
	"errors"
	"fmt"
)

// NotAttachedError is returned when a fully qualified name is requested from
// a schema object that has not completed its attachment chain: a column
// without a table, a table without a database, or a data type that was never
// bound to a dialect.
type NotAttachedError struct {
	Kind string // "column", "table" or "data type"
	Name string
}

// Error implements the error interface.
func (e *NotAttachedError) Error() string {
	switch e.Kind {
	case "column":
		return fmt.Sprintf("schema: column %q is not attached to a table", e.Name)
	case "table":
		return fmt.Sprintf("schema: table %q is not attached to a database", e.Name)
	default:
		return fmt.Sprintf("schema: %s %q is not bound to a database dialect", e.Kind, e.Name)
	}
}

// IsNotAttached reports whether err carries a *NotAttachedError.
func IsNotAttached(err error) bool {
	var e *NotAttachedError
	return errors.As(err, &e)
}

// NotFoundError is returned when a named schema object cannot be resolved.
type NotFoundError struct {
	Kind string // "table", "column" or "function"
	Name string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("schema: %s %q not found", e.Kind, e.Name)
}

// IsNotFound reports whether err carries a *NotFoundError.
func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

// NoJoinPathError is returned when two tables share no foreign key relation
// in either direction.
type NoJoinPathError struct {
	Left, Right string
}

// Error implements the error interface.
func (e *NoJoinPathError) Error() string {
	return fmt.Sprintf("schema: no foreign key relation between tables %q and %q", e.Left, e.Right)
}

// IsNoJoinPath reports whether err carries a *NoJoinPathError.
func IsNoJoinPath(err error) bool {
	var e *NoJoinPathError
	return errors.As(err, &e)
}

// AmbiguousJoinError is returned when two tables are related through more
// than one foreign key column and the join cannot be resolved automatically.
type AmbiguousJoinError struct {
	Left, Right string
	Count       int
}

// Error implements the error interface.
func (e *AmbiguousJoinError) Error() string {
	return fmt.Sprintf("schema: %d foreign key relations between tables %q and %q", e.Count, e.Left, e.Right)
}

// IsAmbiguousJoin reports whether err carries a *AmbiguousJoinError.
func IsAmbiguousJoin(err error) bool {
	var e *AmbiguousJoinError
	return errors.As(err, &e)
}

// CyclicReferenceError is returned by Tables.SortForDrop when the remaining
// tables all reference each other and no drop order exists.
type CyclicReferenceError struct {
	Tables []string
}

// Error implements the error interface.
func (e *CyclicReferenceError) Error() string {
	return fmt.Sprintf("schema: cyclic foreign key references between tables %v", e.Tables)
}

// IsCyclicReference reports whether err carries a *CyclicReferenceError.
func IsCyclicReference(err error) bool {
	var e *CyclicReferenceError
	return errors.As(err, &e)
}
