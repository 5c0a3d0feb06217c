package schema

import (
	"fmt"
	"strings"
)

// Function is an aggregate applied to a column, or COUNT(*) when no column
// is given. Two functions are considered equal when their fully qualified
// names match, which is what keys them in Records.
type Function struct {
	name   string // lowercase; uppercased in SQL renderings
	column *Column
	err    error
}

// functionSpec describes a supported aggregate.
type functionSpec struct {
	columnRequired bool
}

var functionRegistry = map[string]functionSpec{
	"count": {columnRequired: false},
	"min":   {columnRequired: true},
	"max":   {columnRequired: true},
	"sum":   {columnRequired: true},
	"avg":   {columnRequired: true},
}

// Count returns COUNT(*), or COUNT(column) when a single column is given.
func Count(column ...*Column) *Function {
	f := &Function{name: "count"}
	switch len(column) {
	case 0:
	case 1:
		f.column = column[0]
	default:
		f.err = fmt.Errorf("schema: COUNT takes at most one column, got %d", len(column))
	}
	return f
}

// Min returns MIN(column).
func Min(column *Column) *Function { return newColumnFunction("min", column) }

// Max returns MAX(column).
func Max(column *Column) *Function { return newColumnFunction("max", column) }

// Sum returns SUM(column).
func Sum(column *Column) *Function { return newColumnFunction("sum", column) }

// Avg returns AVG(column).
func Avg(column *Column) *Function { return newColumnFunction("avg", column) }

func newColumnFunction(name string, column *Column) *Function {
	f := &Function{name: name, column: column}
	if column == nil {
		f.err = fmt.Errorf("schema: %s requires a column", strings.ToUpper(name))
	}
	return f
}

// FunctionByName resolves an aggregate by its name, enforcing the
// column-required rule. Used when decoding aliases.
func FunctionByName(name string, column *Column) (*Function, error) {
	lower := strings.ToLower(name)
	spec, ok := functionRegistry[lower]
	if !ok {
		return nil, &NotFoundError{Kind: "function", Name: name}
	}
	if spec.columnRequired && column == nil {
		return nil, fmt.Errorf("schema: function %s requires a column", strings.ToUpper(name))
	}
	return &Function{name: lower, column: column}, nil
}

// Name returns the lowercase aggregate name.
func (f *Function) Name() string { return f.name }

// Column returns the aggregated column, or nil for COUNT(*).
func (f *Function) Column() *Column { return f.column }

// Err returns the construction error, if any.
func (f *Function) Err() error { return f.err }

// FullyQualifiedName returns NAME(*) or NAME(<column fqn>).
func (f *Function) FullyQualifiedName() (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.column == nil {
		return strings.ToUpper(f.name) + "(*)", nil
	}
	fqn, err := f.column.FullyQualifiedName()
	if err != nil {
		return "", err
	}
	return strings.ToUpper(f.name) + "(" + fqn + ")", nil
}

// Equal reports whether the two functions share a fully qualified name.
func (f *Function) Equal(other *Function) bool {
	if other == nil {
		return false
	}
	a, err := f.FullyQualifiedName()
	if err != nil {
		return false
	}
	b, err := other.FullyQualifiedName()
	if err != nil {
		return false
	}
	return a == b
}

// Alias returns FUNCTION.<name>, extended with the column alias when the
// aggregate applies to a column.
func (f *Function) Alias() (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.column == nil {
		return aliasFunctionTag + "." + f.name, nil
	}
	columnAlias, err := f.column.Alias()
	if err != nil {
		return "", err
	}
	return aliasFunctionTag + "." + f.name + "." + columnAlias, nil
}

// SQL returns the aggregate's rendering inside statement text.
func (f *Function) SQL() (string, error) {
	return f.FullyQualifiedName()
}

// ParameterName generates a fresh parameter name prefixed with the aggregate
// name.
func (f *Function) ParameterName() (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.column == nil {
		return f.name + "_" + parameterSuffix(), nil
	}
	name, err := f.column.ParameterName()
	if err != nil {
		return "", err
	}
	return f.name + "_" + name, nil
}

// DataType returns the aggregated column's data type, or nil for COUNT(*).
func (f *Function) DataType() *DataType {
	if f.column == nil {
		return nil
	}
	return f.column.DataType()
}

// ToRawConverter delegates to the aggregated column.
func (f *Function) ToRawConverter() Converter {
	if f.column == nil {
		return nil
	}
	return f.column.ToRawConverter()
}

// FromRawConverter delegates to the aggregated column.
func (f *Function) FromRawConverter() Converter {
	if f.column == nil {
		return nil
	}
	return f.column.FromRawConverter()
}
