package schema

import (
	"fmt"
	"strings"
	"time"

	"github.com/Sterbis/sqldatabase/dialect"
)

// Kind is the native value kind a data type stores and returns.
type Kind int

const (
	KindInvalid Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindBytes
	KindDate
	KindTime
	KindDateTime
)

var kindNames = [...]string{
	KindInvalid:  "invalid",
	KindBool:     "bool",
	KindInt:      "int",
	KindFloat:    "float",
	KindString:   "string",
	KindBytes:    "bytes",
	KindDate:     "date",
	KindTime:     "time",
	KindDateTime: "datetime",
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Temporal reports whether the kind holds a time.Time value.
func (k Kind) Temporal() bool {
	return k == KindDate || k == KindTime || k == KindDateTime
}

// FormatTime renders t in the ISO-8601 form used for both raw SQLite storage
// and the JSON codec: 2006-01-02 for dates, 15:04:05[.micros] for times and
// 2006-01-02T15:04:05[.micros] for datetimes.
func (k Kind) FormatTime(t time.Time) string {
	var s string
	switch k {
	case KindDate:
		return t.Format("2006-01-02")
	case KindTime:
		s = t.Format("15:04:05")
	default:
		s = t.Format("2006-01-02T15:04:05")
	}
	if ns := t.Nanosecond(); ns != 0 {
		s += fmt.Sprintf(".%06d", ns/1000)
	}
	return s
}

// ParseTime parses the ISO-8601 text form produced by FormatTime. Datetime
// values additionally accept a space separator between date and time, which
// some drivers return.
func (k Kind) ParseTime(s string) (time.Time, error) {
	layouts := []string{"2006-01-02T15:04:05", "2006-01-02 15:04:05"}
	switch k {
	case KindDate:
		layouts = []string{"2006-01-02"}
	case KindTime:
		layouts = []string{"15:04:05"}
	}
	var firstErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, fmt.Errorf("schema: parse %s value %q: %w", k, s, firstErr)
}

// Converter transforms a value on its way to or from the database. Converters
// never see nil; NULL bypasses the conversion pipeline unchanged.
type Converter func(value any) (any, error)

// DataType describes an SQL column type: its SQL name, the native Go kind it
// maps to, optional raw-value converters and per-dialect render overrides.
//
// Package-level types such as Integer or Boolean are unbound templates; the
// Tables.Bind step produces one bound instance per database, and rendering is
// only defined on bound instances.
type DataType struct {
	name    string
	kind    Kind
	size    int // length parameter for VARCHAR-style types; 0 when absent
	dialect string
	renders map[string]string
	toRaw   Converter
	fromRaw Converter
}

// DataTypeOption configures a DataType template.
type DataTypeOption func(*DataType)

// WithConverters sets the type-level raw-value converters.
func WithConverters(toRaw, fromRaw Converter) DataTypeOption {
	return func(t *DataType) {
		t.toRaw, t.fromRaw = toRaw, fromRaw
	}
}

// WithRender overrides the rendered SQL type text for one dialect.
func WithRender(dialect, text string) DataTypeOption {
	return func(t *DataType) {
		t.renders[dialect] = text
	}
}

// WithSize sets the length parameter rendered as NAME(size).
func WithSize(size int) DataTypeOption {
	return func(t *DataType) {
		t.size = size
	}
}

// NewDataType creates an unbound data type template.
func NewDataType(name string, kind Kind, opts ...DataTypeOption) *DataType {
	t := &DataType{name: name, kind: kind, renders: map[string]string{}}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Built-in data types. BOOLEAN stores as integer 0/1, the temporal types
// store as ISO-8601 text, matching what the SQLite storage classes require;
// the converters apply on every dialect so values round-trip identically.
var (
	Blob = NewDataType("BLOB", KindBytes,
		WithRender(dialect.Postgres, "BYTEA"),
		WithRender(dialect.SQLServer, "VARBINARY(MAX)"))
	Boolean = NewDataType("BOOLEAN", KindBool,
		WithConverters(boolToRaw, boolFromRaw),
		WithRender(dialect.SQLite, "INTEGER"),
		WithRender(dialect.SQLServer, "BIT"))
	Date     = temporalType("DATE", KindDate)
	DateTime = temporalType("DATETIME", KindDateTime,
		WithRender(dialect.Postgres, "TIMESTAMP"),
		WithRender(dialect.SQLServer, "DATETIME2"))
	Float   = NewDataType("FLOAT", KindFloat)
	Integer = NewDataType("INTEGER", KindInt)
	Text    = NewDataType("TEXT", KindString,
		WithRender(dialect.SQLServer, "NVARCHAR(255)"))
	Time = temporalType("TIME", KindTime)
)

// Varchar returns a VARCHAR(size) data type template.
func Varchar(size int) *DataType {
	return NewDataType("VARCHAR", KindString, WithSize(size))
}

// NVarchar returns an NVARCHAR(size) data type template.
func NVarchar(size int) *DataType {
	return NewDataType("NVARCHAR", KindString, WithSize(size))
}

func temporalType(name string, kind Kind, opts ...DataTypeOption) *DataType {
	base := []DataTypeOption{
		WithConverters(temporalToRaw(kind), temporalFromRaw(kind)),
		WithRender(dialect.SQLite, "TEXT"),
	}
	return NewDataType(name, kind, append(base, opts...)...)
}

// Name returns the SQL type name without a length parameter.
func (t *DataType) Name() string { return t.name }

// Kind returns the native value kind.
func (t *DataType) Kind() Kind { return t.kind }

// Size returns the length parameter, or 0 when the type has none.
func (t *DataType) Size() int { return t.size }

// Bound reports whether the type has been bound to a database dialect.
func (t *DataType) Bound() bool { return t.dialect != "" }

// Dialect returns the bound dialect name, or "" for an unbound template.
func (t *DataType) Dialect() string { return t.dialect }

// bind produces a fresh instance of the template bound to the given dialect.
func (t *DataType) bind(dialectName string) *DataType {
	bound := *t
	bound.dialect = dialectName
	return &bound
}

// key identifies the logical type within a database's bound-type registry.
func (t *DataType) key() string {
	if t.size > 0 {
		return fmt.Sprintf("%s(%d)", t.name, t.size)
	}
	return t.name
}

// Render returns the SQL type text for the bound dialect.
func (t *DataType) Render() (string, error) {
	if !t.Bound() {
		return "", &NotAttachedError{Kind: "data type", Name: t.name}
	}
	if text, ok := t.renders[t.dialect]; ok {
		return text, nil
	}
	if t.size > 0 {
		return fmt.Sprintf("%s(%d)", t.name, t.size), nil
	}
	return t.name, nil
}

// ToRawConverter returns the type-level to-raw converter, or nil.
func (t *DataType) ToRawConverter() Converter { return t.toRaw }

// FromRawConverter returns the type-level from-raw converter, or nil.
func (t *DataType) FromRawConverter() Converter { return t.fromRaw }

func boolToRaw(value any) (any, error) {
	switch v := value.(type) {
	case bool:
		if v {
			return int64(1), nil
		}
		return int64(0), nil
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	default:
		return nil, fmt.Errorf("schema: cannot store %T as BOOLEAN", value)
	}
}

func boolFromRaw(value any) (any, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case int64:
		return v != 0, nil
	case int:
		return v != 0, nil
	case float64:
		return v != 0, nil
	default:
		return nil, fmt.Errorf("schema: cannot read %T as BOOLEAN", value)
	}
}

func temporalToRaw(kind Kind) Converter {
	return func(value any) (any, error) {
		switch v := value.(type) {
		case time.Time:
			return kind.FormatTime(v), nil
		case string:
			return v, nil
		default:
			return nil, fmt.Errorf("schema: cannot store %T as %s", value, strings.ToUpper(kind.String()))
		}
	}
}

func temporalFromRaw(kind Kind) Converter {
	return func(value any) (any, error) {
		switch v := value.(type) {
		case time.Time:
			return v, nil
		case string:
			return kind.ParseTime(v)
		case []byte:
			return kind.ParseTime(string(v))
		default:
			return nil, fmt.Errorf("schema: cannot read %T as %s", value, strings.ToUpper(kind.String()))
		}
	}
}
