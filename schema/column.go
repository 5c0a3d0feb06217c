package schema

import (
	"encoding/hex"
	"fmt"
	"reflect"
	"strings"

	"github.com/google/uuid"
)

// ReferenceAction is the ON DELETE behavior of a foreign key reference.
type ReferenceAction string

// Foreign key ON DELETE actions.
const (
	NoAction   ReferenceAction = "NO ACTION"
	Restrict   ReferenceAction = "RESTRICT"
	SetNull    ReferenceAction = "SET NULL"
	SetDefault ReferenceAction = "SET DEFAULT"
	Cascade    ReferenceAction = "CASCADE"
)

// ReferenceActionByName resolves the textual form used in YAML schema specs.
func ReferenceActionByName(name string) (ReferenceAction, error) {
	switch a := ReferenceAction(strings.ToUpper(strings.TrimSpace(name))); a {
	case NoAction, Restrict, SetNull, SetDefault, Cascade:
		return a, nil
	default:
		return "", fmt.Errorf("schema: unknown ON DELETE action %q", name)
	}
}

// Expr is a raw SQL expression usable as a column default. It renders
// unquoted in column definitions.
type Expr string

// SQL expressions usable as column defaults.
const (
	CurrentTimestamp Expr = "CURRENT_TIMESTAMP"
	CurrentDate      Expr = "CURRENT_DATE"
	CurrentTime      Expr = "CURRENT_TIME"
)

// Column is a single table column. It is created unattached with NewColumn,
// configured through the chainable builder methods and attached to exactly
// one Table. Configuration errors are deferred and surface when the owning
// Tables set is built.
type Column struct {
	name          string
	dataType      *DataType
	primaryKey    bool
	autoincrement bool
	notNull       bool
	unique        bool
	defaultValue  any
	hasDefault    bool
	reference     *Column
	onDelete      ReferenceAction
	values        []string
	toRaw         Converter
	fromRaw       Converter
	table         *Table
	frozen        bool
	err           error
}

// NewColumn creates an unattached column of the given data type.
func NewColumn(name string, dataType *DataType) *Column {
	c := &Column{name: name, dataType: dataType}
	if name == "" {
		c.err = fmt.Errorf("schema: column name must not be empty")
	} else if name == aliasFunctionTag || name == aliasColumnTag {
		c.err = fmt.Errorf("schema: column name %q collides with an alias grammar token", name)
	}
	if dataType == nil && c.err == nil {
		c.err = fmt.Errorf("schema: column %q has no data type", name)
	}
	return c
}

// IDColumn returns the conventional integer autoincrement primary key column.
func IDColumn() *Column {
	return NewColumn("id", Integer).PrimaryKey().Autoincrement()
}

// PrimaryKey marks the column as the table primary key.
func (c *Column) PrimaryKey() *Column {
	if c.mutable() {
		c.primaryKey = true
	}
	return c
}

// Autoincrement marks the column as auto-incrementing.
func (c *Column) Autoincrement() *Column {
	if c.mutable() {
		c.autoincrement = true
	}
	return c
}

// NotNull adds a NOT NULL constraint.
func (c *Column) NotNull() *Column {
	if c.mutable() {
		c.notNull = true
	}
	return c
}

// Unique adds a UNIQUE constraint.
func (c *Column) Unique() *Column {
	if c.mutable() {
		c.unique = true
	}
	return c
}

// Default sets the column default. Pass an Expr for raw SQL expressions such
// as CURRENT_TIMESTAMP; any other value renders as a literal.
func (c *Column) Default(value any) *Column {
	if c.mutable() {
		c.defaultValue = value
		c.hasDefault = true
	}
	return c
}

// References declares a foreign key to another table's column.
func (c *Column) References(target *Column) *Column {
	if !c.mutable() {
		return c
	}
	if target == nil {
		c.err = fmt.Errorf("schema: column %q references a nil column", c.name)
		return c
	}
	c.reference = target
	return c
}

// OnDelete sets the ON DELETE action of the foreign key declared with References.
func (c *Column) OnDelete(action ReferenceAction) *Column {
	if !c.mutable() {
		return c
	}
	if c.reference == nil {
		c.err = fmt.Errorf("schema: column %q sets ON DELETE without a reference", c.name)
		return c
	}
	c.onDelete = action
	return c
}

// Values restricts the column to an enumerated set of string values and
// derives membership-validating converters. Mutually exclusive with Converters.
func (c *Column) Values(values ...string) *Column {
	if !c.mutable() {
		return c
	}
	switch {
	case len(values) == 0:
		c.err = fmt.Errorf("schema: column %q declares an empty value set", c.name)
	case c.toRaw != nil || c.fromRaw != nil:
		c.err = fmt.Errorf("schema: column %q declares both values and converters", c.name)
	default:
		c.values = values
	}
	return c
}

// Converters sets custom item-level raw-value converters. Mutually exclusive
// with Values.
func (c *Column) Converters(toRaw, fromRaw Converter) *Column {
	if !c.mutable() {
		return c
	}
	if c.values != nil {
		c.err = fmt.Errorf("schema: column %q declares both values and converters", c.name)
		return c
	}
	c.toRaw, c.fromRaw = toRaw, fromRaw
	return c
}

func (c *Column) mutable() bool {
	if c.frozen && c.err == nil {
		c.err = fmt.Errorf("schema: column %q modified after its table set was built", c.name)
	}
	return !c.frozen
}

// Name returns the column name.
func (c *Column) Name() string { return c.name }

// DataType returns the column data type. After the owning Tables set is bound
// to a database this is the per-database bound instance.
func (c *Column) DataType() *DataType { return c.dataType }

// Table returns the owning table, or nil before attachment.
func (c *Column) Table() *Table { return c.table }

// IsPrimaryKey reports whether the column is a primary key.
func (c *Column) IsPrimaryKey() bool { return c.primaryKey }

// IsAutoincrement reports whether the column auto-increments.
func (c *Column) IsAutoincrement() bool { return c.autoincrement }

// IsNotNull reports whether the column carries a NOT NULL constraint.
func (c *Column) IsNotNull() bool { return c.notNull }

// IsUnique reports whether the column carries a UNIQUE constraint.
func (c *Column) IsUnique() bool { return c.unique }

// DefaultValue returns the declared default and whether one was set.
func (c *Column) DefaultValue() (any, bool) { return c.defaultValue, c.hasDefault }

// Reference returns the referenced column, or nil.
func (c *Column) Reference() *Column { return c.reference }

// OnDeleteAction returns the ON DELETE action, or "" when none was declared.
func (c *Column) OnDeleteAction() ReferenceAction { return c.onDelete }

// EnumValues returns the enumerated value set, or nil.
func (c *Column) EnumValues() []string { return c.values }

// Err returns the first configuration error recorded on the column.
func (c *Column) Err() error { return c.err }

// FullyQualifiedName returns <table fqn>.<column name>. It fails with a
// NotAttachedError until the column's table is attached to a database.
func (c *Column) FullyQualifiedName() (string, error) {
	if c.table == nil {
		return "", &NotAttachedError{Kind: "column", Name: c.name}
	}
	tableName, err := c.table.FullyQualifiedName()
	if err != nil {
		return "", err
	}
	return tableName + "." + c.name, nil
}

// Alias returns the canonical identity encoding of the column, used to name
// result columns and as the Record key.
func (c *Column) Alias() (string, error) {
	fqn, err := c.FullyQualifiedName()
	if err != nil {
		return "", err
	}
	return aliasColumnTag + "." + fqn, nil
}

// SQL returns the column's rendering inside statement text.
func (c *Column) SQL() (string, error) {
	return c.FullyQualifiedName()
}

// ParameterName generates a globally unique named-parameter name for the
// column: the fully qualified name with dots replaced by underscores plus a
// random 8-hex suffix.
func (c *Column) ParameterName() (string, error) {
	fqn, err := c.FullyQualifiedName()
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(fqn, ".", "_") + "_" + parameterSuffix(), nil
}

// ToRawConverter returns the item-level to-raw converter: the custom
// converter, the derived enum converter, or nil.
func (c *Column) ToRawConverter() Converter {
	if c.toRaw != nil {
		return c.toRaw
	}
	if c.values != nil {
		return c.enumToRaw
	}
	return nil
}

// FromRawConverter returns the item-level from-raw converter.
func (c *Column) FromRawConverter() Converter {
	if c.fromRaw != nil {
		return c.fromRaw
	}
	if c.values != nil {
		return c.enumFromRaw
	}
	return nil
}

func (c *Column) enumToRaw(value any) (any, error) {
	s, err := c.enumText(value)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (c *Column) enumFromRaw(value any) (any, error) {
	if b, ok := value.([]byte); ok {
		value = string(b)
	}
	return c.enumText(value)
}

func (c *Column) enumText(value any) (string, error) {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	default:
		rv := reflect.ValueOf(value)
		if rv.Kind() != reflect.String {
			return "", fmt.Errorf("schema: column %q expects a string-kind value, got %T", c.name, value)
		}
		s = rv.String()
	}
	for _, allowed := range c.values {
		if s == allowed {
			return s, nil
		}
	}
	return "", fmt.Errorf("schema: %q is not a valid value for column %q (want one of %s)",
		s, c.name, strings.Join(c.values, ", "))
}

func parameterSuffix() string {
	u := uuid.New()
	return hex.EncodeToString(u[:4])
}
