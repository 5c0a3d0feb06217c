package schema

import (
	"fmt"
	"strings"
)

// Alias grammar tokens. An alias is the canonical string identity of a
// selectable item: COLUMN.<table fqn>.<column> for columns, and
// FUNCTION.<name> or FUNCTION.<name>.COLUMN.<table fqn>.<column> for
// functions. Result columns are aliased with it so rows decode back into
// Records without positional knowledge.
const (
	aliasFunctionTag = "FUNCTION"
	aliasColumnTag   = "COLUMN"
)

// Item is a selectable schema object: a *Column or a *Function.
type Item interface {
	// Alias returns the canonical identity encoding of the item.
	Alias() (string, error)
	// SQL returns the item's rendering inside statement text.
	SQL() (string, error)
	// ParameterName generates a fresh globally unique parameter name.
	ParameterName() (string, error)
	// DataType returns the item's data type; nil for COUNT(*).
	DataType() *DataType
	// ToRawConverter returns the item-level to-raw converter, or nil.
	ToRawConverter() Converter
	// FromRawConverter returns the item-level from-raw converter, or nil.
	FromRawConverter() Converter
}

// ToRawValue converts a native value to its raw database form: the item-level
// converter applies first, then the type-level converter. NULL passes through.
func ToRawValue(item Item, value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	var err error
	if conv := item.ToRawConverter(); conv != nil {
		if value, err = conv(value); err != nil {
			return nil, err
		}
		if value == nil {
			return nil, nil
		}
	}
	if dt := item.DataType(); dt != nil {
		if conv := dt.ToRawConverter(); conv != nil {
			if value, err = conv(value); err != nil {
				return nil, err
			}
		}
	}
	return value, nil
}

// FromRawValue converts a raw database value to its native form: the
// type-level converter applies first, then the item-level converter. NULL
// passes through.
func FromRawValue(item Item, value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	var err error
	if dt := item.DataType(); dt != nil {
		if conv := dt.FromRawConverter(); conv != nil {
			if value, err = conv(value); err != nil {
				return nil, err
			}
			if value == nil {
				return nil, nil
			}
		}
	}
	if conv := item.FromRawConverter(); conv != nil {
		if value, err = conv(value); err != nil {
			return nil, err
		}
	}
	return value, nil
}

// ParsedAlias is the decoded form of an item alias.
type ParsedAlias struct {
	FunctionName string // "" for plain columns
	TablePath    string // dotted table fully qualified name; "" for COUNT(*)
	ColumnName   string // "" for COUNT(*)
}

// ParseAlias decodes an alias produced by Column.Alias or Function.Alias.
// The grammar locates the literal FUNCTION and COLUMN tokens in the
// dot-separated parts, so dotted table paths of any depth decode correctly.
func ParseAlias(alias string) (ParsedAlias, error) {
	var parsed ParsedAlias
	parts := strings.Split(alias, ".")
	if parts[0] == aliasFunctionTag {
		if len(parts) < 2 || parts[1] == "" {
			return parsed, fmt.Errorf("schema: malformed alias %q", alias)
		}
		parsed.FunctionName = parts[1]
		parts = parts[2:]
	}
	if len(parts) > 0 && parts[0] == aliasColumnTag {
		if len(parts) < 3 {
			return parsed, fmt.Errorf("schema: malformed alias %q", alias)
		}
		parsed.TablePath = strings.Join(parts[1:len(parts)-1], ".")
		parsed.ColumnName = parts[len(parts)-1]
		parts = nil
	}
	if parsed.FunctionName == "" && parsed.ColumnName == "" || len(parts) > 0 {
		return parsed, fmt.Errorf("schema: malformed alias %q", alias)
	}
	return parsed, nil
}
