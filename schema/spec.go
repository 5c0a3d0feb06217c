package schema

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Spec is the YAML-loadable description of a table set. Building a Spec
// yields a fresh, independently owned Tables graph each time, so one spec
// can back any number of databases.
type Spec struct {
	Tables []TableSpec `yaml:"tables"`
}

// TableSpec describes one table.
type TableSpec struct {
	Name    string       `yaml:"name"`
	Schema  string       `yaml:"schema,omitempty"`
	Columns []ColumnSpec `yaml:"columns"`
}

// ColumnSpec describes one column. References use the "table.column" form
// and resolve against the other tables of the same spec.
type ColumnSpec struct {
	Name          string   `yaml:"name"`
	Type          string   `yaml:"type"`
	PrimaryKey    bool     `yaml:"primary_key,omitempty"`
	Autoincrement bool     `yaml:"autoincrement,omitempty"`
	NotNull       bool     `yaml:"not_null,omitempty"`
	Unique        bool     `yaml:"unique,omitempty"`
	Default       any      `yaml:"default,omitempty"`
	References    string   `yaml:"references,omitempty"`
	OnDelete      string   `yaml:"on_delete,omitempty"`
	Values        []string `yaml:"values,omitempty"`
}

// LoadSpec reads and parses a YAML schema spec file.
func LoadSpec(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schema: read spec: %w", err)
	}
	return ParseSpec(data)
}

// ParseSpec parses a YAML schema spec.
func ParseSpec(data []byte) (*Spec, error) {
	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("schema: parse spec: %w", err)
	}
	if len(spec.Tables) == 0 {
		return nil, fmt.Errorf("schema: spec declares no tables")
	}
	return &spec, nil
}

// sizedTypeRe matches parameterized type names such as VARCHAR(30).
var sizedTypeRe = regexp.MustCompile(`^([A-Za-z]+)\((\d+)\)$`)

// DataTypeByName resolves a spec type name, including the parameterized
// VARCHAR(n) and NVARCHAR(n) forms, to an unbound data type template.
func DataTypeByName(name string) (*DataType, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	if m := sizedTypeRe.FindStringSubmatch(upper); m != nil {
		size, err := strconv.Atoi(m[2])
		if err != nil || size <= 0 {
			return nil, fmt.Errorf("schema: invalid type size in %q", name)
		}
		switch m[1] {
		case "VARCHAR":
			return Varchar(size), nil
		case "NVARCHAR":
			return NVarchar(size), nil
		default:
			return nil, &NotFoundError{Kind: "data type", Name: name}
		}
	}
	switch upper {
	case "BLOB":
		return Blob, nil
	case "BOOLEAN":
		return Boolean, nil
	case "DATE":
		return Date, nil
	case "DATETIME":
		return DateTime, nil
	case "FLOAT":
		return Float, nil
	case "INTEGER":
		return Integer, nil
	case "TEXT":
		return Text, nil
	case "TIME":
		return Time, nil
	default:
		return nil, &NotFoundError{Kind: "data type", Name: name}
	}
}

// Build materializes the spec into a fresh Tables graph.
func (s *Spec) Build() (*Tables, error) {
	type pending struct {
		column *Column
		target string
		action string
	}
	var (
		tables  []*Table
		columns = make(map[string]*Column) // "table.column" -> column
		refs    []pending
	)
	for _, ts := range s.Tables {
		cols := make([]*Column, 0, len(ts.Columns))
		for _, cs := range ts.Columns {
			dt, err := DataTypeByName(cs.Type)
			if err != nil {
				return nil, fmt.Errorf("schema: table %q column %q: %w", ts.Name, cs.Name, err)
			}
			c := NewColumn(cs.Name, dt)
			if cs.PrimaryKey {
				c.PrimaryKey()
			}
			if cs.Autoincrement {
				c.Autoincrement()
			}
			if cs.NotNull {
				c.NotNull()
			}
			if cs.Unique {
				c.Unique()
			}
			if cs.Default != nil {
				c.Default(cs.Default)
			}
			if len(cs.Values) > 0 {
				c.Values(cs.Values...)
			}
			if cs.References != "" {
				refs = append(refs, pending{column: c, target: cs.References, action: cs.OnDelete})
			} else if cs.OnDelete != "" {
				return nil, fmt.Errorf("schema: table %q column %q sets on_delete without references", ts.Name, cs.Name)
			}
			cols = append(cols, c)
			columns[ts.Name+"."+cs.Name] = c
		}
		t := NewTable(ts.Name, cols...)
		if ts.Schema != "" {
			t.Schema(ts.Schema)
		}
		tables = append(tables, t)
	}
	for _, p := range refs {
		target, ok := columns[p.target]
		if !ok {
			return nil, fmt.Errorf("schema: reference %q does not resolve inside the spec", p.target)
		}
		p.column.References(target)
		if p.action != "" {
			action, err := ReferenceActionByName(p.action)
			if err != nil {
				return nil, err
			}
			p.column.OnDelete(action)
		}
	}
	return NewTables(tables...)
}
