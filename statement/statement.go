package statement

import (
	"fmt"

	"github.com/Sterbis/sqldatabase/schema"
	"github.com/Sterbis/sqldatabase/transpile"
)

// Binding is one row-value parameter slot of a built statement: the
// generated parameter name and the schema item whose conversion pipeline
// the bound value runs through.
type Binding struct {
	Name string
	Item schema.Item
}

// Statement is a built SQL statement: template text with :named placeholders
// written in the Source dialect's placeholder grammar, the parameters bound
// into it, and the row-value binding slots batch execution rebinds. The
// template renders once per Build; per-row parameter collections are fresh
// derivations, never mutations of the statement.
type Statement struct {
	Kind        transpile.StatementKind
	TemplateSQL string
	Parameters  *transpile.Parameters
	Source      string
	ReturnsIDs  bool
	Bindings    []Binding
}

// RowParameters derives a fresh parameter collection binding the given row
// values onto the statement's binding slots in order. Parameters outside the
// binding slots, such as condition parameters, carry over unchanged.
func (s *Statement) RowParameters(values ...any) (*transpile.Parameters, error) {
	if len(values) != len(s.Bindings) {
		return nil, fmt.Errorf("statement: statement binds %d values, got %d", len(s.Bindings), len(values))
	}
	params := transpile.Named()
	bound := make(map[string]bool, len(s.Bindings))
	for i, b := range s.Bindings {
		raw, err := schema.ToRawValue(b.Item, values[i])
		if err != nil {
			return nil, err
		}
		if err := params.Add(b.Name, raw); err != nil {
			return nil, err
		}
		bound[b.Name] = true
	}
	if s.Parameters != nil {
		for _, name := range s.Parameters.Names() {
			if bound[name] {
				continue
			}
			value, _ := s.Parameters.Value(name)
			if err := params.Add(name, value); err != nil {
				return nil, err
			}
		}
	}
	return params, nil
}
