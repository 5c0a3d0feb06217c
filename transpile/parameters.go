package transpile

import (
	"database/sql"
	"fmt"
	"slices"
)

// Style discriminates the two parameter collection shapes.
type Style int

const (
	// StyleNamed is an insertion-ordered name to value mapping.
	StyleNamed Style = iota
	// StylePositional is a flat value sequence.
	StylePositional
)

// String returns the style name.
func (s Style) String() string {
	switch s {
	case StyleNamed:
		return "named"
	case StylePositional:
		return "positional"
	default:
		return fmt.Sprintf("Style(%d)", int(s))
	}
}

// Parameters carries the values bound to a statement's placeholders, either
// as an insertion-ordered named collection or as a positional sequence. The
// zero value is not usable; construct with Named or Positional.
type Parameters struct {
	style  Style
	names  []string
	byName map[string]any
	seq    []any
}

// Named returns an empty named parameter collection.
func Named() *Parameters {
	return &Parameters{style: StyleNamed, byName: make(map[string]any)}
}

// Positional returns a positional parameter collection holding the given
// values in order.
func Positional(values ...any) *Parameters {
	return &Parameters{style: StylePositional, seq: values}
}

// Style returns the collection style.
func (p *Parameters) Style() Style { return p.style }

// Len returns the number of parameters.
func (p *Parameters) Len() int {
	if p.style == StyleNamed {
		return len(p.names)
	}
	return len(p.seq)
}

// Add binds a value to a name. Binding a name twice fails with a
// DuplicateParameterError.
func (p *Parameters) Add(name string, value any) error {
	if p.style != StyleNamed {
		return fmt.Errorf("transpile: cannot add named parameter %q to a %s collection", name, p.style)
	}
	if name == "" {
		return fmt.Errorf("transpile: parameter name must not be empty")
	}
	if _, ok := p.byName[name]; ok {
		return NewDuplicateParameterError(name)
	}
	p.names = append(p.names, name)
	p.byName[name] = value
	return nil
}

// Append adds values to the end of a positional sequence.
func (p *Parameters) Append(values ...any) error {
	if p.style != StylePositional {
		return fmt.Errorf("transpile: cannot append positional values to a %s collection", p.style)
	}
	p.seq = append(p.seq, values...)
	return nil
}

// Merge folds other into p. Both collections must share the style; a name
// present on both sides fails with a DuplicateParameterError.
func (p *Parameters) Merge(other *Parameters) error {
	if other == nil {
		return nil
	}
	if p.style != other.style {
		return fmt.Errorf("transpile: cannot merge %s parameters into a %s collection", other.style, p.style)
	}
	if p.style == StylePositional {
		p.seq = append(p.seq, other.seq...)
		return nil
	}
	for _, name := range other.names {
		if err := p.Add(name, other.byName[name]); err != nil {
			return err
		}
	}
	return nil
}

// Names returns the parameter names in insertion order. Empty for
// positional collections.
func (p *Parameters) Names() []string {
	return slices.Clone(p.names)
}

// Value returns the value bound to name.
func (p *Parameters) Value(name string) (any, bool) {
	if p.style != StyleNamed {
		return nil, false
	}
	v, ok := p.byName[name]
	return v, ok
}

// Values returns the parameter values in order: insertion order for named
// collections, sequence order for positional ones.
func (p *Parameters) Values() []any {
	if p.style == StylePositional {
		return slices.Clone(p.seq)
	}
	values := make([]any, len(p.names))
	for i, name := range p.names {
		values[i] = p.byName[name]
	}
	return values
}

// Clone returns an independent copy of the collection.
func (p *Parameters) Clone() *Parameters {
	if p == nil {
		return nil
	}
	clone := &Parameters{style: p.style, seq: slices.Clone(p.seq)}
	if p.style == StyleNamed {
		clone.names = slices.Clone(p.names)
		clone.byName = make(map[string]any, len(p.byName))
		for name, value := range p.byName {
			clone.byName[name] = value
		}
	}
	return clone
}

// Args lowers the collection to driver arguments for database/sql: named
// parameters become sql.NamedArg values, positional ones pass through.
func (p *Parameters) Args() []any {
	if p.style == StylePositional {
		return slices.Clone(p.seq)
	}
	args := make([]any, len(p.names))
	for i, name := range p.names {
		args[i] = sql.Named(name, p.byName[name])
	}
	return args
}
