package schema

import (
	"fmt"
	"slices"

	"github.com/Sterbis/sqldatabase/dialect"
)

// Namer renders fully qualified table names according to the owning
// database's dialect rules. Implemented by the Database facade.
type Namer interface {
	TableFullyQualifiedName(t *Table) string
}

// NamerFunc adapts a function to the Namer interface.
type NamerFunc func(t *Table) string

// TableFullyQualifiedName implements Namer.
func (f NamerFunc) TableFullyQualifiedName(t *Table) string { return f(t) }

// Table is a named, ordered collection of columns. It attaches to exactly
// one Tables set, and through it to exactly one database.
type Table struct {
	name    string
	schema  string
	columns []*Column
	byName  map[string]*Column
	tables  *Tables
	err     error
}

// NewTable creates a table owning the given columns in declaration order.
func NewTable(name string, columns ...*Column) *Table {
	t := &Table{name: name, byName: make(map[string]*Column, len(columns))}
	if name == "" {
		t.err = fmt.Errorf("schema: table name must not be empty")
	} else if name == aliasFunctionTag || name == aliasColumnTag {
		t.err = fmt.Errorf("schema: table name %q collides with an alias grammar token", name)
	}
	for _, c := range columns {
		switch {
		case c == nil:
			t.recordErr(fmt.Errorf("schema: table %q declares a nil column", name))
			continue
		case c.table != nil:
			t.recordErr(fmt.Errorf("schema: column %q is already attached to table %q", c.name, c.table.name))
			continue
		case t.byName[c.name] != nil:
			t.recordErr(fmt.Errorf("schema: table %q declares column %q twice", name, c.name))
			continue
		}
		c.table = t
		t.columns = append(t.columns, c)
		t.byName[c.name] = c
	}
	return t
}

func (t *Table) recordErr(err error) {
	if t.err == nil {
		t.err = err
	}
}

// Schema sets an explicit schema qualifier (for example "dbo" on SQL Server).
func (t *Table) Schema(name string) *Table {
	t.schema = name
	return t
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// SchemaName returns the explicit schema qualifier, or "".
func (t *Table) SchemaName() string { return t.schema }

// Tables returns the owning table set, or nil before the table joins one.
func (t *Table) Tables() *Tables { return t.tables }

// Err returns the first construction error recorded on the table or any of
// its columns.
func (t *Table) Err() error {
	if t.err != nil {
		return t.err
	}
	for _, c := range t.columns {
		if c.err != nil {
			return c.err
		}
	}
	return nil
}

// Columns returns the columns in declaration order.
func (t *Table) Columns() []*Column {
	return slices.Clone(t.columns)
}

// Column returns the column with the given name.
func (t *Table) Column(name string) (*Column, error) {
	c, ok := t.byName[name]
	if !ok {
		return nil, &NotFoundError{Kind: "column", Name: t.name + "." + name}
	}
	return c, nil
}

// PrimaryKeyColumn returns the first primary key column, or nil.
func (t *Table) PrimaryKeyColumn() *Column {
	for _, c := range t.columns {
		if c.primaryKey {
			return c
		}
	}
	return nil
}

// ForeignKeyColumns returns the columns declaring a reference, in order.
func (t *Table) ForeignKeyColumns() []*Column {
	var fks []*Column
	for _, c := range t.columns {
		if c.reference != nil {
			fks = append(fks, c)
		}
	}
	return fks
}

// ReferencedTables returns the distinct tables this table references,
// in first-reference order.
func (t *Table) ReferencedTables() []*Table {
	var refs []*Table
	for _, c := range t.columns {
		if c.reference == nil || c.reference.table == nil {
			continue
		}
		if !slices.Contains(refs, c.reference.table) {
			refs = append(refs, c.reference.table)
		}
	}
	return refs
}

// FullyQualifiedName delegates to the owning database's naming rules. It
// fails with a NotAttachedError until the Tables set is bound.
func (t *Table) FullyQualifiedName() (string, error) {
	if t.tables == nil || t.tables.namer == nil {
		return "", &NotAttachedError{Kind: "table", Name: t.name}
	}
	return t.tables.namer.TableFullyQualifiedName(t), nil
}

// JoinColumns resolves the foreign key relation between t and other,
// checking both directions. Exactly one relation must exist: the foreign
// key column is returned first, its referenced column second.
func (t *Table) JoinColumns(other *Table) (fk, ref *Column, err error) {
	var candidates []*Column
	for _, c := range other.ForeignKeyColumns() {
		if c.reference.table == t {
			candidates = append(candidates, c)
		}
	}
	for _, c := range t.ForeignKeyColumns() {
		if c.reference.table == other {
			candidates = append(candidates, c)
		}
	}
	switch len(candidates) {
	case 0:
		return nil, nil, &NoJoinPathError{Left: t.name, Right: other.name}
	case 1:
		return candidates[0], candidates[0].reference, nil
	default:
		return nil, nil, &AmbiguousJoinError{Left: t.name, Right: other.name, Count: len(candidates)}
	}
}

// Tables is an insertion-ordered table set owning the foreign key adjacency.
// The set is immutable once built and binds to exactly one database.
type Tables struct {
	list        []*Table
	byName      map[string]*Table
	referencing map[*Column][]*Column
	namer       Namer
	dialect     string
	types       map[string]*DataType
}

// NewTables builds a table set, validates every table and column, resolves
// foreign keys against the set and freezes the graph.
func NewTables(tables ...*Table) (*Tables, error) {
	ts := &Tables{
		byName:      make(map[string]*Table, len(tables)),
		referencing: make(map[*Column][]*Column),
	}
	for _, t := range tables {
		if t == nil {
			return nil, fmt.Errorf("schema: nil table in set")
		}
		if err := t.Err(); err != nil {
			return nil, err
		}
		if t.tables != nil {
			return nil, fmt.Errorf("schema: table %q is already part of a table set", t.name)
		}
		if ts.byName[t.name] != nil {
			return nil, fmt.Errorf("schema: duplicate table name %q", t.name)
		}
		ts.byName[t.name] = t
		ts.list = append(ts.list, t)
	}
	for _, t := range ts.list {
		for _, c := range t.columns {
			if c.reference == nil {
				continue
			}
			ref := c.reference
			if ref.table == nil {
				return nil, fmt.Errorf("schema: column %q references unattached column %q", c.name, ref.name)
			}
			if ts.byName[ref.table.name] != ref.table {
				return nil, fmt.Errorf("schema: column %q references column %q of table %q outside the set",
					c.name, ref.name, ref.table.name)
			}
			ts.referencing[ref] = append(ts.referencing[ref], c)
		}
	}
	for _, t := range ts.list {
		t.tables = ts
		for _, c := range t.columns {
			c.frozen = true
		}
	}
	return ts, nil
}

// All returns the tables in declaration order.
func (ts *Tables) All() []*Table {
	return slices.Clone(ts.list)
}

// Len returns the number of tables in the set.
func (ts *Tables) Len() int { return len(ts.list) }

// Table returns the table with the given name.
func (ts *Tables) Table(name string) (*Table, error) {
	t, ok := ts.byName[name]
	if !ok {
		return nil, &NotFoundError{Kind: "table", Name: name}
	}
	return t, nil
}

// ReferencingColumns returns the foreign key columns pointing at the given
// column, in declaration order across the set.
func (ts *Tables) ReferencingColumns(c *Column) []*Column {
	return slices.Clone(ts.referencing[c])
}

// Bound reports whether the set has been bound to a database.
func (ts *Tables) Bound() bool { return ts.namer != nil }

// Dialect returns the bound dialect name, or "".
func (ts *Tables) Dialect() string { return ts.dialect }

// Bind attaches the set to a database: the namer supplies fully qualified
// table names and every column's data type is replaced with an instance
// bound to the database dialect. A set binds exactly once.
func (ts *Tables) Bind(namer Namer, dialectName string) error {
	if ts.namer != nil {
		return fmt.Errorf("schema: table set is already bound to a database (dialect %s)", ts.dialect)
	}
	if namer == nil {
		return fmt.Errorf("schema: nil namer")
	}
	if err := dialect.Validate(dialectName); err != nil {
		return err
	}
	ts.namer = namer
	ts.dialect = dialectName
	ts.types = make(map[string]*DataType)
	for _, t := range ts.list {
		for _, c := range t.columns {
			key := c.dataType.key()
			bound, ok := ts.types[key]
			if !ok {
				bound = c.dataType.bind(dialectName)
				ts.types[key] = bound
			}
			c.dataType = bound
		}
	}
	return nil
}

// SortForDrop returns the tables in an order safe for DROP TABLE: at each
// step the tables not referenced by any other remaining table are peeled
// off, then the referenced remainder is sorted the same way. Cyclic
// references fail fast.
func (ts *Tables) SortForDrop() ([]*Table, error) {
	order := make([]*Table, 0, len(ts.list))
	remaining := ts.list
	for len(remaining) > 0 {
		var referenced []*Table
		for _, t := range remaining {
			for _, ref := range t.ReferencedTables() {
				if !slices.Contains(referenced, ref) {
					referenced = append(referenced, ref)
				}
			}
		}
		var unreferenced []*Table
		for _, t := range remaining {
			if !slices.Contains(referenced, t) {
				unreferenced = append(unreferenced, t)
			}
		}
		if len(unreferenced) == 0 {
			names := make([]string, len(remaining))
			for i, t := range remaining {
				names[i] = t.name
			}
			return nil, &CyclicReferenceError{Tables: names}
		}
		order = append(order, unreferenced...)
		remaining = referenced
	}
	return order, nil
}
