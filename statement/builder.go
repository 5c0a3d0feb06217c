package statement

import (
	"fmt"

	"github.com/Sterbis/sqldatabase/dialect"
	"github.com/Sterbis/sqldatabase/schema"
	"github.com/Sterbis/sqldatabase/transpile"
)

// tableDialect returns the dialect of the database the table's set is bound
// to. Builders need it for the dialect-branched template clauses; everything
// placeholder-shaped stays in the source dialect.
func tableDialect(table *schema.Table) (string, error) {
	if table == nil {
		return "", fmt.Errorf("statement: nil table")
	}
	if err := table.Err(); err != nil {
		return "", err
	}
	ts := table.Tables()
	if ts == nil || !ts.Bound() {
		return "", &schema.NotAttachedError{Kind: "table", Name: table.Name()}
	}
	return ts.Dialect(), nil
}

// rowColumns validates a row item list: non-empty, columns only, every
// column owned by the table.
func rowColumns(table *schema.Table, items []schema.Item) ([]*schema.Column, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("statement: no columns given for table %s", table.Name())
	}
	columns := make([]*schema.Column, 0, len(items))
	for _, item := range items {
		column, ok := item.(*schema.Column)
		if !ok {
			return nil, fmt.Errorf("statement: row items must be columns, got %T", item)
		}
		if column.Table() != table {
			return nil, fmt.Errorf("statement: column %s does not belong to table %s", column.Name(), table.Name())
		}
		columns = append(columns, column)
	}
	return columns, nil
}

type createTableData struct {
	Dialect     string
	IfNotExists bool
	Name        string
	Columns     []columnData
	ForeignKeys []foreignKeyData
}

type columnData struct {
	Name          string
	Type          string
	PrimaryKey    bool
	Autoincrement bool
	NotNull       bool
	Unique        bool
	HasDefault    bool
	Default       string
}

type foreignKeyData struct {
	Column    string
	RefTable  string
	RefColumn string
	OnDelete  string
}

// CreateTable builds a CREATE TABLE statement: column definitions,
// constraints, defaults and foreign key clauses.
type CreateTable struct {
	table       *schema.Table
	ifNotExists bool
}

// NewCreateTable returns a CREATE TABLE builder for the table.
func NewCreateTable(table *schema.Table) *CreateTable {
	return &CreateTable{table: table}
}

// IfNotExists makes the statement a no-op when the table already exists.
func (b *CreateTable) IfNotExists() *CreateTable {
	b.ifNotExists = true
	return b
}

// Build renders the statement.
func (b *CreateTable) Build() (*Statement, error) {
	dialectName, err := tableDialect(b.table)
	if err != nil {
		return nil, err
	}
	name, err := b.table.FullyQualifiedName()
	if err != nil {
		return nil, err
	}
	columns := b.table.Columns()
	if len(columns) == 0 {
		return nil, fmt.Errorf("statement: table %s has no columns", b.table.Name())
	}
	data := createTableData{Dialect: dialectName, IfNotExists: b.ifNotExists, Name: name}
	for _, c := range columns {
		text, err := c.DataType().Render()
		if err != nil {
			return nil, err
		}
		cd := columnData{
			Name:          c.Name(),
			Type:          text,
			PrimaryKey:    c.IsPrimaryKey(),
			Autoincrement: c.IsAutoincrement(),
			NotNull:       c.IsNotNull(),
			Unique:        c.IsUnique(),
		}
		if value, ok := c.DefaultValue(); ok {
			cd.HasDefault = true
			if cd.Default, err = literal(value, c.DataType().Kind(), dialectName); err != nil {
				return nil, err
			}
		}
		data.Columns = append(data.Columns, cd)
		if ref := c.Reference(); ref != nil {
			refTable, err := ref.Table().FullyQualifiedName()
			if err != nil {
				return nil, err
			}
			data.ForeignKeys = append(data.ForeignKeys, foreignKeyData{
				Column:    c.Name(),
				RefTable:  refTable,
				RefColumn: ref.Name(),
				OnDelete:  string(c.OnDeleteAction()),
			})
		}
	}
	sql, err := render("create_table.tmpl", data)
	if err != nil {
		return nil, err
	}
	return &Statement{
		Kind:        transpile.KindCreateTable,
		TemplateSQL: sql,
		Parameters:  transpile.Named(),
		Source:      dialect.Default,
	}, nil
}

type dropTableData struct {
	IfExists bool
	Name     string
}

// DropTable builds a DROP TABLE statement.
type DropTable struct {
	table    *schema.Table
	ifExists bool
}

// NewDropTable returns a DROP TABLE builder for the table.
func NewDropTable(table *schema.Table) *DropTable {
	return &DropTable{table: table}
}

// IfExists makes the statement a no-op when the table does not exist.
func (b *DropTable) IfExists() *DropTable {
	b.ifExists = true
	return b
}

// Build renders the statement.
func (b *DropTable) Build() (*Statement, error) {
	if _, err := tableDialect(b.table); err != nil {
		return nil, err
	}
	name, err := b.table.FullyQualifiedName()
	if err != nil {
		return nil, err
	}
	sql, err := render("drop_table.tmpl", dropTableData{IfExists: b.ifExists, Name: name})
	if err != nil {
		return nil, err
	}
	return &Statement{
		Kind:        transpile.KindDropTable,
		TemplateSQL: sql,
		Parameters:  transpile.Named(),
		Source:      dialect.Default,
	}, nil
}

type insertData struct {
	Name      string
	Columns   []string
	Params    []string
	Returning string
}

// Insert builds an INSERT statement with one named parameter slot per
// column. The template ends with RETURNING <pk> when the table has a primary
// key; the transpile layer reshapes or drops the clause per target dialect.
type Insert struct {
	table     *schema.Table
	items     []schema.Item
	values    []any
	hasValues bool
}

// NewInsert returns an INSERT builder over the given columns.
func NewInsert(table *schema.Table, items ...schema.Item) *Insert {
	return &Insert{table: table, items: items}
}

// Values binds one row of values onto the columns, in declaration order.
// Batch execution skips Values and derives per-row parameters with
// Statement.RowParameters instead.
func (b *Insert) Values(values ...any) *Insert {
	b.values = values
	b.hasValues = true
	return b
}

// Build renders the statement.
func (b *Insert) Build() (*Statement, error) {
	if _, err := tableDialect(b.table); err != nil {
		return nil, err
	}
	name, err := b.table.FullyQualifiedName()
	if err != nil {
		return nil, err
	}
	columns, err := rowColumns(b.table, b.items)
	if err != nil {
		return nil, err
	}
	data := insertData{Name: name}
	bindings := make([]Binding, 0, len(columns))
	for _, column := range columns {
		param, err := column.ParameterName()
		if err != nil {
			return nil, err
		}
		data.Columns = append(data.Columns, column.Name())
		data.Params = append(data.Params, param)
		bindings = append(bindings, Binding{Name: param, Item: column})
	}
	if pk := b.table.PrimaryKeyColumn(); pk != nil {
		data.Returning = pk.Name()
	}
	sql, err := render("insert.tmpl", data)
	if err != nil {
		return nil, err
	}
	st := &Statement{
		Kind:        transpile.KindInsert,
		TemplateSQL: sql,
		Parameters:  transpile.Named(),
		Source:      dialect.Default,
		ReturnsIDs:  data.Returning != "",
		Bindings:    bindings,
	}
	if b.hasValues {
		if st.Parameters, err = st.RowParameters(b.values...); err != nil {
			return nil, err
		}
	}
	return st, nil
}

type selectData struct {
	Dialect   string
	Subquery  bool
	Distinct  bool
	Items     []selectItemData
	From      string
	Joins     []string
	Where     string
	GroupBy   []string
	Having    string
	OrderBy   []string
	Limit     int
	HasLimit  bool
	Offset    int
	HasOffset bool
}

type selectItemData struct {
	SQL   string
	Alias string
}

// Select builds a SELECT statement. Methods chain and defer their errors to
// Build. Items default to all table columns; each renders aliased with its
// canonical identity so result rows decode back into records.
type Select struct {
	table     *schema.Table
	items     []schema.Item
	distinct  bool
	joins     []join
	where     Condition
	groupBy   []schema.Item
	having    Condition
	orderBy   []any
	limit     int
	hasLimit  bool
	offset    int
	hasOffset bool
}

// NewSelect returns a SELECT builder over the table.
func NewSelect(table *schema.Table) *Select {
	return &Select{table: table}
}

// Items appends selected columns and aggregates.
func (b *Select) Items(items ...schema.Item) *Select {
	b.items = append(b.items, items...)
	return b
}

// Distinct adds DISTINCT.
func (b *Select) Distinct() *Select {
	b.distinct = true
	return b
}

// Join adds an INNER JOIN resolved through the foreign key graph.
func (b *Select) Join(table *schema.Table) *Select { return b.joinAs(JoinInner, table) }

// LeftJoin adds a LEFT JOIN resolved through the foreign key graph.
func (b *Select) LeftJoin(table *schema.Table) *Select { return b.joinAs(JoinLeft, table) }

// RightJoin adds a RIGHT JOIN resolved through the foreign key graph.
func (b *Select) RightJoin(table *schema.Table) *Select { return b.joinAs(JoinRight, table) }

// FullJoin adds a FULL JOIN resolved through the foreign key graph.
func (b *Select) FullJoin(table *schema.Table) *Select { return b.joinAs(JoinFull, table) }

// CrossJoin adds a CROSS JOIN; no ON condition is resolved.
func (b *Select) CrossJoin(table *schema.Table) *Select { return b.joinAs(JoinCross, table) }

func (b *Select) joinAs(typ JoinType, table *schema.Table) *Select {
	b.joins = append(b.joins, join{typ: typ, table: table})
	return b
}

// Where adds a row filter; successive calls AND together.
func (b *Select) Where(cond Condition) *Select {
	if b.where == nil {
		b.where = cond
	} else {
		b.where = Combine(b.where, LogicalAnd, cond)
	}
	return b
}

// GroupBy appends grouping items.
func (b *Select) GroupBy(items ...schema.Item) *Select {
	b.groupBy = append(b.groupBy, items...)
	return b
}

// Having adds a group filter; successive calls AND together.
func (b *Select) Having(cond Condition) *Select {
	if b.having == nil {
		b.having = cond
	} else {
		b.having = Combine(b.having, LogicalAnd, cond)
	}
	return b
}

// OrderBy appends ordering items. An Ascending or Descending marker binds to
// the item immediately preceding it; unmarked items use the dialect default.
func (b *Select) OrderBy(items ...any) *Select {
	b.orderBy = append(b.orderBy, items...)
	return b
}

// Limit caps the number of returned rows.
func (b *Select) Limit(n int) *Select {
	b.limit, b.hasLimit = n, true
	return b
}

// Offset skips the first n rows.
func (b *Select) Offset(n int) *Select {
	b.offset, b.hasOffset = n, true
	return b
}

// Build renders the statement.
func (b *Select) Build() (*Statement, error) {
	sql, params, err := b.build(false)
	if err != nil {
		return nil, err
	}
	return &Statement{
		Kind:        transpile.KindSelect,
		TemplateSQL: sql,
		Parameters:  params,
		Source:      dialect.Default,
	}, nil
}

// subquery renders the select for inlining into a condition: exactly one
// item, no aliasing, no trailing semicolon.
func (b *Select) subquery() (string, *transpile.Parameters, error) {
	return b.build(true)
}

// scalarItem returns the single selected item a scalar subquery compares
// through.
func (b *Select) scalarItem() (schema.Item, error) {
	items := b.effectiveItems()
	if len(items) != 1 {
		return nil, fmt.Errorf("statement: subquery must select exactly one item, got %d", len(items))
	}
	return items[0], nil
}

// parameterName generates a parameter name for scalar values compared
// against the subquery.
func (b *Select) parameterName() (string, error) {
	item, err := b.scalarItem()
	if err != nil {
		return "", err
	}
	name, err := item.ParameterName()
	if err != nil {
		return "", err
	}
	return "SELECT_" + name, nil
}

func (b *Select) effectiveItems() []schema.Item {
	if len(b.items) > 0 {
		return b.items
	}
	columns := b.table.Columns()
	items := make([]schema.Item, len(columns))
	for i, c := range columns {
		items[i] = c
	}
	return items
}

func (b *Select) build(asSubquery bool) (string, *transpile.Parameters, error) {
	dialectName, err := tableDialect(b.table)
	if err != nil {
		return "", nil, err
	}
	from, err := b.table.FullyQualifiedName()
	if err != nil {
		return "", nil, err
	}
	items := b.effectiveItems()
	if asSubquery && len(items) != 1 {
		return "", nil, fmt.Errorf("statement: subquery must select exactly one item, got %d", len(items))
	}
	params := transpile.Named()
	data := selectData{
		Dialect:   dialectName,
		Subquery:  asSubquery,
		Distinct:  b.distinct,
		From:      from,
		Limit:     b.limit,
		HasLimit:  b.hasLimit,
		Offset:    b.offset,
		HasOffset: b.hasOffset,
	}
	for _, item := range items {
		itemSQL, err := item.SQL()
		if err != nil {
			return "", nil, err
		}
		entry := selectItemData{SQL: itemSQL}
		if !asSubquery {
			if entry.Alias, err = item.Alias(); err != nil {
				return "", nil, err
			}
		}
		data.Items = append(data.Items, entry)
	}
	candidates := []*schema.Table{b.table}
	for _, j := range b.joins {
		clause, err := resolveJoin(j, candidates)
		if err != nil {
			return "", nil, err
		}
		data.Joins = append(data.Joins, clause)
		candidates = append(candidates, j.table)
	}
	if b.where != nil {
		if err := b.where.Err(); err != nil {
			return "", nil, err
		}
		data.Where = b.where.SQL()
		if err := params.Merge(b.where.Parameters()); err != nil {
			return "", nil, err
		}
	}
	for _, g := range b.groupBy {
		gSQL, err := g.SQL()
		if err != nil {
			return "", nil, err
		}
		data.GroupBy = append(data.GroupBy, gSQL)
	}
	if b.having != nil {
		if err := b.having.Err(); err != nil {
			return "", nil, err
		}
		data.Having = b.having.SQL()
		if err := params.Merge(b.having.Parameters()); err != nil {
			return "", nil, err
		}
	}
	if data.OrderBy, err = parseOrderBy(b.orderBy); err != nil {
		return "", nil, err
	}
	sql, err := render("select.tmpl", data)
	if err != nil {
		return "", nil, err
	}
	return sql, params, nil
}

// parseOrderBy binds direction markers to their preceding items and renders
// each term.
func parseOrderBy(items []any) ([]string, error) {
	var rendered []string
	for i := 0; i < len(items); i++ {
		switch v := items[i].(type) {
		case *schema.Column, *schema.Function:
			itemSQL, err := v.(schema.Item).SQL()
			if err != nil {
				return nil, err
			}
			if i+1 < len(items) {
				if dir, ok := items[i+1].(OrderDirection); ok {
					itemSQL += " " + string(dir)
					i++
				}
			}
			rendered = append(rendered, itemSQL)
		case OrderDirection:
			return nil, fmt.Errorf("statement: order direction %s must follow an item", v)
		default:
			return nil, fmt.Errorf("statement: unsupported order by item %T", items[i])
		}
	}
	return rendered, nil
}

type updateData struct {
	Name      string
	Sets      []setData
	Where     string
	Returning string
}

type setData struct {
	Column string
	Param  string
}

// Update builds an UPDATE statement: one SET slot per column, a mandatory
// WHERE condition and RETURNING when the table has a primary key.
type Update struct {
	table     *schema.Table
	items     []schema.Item
	values    []any
	hasValues bool
	where     Condition
}

// NewUpdate returns an UPDATE builder over the given columns.
func NewUpdate(table *schema.Table, items ...schema.Item) *Update {
	return &Update{table: table, items: items}
}

// Values binds one row of values onto the columns, in declaration order.
func (b *Update) Values(values ...any) *Update {
	b.values = values
	b.hasValues = true
	return b
}

// Where sets the row filter; successive calls AND together.
func (b *Update) Where(cond Condition) *Update {
	if b.where == nil {
		b.where = cond
	} else {
		b.where = Combine(b.where, LogicalAnd, cond)
	}
	return b
}

// Build renders the statement.
func (b *Update) Build() (*Statement, error) {
	if _, err := tableDialect(b.table); err != nil {
		return nil, err
	}
	name, err := b.table.FullyQualifiedName()
	if err != nil {
		return nil, err
	}
	columns, err := rowColumns(b.table, b.items)
	if err != nil {
		return nil, err
	}
	if b.where == nil {
		return nil, fmt.Errorf("statement: update of %s without a where condition", b.table.Name())
	}
	if err := b.where.Err(); err != nil {
		return nil, err
	}
	data := updateData{Name: name, Where: b.where.SQL()}
	bindings := make([]Binding, 0, len(columns))
	for _, column := range columns {
		param, err := column.ParameterName()
		if err != nil {
			return nil, err
		}
		data.Sets = append(data.Sets, setData{Column: column.Name(), Param: param})
		bindings = append(bindings, Binding{Name: param, Item: column})
	}
	if pk := b.table.PrimaryKeyColumn(); pk != nil {
		data.Returning = pk.Name()
	}
	sql, err := render("update.tmpl", data)
	if err != nil {
		return nil, err
	}
	params := transpile.Named()
	if err := params.Merge(b.where.Parameters()); err != nil {
		return nil, err
	}
	st := &Statement{
		Kind:        transpile.KindUpdate,
		TemplateSQL: sql,
		Parameters:  params,
		Source:      dialect.Default,
		ReturnsIDs:  data.Returning != "",
		Bindings:    bindings,
	}
	if b.hasValues {
		if st.Parameters, err = st.RowParameters(b.values...); err != nil {
			return nil, err
		}
	}
	return st, nil
}

type deleteData struct {
	Name      string
	Where     string
	Returning string
}

// Delete builds a DELETE statement with a mandatory WHERE condition and
// RETURNING when the table has a primary key.
type Delete struct {
	table *schema.Table
	where Condition
}

// NewDelete returns a DELETE builder over the table.
func NewDelete(table *schema.Table) *Delete {
	return &Delete{table: table}
}

// Where sets the row filter; successive calls AND together.
func (b *Delete) Where(cond Condition) *Delete {
	if b.where == nil {
		b.where = cond
	} else {
		b.where = Combine(b.where, LogicalAnd, cond)
	}
	return b
}

// Build renders the statement.
func (b *Delete) Build() (*Statement, error) {
	if _, err := tableDialect(b.table); err != nil {
		return nil, err
	}
	name, err := b.table.FullyQualifiedName()
	if err != nil {
		return nil, err
	}
	if b.where == nil {
		return nil, fmt.Errorf("statement: delete from %s without a where condition", b.table.Name())
	}
	if err := b.where.Err(); err != nil {
		return nil, err
	}
	data := deleteData{Name: name, Where: b.where.SQL()}
	if pk := b.table.PrimaryKeyColumn(); pk != nil {
		data.Returning = pk.Name()
	}
	sql, err := render("delete.tmpl", data)
	if err != nil {
		return nil, err
	}
	params := transpile.Named()
	if err := params.Merge(b.where.Parameters()); err != nil {
		return nil, err
	}
	return &Statement{
		Kind:        transpile.KindDelete,
		TemplateSQL: sql,
		Parameters:  params,
		Source:      dialect.Default,
		ReturnsIDs:  data.Returning != "",
	}, nil
}
