package sqldatabase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Sterbis/sqldatabase/dialect"
	"github.com/Sterbis/sqldatabase/dialect/sql"
	"github.com/Sterbis/sqldatabase/schema"
	"github.com/Sterbis/sqldatabase/statement"
	"github.com/Sterbis/sqldatabase/transpile"
)

// Database executes statements for one bound table set. It owns the driver
// connection and the transpiler that lowers source-dialect templates into
// the driver's dialect, and it implements schema.Namer so table names render
// by its naming rules.
type Database struct {
	name        string
	dialect     string
	driver      dialect.Driver
	conn        dialect.ExecQuerier
	tables      *schema.Tables
	transpiler  *transpile.Transpiler
	attached    map[string]*Database
	attachOrder []string
	attachName  string
	logger      *slog.Logger
	cache       Cache
	cacheTTL    time.Duration
	inTx        bool
}

// Option configures a Database.
type Option func(*Database)

// WithLogger sets the statement logger. The default is slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(db *Database) {
		if logger != nil {
			db.logger = logger
		}
	}
}

// WithCache caches SELECT results in the given store. Entries live for ttl;
// a ttl of 0 keeps them until a write to the queried table evicts them.
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(db *Database) {
		db.cache = cache
		db.cacheTTL = ttl
	}
}

// New builds a Database over the given driver and binds the table set to it.
// The driver's dialect must match dialectName, and the table set must not be
// bound to another database.
func New(name, dialectName string, drv dialect.Driver, tables *schema.Tables, opts ...Option) (*Database, error) {
	if name == "" {
		return nil, fmt.Errorf("sqldatabase: database name must not be empty")
	}
	if err := dialect.Validate(dialectName); err != nil {
		return nil, err
	}
	if drv == nil {
		return nil, fmt.Errorf("sqldatabase: nil driver")
	}
	if got := drv.Dialect(); got != dialectName {
		return nil, fmt.Errorf("sqldatabase: driver dialect %q does not match %q", got, dialectName)
	}
	if tables == nil {
		return nil, fmt.Errorf("sqldatabase: nil table set")
	}
	transpiler, err := transpile.New(dialect.Default, dialectName, transpile.WithPretty())
	if err != nil {
		return nil, err
	}
	db := &Database{
		name:       name,
		dialect:    dialectName,
		driver:     drv,
		conn:       drv,
		tables:     tables,
		transpiler: transpiler,
		attached:   make(map[string]*Database),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(db)
	}
	if err := tables.Bind(db, dialectName); err != nil {
		return nil, err
	}
	return db, nil
}

// Name returns the database name.
func (db *Database) Name() string { return db.name }

// Dialect returns the dialect name the database executes in.
func (db *Database) Dialect() string { return db.dialect }

// Tables returns the bound table set.
func (db *Database) Tables() *schema.Tables { return db.tables }

// Driver returns the underlying driver.
func (db *Database) Driver() dialect.Driver { return db.driver }

// Close closes the underlying driver connection.
func (db *Database) Close() error { return db.driver.Close() }

// TableFullyQualifiedName implements schema.Namer. SQLite names are bare, or
// prefixed with the attach name once the database is attached to another.
// PostgreSQL prefixes the explicit schema when one is set, MySQL always uses
// bare names and SQL Server renders database.schema.table with dbo as the
// default schema.
func (db *Database) TableFullyQualifiedName(t *schema.Table) string {
	switch db.dialect {
	case dialect.SQLServer:
		s := t.SchemaName()
		if s == "" {
			s = "dbo"
		}
		return db.name + "." + s + "." + t.Name()
	case dialect.Postgres:
		if s := t.SchemaName(); s != "" {
			return s + "." + t.Name()
		}
		return t.Name()
	case dialect.SQLite:
		if db.attachName != "" {
			return db.attachName + "." + t.Name()
		}
		return t.Name()
	default:
		return t.Name()
	}
}

// Table resolves a table by its fully qualified name, falling back to the
// bare table name for unqualified lookups. Attached databases participate in
// the search with their own naming rules.
func (db *Database) Table(fqn string) (*schema.Table, error) {
	if t := db.renderLookup(fqn); t != nil {
		return t, nil
	}
	if !strings.Contains(fqn, ".") {
		if t, err := db.tables.Table(fqn); err == nil {
			return t, nil
		}
	}
	for _, name := range db.attachOrder {
		if t := db.attached[name].renderLookup(fqn); t != nil {
			return t, nil
		}
	}
	return nil, &schema.NotFoundError{Kind: "table", Name: fqn}
}

func (db *Database) renderLookup(fqn string) *schema.Table {
	for _, t := range db.tables.All() {
		if db.TableFullyQualifiedName(t) == fqn {
			return t
		}
	}
	return nil
}

// ItemByAlias resolves a canonical result alias back to the schema item it
// encodes: a column, a function over a column, or COUNT(*).
func (db *Database) ItemByAlias(alias string) (schema.Item, error) {
	parsed, err := schema.ParseAlias(alias)
	if err != nil {
		return nil, err
	}
	var column *schema.Column
	if parsed.ColumnName != "" {
		table, err := db.Table(parsed.TablePath)
		if err != nil {
			return nil, err
		}
		if column, err = table.Column(parsed.ColumnName); err != nil {
			return nil, err
		}
	}
	if parsed.FunctionName != "" {
		return schema.FunctionByName(parsed.FunctionName, column)
	}
	return column, nil
}

// Attach registers another SQLite database under the given attach name, the
// registry side of ATTACH DATABASE. From then on the attached database's
// tables render and resolve as name.table through this database. Attach does
// not execute the ATTACH statement; run it through Execute if the connection
// needs it.
func (db *Database) Attach(name string, other *Database) error {
	if name == "" {
		return fmt.Errorf("sqldatabase: attach name must not be empty")
	}
	if other == nil {
		return fmt.Errorf("sqldatabase: nil database")
	}
	if other == db {
		return fmt.Errorf("sqldatabase: cannot attach database %q to itself", db.name)
	}
	if db.dialect != dialect.SQLite || other.dialect != dialect.SQLite {
		return fmt.Errorf("sqldatabase: attach requires sqlite databases, have %s and %s", db.dialect, other.dialect)
	}
	if _, ok := db.attached[name]; ok {
		return fmt.Errorf("sqldatabase: attach name %q is already in use", name)
	}
	if other.attachName != "" {
		return fmt.Errorf("sqldatabase: database %q is already attached as %q", other.name, other.attachName)
	}
	other.attachName = name
	db.attached[name] = other
	db.attachOrder = append(db.attachOrder, name)
	return nil
}

// lower renders the statement template in the driver dialect and aligns the
// parameter collection with the rewritten placeholders.
func (db *Database) lower(templateSQL string, params *transpile.Parameters) (string, []any, error) {
	text, err := db.transpiler.SQL(templateSQL)
	if err != nil {
		return "", nil, err
	}
	if params == nil {
		params = transpile.Named()
	}
	reconciled, err := db.transpiler.Reconcile(templateSQL, params)
	if err != nil {
		return "", nil, err
	}
	return text, reconciled.Args(), nil
}

func (db *Database) exec(ctx context.Context, text string, args []any, v any) error {
	db.logger.DebugContext(ctx, "exec", "database", db.name, "sql", text, "args", args)
	if err := db.conn.Exec(ctx, text, args, v); err != nil {
		return db.translate(err)
	}
	return nil
}

func (db *Database) query(ctx context.Context, text string, args []any, rows *sql.Rows) error {
	db.logger.DebugContext(ctx, "query", "database", db.name, "sql", text, "args", args)
	if err := db.conn.Query(ctx, text, args, rows); err != nil {
		return db.translate(err)
	}
	return nil
}

// translate folds driver constraint violations into ConstraintError and
// passes everything else through.
func (db *Database) translate(err error) error {
	if sql.IsConstraintError(err) {
		return NewConstraintError(err.Error(), err)
	}
	return err
}

func (db *Database) invalidate(ctx context.Context, table *schema.Table) {
	if db.cache == nil {
		return
	}
	prefix := TableCachePrefix(db.TableFullyQualifiedName(table))
	if err := db.cache.DeletePrefix(ctx, prefix); err != nil {
		db.logger.WarnContext(ctx, "cache invalidation failed", "database", db.name, "prefix", prefix, "err", err)
	}
}

// CreateTable creates the table. With ifNotExists the statement carries
// IF NOT EXISTS and existing tables are left alone.
func (db *Database) CreateTable(ctx context.Context, table *schema.Table, ifNotExists bool) error {
	if err := db.createTable(ctx, table, ifNotExists); err != nil {
		return &MutationError{Table: tableName(table), Op: "create table", Err: err}
	}
	return nil
}

func (db *Database) createTable(ctx context.Context, table *schema.Table, ifNotExists bool) error {
	builder := statement.NewCreateTable(table)
	if ifNotExists {
		builder.IfNotExists()
	}
	st, err := builder.Build()
	if err != nil {
		return err
	}
	return db.execStatement(ctx, st)
}

// CreateAllTables creates every table of the bound set in declaration order.
// Declaration order must list referenced tables before referencing ones; the
// set validates references at build time, so declaration order is safe.
func (db *Database) CreateAllTables(ctx context.Context, ifNotExists bool) error {
	for _, table := range db.tables.All() {
		if err := db.CreateTable(ctx, table, ifNotExists); err != nil {
			return err
		}
	}
	return nil
}

// DropTable drops the table. With ifExists the statement carries IF EXISTS
// and missing tables are not an error.
func (db *Database) DropTable(ctx context.Context, table *schema.Table, ifExists bool) error {
	if err := db.dropTable(ctx, table, ifExists); err != nil {
		return &MutationError{Table: tableName(table), Op: "drop table", Err: err}
	}
	db.invalidate(ctx, table)
	return nil
}

func (db *Database) dropTable(ctx context.Context, table *schema.Table, ifExists bool) error {
	builder := statement.NewDropTable(table)
	if ifExists {
		builder.IfExists()
	}
	st, err := builder.Build()
	if err != nil {
		return err
	}
	return db.execStatement(ctx, st)
}

// DropAllTables drops every table of the bound set, referencing tables
// before the tables they reference so foreign keys never dangle.
func (db *Database) DropAllTables(ctx context.Context, ifExists bool) error {
	order, err := db.tables.SortForDrop()
	if err != nil {
		return &MutationError{Op: "drop all tables", Err: err}
	}
	for _, table := range order {
		if err := db.DropTable(ctx, table, ifExists); err != nil {
			return err
		}
	}
	return nil
}

func (db *Database) execStatement(ctx context.Context, st *statement.Statement) error {
	text, args, err := db.lower(st.TemplateSQL, st.Parameters)
	if err != nil {
		return err
	}
	return db.exec(ctx, text, args, nil)
}

// InsertRecords inserts the records into the table in one statement executed
// once per record. All records must hold values for the same columns. The
// returned slice carries the generated primary keys in record order; it is
// nil when the dialect cannot return generated keys or the table has no
// primary key.
func (db *Database) InsertRecords(ctx context.Context, table *schema.Table, records ...*Record) ([]int64, error) {
	ids, err := db.insertRecords(ctx, table, records)
	if err != nil {
		return nil, &MutationError{Table: tableName(table), Op: "insert", Err: err}
	}
	return ids, nil
}

func (db *Database) insertRecords(ctx context.Context, table *schema.Table, records []*Record) ([]int64, error) {
	if len(records) == 0 {
		return nil, nil
	}
	first := records[0]
	if err := first.Err(); err != nil {
		return nil, err
	}
	items := first.Items()
	st, err := statement.NewInsert(table, items...).Build()
	if err != nil {
		return nil, err
	}
	returning := st.ReturnsIDs && dialect.Returning(db.dialect) != dialect.ReturningUnsupported
	var ids []int64
	if returning {
		ids = make([]int64, 0, len(records))
	}
	for _, record := range records {
		if err := record.Err(); err != nil {
			return nil, err
		}
		values, err := batchValues(record, items)
		if err != nil {
			return nil, err
		}
		params, err := st.RowParameters(values...)
		if err != nil {
			return nil, err
		}
		text, args, err := db.lower(st.TemplateSQL, params)
		if err != nil {
			return nil, err
		}
		if !returning {
			if err := db.exec(ctx, text, args, nil); err != nil {
				return nil, err
			}
			continue
		}
		var rows sql.Rows
		if err := db.query(ctx, text, args, &rows); err != nil {
			return nil, err
		}
		// Some drivers execute lazily and report constraint violations while
		// iterating the RETURNING rows.
		rowIDs, err := scanIDs(&rows)
		if err != nil {
			return nil, db.translate(err)
		}
		if len(rowIDs) != 1 {
			return nil, fmt.Errorf("sqldatabase: insert returned %d generated keys, want 1", len(rowIDs))
		}
		ids = append(ids, rowIDs[0])
	}
	db.invalidate(ctx, table)
	return ids, nil
}

// batchValues pulls the record's values in the order of the shared item set.
func batchValues(record *Record, items []schema.Item) ([]any, error) {
	if record.Len() != len(items) {
		return nil, fmt.Errorf("sqldatabase: records in a batch must share one column set")
	}
	values := make([]any, len(items))
	for i, item := range items {
		value, ok := record.Value(item)
		if !ok {
			alias, _ := item.Alias()
			return nil, fmt.Errorf("sqldatabase: record is missing a value for %q", alias)
		}
		values[i] = value
	}
	return values, nil
}

// UpdateRecords updates the rows matched by cond with the record's values.
// The returned slice carries the primary keys of the updated rows; it is nil
// when the dialect cannot return them or the table has no primary key.
func (db *Database) UpdateRecords(ctx context.Context, table *schema.Table, record *Record, cond statement.Condition) ([]int64, error) {
	ids, err := db.updateRecords(ctx, table, record, cond)
	if err != nil {
		return nil, &MutationError{Table: tableName(table), Op: "update", Err: err}
	}
	return ids, nil
}

func (db *Database) updateRecords(ctx context.Context, table *schema.Table, record *Record, cond statement.Condition) ([]int64, error) {
	if record == nil || record.Len() == 0 {
		return nil, fmt.Errorf("sqldatabase: update needs at least one column value")
	}
	if err := record.Err(); err != nil {
		return nil, err
	}
	st, err := statement.NewUpdate(table, record.Items()...).Values(record.Values()...).Where(cond).Build()
	if err != nil {
		return nil, err
	}
	ids, err := db.execReturning(ctx, st)
	if err != nil {
		return nil, err
	}
	db.invalidate(ctx, table)
	return ids, nil
}

// DeleteRecords deletes the rows matched by cond. The returned slice carries
// the primary keys of the deleted rows; it is nil when the dialect cannot
// return them or the table has no primary key.
func (db *Database) DeleteRecords(ctx context.Context, table *schema.Table, cond statement.Condition) ([]int64, error) {
	ids, err := db.deleteRecords(ctx, table, cond)
	if err != nil {
		return nil, &MutationError{Table: tableName(table), Op: "delete", Err: err}
	}
	return ids, nil
}

func (db *Database) deleteRecords(ctx context.Context, table *schema.Table, cond statement.Condition) ([]int64, error) {
	st, err := statement.NewDelete(table).Where(cond).Build()
	if err != nil {
		return nil, err
	}
	ids, err := db.execReturning(ctx, st)
	if err != nil {
		return nil, err
	}
	db.invalidate(ctx, table)
	return ids, nil
}

// execReturning executes a mutation, scanning returned primary keys when the
// statement and the dialect both support them.
func (db *Database) execReturning(ctx context.Context, st *statement.Statement) ([]int64, error) {
	text, args, err := db.lower(st.TemplateSQL, st.Parameters)
	if err != nil {
		return nil, err
	}
	if !st.ReturnsIDs || dialect.Returning(db.dialect) == dialect.ReturningUnsupported {
		if err := db.exec(ctx, text, args, nil); err != nil {
			return nil, err
		}
		return nil, nil
	}
	var rows sql.Rows
	if err := db.query(ctx, text, args, &rows); err != nil {
		return nil, err
	}
	ids, err := scanIDs(&rows)
	if err != nil {
		return nil, db.translate(err)
	}
	return ids, nil
}

func scanIDs(rows *sql.Rows) ([]int64, error) {
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SelectRecords starts a SELECT over the table. Chain filters onto the
// returned query and finish with All.
func (db *Database) SelectRecords(table *schema.Table) *SelectQuery {
	return &SelectQuery{db: db, table: table, builder: statement.NewSelect(table)}
}

// SelectQuery is a fluent SELECT over one table. Methods chain and defer
// their errors to All.
type SelectQuery struct {
	db      *Database
	table   *schema.Table
	builder *statement.Select
}

// Items selects the given items instead of all table columns.
func (q *SelectQuery) Items(items ...schema.Item) *SelectQuery {
	q.builder.Items(items...)
	return q
}

// Distinct makes the query return distinct rows.
func (q *SelectQuery) Distinct() *SelectQuery {
	q.builder.Distinct()
	return q
}

// Join joins the table over the foreign key relation between the two tables.
func (q *SelectQuery) Join(table *schema.Table) *SelectQuery {
	q.builder.Join(table)
	return q
}

// LeftJoin joins the table with a LEFT OUTER JOIN.
func (q *SelectQuery) LeftJoin(table *schema.Table) *SelectQuery {
	q.builder.LeftJoin(table)
	return q
}

// RightJoin joins the table with a RIGHT OUTER JOIN.
func (q *SelectQuery) RightJoin(table *schema.Table) *SelectQuery {
	q.builder.RightJoin(table)
	return q
}

// FullJoin joins the table with a FULL OUTER JOIN.
func (q *SelectQuery) FullJoin(table *schema.Table) *SelectQuery {
	q.builder.FullJoin(table)
	return q
}

// CrossJoin joins the table with a CROSS JOIN.
func (q *SelectQuery) CrossJoin(table *schema.Table) *SelectQuery {
	q.builder.CrossJoin(table)
	return q
}

// Where sets the row filter; successive calls AND together.
func (q *SelectQuery) Where(cond statement.Condition) *SelectQuery {
	q.builder.Where(cond)
	return q
}

// GroupBy groups the result by the given items.
func (q *SelectQuery) GroupBy(items ...schema.Item) *SelectQuery {
	q.builder.GroupBy(items...)
	return q
}

// Having sets the group filter; successive calls AND together.
func (q *SelectQuery) Having(cond statement.Condition) *SelectQuery {
	q.builder.Having(cond)
	return q
}

// OrderBy orders the result. Items order ascending unless followed by a
// Descending marker.
func (q *SelectQuery) OrderBy(items ...any) *SelectQuery {
	q.builder.OrderBy(items...)
	return q
}

// Limit caps the number of returned rows.
func (q *SelectQuery) Limit(n int) *SelectQuery {
	q.builder.Limit(n)
	return q
}

// Offset skips the first n rows.
func (q *SelectQuery) Offset(n int) *SelectQuery {
	q.builder.Offset(n)
	return q
}

// All executes the query and decodes every row into a record.
func (q *SelectQuery) All(ctx context.Context) ([]*Record, error) {
	records, err := q.all(ctx)
	if err != nil {
		return nil, &QueryError{Table: tableName(q.table), Op: "select", Err: err}
	}
	return records, nil
}

func (q *SelectQuery) all(ctx context.Context) ([]*Record, error) {
	st, err := q.builder.Build()
	if err != nil {
		return nil, err
	}
	db := q.db
	text, args, err := db.lower(st.TemplateSQL, st.Parameters)
	if err != nil {
		return nil, err
	}
	var key string
	if db.cache != nil {
		key = CacheKey{
			Table: db.TableFullyQualifiedName(q.table),
			SQL:   text,
			Args:  fmt.Sprint(args),
		}.String()
		if data, err := db.cache.Get(ctx, key); err == nil && data != nil {
			if payload, err := decodeRows(data); err == nil {
				return db.recordsFromRaw(payload.Aliases, payload.Rows)
			}
			// Undecodable entries fall through to the database.
		}
	}
	var rows sql.Rows
	if err := db.query(ctx, text, args, &rows); err != nil {
		return nil, err
	}
	aliases, raws, err := readRows(&rows)
	if err != nil {
		return nil, err
	}
	if db.cache != nil {
		if data, err := encodeRows(aliases, raws); err == nil {
			if err := db.cache.Set(ctx, key, data, db.cacheTTL); err != nil {
				db.logger.WarnContext(ctx, "cache store failed", "database", db.name, "err", err)
			}
		}
	}
	return db.recordsFromRaw(aliases, raws)
}

// readRows drains the result set into its alias header and raw value rows.
func readRows(rows *sql.Rows) ([]string, [][]any, error) {
	defer rows.Close()
	aliases, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}
	var raws [][]any
	for rows.Next() {
		row := make([]any, len(aliases))
		dests := make([]any, len(aliases))
		for i := range row {
			dests[i] = &row[i]
		}
		if err := rows.Scan(dests...); err != nil {
			return nil, nil, err
		}
		raws = append(raws, row)
	}
	return aliases, raws, rows.Err()
}

func (db *Database) recordsFromRaw(aliases []string, raws [][]any) ([]*Record, error) {
	items := make([]schema.Item, len(aliases))
	for i, alias := range aliases {
		item, err := db.ItemByAlias(alias)
		if err != nil {
			return nil, err
		}
		items[i] = item
	}
	records := make([]*Record, 0, len(raws))
	for _, raw := range raws {
		record, err := FromRow(items, raw)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// RecordCount counts the rows of the table matching the conditions.
func (db *Database) RecordCount(ctx context.Context, table *schema.Table, conditions ...statement.Condition) (int64, error) {
	count, err := db.recordCount(ctx, table, conditions)
	if err != nil {
		return 0, &QueryError{Table: tableName(table), Op: "count", Err: err}
	}
	return count, nil
}

func (db *Database) recordCount(ctx context.Context, table *schema.Table, conditions []statement.Condition) (int64, error) {
	builder := statement.NewSelect(table).Items(schema.Count())
	for _, cond := range conditions {
		builder.Where(cond)
	}
	st, err := builder.Build()
	if err != nil {
		return 0, err
	}
	text, args, err := db.lower(st.TemplateSQL, st.Parameters)
	if err != nil {
		return 0, err
	}
	var rows sql.Rows
	if err := db.query(ctx, text, args, &rows); err != nil {
		return 0, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return 0, err
		}
		return 0, fmt.Errorf("sqldatabase: count returned no rows")
	}
	var count int64
	if err := rows.Scan(&count); err != nil {
		return 0, err
	}
	return count, rows.Err()
}

// Execute runs a statement template written in the source dialect grammar,
// transpiling it for the driver first. It returns the driver result.
func (db *Database) Execute(ctx context.Context, templateSQL string, params *transpile.Parameters) (sql.Result, error) {
	text, args, err := db.lower(templateSQL, params)
	if err != nil {
		return nil, err
	}
	var res sql.Result
	if err := db.exec(ctx, text, args, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// Query runs a statement template written in the source dialect grammar and
// returns the rows. The caller owns the returned rows and must close them.
func (db *Database) Query(ctx context.Context, templateSQL string, params *transpile.Parameters) (*sql.Rows, error) {
	text, args, err := db.lower(templateSQL, params)
	if err != nil {
		return nil, err
	}
	rows := &sql.Rows{}
	if err := db.query(ctx, text, args, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Tx is a Database scoped to one driver transaction. Every operation of the
// embedded Database executes inside the transaction until Commit or
// Rollback.
type Tx struct {
	*Database
	tx dialect.Tx
}

// Tx starts a transaction and returns the transactional facade.
func (db *Database) Tx(ctx context.Context) (*Tx, error) {
	if db.inTx {
		return nil, ErrTxStarted
	}
	tx, err := db.driver.Tx(ctx)
	if err != nil {
		return nil, fmt.Errorf("sqldatabase: begin transaction: %w", err)
	}
	clone := *db
	clone.conn = tx
	clone.inTx = true
	return &Tx{Database: &clone, tx: tx}, nil
}

// Commit commits the transaction.
func (t *Tx) Commit() error { return t.tx.Commit() }

// Rollback rolls the transaction back.
func (t *Tx) Rollback() error { return t.tx.Rollback() }

// WithTx runs fn inside a transaction: committed when fn returns nil, rolled
// back when it returns an error or panics.
func (db *Database) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	tx, err := db.Tx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if v := recover(); v != nil {
			_ = tx.Rollback()
			panic(v)
		}
	}()
	if err := fn(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			return &RollbackError{Err: err, Rollback: rerr}
		}
		return err
	}
	return tx.Commit()
}

func tableName(t *schema.Table) string {
	if t == nil {
		return ""
	}
	return t.Name()
}

var _ schema.Namer = (*Database)(nil)
