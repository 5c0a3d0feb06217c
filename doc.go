// Package sqldatabase executes typed, dialect-neutral SQL statements against
// SQLite, PostgreSQL, MySQL and SQL Server databases.
//
// Tables and columns are declared once with the schema package, statements
// are built from them with the statement package, and a Database lowers
// every statement through the transpile package into the dialect of its
// driver before executing it. Result rows decode back into ordered Records
// keyed by the items that produced them.
//
//	tables, err := schema.NewTables(words, meanings)
//	if err != nil {
//		log.Fatal(err)
//	}
//	db, err := sqldatabase.OpenSQLite("dictionary", "file:dict.db", tables)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.CreateAllTables(ctx, true); err != nil {
//		log.Fatal(err)
//	}
//	ids, err := db.InsertRecords(ctx, words,
//		sqldatabase.NewRecord().Set(wordColumn, "gopher"))
//
// Reads chain off SelectRecords and finish with All:
//
//	records, err := db.SelectRecords(words).
//		Where(statement.NewCondition(wordColumn, statement.OpLike, "go%")).
//		OrderBy(wordColumn).
//		Limit(10).
//		All(ctx)
//
// # Dialects
//
// Statement templates always render in the source dialect grammar. The
// Database owns a transpiler targeting its driver dialect, so the same
// statement runs unchanged against any supported database: placeholders,
// RETURNING and OUTPUT clauses are rewritten in flight. SQLite, PostgreSQL
// and MySQL drivers ship with the Open helpers; SQL Server connects through
// any driver registering "sqlserver", wrapped with sql.OpenDB and New.
//
// # Transactions
//
// Tx returns a transactional facade with the full Database surface:
//
//	tx, err := db.Tx(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if _, err := tx.InsertRecords(ctx, words, record); err != nil {
//		tx.Rollback()
//		log.Fatal(err)
//	}
//	if err := tx.Commit(); err != nil {
//		log.Fatal(err)
//	}
//
// WithTx wraps the same lifecycle around a function, rolling back on error
// or panic.
//
// # Caching
//
// WithCache stores SELECT results in a Cache implementation; any write to a
// table evicts every cached result of that table. MemoryCache provides an
// in-process store.
//
// # Errors
//
// Driver constraint violations surface as ConstraintError regardless of the
// dialect. Read and write failures wrap into QueryError and MutationError
// carrying the table and operation.
package sqldatabase
