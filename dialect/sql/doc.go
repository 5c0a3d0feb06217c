// Package sql wraps database/sql connections behind the dialect.Driver
// interface used by the rest of the module.
//
// A Driver binds a standard connection pool to a dialect name, so the
// layers above can render and transpile statements for the database they
// are actually talking to:
//
//	drv, err := sql.Open(dialect.SQLite, "file:app.db?_pragma=foreign_keys(1)")
//	if err != nil {
//		...
//	}
//	defer drv.Close()
//
//	var res sql.Result
//	err = drv.Exec(ctx, "INSERT INTO words (word) VALUES (?)", []any{"jump"}, &res)
//
// An existing *sql.DB can be adopted with OpenDB, which is also how tests
// plug in sqlmock:
//
//	db, mock, _ := sqlmock.New()
//	drv := sql.OpenDB(dialect.Postgres, db)
//
// # Transactions
//
// Tx and BeginTx return a dialect.Tx scoped to one database transaction:
//
//	tx, err := drv.Tx(ctx)
//	if err != nil {
//		...
//	}
//	if err := tx.Exec(ctx, query, args, &res); err != nil {
//		tx.Rollback()
//		return err
//	}
//	return tx.Commit()
//
// # Instrumentation
//
// StatsDriver layers execution counters and slog logging on top of a
// Driver. Every statement is logged at Debug with its SQL, arguments and
// duration, and statements past a configurable threshold are logged at
// Warn and counted as slow:
//
//	drv, err := sql.OpenWithStats(dialect.Postgres, dsn,
//		sql.WithSlowThreshold(200*time.Millisecond),
//	)
//	...
//	fmt.Println(drv.QueryStats().Snapshot().AvgDuration())
//
// # Constraint errors
//
// IsUniqueConstraintError, IsForeignKeyConstraintError and
// IsCheckConstraintError classify driver errors across SQLite, PostgreSQL,
// MySQL and SQL Server without importing any driver package, by inspecting
// the error codes the drivers expose and falling back to message matching.
package sql
