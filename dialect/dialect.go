package dialect

import (
	"context"
	"fmt"
)

// Dialect names recognized across the module. Statement templates are always
// rendered in the Default dialect and transpiled to one of these targets.
const (
	SQLite    = "sqlite"
	Postgres  = "postgres"
	MySQL     = "mysql"
	SQLServer = "sqlserver"
)

// Default is the source dialect of every generated statement template.
const Default = SQLite

// All lists the supported dialects in a stable order.
func All() []string {
	return []string{SQLite, Postgres, MySQL, SQLServer}
}

// Validate reports whether name is a supported dialect.
func Validate(name string) error {
	switch name {
	case SQLite, Postgres, MySQL, SQLServer:
		return nil
	default:
		return fmt.Errorf("dialect: unsupported dialect %q", name)
	}
}

// ParamStyle describes how a dialect marks statement parameters.
type ParamStyle int

const (
	// ParamNamed marks parameters as :name (SQLite).
	ParamNamed ParamStyle = iota
	// ParamOrdinal marks parameters as $1, $2, ... (PostgreSQL).
	ParamOrdinal
	// ParamAnonymous marks parameters as ? (MySQL, SQL Server).
	ParamAnonymous
)

// Params returns the parameter style of the given dialect.
func Params(name string) ParamStyle {
	switch name {
	case Postgres:
		return ParamOrdinal
	case MySQL, SQLServer:
		return ParamAnonymous
	default:
		return ParamNamed
	}
}

// ReturningStyle describes how a dialect hands back generated values
// from INSERT, UPDATE and DELETE statements.
type ReturningStyle int

const (
	// ReturningClause appends a RETURNING clause (SQLite, PostgreSQL).
	ReturningClause ReturningStyle = iota
	// OutputClause uses an OUTPUT clause with the INSERTED and DELETED
	// virtual tables (SQL Server).
	OutputClause
	// ReturningUnsupported means the dialect cannot return generated
	// values; the clause is dropped during transpilation (MySQL).
	ReturningUnsupported
)

// Returning returns the returning style of the given dialect.
func Returning(name string) ReturningStyle {
	switch name {
	case SQLServer:
		return OutputClause
	case MySQL:
		return ReturningUnsupported
	default:
		return ReturningClause
	}
}

// ExecQuerier wraps the Exec and Query database operations.
type ExecQuerier interface {
	// Exec executes a statement that does not return rows. The args
	// parameter is expected to be a []any and v an optional *sql.Result.
	Exec(ctx context.Context, query string, args, v any) error
	// Query executes a statement that returns rows. The args parameter
	// is expected to be a []any and v a *Rows destination.
	Query(ctx context.Context, query string, args, v any) error
}

// Driver is the minimal interface a database connection exposes to the
// statement executor.
type Driver interface {
	ExecQuerier
	// Tx starts and returns a new transaction.
	// The provided context is used until the transaction is committed or rolled back.
	Tx(context.Context) (Tx, error)
	// Close closes the underlying connection.
	Close() error
	// Dialect returns the driver dialect name.
	Dialect() string
}

// Tx wraps transaction commit and rollback around the Exec and Query operations.
type Tx interface {
	ExecQuerier
	Commit() error
	Rollback() error
}
