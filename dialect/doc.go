// Package dialect names the SQL dialects the module can target and defines
// the driver interfaces statements execute against.
//
// # Supported Dialects
//
// Each dialect is identified by a constant string:
//
//	dialect.SQLite    = "sqlite"
//	dialect.Postgres  = "postgres"
//	dialect.MySQL     = "mysql"
//	dialect.SQLServer = "sqlserver"
//
// Statement templates are always rendered in the dialect.Default (SQLite)
// flavor with named :parameters; the transpile package converts templates and
// parameter collections to any of the targets above. The Params and Returning
// functions describe the two dialect properties that drive that conversion:
// the placeholder style (:name, $n or ?) and the way generated values come
// back (RETURNING, OUTPUT, or not at all).
//
// # Driver Interface
//
// The Driver interface is the contract between the Database facade and a
// concrete connection:
//
//	type Driver interface {
//	    Exec(ctx context.Context, query string, args, v any) error
//	    Query(ctx context.Context, query string, args, v any) error
//	    Tx(ctx context.Context) (Tx, error)
//	    Close() error
//	    Dialect() string
//	}
//
// The dialect/sql sub-package implements it on top of database/sql:
//
//	drv, err := sql.Open(dialect.SQLite, "file:app.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer drv.Close()
package dialect
