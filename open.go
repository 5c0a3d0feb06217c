package sqldatabase

import (
	"github.com/Sterbis/sqldatabase/dialect"
	"github.com/Sterbis/sqldatabase/dialect/sql"
	"github.com/Sterbis/sqldatabase/schema"

	// Drivers the Open helpers rely on.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// OpenSQLite opens the SQLite database at source, cgo-free through
// modernc.org/sqlite, and binds the table set to it. Source is a file path
// or a sqlite URI such as file:app.db?_pragma=foreign_keys(1).
func OpenSQLite(name, source string, tables *schema.Tables, opts ...Option) (*Database, error) {
	return open(name, dialect.SQLite, source, tables, opts)
}

// OpenPostgres opens a PostgreSQL database through lib/pq and binds the
// table set to it. Source is a connection string or a postgres:// URL.
func OpenPostgres(name, source string, tables *schema.Tables, opts ...Option) (*Database, error) {
	return open(name, dialect.Postgres, source, tables, opts)
}

// OpenMySQL opens a MySQL database through go-sql-driver/mysql and binds the
// table set to it. Source is a DSN such as user:pass@tcp(host:3306)/dbname.
func OpenMySQL(name, source string, tables *schema.Tables, opts ...Option) (*Database, error) {
	return open(name, dialect.MySQL, source, tables, opts)
}

func open(name, dialectName, source string, tables *schema.Tables, opts []Option) (*Database, error) {
	drv, err := sql.Open(dialectName, source)
	if err != nil {
		return nil, err
	}
	db, err := New(name, dialectName, drv, tables, opts...)
	if err != nil {
		drv.Close()
		return nil, err
	}
	return db, nil
}
