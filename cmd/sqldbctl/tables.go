package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sterbis/sqldatabase"
	"github.com/Sterbis/sqldatabase/dialect"
	"github.com/Sterbis/sqldatabase/schema"
)

var (
	tablesSpecPath    string
	createIfNotExists bool
	dropIfExists      bool
)

var createTablesCmd = &cobra.Command{
	Use:   "create-tables",
	Short: "Create every table the spec declares",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openFromEnv(tablesSpecPath)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.CreateAllTables(cmd.Context(), createIfNotExists); err != nil {
			return err
		}
		color.New(color.FgGreen, color.Bold).Printf("Created tables of %s\n", db.Name())
		return nil
	},
}

var dropTablesCmd = &cobra.Command{
	Use:   "drop-tables",
	Short: "Drop every table the spec declares, referencing tables first",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openFromEnv(tablesSpecPath)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.DropAllTables(cmd.Context(), dropIfExists); err != nil {
			return err
		}
		color.New(color.FgYellow, color.Bold).Printf("Dropped tables of %s\n", db.Name())
		return nil
	},
}

func init() {
	createTablesCmd.Flags().StringVarP(&tablesSpecPath, "spec", "s", "schema.yaml", "path of the YAML schema spec")
	createTablesCmd.Flags().BoolVar(&createIfNotExists, "if-not-exists", false, "skip tables that already exist")
	dropTablesCmd.Flags().StringVarP(&tablesSpecPath, "spec", "s", "schema.yaml", "path of the YAML schema spec")
	dropTablesCmd.Flags().BoolVar(&dropIfExists, "if-exists", false, "ignore tables that do not exist")
	rootCmd.AddCommand(createTablesCmd, dropTablesCmd)
}

// openFromEnv connects to the database named by DATABASE_URL and binds the
// tables built from the spec file. SQLDB_DIALECT picks the dialect when the
// URL alone does not give it away.
func openFromEnv(specPath string) (*sqldatabase.Database, error) {
	source := os.Getenv("DATABASE_URL")
	if source == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}
	spec, err := schema.LoadSpec(specPath)
	if err != nil {
		return nil, err
	}
	tables, err := spec.Build()
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(specPath), filepath.Ext(specPath))
	dialectName := strings.ToLower(strings.TrimSpace(os.Getenv("SQLDB_DIALECT")))
	if dialectName == "" {
		dialectName = dialectFromURL(source)
	}
	switch dialectName {
	case dialect.SQLite:
		return sqldatabase.OpenSQLite(name, source, tables)
	case dialect.Postgres:
		return sqldatabase.OpenPostgres(name, source, tables)
	case dialect.MySQL:
		return sqldatabase.OpenMySQL(name, source, tables)
	case dialect.SQLServer:
		return nil, fmt.Errorf("no bundled sqlserver driver, open the database through the library API instead")
	case "":
		return nil, fmt.Errorf("cannot infer the dialect from DATABASE_URL, set SQLDB_DIALECT")
	default:
		return nil, fmt.Errorf("unsupported dialect %q", dialectName)
	}
}

// dialectFromURL guesses the dialect from the shape of the connection string.
func dialectFromURL(source string) string {
	switch {
	case strings.HasPrefix(source, "postgres://"), strings.HasPrefix(source, "postgresql://"):
		return dialect.Postgres
	case strings.Contains(source, "@tcp("):
		return dialect.MySQL
	case strings.HasPrefix(source, "file:"), strings.HasSuffix(source, ".db"), strings.Contains(source, ":memory:"):
		return dialect.SQLite
	default:
		return ""
	}
}
