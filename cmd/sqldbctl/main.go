// sqldbctl works with YAML schema specs: it generates typed Go schema code
// and creates or drops the declared tables in a live database.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sqldbctl",
	Short: "Schema toolbox for sqldatabase projects",
	Long: `sqldbctl reads YAML schema specs. It generates typed Go schema code
from them and creates or drops the declared tables in the database
named by DATABASE_URL.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Values from a local .env complement the process environment.
		// A missing file is fine.
		_ = godotenv.Load()
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}
