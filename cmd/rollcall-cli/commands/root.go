package commands

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"rollcall-backend/lib/serviceutil"
	"rollcall-backend/services/rollcall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"
)

var (
	configPath  string
	historyPath string
)

var rootCmd = &cobra.Command{
	Use:   "rollcall-cli",
	Short: "rollcall-cli imports attendance sheets into the committee platform's roll call.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.toml", "The config file to use.")
	rootCmd.PersistentFlags().StringVar(&historyPath, "history-db", "history.db", "The database job history is written to.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() rollcall.Config {
	cfg, err := rollcall.LoadConfig(configPath)
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	return cfg
}

func openHistory() (*rollcall.History, func()) {
	db, err := sql.Open("sqlite", historyPath)
	if err != nil {
		serviceutil.Fatal("failed to open the history database", err)
	}
	history, err := rollcall.NewHistory(db)
	if err != nil {
		serviceutil.Fatal("failed to initialize the history database", err)
	}
	return history, func() { db.Close() }
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}
