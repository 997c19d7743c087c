package commands

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspects and initializes the config file.",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Writes a default config file for the operator to fill in.",
	Run: func(cmd *cobra.Command, args []string) {
		loadConfig()
		fmt.Println(configPath)
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Prints the resolved config.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		t := newTable()
		t.AppendRows([]table.Row{
			{"account", cfg.Account},
			{"password", strings.Repeat("*", len(cfg.Password))},
			{"character", cfg.Character},
			{"class_name", cfg.ClassName},
			{"google_api_private_key_id", cfg.GoogleAPIPrivateKeyID},
			{"headless", cfg.Headless},
		})
		t.Render()

		if len(cfg.AttendanceReportSheetLinks) == 0 {
			return
		}
		links := newTable()
		links.AppendHeader(table.Row{"Note", "Link"})
		for _, link := range cfg.AttendanceReportSheetLinks {
			links.AppendRow(table.Row{link.Note, link.Link})
		}
		links.Render()
	},
}
