package commands

import (
	"rollcall-backend/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var historyLimit *int

func init() {
	historyLimit = historyCmd.Flags().IntP("limit", "n", 20, "The maximum number of entries to show.")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Prints past jobs, newest first.",
	Run: func(cmd *cobra.Command, args []string) {
		history, closeHistory := openHistory()
		defer closeHistory()

		entries, err := history.List(cmd.Context(), *historyLimit)
		if err != nil {
			serviceutil.Fatal("failed to list job history", err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"Started", "Class Date", "Result", "Data"})
		for _, entry := range entries {
			t.AppendRow(table.Row{
				entry.StartedAt.Format("2006/01/02 15:04:05"),
				entry.ClassDate,
				entry.Result.Code.Message(),
				entry.Result.Data,
			})
		}
		t.Render()
	},
}
