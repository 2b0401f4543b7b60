package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mvarnah/wingman/pkg/storage"
)

// historyCmd lists previously published reports from the history
// database written by 'report --db'.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List previously published reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		dbPath := viper.GetString("history.db_path")
		if dbPath == "" {
			dbPath = "wingman.sqlite"
		}
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return fmt.Errorf("history database not found: %s (publish with --db first)", dbPath)
		}

		db, err := storage.Open(dbPath)
		if err != nil {
			return err
		}
		defer db.Close()

		reports, err := db.ListReports(context.Background(), limit)
		if err != nil {
			return err
		}
		if len(reports) == 0 {
			fmt.Println("No published reports recorded.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight)
		fmt.Fprintln(w, "ID\tPUBLISHED\tDATES\tENCOUNTERS\t")
		for _, r := range reports {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\t\n", r.ID, r.PublishedAt.Format("2006-01-02 15:04"), r.Dates, r.Encounters)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().Int("limit", 20, "Maximum number of reports to list")
}
