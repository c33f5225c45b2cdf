package history

import (
	"os"

	"absence-tracker/internal/reportview"
	"absence-tracker/lib/osutil"

	"github.com/spf13/cobra"
)

var limit int

func init() {
	listCmd.Flags().IntVar(&limit, "limit", 20, "maximum number of reports to list")
	RootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved reports, newest first.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		store := open(cmd)
		defer store.Close()

		runs, err := store.List(cmd.Context(), limit)
		if err != nil {
			osutil.Fatal("failed to list reports", err)
		}
		reportview.New(os.Stdout).History(runs)
	},
}
