package history

import (
	"errors"
	"fmt"
	"os"

	historystore "absence-tracker/internal/history"
	"absence-tracker/internal/reportview"
	"absence-tracker/lib/osutil"

	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a saved report.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store := open(cmd)
		defer store.Close()

		run, err := store.Get(cmd.Context(), args[0])
		if errors.Is(err, historystore.ErrRunNotFound) {
			fmt.Fprintf(os.Stderr, "There is no saved report with id %q.\n", args[0])
			os.Exit(1)
		}
		if err != nil {
			osutil.Fatal("failed to read report", err)
		}
		reportview.New(os.Stdout).Run(run)
	},
}
