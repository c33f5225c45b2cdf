package history

import (
	"absence-tracker/cmd/absence-cli/globals"
	historystore "absence-tracker/internal/history"
	"absence-tracker/lib/osutil"

	"github.com/spf13/cobra"
)

var RootCmd = &cobra.Command{
	Use:   "history",
	Short: "The 'history' subcommand shows reports saved with 'run --save'.",
}

func open(cmd *cobra.Command) historystore.Store {
	g := globals.Get(cmd.Context())
	store, err := historystore.Open(cmd.Context(), g.Config.History, g.Time)
	if err != nil {
		osutil.Fatal("failed to open history", err)
	}
	return store
}
