package factors

import (
	"fmt"
	"os"

	"absence-tracker/internal/reportview"

	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every course factor in report order.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		path, f := load(cmd)
		if f.Len() == 0 {
			fmt.Fprintf(os.Stderr, "%s has no course factors.\n", path)
			return
		}
		reportview.New(os.Stdout).Factors(f)
	},
}
