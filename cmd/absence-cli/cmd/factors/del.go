package factors

import (
	"fmt"
	"os"

	factorstore "absence-tracker/internal/factors"
	"absence-tracker/lib/osutil"

	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(delCmd)
}

var delCmd = &cobra.Command{
	Use:   "del <course>",
	Short: "Remove a course factor.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path, f := load(cmd)
		if !f.Delete(args[0]) {
			fmt.Fprintf(os.Stderr, "%s has no factor for %q.\n", path, args[0])
			os.Exit(1)
		}

		err := factorstore.Save(path, f)
		if err != nil {
			osutil.Fatal(fmt.Sprintf("failed to write %s", path), err)
		}
	},
}
