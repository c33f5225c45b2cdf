package factors

import (
	"fmt"
	"os"
	"strconv"

	factorstore "absence-tracker/internal/factors"
	"absence-tracker/lib/osutil"

	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(setCmd)
}

var setCmd = &cobra.Command{
	Use:   "set <course> <periods>",
	Short: "Set the number of periods per day of a course, new courses are appended.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		periods, err := strconv.Atoi(args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "%q is not a whole number.\n", args[1])
			os.Exit(1)
		}

		path, f := load(cmd)
		err = f.Set(args[0], periods)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		err = factorstore.Save(path, f)
		if err != nil {
			osutil.Fatal(fmt.Sprintf("failed to write %s", path), err)
		}
	},
}
