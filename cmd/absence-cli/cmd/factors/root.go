package factors

import (
	"errors"
	"fmt"
	"os"

	"absence-tracker/cmd/absence-cli/globals"
	factorstore "absence-tracker/internal/factors"
	"absence-tracker/lib/osutil"

	"github.com/spf13/cobra"
)

var RootCmd = &cobra.Command{
	Use:   "factors",
	Short: "The 'factors' subcommand edits the number of periods that make up a day of absence for each course.",
}

// load reads the factor file, a missing file is an empty mapping but a
// corrupted one stops the command so that it is not overwritten.
func load(cmd *cobra.Command) (string, *factorstore.Factors) {
	path := globals.Get(cmd.Context()).Config.FactorsFile
	f, err := factorstore.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return path, factorstore.New()
	}
	if err != nil {
		osutil.Fatal(fmt.Sprintf("failed to read %s", path), err)
	}
	return path, f
}
