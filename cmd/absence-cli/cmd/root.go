package cmd

import (
	"fmt"
	"os"

	"absence-tracker/cmd/absence-cli/cmd/factors"
	"absence-tracker/cmd/absence-cli/cmd/history"
	"absence-tracker/cmd/absence-cli/globals"
	"absence-tracker/internal/components/chrono"
	"absence-tracker/internal/components/telemetry"
	"absence-tracker/lib/configutil"
	"absence-tracker/lib/osutil"
	libtelemetry "absence-tracker/lib/telemetry"

	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
	otelSetup  libtelemetry.Telemetry
)

var rootCmd = &cobra.Command{
	Use:   "absence-cli",
	Short: "absence-cli tallies your absences on the student portal per course.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		libtelemetry.InitSlog(verbose)

		cfg, err := configutil.ReadConfigWithDefaults(configPath, globals.Defaults())
		if err != nil {
			osutil.Fatal("failed to read config", err)
		}

		otelSetup, err = libtelemetry.SetupFromEnv(cmd.Context(), "absence-cli")
		if err != nil {
			osutil.Fatal("failed to setup telemetry", err)
		}

		clock, err := chrono.NewStandardImpl(cfg.Timezone)
		if err != nil {
			osutil.Fatal("invalid timezone", err)
		}

		cmd.SetContext(globals.Set(cmd.Context(), &globals.Value{
			Config:  cfg,
			Tel:     telemetry.NewSlogAPI(),
			Time:    clock,
			Verbose: verbose,
		}))
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		err := otelSetup.Shutdown(cmd.Context())
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "absence.json5", "path to the config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logs, raw records and HTTP message dumps")

	rootCmd.AddCommand(factors.RootCmd)
	rootCmd.AddCommand(history.RootCmd)
}

func Execute() {
	if err := rootCmd.ExecuteContext(osutil.SignalContext()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
