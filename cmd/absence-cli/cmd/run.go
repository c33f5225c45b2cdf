package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"absence-tracker/cmd/absence-cli/globals"
	"absence-tracker/internal/factors"
	"absence-tracker/internal/history"
	"absence-tracker/internal/notify"
	"absence-tracker/internal/portal"
	"absence-tracker/internal/reportview"
	"absence-tracker/internal/service"
	"absence-tracker/lib/osutil"
	"absence-tracker/lib/restyutil"

	"github.com/spf13/cobra"
)

const passwordEnv = "ABSENCE_PASSWORD"

var (
	runAccount  string
	runPassword string
	runSave     bool
	runMail     bool
	runFromHtml string
)

func init() {
	runCmd.Flags().StringVar(&runAccount, "account", "", "portal account, overrides the config file")
	runCmd.Flags().StringVar(&runPassword, "password", "", fmt.Sprintf("portal password, prefer the %s environment variable", passwordEnv))
	runCmd.Flags().BoolVar(&runSave, "save", false, "store the report in the history database")
	runCmd.Flags().BoolVar(&runMail, "mail", false, "mail the report to notify_to")
	runCmd.Flags().StringVar(&runFromHtml, "from-html", "", "read saved report pages instead of logging in: <attendance.html>[,<leave.html>]")

	rootCmd.AddCommand(runCmd)
}

func credentials(cfg globals.Config) service.Credentials {
	creds := service.Credentials{
		Account:  cfg.Account,
		Password: cfg.Password,
	}
	if runAccount != "" {
		creds.Account = runAccount
	}
	if password, ok := os.LookupEnv(passwordEnv); ok {
		creds.Password = password
	}
	if runPassword != "" {
		creds.Password = runPassword
	}
	return creds
}

func newPortal(g *globals.Value) (service.Portal, error) {
	cfg := g.Config

	if runFromHtml != "" {
		files := strings.Split(runFromHtml, ",")
		source := portal.FileSource{
			AttendanceFile: strings.TrimSpace(files[0]),
			TableId:        cfg.Portal.TableId,
		}
		if len(files) > 1 {
			source.LeaveFormFile = strings.TrimSpace(files[1])
		}
		return source, nil
	}

	var dump restyutil.InstrumentOutput
	if g.Verbose {
		output, err := restyutil.NewFilesystemOutput(cfg.DumpDir)
		if err != nil {
			return nil, err
		}
		dump = output
	}
	return portal.NewClient(cfg.Portal, g.Tel, dump)
}

// saveResult stores the result in the history database, the store is closed
// before returning.
func saveResult(ctx context.Context, g *globals.Value, result service.Result) (string, error) {
	store, err := history.Open(ctx, g.Config.History, g.Time)
	if err != nil {
		return "", fmt.Errorf("open history: %w", err)
	}
	defer store.Close()

	return store.Save(ctx, result)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Log into the portal, fetch the attendance and leave form reports and print the absences per course.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		g := globals.Get(ctx)
		cfg := g.Config

		creds := credentials(cfg)
		if runFromHtml == "" && (creds.Account == "" || creds.Password == "") {
			fmt.Fprintf(os.Stderr, "An account and password are required, use --account and %s (or the config file).\n", passwordEnv)
			os.Exit(1)
		}

		if runMail && (cfg.Smtp.Server == "" || cfg.Smtp.EmailAddress == "" || len(cfg.NotifyTo) == 0) {
			fmt.Fprintln(os.Stderr, "--mail needs smtp.server, smtp.email_address and notify_to in the config file.")
			os.Exit(1)
		}

		p, err := newPortal(g)
		if err != nil {
			osutil.Fatal("failed to create portal client", err)
		}
		svc, err := service.NewService(
			p,
			cfg.Layout,
			cfg.Portal.Timeout(),
			service.WithTimeAPI(g.Time),
			service.WithTelemetryAPI(g.Tel),
		)
		if err != nil {
			osutil.Fatal("failed to create service", err)
		}

		f := factors.LoadOrEmpty(cfg.FactorsFile, g.Tel)
		log := &service.EventLog{
			Observer: func(e service.Event) {
				fmt.Fprintln(os.Stderr, e.String())
			},
		}

		result, err := svc.Run(ctx, creds, f, log)
		if err != nil {
			osutil.Fatal("run failed", err)
		}

		view := reportview.New(os.Stdout)
		if g.Verbose {
			view.Title("原始缺曠課記錄")
			view.Records(result.Records)
		}
		view.Title("缺曠課統計")
		view.Summary(result.Report.Courses)
		view.Warnings(result.Report.Warnings)
		view.Title("假單記錄週別")
		view.LeaveWeeks(result.LeaveWeeks)

		if runSave {
			id, err := saveResult(ctx, g, result)
			if err != nil {
				osutil.Fatal("failed to save report", err)
			}
			fmt.Fprintf(os.Stderr, "saved as %s\n", id)
		}

		if runMail {
			mailer := notify.NewMailer(cfg.Smtp, cfg.NotifyTo)
			err := mailer.Send(ctx, result)
			if err != nil {
				osutil.Fatal("failed to mail report", err)
			}
			fmt.Fprintf(os.Stderr, "mailed to %s\n", strings.Join(cfg.NotifyTo, ", "))
		}
	},
}
