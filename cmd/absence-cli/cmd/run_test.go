package cmd

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"absence-tracker/cmd/absence-cli/globals"
	"absence-tracker/internal/components/chrono"
	"absence-tracker/internal/history"
	"absence-tracker/internal/portal"
	"absence-tracker/internal/service"

	"github.com/stretchr/testify/require"
)

func TestCredentials(t *testing.T) {
	cfg := globals.Defaults()
	cfg.Account = "D11213201"
	cfg.Password = "from-config"

	t.Cleanup(func() {
		runAccount = ""
		runPassword = ""
	})

	creds := credentials(cfg)
	require.Equal(t, "D11213201", creds.Account)
	require.Equal(t, "from-config", creds.Password)

	t.Setenv(passwordEnv, "from-env")
	require.Equal(t, "from-env", credentials(cfg).Password)

	runAccount = "D11213202"
	runPassword = "from-flag"
	creds = credentials(cfg)
	require.Equal(t, "D11213202", creds.Account)
	require.Equal(t, "from-flag", creds.Password)
}

func TestNewPortalFromHtml(t *testing.T) {
	t.Cleanup(func() { runFromHtml = "" })

	runFromHtml = "Miss_ct.html, Xerox.html"
	p, err := newPortal(&globals.Value{Config: globals.Defaults()})
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, portal.FileSource{
		AttendanceFile: "Miss_ct.html",
		LeaveFormFile:  "Xerox.html",
		TableId:        globals.Defaults().Portal.TableId,
	}, p)
}

func TestSaveResult(t *testing.T) {
	cfg := globals.Defaults()
	cfg.History.File = filepath.Join(t.TempDir(), "absence-history.db")
	clock := chrono.FixedImpl{Time: time.Date(2024, 10, 1, 9, 0, 0, 0, time.UTC)}
	g := &globals.Value{Config: cfg, Time: clock}
	ctx := context.Background()

	id, err := saveResult(ctx, g, service.Result{RanAt: clock.Time})
	if err != nil {
		t.Fatal(err)
	}

	// the first store is already closed, a second one sees the saved run
	store, err := history.Open(ctx, cfg.History, clock)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	run, err := store.Get(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	require.True(t, clock.Time.Equal(run.RanAt))
}
