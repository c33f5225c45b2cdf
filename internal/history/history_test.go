package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"absence-tracker/internal/attendance"
	"absence-tracker/internal/components/chrono"
	"absence-tracker/internal/factors"
	"absence-tracker/internal/service"
	configlibsql "absence-tracker/lib/configutil/libsql"
	"absence-tracker/lib/testutil"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func newTestStore(t testing.TB, now time.Time) Store {
	db := testutil.SetupDB(t, testutil.DBParams{})
	store, err := NewStore(context.Background(), db, chrono.FixedImpl{Time: now})
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func exampleResult(t testing.TB, ranAt time.Time) service.Result {
	f := factors.New()
	require.NoError(t, f.Set("Math", 4))
	require.NoError(t, f.Set("Art", 2))

	records := []attendance.Record{
		{Course: "Math", Status: attendance.StatusAbsent, Week: "1"},
		{Course: "Math", Status: attendance.StatusAbsent, Week: "2"},
		{Course: "Math", Status: attendance.StatusTardy, Week: "3"},
		{Course: "程式設計", Status: attendance.StatusSick, Week: "3"},
	}
	return service.Result{
		Records:    records,
		Report:     attendance.Aggregate(records, f),
		LeaveWeeks: []string{"1 (09/01~09/07)", "3 (09/15~09/21)"},
		RanAt:      ranAt,
	}
}

func TestSaveAndGet(t *testing.T) {
	taipei := time.FixedZone("CST", 8*60*60)
	now := time.Date(2024, 10, 1, 9, 30, 0, 0, taipei)
	store := newTestStore(t, now)
	ctx := context.Background()

	result := exampleResult(t, now)
	id, err := store.Save(ctx, result)
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, id, runIdLength)

	run, err := store.Get(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, id, run.Id)
	require.True(t, now.Equal(run.RanAt))
	require.Equal(t, 4, run.Records)
	require.Equal(t, result.LeaveWeeks, run.LeaveWeeks)
	if diff := cmp.Diff(result.Report.Courses, run.Courses); diff != "" {
		t.Fatal(diff)
	}
	if diff := cmp.Diff(result.Report.Warnings, run.Warnings); diff != "" {
		t.Fatal(diff)
	}

	var days []string
	for _, c := range run.Courses {
		days = append(days, c.TotalDays.String())
	}
	require.Equal(t, []string{"0.75", "0.00", attendance.UnknownDays}, days)
}

func TestGetMissing(t *testing.T) {
	store := newTestStore(t, time.Now())
	_, err := store.Get(context.Background(), "doesnotexist")
	require.ErrorIs(t, err, ErrRunNotFound)
}

func TestSaveWithoutTime(t *testing.T) {
	now := time.Date(2024, 10, 2, 12, 0, 0, 0, time.UTC)
	store := newTestStore(t, now)
	ctx := context.Background()

	id, err := store.Save(ctx, service.Result{})
	if err != nil {
		t.Fatal(err)
	}
	run, err := store.Get(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	require.True(t, now.Equal(run.RanAt))
	require.Empty(t, run.Courses)
	require.Empty(t, run.LeaveWeeks)
}

func TestList(t *testing.T) {
	start := time.Date(2024, 10, 1, 9, 0, 0, 0, time.UTC)
	store := newTestStore(t, start)
	ctx := context.Background()

	runs, err := store.List(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	require.Empty(t, runs)

	var ids []string
	for day := 0; day < 3; day++ {
		id, err := store.Save(ctx, exampleResult(t, start.AddDate(0, 0, day)))
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, id)
	}

	runs, err = store.List(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, runs, 2)
	require.Equal(t, ids[2], runs[0].Id)
	require.Equal(t, ids[1], runs[1].Id)

	require.Equal(t, RunInfo{
		Id:          ids[2],
		RanAt:       runs[0].RanAt,
		Records:     4,
		Courses:     3,
		TotalAbsent: 4,
		Warnings:    1,
	}, runs[0])
	require.True(t, start.AddDate(0, 0, 2).Equal(runs[0].RanAt))
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absence-history.db")
	clock := chrono.FixedImpl{Time: time.Date(2024, 10, 1, 9, 0, 0, 0, time.UTC)}
	ctx := context.Background()

	store, err := Open(ctx, configlibsql.Struct{File: path}, clock)
	if err != nil {
		t.Fatal(err)
	}
	id, err := store.Save(ctx, exampleResult(t, clock.Time))
	if err != nil {
		t.Fatal(err)
	}
	require.NoError(t, store.Close())

	// reopening keeps the runs and does not fail on the existing tables
	store, err = Open(ctx, configlibsql.Struct{File: path}, clock)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	run, err := store.Get(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, run.Courses, 3)
}
