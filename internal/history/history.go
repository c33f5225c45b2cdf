// Package history keeps finished reports in a sqlite (or libsql) database so
// they can be compared later.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"absence-tracker/internal/attendance"
	"absence-tracker/internal/components/assert"
	"absence-tracker/internal/components/chrono"
	"absence-tracker/internal/service"
	configlibsql "absence-tracker/lib/configutil/libsql"

	"github.com/mazen160/go-random"
)

//go:embed schema.sql
var Schema string

var ErrRunNotFound = errors.New("history: run not found")

const runIdLength = 12

// Run is a stored report.
type Run struct {
	Id         string
	RanAt      time.Time
	Records    int
	Courses    []attendance.CourseSummary
	Warnings   []attendance.Warning
	LeaveWeeks []string
}

// RunInfo is the overview of a stored report returned by List.
type RunInfo struct {
	Id          string
	RanAt       time.Time
	Records     int
	Courses     int
	TotalAbsent int
	Warnings    int
}

type Store struct {
	db   *sql.DB
	time chrono.TimeAPI
}

// NewStore creates the tables if they do not exist yet.
func NewStore(ctx context.Context, db *sql.DB, clock chrono.TimeAPI) (Store, error) {
	assert.NotNil(db)
	assert.NotNil(clock)

	_, err := db.ExecContext(ctx, Schema)
	if err != nil {
		return Store{}, fmt.Errorf("history: create schema: %w", err)
	}
	return Store{db: db, time: clock}, nil
}

// Open opens the database described by `config` and creates a store on it.
func Open(ctx context.Context, config configlibsql.Struct, clock chrono.TimeAPI) (Store, error) {
	db, err := config.OpenDB()
	if err != nil {
		return Store{}, err
	}
	store, err := NewStore(ctx, db, clock)
	if err != nil {
		db.Close()
		return Store{}, err
	}
	return store, nil
}

func (s Store) Close() error {
	return s.db.Close()
}

func nullableFactor(c attendance.CourseSummary) (sql.NullInt64, sql.NullFloat64) {
	if !c.TotalDays.Known {
		return sql.NullInt64{}, sql.NullFloat64{}
	}
	return sql.NullInt64{Int64: int64(c.Factor), Valid: true},
		sql.NullFloat64{Float64: c.TotalDays.Value, Valid: true}
}

// Save stores a result and returns the id of the new run. A result without
// RanAt is stamped with the current time.
func (s Store) Save(ctx context.Context, result service.Result) (string, error) {
	id, err := random.String(runIdLength)
	if err != nil {
		return "", fmt.Errorf("history: generate run id: %w", err)
	}

	ranAt := result.RanAt
	if ranAt.IsZero() {
		ranAt = s.time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(
		ctx,
		"insert into run (id, ran_at, record_count) values (?, ?, ?)",
		id, ranAt.Unix(), len(result.Records),
	)
	if err != nil {
		return "", fmt.Errorf("history: insert run: %w", err)
	}

	for i, c := range result.Report.Courses {
		factor, days := nullableFactor(c)
		_, err = tx.ExecContext(
			ctx,
			`insert into course_summary (
				run_id, position, course,
				leave_count, sick_count, tardy_count, absent_count,
				factor, days
			) values (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, i, c.Course,
			c.Count(attendance.StatusLeave),
			c.Count(attendance.StatusSick),
			c.Count(attendance.StatusTardy),
			c.Count(attendance.StatusAbsent),
			factor, days,
		)
		if err != nil {
			return "", fmt.Errorf("history: insert course %q: %w", c.Course, err)
		}
	}

	for i, w := range result.Report.Warnings {
		_, err = tx.ExecContext(
			ctx,
			"insert into run_warning (run_id, position, course, absent, suggestion) values (?, ?, ?, ?, ?)",
			id, i, w.Course, w.Absent, w.Suggestion,
		)
		if err != nil {
			return "", fmt.Errorf("history: insert warning: %w", err)
		}
	}

	for i, week := range result.LeaveWeeks {
		_, err = tx.ExecContext(
			ctx,
			"insert into leave_week (run_id, position, week) values (?, ?, ?)",
			id, i, week,
		)
		if err != nil {
			return "", fmt.Errorf("history: insert leave week: %w", err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return "", err
	}
	return id, nil
}

// List returns up to `limit` runs, newest first.
func (s Store) List(ctx context.Context, limit int) ([]RunInfo, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`select
			r.id, r.ran_at, r.record_count,
			count(c.position),
			coalesce(sum(c.leave_count + c.sick_count + c.tardy_count + c.absent_count), 0),
			(select count(*) from run_warning w where w.run_id = r.id)
		from run r
		left join course_summary c on c.run_id = r.id
		group by r.id
		order by r.ran_at desc, r.id desc
		limit ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunInfo
	for rows.Next() {
		var info RunInfo
		var ranAt int64
		err := rows.Scan(
			&info.Id, &ranAt, &info.Records,
			&info.Courses, &info.TotalAbsent, &info.Warnings,
		)
		if err != nil {
			return nil, err
		}
		info.RanAt = time.Unix(ranAt, 0).In(s.time.Location())
		out = append(out, info)
	}
	return out, rows.Err()
}

// Get returns a stored run with its courses in display order, ErrRunNotFound
// if there is no run with the given id.
func (s Store) Get(ctx context.Context, id string) (Run, error) {
	run := Run{Id: id}

	var ranAt int64
	err := s.db.QueryRowContext(
		ctx,
		"select ran_at, record_count from run where id = ?",
		id,
	).Scan(&ranAt, &run.Records)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return Run{}, err
	}
	run.RanAt = time.Unix(ranAt, 0).In(s.time.Location())

	run.Courses, err = s.courses(ctx, id)
	if err != nil {
		return Run{}, err
	}

	run.Warnings, err = s.warnings(ctx, id)
	if err != nil {
		return Run{}, err
	}
	run.LeaveWeeks, err = s.leaveWeeks(ctx, id)
	if err != nil {
		return Run{}, err
	}
	return run, nil
}

// every query below closes its rows before returning, the sqlite pool only
// has a single connection.

func (s Store) warnings(ctx context.Context, id string) ([]attendance.Warning, error) {
	rows, err := s.db.QueryContext(
		ctx,
		"select course, absent, suggestion from run_warning where run_id = ? order by position",
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []attendance.Warning
	for rows.Next() {
		var w attendance.Warning
		err := rows.Scan(&w.Course, &w.Absent, &w.Suggestion)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (s Store) leaveWeeks(ctx context.Context, id string) ([]string, error) {
	rows, err := s.db.QueryContext(
		ctx,
		"select week from leave_week where run_id = ? order by position",
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var week string
		err := rows.Scan(&week)
		if err != nil {
			return nil, err
		}
		out = append(out, week)
	}
	return out, rows.Err()
}

func (s Store) courses(ctx context.Context, id string) ([]attendance.CourseSummary, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`select
			course, leave_count, sick_count, tardy_count, absent_count, factor, days
		from course_summary
		where run_id = ?
		order by position`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []attendance.CourseSummary
	for rows.Next() {
		var c attendance.CourseSummary
		var factor sql.NullInt64
		var days sql.NullFloat64
		err := rows.Scan(
			&c.Course,
			&c.Counts[attendance.StatusLeave.Index()],
			&c.Counts[attendance.StatusSick.Index()],
			&c.Counts[attendance.StatusTardy.Index()],
			&c.Counts[attendance.StatusAbsent.Index()],
			&factor,
			&days,
		)
		if err != nil {
			return nil, err
		}
		if factor.Valid && days.Valid {
			c.Factor = int(factor.Int64)
			c.TotalDays = attendance.Days{Value: days.Float64, Known: true}
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
