// Package service runs one attendance check: it logs into the portal, fetches
// both report tables and aggregates them against the course factors.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"absence-tracker/internal/attendance"
	"absence-tracker/internal/components/assert"
	"absence-tracker/internal/components/chrono"
	"absence-tracker/internal/components/telemetry"
	"absence-tracker/internal/factors"
	"absence-tracker/internal/portal"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

// TableFetcher returns the raw rows of the two report tables, header row
// included.
//
// note: fault injection point
type TableFetcher interface {
	FetchAttendance(ctx context.Context) ([][]string, error)
	FetchLeaveForms(ctx context.Context) ([][]string, error)
}

// Authenticator starts a session for the given credentials, it should return
// an error wrapping portal.ErrInvalidCredentials when they are rejected.
type Authenticator interface {
	Login(ctx context.Context, account, password string) error
}

type Portal interface {
	Authenticator
	TableFetcher
}

// Credentials are handed to the Authenticator as is.
type Credentials struct {
	Account  string
	Password string
}

type Stage string

const (
	StageLogin           Stage = "login"
	StageFetchAttendance Stage = "fetch-attendance"
	StageFetchLeaveForms Stage = "fetch-leave-forms"
	StageAggregate       Stage = "aggregate"
	StageDone            Stage = "done"
)

var stages = []Stage{
	StageLogin,
	StageFetchAttendance,
	StageFetchLeaveForms,
	StageAggregate,
	StageDone,
}

func (s Stage) index() int {
	for i, stage := range stages {
		if s == stage {
			return i + 1
		}
	}
	return 0
}

// RunError is returned by Run when a stage fails, no part of the report is
// returned along with it.
type RunError struct {
	Stage Stage
	Err   error
}

func (e *RunError) Error() string {
	if errors.Is(e.Err, portal.ErrInvalidCredentials) {
		return fmt.Sprintf("authentication failed: %s", e.Err)
	}
	return fmt.Sprintf("extraction failed (%s): %s", e.Stage, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// Result is a complete report.
type Result struct {
	Records []attendance.Record
	Report  attendance.Report
	// LeaveWeeks are the distinct weeks that have a leave form.
	LeaveWeeks []string
	RanAt      time.Time
}

const (
	report_run_failed   = "run.failed"
	report_run_records  = "run.records"
	report_run_warnings = "run.warnings"
)

var tracer = otel.Tracer("absence-tracker/service")

type Service struct {
	portal  Portal
	layout  attendance.Layout
	timeout time.Duration
	time    chrono.TimeAPI
	tel     telemetry.API
	runs    metric.Int64Counter
}

type serviceConfig struct {
	time chrono.TimeAPI
	tel  telemetry.API
}

type ServiceOption func(cfg *serviceConfig)

func WithTimeAPI(time chrono.TimeAPI) ServiceOption {
	return func(cfg *serviceConfig) {
		cfg.time = time
	}
}

func WithTelemetryAPI(tel telemetry.API) ServiceOption {
	return func(cfg *serviceConfig) {
		cfg.tel = tel
	}
}

// NewService creates a service, `timeout` bounds each of the two table
// fetches.
func NewService(p Portal, layout attendance.Layout, timeout time.Duration, options ...ServiceOption) (Service, error) {
	assert.NotNil(p)
	assert.Positive("timeout", timeout)

	err := layout.Validate()
	if err != nil {
		return Service{}, err
	}

	cfg := serviceConfig{}
	for _, opt := range options {
		opt(&cfg)
	}
	if cfg.time == nil {
		location, err := chrono.NewStandardImpl("Asia/Taipei")
		if err != nil {
			return Service{}, err
		}
		cfg.time = location
	}
	if cfg.tel == nil {
		cfg.tel = telemetry.NewSlogAPI()
	}

	runs, err := otel.Meter("absence-tracker/service").Int64Counter(
		"runs",
		metric.WithDescription("attendance checks by outcome"),
	)
	if err != nil {
		return Service{}, err
	}

	return Service{
		portal:  p,
		layout:  layout,
		timeout: timeout,
		time:    cfg.time,
		tel:     telemetry.NewScopedAPI("service", cfg.tel),
		runs:    runs,
	}, nil
}

func (s Service) event(log *EventLog, stage Stage, level Level, format string, args ...any) {
	log.append(Event{
		Stage:   stage,
		Index:   stage.index(),
		Total:   len(stages),
		Message: fmt.Sprintf(format, args...),
		Level:   level,
	})
}

// fetch runs one table fetch under its own deadline.
func (s Service) fetch(ctx context.Context, fn func(ctx context.Context) ([][]string, error)) ([][]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := fn(ctx)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, portal.ErrTimeout) {
			err = fmt.Errorf("%w: %w", portal.ErrTimeout, err)
		}
		return nil, err
	}
	return rows, nil
}

// Run performs a full check. It either returns a complete Result or a
// *RunError, progress is appended to `log` which may be nil. The factors are
// only read.
func (s Service) Run(ctx context.Context, creds Credentials, f *factors.Factors, log *EventLog) (Result, error) {
	ctx, span := tracer.Start(ctx, "service:Run")
	defer span.End()

	if f == nil {
		f = factors.New()
	}

	fail := func(stage Stage, err error) (Result, error) {
		s.event(log, stage, LevelError, "%s", err)
		s.tel.ReportWarning(report_run_failed, string(stage), err)
		s.runs.Add(ctx, 1, metric.WithAttributes(
			attribute.String("outcome", "failed"),
			attribute.String("stage", string(stage)),
		))
		span.RecordError(err)
		span.SetStatus(codes.Error, "run failed")
		return Result{}, &RunError{Stage: stage, Err: err}
	}

	s.event(log, StageLogin, LevelInfo, "logging in")
	err := s.portal.Login(ctx, creds.Account, creds.Password)
	if err != nil {
		return fail(StageLogin, err)
	}

	s.event(log, StageFetchAttendance, LevelInfo, "fetching the attendance report")
	attendanceRows, err := s.fetch(ctx, s.portal.FetchAttendance)
	if err != nil {
		return fail(StageFetchAttendance, err)
	}
	records := attendance.ExtractRecords(s.layout.Attendance, attendanceRows)
	s.event(log, StageFetchAttendance, LevelInfo, "found %d attendance records", len(records))

	s.event(log, StageFetchLeaveForms, LevelInfo, "fetching the leave form report")
	leaveRows, err := s.fetch(ctx, s.portal.FetchLeaveForms)
	if err != nil {
		return fail(StageFetchLeaveForms, err)
	}
	weeks := attendance.DistinctWeeks(attendance.ExtractLeaveWeeks(s.layout.LeaveForm, leaveRows))
	s.event(log, StageFetchLeaveForms, LevelInfo, "found leave forms in %d weeks", len(weeks))

	s.event(log, StageAggregate, LevelInfo, "aggregating %d records", len(records))
	report := attendance.Aggregate(records, f)
	for _, w := range report.Warnings {
		if w.Suggestion != "" {
			s.event(
				log, StageAggregate, LevelWarning,
				"%s has %d absences but no factor (did you mean %s?)",
				w.Course, w.Absent, w.Suggestion,
			)
			continue
		}
		s.event(
			log, StageAggregate, LevelWarning,
			"%s has %d absences but no factor",
			w.Course, w.Absent,
		)
	}

	s.tel.ReportCount(report_run_records, int64(len(records)))
	s.tel.ReportCount(report_run_warnings, int64(len(report.Warnings)))
	s.runs.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "ok")))
	span.SetAttributes(
		attribute.Int("records", len(records)),
		attribute.Int("courses", len(report.Courses)),
	)

	s.event(log, StageDone, LevelInfo, "%d courses", len(report.Courses))

	return Result{
		Records:    records,
		Report:     report,
		LeaveWeeks: weeks,
		RanAt:      s.time.Now(),
	}, nil
}
