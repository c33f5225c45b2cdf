package telemetry

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// SlogAPI implements API using the log/slog package, counts are additionally
// recorded on an otel gauge.
type SlogAPI struct {
	counts metric.Int64Gauge
}

func NewSlogAPI() SlogAPI {
	gauge, err := otel.Meter("absence-tracker").Int64Gauge("report_count")
	if err != nil {
		slog.Warn("failed to create count gauge", "err", err)
	}
	return SlogAPI{counts: gauge}
}

func (SlogAPI) formatParams(out *[]any, params []any) {
	for i, p := range params {
		*out = append(
			*out,
			fmt.Sprintf("params.%d", i),
			p,
		)
	}
}

func (s SlogAPI) ReportBroken(id string, params ...any) {
	remainingPairs := []any{"id", id}
	s.formatParams(&remainingPairs, params)
	slog.Error("broken component", remainingPairs...)
}

func (s SlogAPI) ReportWarning(id string, params ...any) {
	remainingPairs := []any{"id", id}
	s.formatParams(&remainingPairs, params)
	slog.Warn("warning", remainingPairs...)
}

func (s SlogAPI) ReportDebug(message string, params ...any) {
	remainingPairs := []any{}
	s.formatParams(&remainingPairs, params)
	slog.Debug(message, remainingPairs...)
}

func (s SlogAPI) ReportCount(id string, count int64) {
	slog.Info("count", "id", id, "n", count)
	if s.counts != nil {
		s.counts.Record(context.Background(), count, metric.WithAttributes(
			attribute.String("id", id),
		))
	}
}
