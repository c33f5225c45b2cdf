package globals

import (
	"context"

	"absence-tracker/internal/components/chrono"
	"absence-tracker/internal/components/telemetry"
)

type ctxKey struct{}

type Value struct {
	Config  Config
	Tel     telemetry.API
	Time    chrono.TimeAPI
	Verbose bool
}

func Set(ctx context.Context, value *Value) context.Context {
	return context.WithValue(ctx, ctxKey{}, value)
}

func Get(ctx context.Context) *Value {
	return ctx.Value(ctxKey{}).(*Value)
}
