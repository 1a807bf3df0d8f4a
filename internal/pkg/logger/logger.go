package logger

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

// Init configures the global zerolog logger for a service. Every log line
// carries the service name so aggregated output stays attributable.
func Init(serviceName string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zlog.Logger = zerolog.New(os.Stdout).With().
		Timestamp().
		Str("service", serviceName).
		Logger()
}

// Ctx returns the logger stored in ctx, falling back to the global one.
func Ctx(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx)
	if l.GetLevel() == zerolog.Disabled {
		return &zlog.Logger
	}
	return l
}

// WithTraceID derives a request-scoped logger carrying the trace id and
// stores it in the returned context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	l := zlog.With().Str("trace_id", traceID).Logger()
	return l.WithContext(ctx)
}
