package serverfx

import (
	"context"
	"os"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// provideTracer returns the global provider unless stdout tracing is enabled,
// in which case spans are batched to a stdout exporter for the app lifetime.
func provideTracer(lc fx.Lifecycle, o Options, log *zap.Logger) (trace.TracerProvider, error) {
	on, _ := strconv.ParseBool(os.Getenv(o.TraceEnv))
	if o.TraceEnv == "" || !on {
		return otel.GetTracerProvider(), nil
	}
	exp, err := stdouttrace.New(stdouttrace.WithWriter(os.Stdout))
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp))
	log.Info("stdout tracing enabled", zap.String("env", o.TraceEnv))
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error { return tp.Shutdown(ctx) },
	})
	return tp, nil
}
