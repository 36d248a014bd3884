package core

import (
	"net/http"

	"github.com/joeydtaylor/steeze-bridge/pkg/middleware/logger"
	"github.com/joeydtaylor/steeze-bridge/pkg/module"
	httpx "github.com/joeydtaylor/steeze-bridge/pkg/transport/httpx"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// BuildDeps are the collaborators BuildRouter wires together. Nil fields are
// skipped or replaced by no-op defaults.
type BuildDeps struct {
	LogMW   *logger.Middleware
	Metrics http.Handler
	Router  httpx.Router
	Log     *zap.Logger
	Tracer  trace.TracerProvider

	// Modules to serve. If empty, every module in the process registry is used.
	Modules []*module.Module
}
