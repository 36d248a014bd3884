// bundlefx/bundlefx.go
package bundlefx

import (
	"github.com/joeydtaylor/steeze-bridge/pkg/middleware/logger"
	"github.com/joeydtaylor/steeze-bridge/pkg/middleware/metrics"
	"go.uber.org/fx"
)

// Module provides the middleware every bridge server carries: the system
// logger, the access-log middleware and the Prometheus handler, named
// "metrics".
var Module = fx.Options(
	logger.Module,
	fx.Provide(fx.Annotate(metrics.ProvideMetrics, fx.ResultTags(`name:"metrics"`))),
)
