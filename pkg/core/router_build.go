package core

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimd "github.com/go-chi/chi/v5/middleware"
	"github.com/joeydtaylor/steeze-bridge/pkg/manifest"
	hmetrics "github.com/joeydtaylor/steeze-bridge/pkg/middleware/metrics"
	"github.com/joeydtaylor/steeze-bridge/pkg/module"
	httpx "github.com/joeydtaylor/steeze-bridge/pkg/transport/httpx"
	"go.uber.org/zap"
)

// BuildRouter validates cfg and registers every served module on d.Router.
// All routes exist by the time it returns.
func BuildRouter(cfg manifest.Config, d BuildDeps) (http.Handler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := d.Router
	if r == nil {
		r = httpx.NewChi()
	}
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}

	r.Use(chimd.RequestID, chimd.Recoverer, chimd.Heartbeat("/ping"), chimd.StripSlashes)
	if d.LogMW != nil {
		d.LogMW.AddBodyLogPaths(cfg.Server.LogBodyPaths...)
		r.Use(d.LogMW.Middleware())
	}
	hmetrics.AddMetricsSkipPaths("/ping")
	hmetrics.SetPathNormalizer(routePattern)
	r.Use(hmetrics.Collect())

	if d.Metrics != nil {
		r.Get("/metrics", d.Metrics)
	}

	mods := d.Modules
	if len(mods) == 0 {
		mods = module.All()
	}
	seen := make(map[string]bool, len(mods))
	for _, m := range mods {
		if seen[m.Name()] {
			return nil, fmt.Errorf("%w: module %q", module.ErrDuplicate, m.Name())
		}
		seen[m.Name()] = true
	}
	for _, spec := range cfg.Modules {
		if !spec.Disabled && !seen[spec.Name] {
			return nil, fmt.Errorf("module %q is configured but not registered", spec.Name)
		}
	}

	for _, m := range mods {
		if !cfg.Serves(m.Name()) {
			log.Info("module not served", zap.String("module", m.Name()))
			continue
		}
		spec, _ := cfg.Module(m.Name())
		var methods []string
		for _, method := range []string{http.MethodGet, http.MethodPost} {
			if spec.Allows(method) {
				methods = append(methods, method)
			}
		}
		RegisterModule(r, m, RouteOptions{
			Methods:          methods,
			Timeout:          time.Duration(spec.TimeoutMS) * time.Millisecond,
			Definition:       !cfg.Server.DisableDefinitions && !spec.HideDefinition,
			DefinitionPrefix: cfg.Server.DefinitionPrefix,
			Log:              log,
			Tracer:           d.Tracer,
		})
	}
	return r.Mux(), nil
}

// routePattern labels metrics by route template rather than raw path.
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}
