// core/register.go
package core

import (
	"net/http"
	"path"
	"time"

	"github.com/joeydtaylor/steeze-bridge/pkg/manifest"
	"github.com/joeydtaylor/steeze-bridge/pkg/module"
	httpx "github.com/joeydtaylor/steeze-bridge/pkg/transport/httpx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// tracerName identifies spans started by the bridge.
const tracerName = "github.com/joeydtaylor/steeze-bridge/pkg/core"

// RouteDescriptor records one route installed for a module.
type RouteDescriptor struct {
	Module string
	Export string // empty for the definition route
	Method string
	Path   string
}

// RouteOptions control how RegisterModule exposes a module.
type RouteOptions struct {
	// Methods lists the HTTP methods calls are accepted on. Default GET and POST.
	Methods []string
	// Timeout bounds the context of each call when positive.
	Timeout time.Duration

	// Definition enables GET {DefinitionPrefix}/{module}.
	Definition       bool
	DefinitionPrefix string

	Log    *zap.Logger
	Tracer trace.TracerProvider
}

// RegisterModule installs a route for every export of m, plus the definition
// route when enabled, and returns what it installed.
func RegisterModule(r httpx.Router, m *module.Module, o RouteOptions) []RouteDescriptor {
	log := o.Log
	if log == nil {
		log = zap.NewNop()
	}
	tp := o.Tracer
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	tracer := tp.Tracer(tracerName)
	methods := o.Methods
	if len(methods) == 0 {
		methods = []string{http.MethodGet, http.MethodPost}
	}

	var routes []RouteDescriptor
	for _, fn := range m.Exports() {
		p := "/" + m.Name() + "/" + fn.Name()
		for _, method := range methods {
			h := &exportHandler{
				module: m.Name(),
				fn:     fn,
				method: method,
				log:    log,
				tracer: tracer,
			}
			switch method {
			case http.MethodGet:
				h.source = querySource
				r.Get(p, withTimeout(h, o.Timeout))
			case http.MethodPost:
				h.source = BodySource
				r.Post(p, withTimeout(h, o.Timeout))
			default:
				continue
			}
			routes = append(routes, RouteDescriptor{Module: m.Name(), Export: fn.Name(), Method: method, Path: p})
		}
	}

	if o.Definition {
		prefix := o.DefinitionPrefix
		if prefix == "" {
			prefix = manifest.DefaultDefinitionPrefix
		}
		p := path.Join(prefix, m.Name())
		r.Get(p, definitionHandler{def: m.Definition()})
		routes = append(routes, RouteDescriptor{Module: m.Name(), Method: http.MethodGet, Path: p})
	}

	for _, rd := range routes {
		log.Info("route registered",
			zap.String("module", rd.Module),
			zap.String("export", rd.Export),
			zap.String("method", rd.Method),
			zap.String("path", rd.Path),
		)
	}
	return routes
}
