package serverfx

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/joeydtaylor/steeze-bridge/pkg/bundlefx"
	"github.com/joeydtaylor/steeze-bridge/pkg/core"
	"github.com/joeydtaylor/steeze-bridge/pkg/manifest"
	"github.com/joeydtaylor/steeze-bridge/pkg/middleware/logger"
	"github.com/joeydtaylor/steeze-bridge/pkg/module"
	"github.com/joeydtaylor/steeze-bridge/pkg/transport/httpx"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Options allow per-service env keys/defaults without code duplication.
type Options struct {
	Service       string // for logs only
	ConfigEnv     string // e.g. "BRIDGE_CONFIG"
	DefaultConfig string // e.g. "bridge.toml"; served with defaults if absent
	ListenAddrEnv string // e.g. "SERVER_LISTEN_ADDRESS"
	DefaultListen string // e.g. ":3000"
	TLSCertEnv    string // e.g. "SSL_SERVER_CERTIFICATE"
	TLSKeyEnv     string // e.g. "SSL_SERVER_KEY"
	EnvFile       string // optional .env file loaded before anything reads the environment
	TraceEnv      string // e.g. "BRIDGE_TRACE_STDOUT"; when true, spans are printed to stdout
}

// DefaultOptions returns the options used by cmd/bridge.
func DefaultOptions() Options {
	return Options{
		Service:       "bridge",
		ConfigEnv:     "BRIDGE_CONFIG",
		DefaultConfig: "bridge.toml",
		ListenAddrEnv: "SERVER_LISTEN_ADDRESS",
		DefaultListen: ":3000",
		TLSCertEnv:    "SSL_SERVER_CERTIFICATE",
		TLSKeyEnv:     "SSL_SERVER_KEY",
		EnvFile:       ".env",
		TraceEnv:      "BRIDGE_TRACE_STDOUT",
	}
}

// modulesGroup collects modules supplied with Serve.
const modulesGroup = "bridge_modules"

// Serve adds m to the modules the server exposes. Without any Serve option
// every module in the process registry is exposed.
func Serve(m *module.Module) fx.Option {
	return fx.Provide(fx.Annotate(
		func() *module.Module { return m },
		fx.ResultTags(`group:"`+modulesGroup+`"`),
	))
}

// ---- Router ----

type routerDeps struct {
	fx.In

	Opts    Options
	LogMW   *logger.Middleware
	Metrics http.Handler `name:"metrics"`
	R       httpx.Router
	Log     *zap.Logger
	Tracer  trace.TracerProvider

	Modules []*module.Module `group:"bridge_modules"`
}

func provideRouter(d routerDeps) (http.Handler, error) {
	cfg, err := loadConfig(d.Opts, d.Log)
	if err != nil {
		return nil, err
	}
	return core.BuildRouter(cfg, core.BuildDeps{
		LogMW:   d.LogMW,
		Metrics: d.Metrics,
		Router:  d.R,
		Log:     d.Log,
		Tracer:  d.Tracer,
		Modules: d.Modules,
	})
}

func loadConfig(o Options, log *zap.Logger) (manifest.Config, error) {
	path := envOr(o.ConfigEnv, o.DefaultConfig)
	if path == "" {
		return manifest.Default(), nil
	}
	cfg, err := manifest.Load(path)
	if errors.Is(err, os.ErrNotExist) && os.Getenv(o.ConfigEnv) == "" {
		log.Info("no bridge config, serving defaults", zap.String("path", path))
		return manifest.Default(), nil
	}
	if err != nil {
		return manifest.Config{}, fmt.Errorf("load %s: %w", path, err)
	}
	log.Info("bridge config loaded", zap.String("path", path), zap.Int("modules", len(cfg.Modules)))
	return cfg, nil
}

// ---- Server lifecycle ----

type serverDeps struct {
	fx.In
	Opts   Options
	Logger *zap.Logger
	App    http.Handler `name:"app"`
}

func registerHooks(lc fx.Lifecycle, d serverDeps) {
	addr := envOr(d.Opts.ListenAddrEnv, d.Opts.DefaultListen)
	cert := os.Getenv(d.Opts.TLSCertEnv)
	key := os.Getenv(d.Opts.TLSKeyEnv)

	srv := &http.Server{
		Addr:         addr,
		Handler:      d.App,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	useTLS := fileExists(cert) && fileExists(key)
	if useTLS {
		srv.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS13}
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			// Bind synchronously so address errors fail startup.
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}
			if useTLS {
				d.Logger.Info("server starting (TLS)",
					zap.String("service", d.Opts.Service),
					zap.String("addr", ln.Addr().String()),
					zap.String("cert", cert),
				)
				go func() {
					if err := srv.ServeTLS(ln, cert, key); err != nil && err != http.ErrServerClosed {
						d.Logger.Error("server failed", zap.Error(err))
					}
				}()
			} else {
				d.Logger.Info("server starting (PLAINTEXT)",
					zap.String("service", d.Opts.Service),
					zap.String("addr", ln.Addr().String()),
				)
				go func() {
					if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
						d.Logger.Error("server failed", zap.Error(err))
					}
				}()
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			d.Logger.Info("server stopping", zap.String("service", d.Opts.Service))
			return srv.Shutdown(ctx)
		},
	})
}

// ---- Public Fx module ----

// Module returns the complete server: logging, metrics, router and the HTTP
// lifecycle. The routed handler is also available as http.Handler `name:"app"`.
func Module(opts Options) fx.Option {
	if opts.EnvFile != "" && fileExists(opts.EnvFile) {
		_ = godotenv.Load(opts.EnvFile)
	}
	return fx.Options(
		fx.Supply(opts),

		// Logger, access log and metrics (named)
		bundlefx.Module,

		// Router implementation
		fx.Provide(httpx.NewChi),
		fx.Provide(provideTracer),

		// Router (named "app")
		fx.Provide(
			fx.Annotate(
				provideRouter,
				fx.ResultTags(`name:"app"`),
			),
		),

		fx.Invoke(registerHooks),
	)
}

// ---- helpers ----

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

func envOr(k, def string) string {
	if k == "" {
		return def
	}
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
