package app

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/navcore/internal/config"
	"github.com/vango-dev/navcore/internal/errors"
	"github.com/vango-dev/navcore/internal/manifest"
	"github.com/vango-dev/navcore/pkg/devtools"
	"github.com/vango-dev/navcore/pkg/history"
	"github.com/vango-dev/navcore/pkg/history/remote"
	"github.com/vango-dev/navcore/pkg/route"
	"github.com/vango-dev/navcore/pkg/routepath"
	"github.com/vango-dev/navcore/pkg/router"
	"github.com/vango-dev/navcore/pkg/telemetry"
)

// ShutdownTimeout bounds graceful shutdown of the devtools server.
const ShutdownTimeout = 5 * time.Second

// Options configures New.
type Options struct {
	// Config is the loaded configuration. Required.
	Config *config.Config

	// Manifest overrides Config.Manifest when set.
	Manifest *manifest.Manifest

	// S3 fetches s3:// manifests.
	S3 manifest.ObjectGetter

	// Logger is used everywhere. Default: slog.Default().
	Logger *slog.Logger

	// Registry receives the navigation collectors. Default: a fresh
	// registry with the Go and process collectors.
	Registry *prometheus.Registry

	// TracerProvider creates navigation spans when tracing is enabled.
	// Default: the global provider.
	TracerProvider trace.TracerProvider

	// Remote overrides the backend created for remote mode.
	Remote *remote.Backend
}

// App is an assembled router with its observers and devtools.
type App struct {
	Config   *config.Config
	Manifest *manifest.Manifest
	Router   *router.Router
	Backend  history.Backend
	Remote   *remote.Backend
	Registry *prometheus.Registry
	Metrics  *telemetry.Metrics
	Tracing  *telemetry.Tracing
	Outlet   *Outlet
	Devtools *devtools.Handler

	settled *settleObserver
	logger  *slog.Logger
	unmount func()
}

// New loads the manifest and builds the router.
func New(ctx context.Context, opts Options) (*App, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, errors.New(errors.CodeInvalidConfig).WithDetail("no configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	m := opts.Manifest
	if m == nil {
		if cfg.Manifest == "" {
			return nil, errors.New(errors.CodeInvalidConfig).WithDetail("no route manifest configured")
		}
		var err error
		m, err = manifest.Load(ctx, cfg.Manifest, manifest.LoadOptions{S3: opts.S3, Logger: logger})
		if err != nil {
			return nil, err
		}
	}
	routes, err := m.RouteConfigs(manifest.BuildOptions{
		Loader: func(_ context.Context, def *route.Definition) (any, error) {
			logger.Debug("component loaded", "component", def.Name)
			return def, nil
		},
	})
	if err != nil {
		return nil, err
	}

	base := cfg.Base
	if base == "" {
		base = m.Base
	}

	a := &App{
		Config:   cfg,
		Manifest: m,
		settled:  &settleObserver{},
		logger:   logger,
	}

	observers := []history.Observer{a.settled}
	if cfg.Metrics.Enabled {
		a.Registry = opts.Registry
		if a.Registry == nil {
			a.Registry = prometheus.NewRegistry()
			a.Registry.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
		}
		a.Metrics = telemetry.NewMetrics(
			telemetry.WithNamespace(cfg.Metrics.Namespace),
			telemetry.WithRegistry(a.Registry),
		)
		observers = append(observers, a.Metrics)
	}
	if cfg.Tracing.Enabled {
		tp := opts.TracerProvider
		if tp == nil {
			tp = otel.GetTracerProvider()
		}
		a.Tracing = telemetry.NewTracing(
			telemetry.WithTracerName(cfg.Tracing.TracerName),
			telemetry.WithTracerProvider(tp),
			telemetry.WithIncludeParams(true),
		)
		observers = append(observers, a.Tracing)
	}

	switch cfg.Mode {
	case config.ModeRemote:
		a.Remote = opts.Remote
		if a.Remote == nil {
			a.Remote = remote.New(remote.Config{Initial: "/", Logger: logger})
		}
		a.Backend = a.Remote
	default:
		a.Backend = history.NewMemoryBackend(routeBase(base))
	}

	a.Router, err = router.New(router.Config{
		Routes:               routes,
		Base:                 base,
		Backend:              a.Backend,
		Logger:               logger,
		Observers:            observers,
		LinkActiveClass:      cfg.LinkActiveClass,
		LinkExactActiveClass: cfg.LinkExactActiveClass,
	})
	if err != nil {
		return nil, err
	}

	a.Outlet = NewOutlet(logger)
	a.unmount = a.Router.Subscribe(a.Outlet.Render)
	a.Router.OnError(func(err error) {
		logger.Error("navigation error", "code", errors.CodeOf(err), "error", err)
	})

	var gatherer prometheus.Gatherer
	if a.Registry != nil {
		gatherer = a.Registry
	}
	var ws http.Handler
	if a.Remote != nil {
		ws = a.Remote
	}
	a.Devtools = devtools.New(devtools.Config{
		Router:          a.Router,
		Gatherer:        gatherer,
		Remote:          ws,
		NavigateTimeout: cfg.NavigateTimeout(),
		Logger:          logger,
	})
	return a, nil
}

// routeBase is the backend location of the root route under base.
func routeBase(base string) string {
	return routepath.NormalizeBase(base) + "/"
}

// Start performs the initial navigation.
func (a *App) Start(ctx context.Context) (*route.Route, error) {
	return a.Router.Start(ctx)
}

// Close stops the router and the remote backend.
func (a *App) Close() error {
	a.unmount()
	a.Router.Close()
	a.Outlet.Unmount()
	if a.Remote != nil {
		return a.Remote.Close()
	}
	return nil
}

// Serve runs the devtools server on addr until ctx is done.
func (a *App) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           otelhttp.NewHandler(a.Devtools, "devtools"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("devtools listening", "addr", addr, "mode", a.Config.Mode)
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("devtools server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
