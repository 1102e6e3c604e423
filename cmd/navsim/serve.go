package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vango-dev/navcore/internal/app"
	"github.com/vango-dev/navcore/internal/config"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the devtools API",
		Long: `Start a router from the manifest and serve the devtools API:

  GET  /route, /routes, /healthz
  POST /navigate, /go?n=, /back, /forward
  GET  /metrics   (with --metrics)
  GET  /ws        (in remote mode, where a client drives the history)

Examples:
  navsim serve -m routes.yaml
  navsim serve -m s3://my-bucket/routes.yaml --mode remote --addr :7070
  NAVSIM_TRACING=true navsim serve -m routes.yaml --otlp-endpoint localhost:4317`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}

	flags := cmd.Flags()
	flags.String(addrFlag, "", "listen address (default from navcore.json, then "+config.DefaultDevtoolsAddr+")")
	flags.Bool(metricsFlag, true, "serve Prometheus metrics")
	flags.Bool(tracingFlag, false, "trace navigations with OpenTelemetry")
	flags.String(otlpEndpointFlag, "", "OTLP gRPC collector address (default: log spans)")

	// Flags are bound when the command runs so that several commands can
	// share keys.
	cmd.PreRun = func(cmd *cobra.Command, _ []string) {
		for _, name := range []string{addrFlag, metricsFlag, tracingFlag, otlpEndpointFlag} {
			mustBindPFlag(name, cmd.Flags().Lookup(name))
		}
	}

	return cmd
}

func runServe(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Tracing.Enabled {
		tp, err := app.NewTracerProvider(ctx, app.TracerOptions{
			Endpoint:       viper.GetString(otlpEndpointFlag),
			ServiceName:    "navsim",
			ServiceVersion: version,
			Logger:         logger,
		})
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			_ = tp.Shutdown(shutdownCtx)
		}()
	}

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	printBanner()
	info("serve")
	if _, err := a.Start(ctx); err != nil {
		return err
	}
	success("Devtools on http://%s", cfg.Devtools.Addr)
	if a.Remote != nil {
		info("Attach a client at ws://%s/ws", cfg.Devtools.Addr)
	}

	return a.Serve(ctx, cfg.Devtools.Addr)
}
