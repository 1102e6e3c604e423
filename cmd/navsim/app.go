package main

import (
	"context"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/vango-dev/navcore/internal/app"
	"github.com/vango-dev/navcore/internal/config"
	"github.com/vango-dev/navcore/internal/manifest"
)

// newApp assembles the router described by cfg.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app.App, error) {
	opts := app.Options{
		Config: cfg,
		Logger: logger,
	}
	if strings.HasPrefix(cfg.Manifest, manifest.S3Scheme) {
		opts.S3 = app.NewS3Client(app.S3Options{
			Region:   viper.GetString(s3RegionFlag),
			Endpoint: viper.GetString(s3EndpointFlag),
		})
	}
	return app.New(ctx, opts)
}
