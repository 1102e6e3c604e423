package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/vango-dev/navcore/internal/config"
	"github.com/vango-dev/navcore/internal/errors"
)

const (
	configFlag       = "config"
	manifestFlag     = "manifest"
	modeFlag         = "mode"
	baseFlag         = "base"
	logLevelFlag     = "log-level"
	noColorFlag      = "no-color"
	s3RegionFlag     = "s3-region"
	s3EndpointFlag   = "s3-endpoint"
	addrFlag         = "addr"
	metricsFlag      = "metrics"
	tracingFlag      = "tracing"
	otlpEndpointFlag = "otlp-endpoint"
)

// mustBindPFlag binds a viper key to a pflag and panics if the binding fails.
func mustBindPFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic("failed to bind pflag: " + err.Error())
	}
}

func bindGlobalFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.String(configFlag, "", "path to navcore.json (default: ./navcore.json if present)")
	flags.StringP(manifestFlag, "m", "", "route manifest: a file path or s3://bucket/key")
	flags.String(modeFlag, "", "history backend: memory or remote")
	flags.String(baseFlag, "", "path prefix of every location")
	flags.String(logLevelFlag, "", "log level: debug, info, warn or error")
	flags.Bool(noColorFlag, false, "disable colored output")
	flags.String(s3RegionFlag, "us-east-1", "region of s3:// manifests")
	flags.String(s3EndpointFlag, "", "endpoint of an S3-compatible store")

	for _, name := range []string{
		configFlag, manifestFlag, modeFlag, baseFlag, logLevelFlag,
		noColorFlag, s3RegionFlag, s3EndpointFlag,
	} {
		mustBindPFlag(name, flags.Lookup(name))
	}
}

// loadConfig reads navcore.json and applies flag and environment overrides.
func loadConfig() (*config.Config, error) {
	if viper.GetBool(noColorFlag) {
		errors.DisableColors()
	}

	var (
		cfg *config.Config
		err error
	)
	switch path := viper.GetString(configFlag); {
	case path != "":
		cfg, err = config.LoadFile(path)
	case config.Exists("."):
		cfg, err = config.Load(".")
	default:
		cfg = config.New()
	}
	if err != nil {
		return nil, err
	}

	overrides := []struct {
		key string
		dst *string
	}{
		{manifestFlag, &cfg.Manifest},
		{modeFlag, &cfg.Mode},
		{baseFlag, &cfg.Base},
		{logLevelFlag, &cfg.LogLevel},
		{addrFlag, &cfg.Devtools.Addr},
	}
	for _, o := range overrides {
		if v := viper.GetString(o.key); v != "" {
			*o.dst = v
		}
	}
	if viper.IsSet(metricsFlag) {
		cfg.Metrics.Enabled = viper.GetBool(metricsFlag)
	}
	if viper.IsSet(tracingFlag) {
		cfg.Tracing.Enabled = viper.GetBool(tracingFlag)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the process logger at the configured level.
func newLogger(cfg *config.Config) (*slog.Logger, error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})), nil
}
