package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/vango-dev/navcore/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "navcore.json"

	// DefaultDevtoolsAddr is the default devtools listen address.
	DefaultDevtoolsAddr = "localhost:7070"

	// DefaultMetricsNamespace is the default Prometheus namespace.
	DefaultMetricsNamespace = "navcore"

	// DefaultTracerName is the default OpenTelemetry tracer name.
	DefaultTracerName = "github.com/vango-dev/navcore"
)

// History modes.
const (
	ModeMemory = "memory"
	ModeRemote = "remote"
)

// Config represents the complete navcore.json configuration.
type Config struct {
	// Base is the path prefix of every location.
	Base string `json:"base,omitempty"`

	// Mode selects the history backend: "memory" or "remote".
	Mode string `json:"mode,omitempty"`

	// Manifest is the route manifest source: a file path or s3://bucket/key.
	Manifest string `json:"manifest,omitempty"`

	// LinkActiveClass overrides the class of links including the current route.
	LinkActiveClass string `json:"linkActiveClass,omitempty"`

	// LinkExactActiveClass overrides the class of links on the current route.
	LinkExactActiveClass string `json:"linkExactActiveClass,omitempty"`

	// Devtools contains devtools server configuration.
	Devtools DevtoolsConfig `json:"devtools,omitempty"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `json:"metrics,omitempty"`

	// Tracing contains OpenTelemetry configuration.
	Tracing TracingConfig `json:"tracing,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"logLevel,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// DevtoolsConfig contains devtools server settings.
type DevtoolsConfig struct {
	// Addr is the listen address.
	Addr string `json:"addr,omitempty"`

	// NavigateTimeout bounds /navigate requests (e.g., "10s").
	NavigateTimeout string `json:"navigateTimeout,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Enabled registers the navigation collectors.
	Enabled bool `json:"enabled"`

	// Namespace is the metrics namespace.
	Namespace string `json:"namespace,omitempty"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	// Enabled opens a span per navigation.
	Enabled bool `json:"enabled"`

	// TracerName is the instrumentation name.
	TracerName string `json:"tracerName,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Mode: ModeMemory,
		Devtools: DevtoolsConfig{
			Addr:            DefaultDevtoolsAddr,
			NavigateTimeout: "10s",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: DefaultMetricsNamespace,
		},
		Tracing: TracingConfig{
			TracerName: DefaultTracerName,
		},
		LogLevel: "info",
	}
}

// Load reads configuration from the specified directory.
// It looks for navcore.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.CodeInvalidConfig).
				WithDetail("No navcore.json found in " + filepath.Dir(path))
		}
		return nil, errors.New(errors.CodeInvalidConfig).Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New(errors.CodeInvalidConfig).
			WithDetail("Failed to parse navcore.json: " + err.Error())
	}

	cfg.configPath = path
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CodeInvalidConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New(errors.CodeInvalidConfig).Wrap(err)
	}

	// Add newline at end of file
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New(errors.CodeInvalidConfig).Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Mode == "" {
		c.Mode = ModeMemory
	}
	if c.Devtools.Addr == "" {
		c.Devtools.Addr = DefaultDevtoolsAddr
	}
	if c.Devtools.NavigateTimeout == "" {
		c.Devtools.NavigateTimeout = "10s"
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultMetricsNamespace
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = DefaultTracerName
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var problems []string
	switch c.Mode {
	case ModeMemory, ModeRemote:
	default:
		problems = append(problems, fmt.Sprintf("mode %q must be %q or %q", c.Mode, ModeMemory, ModeRemote))
	}
	if c.Base != "" && !strings.HasPrefix(c.Base, "/") && !strings.Contains(c.Base, "://") {
		problems = append(problems, fmt.Sprintf("base %q must start with /", c.Base))
	}
	if _, err := c.Level(); err != nil {
		problems = append(problems, err.Error())
	}
	if _, err := parseDuration(c.Devtools.NavigateTimeout); err != nil {
		problems = append(problems, "devtools.navigateTimeout: "+err.Error())
	}
	if len(problems) > 0 {
		return errors.New(errors.CodeInvalidConfig).
			WithDetail(strings.Join(problems, "; "))
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("logLevel %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// Exists checks if a navcore.json exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}
