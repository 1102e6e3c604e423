package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vango-dev/navcore/internal/errors"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Mode != ModeMemory {
		t.Errorf("Mode = %q, want %q", cfg.Mode, ModeMemory)
	}
	if cfg.Devtools.Addr != DefaultDevtoolsAddr {
		t.Errorf("Devtools.Addr = %q, want %q", cfg.Devtools.Addr, DefaultDevtoolsAddr)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled = false, want true")
	}
	if cfg.Tracing.Enabled {
		t.Error("Tracing.Enabled = true, want false")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	content := `{
  "base": "/app",
  "mode": "remote",
  "manifest": "s3://bucket/routes.yaml",
  "linkActiveClass": "on",
  "devtools": {"addr": ":9000", "navigateTimeout": "2s"},
  "metrics": {"enabled": false},
  "tracing": {"enabled": true},
  "logLevel": "debug"
}`
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Base != "/app" || cfg.Mode != ModeRemote {
		t.Errorf("Base/Mode = %q/%q", cfg.Base, cfg.Mode)
	}
	if cfg.Manifest != "s3://bucket/routes.yaml" {
		t.Errorf("Manifest = %q", cfg.Manifest)
	}
	if cfg.LinkActiveClass != "on" || cfg.LinkExactActiveClass != "" {
		t.Errorf("link classes = %q/%q", cfg.LinkActiveClass, cfg.LinkExactActiveClass)
	}
	if cfg.Devtools.Addr != ":9000" || cfg.NavigateTimeout() != 2*time.Second {
		t.Errorf("devtools = %+v", cfg.Devtools)
	}
	if cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled should be false")
	}
	if cfg.Metrics.Namespace != DefaultMetricsNamespace {
		t.Errorf("Metrics.Namespace = %q, want default", cfg.Metrics.Namespace)
	}
	if !cfg.Tracing.Enabled || cfg.Tracing.TracerName != DefaultTracerName {
		t.Errorf("tracing = %+v", cfg.Tracing)
	}
	if level, _ := cfg.Level(); level != slog.LevelDebug {
		t.Errorf("Level() = %v, want debug", level)
	}
	if cfg.Dir() != dir {
		t.Errorf("Dir() = %q, want %q", cfg.Dir(), dir)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing", ""},
		{"invalid json", "{ invalid }"},
		{"bad mode", `{"mode": "hash"}`},
		{"bad base", `{"base": "app"}`},
		{"bad level", `{"logLevel": "loud"}`},
		{"bad timeout", `{"devtools": {"navigateTimeout": "soon"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.content != "" {
				if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(tt.content), 0644); err != nil {
					t.Fatal(err)
				}
			}
			_, err := Load(dir)
			if err == nil {
				t.Fatal("Load() should fail")
			}
			if code := errors.CodeOf(err); code != errors.CodeInvalidConfig {
				t.Errorf("error code = %q, want %q", code, errors.CodeInvalidConfig)
			}
		})
	}
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)

	cfg := New()
	if err := cfg.Save(); err == nil {
		t.Fatal("Save() without a path should fail")
	}

	cfg.Base = "/docs"
	cfg.Tracing.Enabled = true
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}
	if cfg.Path() != path {
		t.Errorf("Path() = %q, want %q", cfg.Path(), path)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if loaded.Base != "/docs" || !loaded.Tracing.Enabled {
		t.Errorf("loaded = %+v", loaded)
	}

	loaded.Mode = ModeRemote
	if err := loaded.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	again, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if again.Mode != ModeRemote {
		t.Errorf("Mode after Save = %q", again.Mode)
	}
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	if Exists(dir) {
		t.Error("Exists() = true for empty dir")
	}
	if err := New().SaveTo(filepath.Join(dir, ConfigFileName)); err != nil {
		t.Fatal(err)
	}
	if !Exists(dir) {
		t.Error("Exists() = false after SaveTo")
	}
}
