package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/vango-dev/navcore/internal/config"
)

const testManifest = `
routes:
  - path: /
    component: Home
  - path: /login
    component: Login
  - path: /admin
    component: Admin
    beforeEnter: redirect:/login
  - path: /broken
    component: Broken
    beforeEnter: fail:down
`

func execute(t *testing.T, args ...string) error {
	t.Helper()
	t.Cleanup(viper.Reset)
	cmd := newRootCmd()
	cmd.SetArgs(append([]string{"--no-color", "--log-level", "error"}, args...))
	return cmd.Execute()
}

func executeTo(t *testing.T, out io.Writer, args ...string) error {
	t.Helper()
	t.Cleanup(viper.Reset)
	cmd := newRootCmd()
	cmd.SetOut(out)
	cmd.SetArgs(append([]string{"--no-color", "--log-level", "error"}, args...))
	return cmd.Execute()
}

func writeManifest(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "routes.yaml")
	if err := os.WriteFile(path, []byte(testManifest), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun(t *testing.T) {
	path := writeManifest(t)
	if err := execute(t, "run", "-m", path, "/login", "/admin", "back", "--tree"); err != nil {
		t.Fatalf("run error = %v", err)
	}
}

func TestRun_ReportsFailures(t *testing.T) {
	path := writeManifest(t)
	err := execute(t, "run", "-m", path, "/login", "/broken")
	if err == nil || !strings.Contains(err.Error(), "1 of 2 steps failed") {
		t.Fatalf("run error = %v, want one failed step", err)
	}
}

func TestRun_Script(t *testing.T) {
	path := writeManifest(t)
	script := filepath.Join(t.TempDir(), "steps.txt")
	if err := os.WriteFile(script, []byte("# warm up\n/login\n\nreplace:/\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := execute(t, "run", "-m", path, "--script", script); err != nil {
		t.Fatalf("run error = %v", err)
	}

	steps, err := readScript(script)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(steps, ",") != "/login,replace:/" {
		t.Errorf("readScript() = %v", steps)
	}
}

func TestRun_Errors(t *testing.T) {
	path := writeManifest(t)
	tests := []struct {
		name string
		args []string
	}{
		{"no steps", []string{"run", "-m", path}},
		{"bad step", []string{"run", "-m", path, "go:x"}},
		{"no manifest", []string{"run", "/login"}},
		{"bad mode", []string{"run", "-m", path, "--mode", "sideways", "/login"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := execute(t, tt.args...); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestRoutes(t *testing.T) {
	path := writeManifest(t)
	if err := execute(t, "routes", "-m", path); err != nil {
		t.Fatalf("routes error = %v", err)
	}
	if err := execute(t, "routes", "-m", path, "--json"); err != nil {
		t.Fatalf("routes --json error = %v", err)
	}
}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	if err := execute(t, "init", dir, "-m", "s3://bucket/routes.yaml"); err != nil {
		t.Fatalf("init error = %v", err)
	}
	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}
	if cfg.Manifest != "s3://bucket/routes.yaml" {
		t.Errorf("Manifest = %q", cfg.Manifest)
	}

	if err := execute(t, "init", dir); err == nil {
		t.Error("init over an existing file should fail without --force")
	}
	if err := execute(t, "init", dir, "--force"); err != nil {
		t.Errorf("init --force error = %v", err)
	}
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	cfg := config.New()
	cfg.Manifest = writeManifest(t)
	cfg.Base = "/app"
	if err := cfg.SaveTo(filepath.Join(dir, config.ConfigFileName)); err != nil {
		t.Fatal(err)
	}
	if err := execute(t, "--config", filepath.Join(dir, config.ConfigFileName), "run", "/login"); err != nil {
		t.Fatalf("run error = %v", err)
	}
}

func TestVersion(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"short", []string{"--short"}, []string{"dev\n"}},
		{"full", nil, []string{"Config:     navcore.json", "memory, remote", "redirect", "N006  Guard"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			if err := executeTo(t, &out, append([]string{"version"}, tt.args...)...); err != nil {
				t.Fatalf("version error = %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out.String(), want) {
					t.Errorf("output missing %q:\n%s", want, out.String())
				}
			}
		})
	}
}

func TestVersion_JSON(t *testing.T) {
	var out bytes.Buffer
	if err := executeTo(t, &out, "version", "--json"); err != nil {
		t.Fatalf("version error = %v", err)
	}
	var info versionInfo
	if err := json.Unmarshal(out.Bytes(), &info); err != nil {
		t.Fatalf("decode: %v\n%s", err, out.String())
	}
	if info.ConfigFile != config.ConfigFileName {
		t.Errorf("configFile = %q, want %q", info.ConfigFile, config.ConfigFileName)
	}
	if len(info.Behaviors) != 6 || len(info.Codes) != len(failureCodes) {
		t.Errorf("behaviors=%v codes=%v", info.Behaviors, info.Codes)
	}
}
