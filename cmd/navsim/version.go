package main

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/navcore/internal/config"
	naverrors "github.com/vango-dev/navcore/internal/errors"
	"github.com/vango-dev/navcore/internal/manifest"
)

// failureCodes are the navigation outcomes reported by run and serve.
var failureCodes = []string{
	naverrors.CodeDuplicated,
	naverrors.CodeAborted,
	naverrors.CodeRedirected,
	naverrors.CodeCancelled,
	naverrors.CodeComponentResolution,
	naverrors.CodeGuardThrew,
	naverrors.CodeGuardFailed,
}

type versionInfo struct {
	Version    string            `json:"version"`
	Commit     string            `json:"commit"`
	Built      string            `json:"built"`
	Engine     string            `json:"engine"`
	Go         string            `json:"go"`
	Platform   string            `json:"platform"`
	ConfigFile string            `json:"configFile"`
	Modes      []string          `json:"modes"`
	Behaviors  []string          `json:"behaviors"`
	Codes      map[string]string `json:"codes"`
}

func newVersionInfo() versionInfo {
	info := versionInfo{
		Version:    version,
		Commit:     commit,
		Built:      date,
		Engine:     "(devel)",
		Go:         runtime.Version(),
		Platform:   runtime.GOOS + "/" + runtime.GOARCH,
		ConfigFile: config.ConfigFileName,
		Modes:      []string{config.ModeMemory, config.ModeRemote},
		Codes:      make(map[string]string, len(failureCodes)),
	}
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" {
		info.Engine = bi.Main.Version
	}
	for _, k := range manifest.BehaviorKinds {
		info.Behaviors = append(info.Behaviors, string(k))
	}
	for _, code := range failureCodes {
		if tmpl, ok := naverrors.Lookup(code); ok {
			info.Codes[code] = tmpl.Message
		}
	}
	return info
}

func versionCmd() *cobra.Command {
	var (
		short  bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Print the navsim build, the navcore engine version, the backend modes and
manifest guard behaviors this build understands, and the navigation failure codes
it reports.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if short {
				fmt.Fprintln(out, version)
				return nil
			}
			info := newVersionInfo()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}
			writeVersion(out, info)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print only version number")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print version information as JSON")

	return cmd
}

func writeVersion(w io.Writer, info versionInfo) {
	fmt.Fprint(w, banner)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Version:    %s (%s, built %s)\n", info.Version, info.Commit, info.Built)
	fmt.Fprintf(w, "  Engine:     navcore %s\n", info.Engine)
	fmt.Fprintf(w, "  Go:         %s %s\n", info.Go, info.Platform)
	fmt.Fprintf(w, "  Config:     %s\n", info.ConfigFile)
	fmt.Fprintf(w, "  Modes:      %s\n", strings.Join(info.Modes, ", "))
	fmt.Fprintf(w, "  Behaviors:  %s\n", strings.Join(info.Behaviors, ", "))
	fmt.Fprintln(w, "  Outcomes:")
	for _, code := range failureCodes {
		fmt.Fprintf(w, "    %s  %s\n", code, info.Codes[code])
	}
	fmt.Fprintln(w)
}
