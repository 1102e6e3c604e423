// Command navsim drives a navcore router from a route manifest: it runs
// scripted navigations, prints the route table and serves the devtools API.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vango-dev/navcore/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┳┓┏┓┓┏┏┓┳┳┳┓
  ┃┃┣┫┃┃┗┓┃┃┃┃
  ┛┗┛┗┗┛┗┛┻┛ ┗
`

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Flags can also be set through
// NAVSIM_* environment variables or navcore.json, in that order of
// precedence after the command line.
func newRootCmd() *cobra.Command {
	viper.SetEnvPrefix("NAVSIM")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	rootCmd := &cobra.Command{
		Use:   "navsim",
		Short: "Simulate navigations against a route manifest",
		Long: `navsim loads a navcore route manifest and drives a router with it.

Use it to check guard behavior before shipping a manifest, to inspect
the route table, or to run a devtools server a remote client can
attach its history to.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	bindGlobalFlags(rootCmd)

	rootCmd.AddCommand(
		runCmd(),
		serveCmd(),
		routesCmd(),
		initCmd(),
		versionCmd(),
	)
	return rootCmd
}

// printBanner prints the navsim banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Printf("\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}

// errorMsg prints an error message.
func errorMsg(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "\033[31m✗\033[0m %s\n", fmt.Sprintf(format, args...))
}
