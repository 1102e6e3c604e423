package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/navcore/internal/app"
	"github.com/vango-dev/navcore/internal/config"
	"github.com/vango-dev/navcore/internal/errors"
	"github.com/vango-dev/navcore/pkg/history"
)

func runCmd() *cobra.Command {
	var (
		script   string
		showTree bool
	)

	cmd := &cobra.Command{
		Use:   "run [step...]",
		Short: "Run scripted navigations",
		Long: `Run a sequence of navigations against the manifest and report how
each one ended.

Steps are paths to push, or one of:
  push:<path>     push a path
  replace:<path>  replace the current entry
  back, forward   move one entry through the history
  go:<n>          move n entries

Examples:
  navsim run -m routes.yaml /users/1 /admin back
  navsim run -m routes.yaml --script steps.txt --tree`,
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := args
			if script != "" {
				lines, err := readScript(script)
				if err != nil {
					return err
				}
				steps = append(lines, steps...)
			}
			return runScript(cmd, steps, showTree)
		},
	}

	cmd.Flags().StringVarP(&script, "script", "s", "", "file with one step per line (# starts a comment)")
	cmd.Flags().BoolVarP(&showTree, "tree", "t", false, "print the mounted components after each step")

	return cmd
}

func runScript(cmd *cobra.Command, raw []string, showTree bool) error {
	if len(raw) == 0 {
		return fmt.Errorf("no steps given")
	}
	steps := make([]app.Step, 0, len(raw))
	for _, s := range raw {
		step, err := app.ParseStep(s)
		if err != nil {
			return err
		}
		steps = append(steps, step)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Mode = config.ModeMemory
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	start, err := a.Start(ctx)
	if err != nil {
		return err
	}
	info("start %s", start.FullPath)

	failed := 0
	for _, step := range steps {
		results, err := a.Run(ctx, []app.Step{step})
		if err != nil {
			return err
		}
		res := results[0]
		report(res)
		if res.Result == history.ResultFailed {
			failed++
		}
		if showTree {
			for _, line := range strings.Split(strings.TrimRight(a.Outlet.Tree(), "\n"), "\n") {
				info("  %s", line)
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d steps failed", failed, len(steps))
	}
	return nil
}

func report(res app.StepResult) {
	switch res.Result {
	case history.ResultCommitted:
		success("%-24s %s", res.Step, res.Route.FullPath)
	case history.ResultFailed:
		errorMsg("%-24s %s", res.Step, describe(res.Err))
	default:
		msg := string(res.Result)
		if res.Err != nil {
			msg = describe(res.Err)
		}
		warn("%-24s %s (at %s)", res.Step, msg, res.Route.FullPath)
	}
}

func describe(err error) string {
	if ne := errors.FromError(err, ""); ne != nil && ne.Code != "" {
		msg := ne.FormatCompact()
		if ne.Wrapped != nil {
			msg += ": " + ne.Wrapped.Error()
		}
		return msg
	}
	return err.Error()
}

func readScript(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var steps []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		steps = append(steps, line)
	}
	return steps, scanner.Err()
}
