package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vango-dev/navcore/internal/app"
	"github.com/vango-dev/navcore/pkg/devtools"
	"github.com/vango-dev/navcore/pkg/route"
)

func routesCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Print the route table",
		Long: `Print every record of the manifest in match order, with its
view slots, redirect and whether it has an enter guard.

Examples:
  navsim routes -m routes.yaml
  navsim routes -m routes.yaml --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			records := a.Router.Matcher().Records()
			views := make([]devtools.RecordView, 0, len(records))
			for _, rec := range records {
				views = append(views, devtools.NewRecordView(rec))
			}
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(views)
			}
			printRoutes(records, views)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	return cmd
}

func printRoutes(records []*route.Record, views []devtools.RecordView) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PATH\tNAME\tCOMPONENTS\tREDIRECT\tGUARD")
	for i, v := range views {
		comps := make([]string, 0, len(v.Slots))
		for _, slot := range v.Slots {
			name := app.ComponentName(records[i].Components[slot])
			if slot != route.DefaultSlot {
				name = slot + "=" + name
			}
			comps = append(comps, name)
		}
		guard := ""
		if v.Guarded {
			guard = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", v.Path, v.Name, strings.Join(comps, ","), v.Redirect, guard)
	}
	w.Flush()
}
