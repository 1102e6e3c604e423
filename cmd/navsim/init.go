package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vango-dev/navcore/internal/config"
)

func initCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a default navcore.json",
		Long: `Write a navcore.json with default settings into dir (default: the
current directory).

Examples:
  navsim init
  navsim init ./app --manifest routes.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			if config.Exists(dir) && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)",
					filepath.Join(dir, config.ConfigFileName))
			}

			cfg := config.New()
			cfg.Manifest = viper.GetString(manifestFlag)
			if cfg.Manifest == "" {
				cfg.Manifest = "routes.yaml"
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			path := filepath.Join(dir, config.ConfigFileName)
			if err := cfg.SaveTo(path); err != nil {
				return err
			}
			success("Wrote %s", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing navcore.json")

	return cmd
}
