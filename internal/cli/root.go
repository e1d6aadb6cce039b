// Package cli wires the command surface: the bare command launches the
// interactive session, subcommands cover scripted use.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tcal/internal/config"
	"tcal/internal/storage"
	"tcal/internal/task"
	"tcal/internal/ui"
)

var configPath string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tcal",
		Short: "Keyboard-driven task tracker",
		Long: "tcal tracks timestamped tasks in a plain CSV file.\n" +
			"Run without arguments for the interactive agenda and month views;\n" +
			"use the subcommands for scripted access.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, store, err := setup()
			if err != nil {
				return err
			}
			return ui.Run(store, cfg)
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: XDG config dir)")

	cmd.AddCommand(newAddCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newAskCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// setup loads the config and binds the store. Shared by every command.
func setup() (config.Config, *storage.Store, error) {
	path := configPath
	if path == "" {
		path = config.ResolveConfigPath()
	}
	cfg, err := config.LoadOrCreate(path)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}

	schema, err := task.NewSchema(cfg.Columns)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("invalid columns in config: %w", err)
	}

	store, err := storage.Open(cfg.DataPath, schema)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, store, nil
}

// Execute runs the root command and maps failure to exit code 1.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
