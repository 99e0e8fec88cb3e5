// If you are AI: This file builds the cobra command tree and the shared command context.

package main

import (
	"fmt"
	"runtime"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"animage/internal/config"
	"animage/internal/server"
)

// commandContext lazily loads configuration shared by subcommands.
type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

// ensureConfig loads the --config file, or the defaults when no file is given.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		path := strings.TrimSpace(*c.configFlag)
		cfg := config.Default()
		if path != "" {
			loaded, err := config.Load(path)
			if err != nil {
				c.configErr = err
				return
			}
			cfg = loaded
		}
		if err := cfg.Validate(); err != nil {
			c.configErr = fmt.Errorf("invalid config: %w", err)
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func newRootCommand() *cobra.Command {
	var configFlag string
	ctx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:           "animage",
		Short:         "Animated image playback scheduler",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path (.yaml or .toml)")

	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newProbeCommand(ctx))
	rootCmd.AddCommand(newStatusCommand(ctx))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the animage version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "animage %s (%s)\n", server.Version, runtime.Version())
			return nil
		},
	}
}
