// If you are AI: This file implements `animage serve`, which runs the scheduler server
// until SIGINT or SIGTERM.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"animage/internal/logging"
	"animage/internal/server"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the playback server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Server.HTTPPort = port
			}

			logger, err := logging.New(logging.Options{
				Level:  cfg.Logging.Level,
				Format: cfg.Logging.Format,
				Writer: os.Stderr,
			})
			if err != nil {
				return err
			}

			srv := server.New(cfg, logger)
			shutdownHandler := server.NewShutdownHandler(srv, cmd.Context())

			serveErr := make(chan error, 1)
			go func() {
				serveErr <- srv.Start()
			}()

			return shutdownHandler.Wait(serveErr)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Override server.http_port")
	return cmd
}
