// If you are AI: This is the main entrypoint for the animage CLI.
// Subcommands serve the scheduler, probe images and query a running server.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// main runs the root command and maps failures to exit code 1.
func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
