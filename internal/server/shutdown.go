// If you are AI: This file handles graceful shutdown orchestration for the server process.

package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// ShutdownHandler manages graceful shutdown on SIGINT or SIGTERM.
type ShutdownHandler struct {
	server  *Server
	ctx     context.Context
	cancel  context.CancelFunc
	timeout time.Duration
}

// NewShutdownHandler creates a handler that listens for termination signals.
// The provided context is used as the parent for shutdown operations.
func NewShutdownHandler(server *Server, ctx context.Context) *ShutdownHandler {
	shutdownCtx, cancel := context.WithCancel(ctx)
	return &ShutdownHandler{
		server:  server,
		ctx:     shutdownCtx,
		cancel:  cancel,
		timeout: 5 * time.Second,
	}
}

// Wait blocks until a termination signal arrives, the parent context ends, or serveErr
// delivers, then shuts the server down. A serve error takes precedence in the result.
// This method should be called from the main goroutine.
func (h *ShutdownHandler) Wait(serveErr <-chan error) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	var runErr error
	select {
	case sig := <-sigChan:
		h.server.log.Info("shutdown requested", "signal", sig.String())
	case <-h.ctx.Done():
	case runErr = <-serveErr:
	}

	// Cancel context to signal shutdown
	h.cancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	if err := h.server.Shutdown(shutdownCtx); err != nil && runErr == nil {
		return err
	}
	return runErr
}

// Context returns the shutdown context that is cancelled when shutdown begins.
func (h *ShutdownHandler) Context() context.Context {
	return h.ctx
}
