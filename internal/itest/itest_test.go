// If you are AI: This file contains integration tests that verify server startup, health checks, and shutdown.

package itest

import (
	"context"
	"errors"
	"os/exec"
	"syscall"
	"testing"
	"time"
)

func TestServerStartupAndShutdown(t *testing.T) {
	if testing.Short() {
		t.Skip("builds the binary")
	}

	dir := t.TempDir()
	binPath, err := BuildBinary(dir)
	if err != nil {
		t.Fatalf("Failed to build binary: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd, port, err := StartServer(ctx, binPath, dir)
	if err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}

	// Wait for health endpoint
	if err := WaitForHealth(port, 5*time.Second); err != nil {
		cmd.Process.Kill()
		t.Fatalf("Health endpoint not available: %v", err)
	}

	// A second instance sharing the lock file must refuse to start
	second := exec.CommandContext(ctx, binPath, "serve", "--config", dir+"/animage.yaml", "--port", "1")
	if err := second.Run(); err == nil {
		t.Error("Expected second instance to fail on the held lock")
	}

	// Send SIGINT
	if err := cmd.Process.Signal(syscall.SIGINT); err != nil {
		t.Fatalf("Failed to send SIGINT: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	select {
	case err := <-done:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() != 0 {
			t.Errorf("Process exited with unexpected code: %d", exitErr.ExitCode())
		}
	case <-time.After(3 * time.Second):
		cmd.Process.Kill()
		t.Fatal("Server did not exit within 3 seconds after SIGINT")
	}
}
