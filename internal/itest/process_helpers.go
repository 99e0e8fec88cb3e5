// If you are AI: This file provides helper functions for starting and managing server processes in tests.

package itest

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// BuildBinary compiles cmd/animage into dir and returns the binary path.
func BuildBinary(dir string) (string, error) {
	binPath := filepath.Join(dir, "animage")
	out, err := exec.Command("go", "build", "-o", binPath, "../../cmd/animage").CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("build binary: %w: %s", err, out)
	}
	return binPath, nil
}

// FreePort asks the kernel for an unused TCP port.
func FreePort() (int, error) {
	listener, err := net.Listen("tcp", ":0")
	if err != nil {
		return 0, fmt.Errorf("find free port: %w", err)
	}
	defer listener.Close()
	return listener.Addr().(*net.TCPAddr).Port, nil
}

// StartServer starts `animage serve` as a subprocess on a free port.
// Returns the process, the port it's listening on, and any error.
func StartServer(ctx context.Context, binPath, dir string) (*exec.Cmd, int, error) {
	port, err := FreePort()
	if err != nil {
		return nil, 0, err
	}

	configPath, err := WriteConfig(dir, port)
	if err != nil {
		return nil, 0, err
	}

	cmd := exec.CommandContext(ctx, binPath, "serve", "--config", configPath)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return nil, 0, fmt.Errorf("start server: %w", err)
	}
	return cmd, port, nil
}

// WriteConfig writes a YAML config for a test server listening on port.
// The lock file lives in dir so parallel test runs do not collide.
func WriteConfig(dir string, port int) (string, error) {
	path := filepath.Join(dir, "animage.yaml")
	content := fmt.Sprintf(`server:
  http_port: %d
  lock_path: %s
playback:
  pool_size: 2
  refresh_hz: 120
logging:
  level: debug
`, port, filepath.Join(dir, "animage.lock"))

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write config: %w", err)
	}
	return path, nil
}

// WaitForHealth waits for the health endpoint to become available.
// Returns an error if the endpoint is not available within the timeout.
func WaitForHealth(port int, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	url := fmt.Sprintf("http://127.0.0.1:%d/healthz", port)

	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(100 * time.Millisecond)
	}

	return fmt.Errorf("health endpoint not available after %v", timeout)
}
