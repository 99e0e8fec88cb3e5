// If you are AI: This file contains unit tests for server wiring and lifecycle.

package server

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"

	"animage/internal/config"
	"animage/internal/logging"
)

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	color := false
	logger, err := logging.New(logging.Options{Writer: &bytes.Buffer{}, Color: &color})
	if err != nil {
		t.Fatalf("logging.New failed: %v", err)
	}
	return New(cfg, logger)
}

func TestHealthRequiresLoop(t *testing.T) {
	srv := newTestServer(t, config.Default())
	srv.StartLoop()
	defer srv.ShutdownWithTimeout()

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
}

func TestLocalLocatorsRefused(t *testing.T) {
	cfg := config.Default()
	srv := newTestServer(t, cfg)
	srv.StartLoop()
	defer srv.ShutdownWithTimeout()

	if srv.httpServer.Addr != "127.0.0.1:8420" {
		t.Errorf("Expected loopback listen address, got %s", srv.httpServer.Addr)
	}

	for _, src := range []string{"/etc/passwd.gif", "file:///etc/hostname.gif"} {
		body := strings.NewReader(`{"surface":"a","src":"` + src + `"}`)
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, httptest.NewRequest("POST", "/api/focus", body))
		if w.Code != http.StatusBadGateway {
			t.Errorf("%s: expected status 502, got %d", src, w.Code)
		}
		if !strings.Contains(w.Body.String(), "disabled") {
			t.Errorf("%s: expected refusal message, got %q", src, w.Body.String())
		}
	}
}

func TestRoutesRegistered(t *testing.T) {
	srv := newTestServer(t, config.Default())
	srv.StartLoop()
	defer srv.ShutdownWithTimeout()

	paths := []string{"/api/server", "/api/pool", "/api/settings", "/api/surfaces"}
	for _, path := range paths {
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, httptest.NewRequest("GET", path, nil))
		if w.Code != http.StatusOK {
			t.Errorf("%s: expected status 200, got %d", path, w.Code)
		}
	}
}

func TestDebugSettingChangesLevel(t *testing.T) {
	cfg := config.Default()
	srv := newTestServer(t, cfg)

	settings := srv.Director().Settings()
	settings.Debug = true
	srv.Director().SetSettings(settings)
	if srv.logger.Level() != slog.LevelDebug {
		t.Errorf("Expected debug level, got %v", srv.logger.Level())
	}
}

func TestStartRespectsLock(t *testing.T) {
	cfg := config.Default()
	cfg.Server.LockPath = filepath.Join(t.TempDir(), "animage.lock")

	holder := flock.New(cfg.Server.LockPath)
	ok, err := holder.TryLock()
	if err != nil || !ok {
		t.Fatalf("Failed to take lock: ok=%v err=%v", ok, err)
	}
	defer holder.Unlock()

	srv := newTestServer(t, cfg)
	if err := srv.Start(); !errors.Is(err, ErrLocked) {
		t.Errorf("Expected ErrLocked, got %v", err)
	}
}

func TestShutdownWithoutStart(t *testing.T) {
	srv := newTestServer(t, config.Default())
	if err := srv.ShutdownWithTimeout(); err != nil {
		t.Errorf("Expected clean shutdown, got %v", err)
	}
}
