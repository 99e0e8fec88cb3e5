// If you are AI: This file implements the HTTP server lifecycle and routing.
// The server owns the event loop goroutine and wires every service onto one mux.

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"animage/internal/config"
	"animage/internal/core/bus"
	"animage/internal/core/codec"
	"animage/internal/core/playback"
	"animage/internal/core/sched"
	"animage/internal/logging"
	"animage/internal/svc/api"
	"animage/internal/svc/canvas"
	"animage/internal/svc/director"
	"animage/internal/svc/fetch"
	"animage/internal/svc/health"
	"animage/internal/svc/snapshot"
	"animage/internal/svc/wsview"
)

// Version is the server version reported by /api/server and `animage version`.
const Version = "0.3.0"

// ErrLocked is returned when another instance holds the lock file.
var ErrLocked = errors.New("another animage instance holds the lock")

// Server wraps the HTTP server and its dependencies.
// Lock expectations: Start and Shutdown may be called from different goroutines.
type Server struct {
	cfg        *config.Config
	logger     *logging.Logger
	log        *slog.Logger
	httpServer *http.Server
	handler    http.Handler

	loop     *sched.Loop
	director *director.Director
	canvases *canvas.Manager

	lock *flock.Flock

	mu         sync.Mutex
	loopCancel context.CancelFunc
	loopDone   chan struct{}
}

// New creates a new server instance with the given configuration.
// The server is not started until Start is called.
func New(cfg *config.Config, logger *logging.Logger) *Server {
	log := logging.NewComponentLogger(logger.Logger, "server")

	loop := sched.New(sched.NewSystemClock(), logging.NewComponentLogger(logger.Logger, "loop"))
	registry := bus.NewRegistry()
	canvases := canvas.NewManager(registry)
	fetcher := fetch.New(fetch.Options{
		Timeout:    time.Duration(cfg.Fetch.Timeout),
		MaxBytes:   cfg.Fetch.MaxBytes,
		UserAgent:  cfg.Fetch.UserAgent,
		AllowLocal: cfg.Fetch.AllowLocal,
	})

	logger.SetDebug(cfg.Settings.Debug)
	dir := director.New(loop, codec.DefaultRegistry(), fetcher,
		func(id string) playback.Surface { return canvases.GetOrCreate(id) },
		director.Options{
			Capacity: cfg.Playback.PoolSize,
			Settings: cfg.Settings,
			OnSettings: func(s director.Settings) {
				logger.SetDebug(s.Debug)
			},
			Logger: logger.Logger,
		})

	services := []string{"api", "ws_view", "snapshot", "health"}
	mux := http.NewServeMux()

	health.New(func(ctx context.Context) error {
		return loop.Do(ctx, func() {})
	}).RegisterRoutes(mux)
	api.NewService(dir, canvases, Version, services).RegisterRoutes(mux)
	wsview.NewService(registry, logging.NewComponentLogger(logger.Logger, "surface")).RegisterRoutes(mux)
	snapshot.NewService(canvases).RegisterRoutes(mux)

	s := &Server{
		cfg:      cfg,
		logger:   logger,
		log:      log,
		handler:  mux,
		loop:     loop,
		director: dir,
		canvases: canvases,
		httpServer: &http.Server{
			Addr:              net.JoinHostPort(cfg.Server.Bind, strconv.Itoa(cfg.Server.HTTPPort)),
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
	if cfg.Server.LockPath != "" {
		s.lock = flock.New(cfg.Server.LockPath)
	}
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Director returns the playback director.
func (s *Server) Director() *director.Director {
	return s.director
}

// Canvases returns the surface manager.
func (s *Server) Canvases() *canvas.Manager {
	return s.canvases
}

// StartLoop launches the event loop goroutine at the configured refresh rate.
// The loop runs at most once per server; later calls are no-ops.
func (s *Server) StartLoop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loopDone != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.loopCancel = cancel
	s.loopDone = make(chan struct{})
	interval := time.Second / time.Duration(s.cfg.Playback.RefreshHz)

	go func(done chan struct{}) {
		defer close(done)
		if err := s.loop.Run(ctx, interval); err != nil && !errors.Is(err, context.Canceled) {
			s.log.Error("event loop exited", logging.Error(err))
		}
	}(s.loopDone)
}

// Start acquires the instance lock, starts the loop and begins serving HTTP requests.
// This method blocks until the server is stopped or encounters an error.
func (s *Server) Start() error {
	if s.lock != nil {
		ok, err := s.lock.TryLock()
		if err != nil {
			return fmt.Errorf("acquire lock: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: %s", ErrLocked, s.cfg.Server.LockPath)
		}
	}

	s.StartLoop()
	s.log.Info("server started", "addr", s.httpServer.Addr, "version", Version,
		"pool_size", s.cfg.Playback.PoolSize, "refresh_hz", s.cfg.Playback.RefreshHz)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server with a timeout.
// Slots are disabled on the loop before it stops, so every session is destroyed.
// Returns an error if shutdown fails or times out.
func (s *Server) Shutdown(ctx context.Context) error {
	httpErr := s.httpServer.Shutdown(ctx)

	s.mu.Lock()
	cancel, done := s.loopCancel, s.loopDone
	s.loopCancel = nil
	s.mu.Unlock()

	if cancel != nil {
		if err := s.director.Shutdown(ctx); err != nil {
			s.log.Warn("pool teardown failed", logging.Error(err))
		}
		cancel()
		select {
		case <-done:
		case <-ctx.Done():
		}
	}

	if s.lock != nil && s.lock.Locked() {
		if err := s.lock.Unlock(); err != nil {
			s.log.Warn("failed to release lock", logging.Error(err))
		}
	}
	s.log.Info("server stopped")
	return httpErr
}

// ShutdownWithTimeout stops the server with a fixed 5-second timeout.
// This is a convenience wrapper around Shutdown.
func (s *Server) ShutdownWithTimeout() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Shutdown(ctx)
}
