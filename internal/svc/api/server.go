// If you are AI: This file provides HTTP API service integration.
// The API exposes pool state and drives the director; handlers never touch slots directly.

package api

import (
	"context"
	"net/http"
	"time"

	"animage/internal/core/bus"
	"animage/internal/core/playback"
	"animage/internal/svc/canvas"
	"animage/internal/svc/director"
)

// Controller defines the playback operations the API drives.
// This allows the API to work with the director without tight coupling.
type Controller interface {
	Focus(ctx context.Context, surfaceID, src string) (director.Result, error)
	Activate(ctx context.Context, surfaceID string) (playback.State, error)
	Play(ctx context.Context, surfaceID string) (playback.State, error)
	Stop(ctx context.Context, surfaceID string) (playback.State, error)
	Disable(ctx context.Context, surfaceID string) (playback.State, error)
	Blur(ctx context.Context, surfaceID string) error
	Hidden(ctx context.Context) (string, error)
	OutOfView(ctx context.Context, surfaceID string) (playback.State, error)
	Snapshot(ctx context.Context) ([]playback.SlotInfo, error)
	Settings() director.Settings
	SetSettings(s director.Settings)
	Capacity() int
}

// Service provides HTTP API functionality.
type Service struct {
	ctrl      Controller
	canvases  *canvas.Manager
	registry  *bus.Registry
	version   string
	services  []string
	startTime int64
}

// NewService creates a new API service.
// services lists the names reported by /api/server.
func NewService(ctrl Controller, canvases *canvas.Manager, version string, services []string) *Service {
	return &Service{
		ctrl:      ctrl,
		canvases:  canvases,
		registry:  canvases.Registry(),
		version:   version,
		services:  services,
		startTime: getCurrentTime(),
	}
}

// RegisterRoutes registers API routes on the provided mux.
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/server", s.handleServer)
	mux.HandleFunc("/api/pool", s.handlePool)
	mux.HandleFunc("/api/surfaces", s.handleSurfaces)
	mux.HandleFunc("/api/focus", s.handleFocus)
	mux.HandleFunc("/api/activate", s.slotAction(s.ctrl.Activate))
	mux.HandleFunc("/api/play", s.slotAction(s.ctrl.Play))
	mux.HandleFunc("/api/stop", s.slotAction(s.ctrl.Stop))
	mux.HandleFunc("/api/disable", s.slotAction(s.ctrl.Disable))
	mux.HandleFunc("/api/blur", s.handleBlur)
	mux.HandleFunc("/api/visibility", s.handleVisibility)
	mux.HandleFunc("/api/settings", s.handleSettings)
}

// getCurrentTime returns current Unix timestamp.
// Extracted for testability.
func getCurrentTime() int64 {
	return time.Now().Unix()
}
