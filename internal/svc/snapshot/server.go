// If you are AI: This file provides snapshot service integration.
// The service is integrated into the main HTTP server.

package snapshot

import (
	"net/http"

	"animage/internal/svc/canvas"
)

// Service provides PNG snapshots of surfaces.
type Service struct {
	handler *Handler
}

// NewService creates a new snapshot service.
func NewService(canvases *canvas.Manager) *Service {
	return &Service{
		handler: NewHandler(canvases),
	}
}

// RegisterRoutes registers snapshot routes on the provided mux.
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	s.handler.RegisterRoutes(mux)
}
