// If you are AI: This file provides WebSocket viewer service integration.
// The service is integrated into the main HTTP server.

package wsview

import (
	"log/slog"
	"net/http"

	"animage/internal/core/bus"
)

// Service provides live surface viewing over WebSocket.
type Service struct {
	handler *Handler
}

// NewService creates a new viewer service.
func NewService(registry *bus.Registry, logger *slog.Logger) *Service {
	return &Service{
		handler: NewHandler(registry, logger),
	}
}

// RegisterRoutes registers viewer routes on the provided mux.
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	s.handler.RegisterRoutes(mux)
}
