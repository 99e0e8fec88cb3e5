// If you are AI: This file implements the health check endpoint for monitoring and integration tests.
// Health is the event loop answering a round trip within the probe timeout.

package health

import (
	"context"
	"net/http"
	"time"
)

// probeTimeout bounds a single liveness round trip.
const probeTimeout = time.Second

// Probe reports whether the component answering it is alive.
type Probe func(ctx context.Context) error

// Service provides health check functionality.
type Service struct {
	probe Probe
}

// New creates a new health service instance.
// A nil probe always reports healthy.
func New(probe Probe) *Service {
	return &Service{probe: probe}
}

// RegisterRoutes adds health check routes to the provided mux.
// Registers /healthz which returns 200 OK, or 503 when the probe fails.
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", s.handleHealth)
}

// handleHealth responds to health check requests.
func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.probe != nil {
		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		defer cancel()
		if err := s.probe(ctx); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
}
