// If you are AI: This file implements the WebSocket handler for surface viewer requests.
// Handles GET /ws/surfaces/{id} requests and manages viewer lifecycle.

package wsview

import (
	"log/slog"
	"net/http"
	"strings"

	"animage/internal/core/bus"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Handler handles surface viewer WebSocket requests.
type Handler struct {
	registry *bus.Registry
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewHandler creates a new viewer handler.
func NewHandler(registry *bus.Registry, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{
		registry: registry,
		logger:   logger.With("component", "wsview"),
		upgrader: websocket.Upgrader{
			// NOTE: Viewers are local debugging tools; every origin is accepted.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades the connection and streams the surface.
// Endpoint: GET /ws/surfaces/{id}
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/ws/surfaces/")
	if id == r.URL.Path || id == "" || strings.Contains(id, "/") {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	channel := h.registry.Live(id)
	if channel == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade failed, response already sent
		return
	}

	viewer := NewViewer(uuid.NewString(), conn, channel)
	log := h.logger.With("viewer", viewer.ID(), "surface", id)
	defer func() {
		viewer.Detach()
		h.registry.Release(id)
		conn.Close()
		log.Debug("viewer detached", "sent", viewer.Sent())
	}()

	if err := viewer.WriteHello(); err != nil {
		return
	}
	viewer.Attach()
	log.Debug("viewer attached")

	// Read pump: viewers send nothing meaningful, but reading detects the close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := viewer.Run(done); err != nil {
		log.Debug("viewer write failed", "error", err)
	}
}

// RegisterRoutes registers viewer routes on the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws/surfaces/", h.ServeHTTP)
}
