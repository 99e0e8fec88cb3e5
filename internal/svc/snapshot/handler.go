// If you are AI: This file implements the HTTP handler for surface snapshots.
// Handles GET /surfaces/{id}/frame.png by encoding the canvas composite as PNG.

package snapshot

import (
	"bytes"
	"image/png"
	"net/http"
	"strings"

	"animage/internal/svc/canvas"
)

// Handler serves PNG snapshots of canvases.
type Handler struct {
	canvases *canvas.Manager
	encoder  png.Encoder
}

// NewHandler creates a new snapshot handler.
func NewHandler(canvases *canvas.Manager) *Handler {
	return &Handler{
		canvases: canvases,
		encoder:  png.Encoder{CompressionLevel: png.BestSpeed},
	}
}

// ServeHTTP writes the current composite of one surface.
// Endpoint: GET /surfaces/{id}/frame.png
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/surfaces/")
	id, ok := strings.CutSuffix(rest, "/frame.png")
	if rest == r.URL.Path || !ok || id == "" || strings.Contains(id, "/") {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	c := h.canvases.Get(id)
	if c == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	img := c.Snapshot()
	if img == nil {
		// Sized canvases only; nothing was ever bound to this surface
		w.WriteHeader(http.StatusNoContent)
		return
	}

	var buf bytes.Buffer
	if err := h.encoder.Encode(&buf, img); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// RegisterRoutes registers snapshot routes on the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/surfaces/", h.ServeHTTP)
}
