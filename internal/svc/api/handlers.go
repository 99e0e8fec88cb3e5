// If you are AI: This file implements HTTP API handlers.
// Handlers decode small JSON bodies, call the controller, and map errors to status codes.

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"runtime"

	"animage/internal/core/playback"
	"animage/internal/core/sched"
	"animage/internal/core/session"
	"animage/internal/svc/canvas"
	"animage/internal/svc/director"
	"animage/internal/svc/fetch"
)

// maxBodyBytes bounds request bodies; every request is a tiny JSON document.
const maxBodyBytes = 64 << 10

// ServerResponse represents the /api/server response.
type ServerResponse struct {
	Version         string   `json:"version"`
	Uptime          int64    `json:"uptime"` // seconds
	GoVersion       string   `json:"go_version"`
	PoolSize        int      `json:"pool_size"`
	EnabledServices []string `json:"enabled_services"`
}

// PoolResponse represents the /api/pool response.
type PoolResponse struct {
	Slots []playback.SlotInfo `json:"slots"`
}

// SurfaceInfo describes one surface and its viewers.
type SurfaceInfo struct {
	canvas.State
	Viewers int `json:"viewers"`
}

// SurfacesResponse represents the /api/surfaces response.
type SurfacesResponse struct {
	Surfaces []SurfaceInfo `json:"surfaces"`
}

// FocusRequest is the body of POST /api/focus.
type FocusRequest struct {
	Surface string `json:"surface"`
	Src     string `json:"src"`
}

// SurfaceRequest is the body of the per-surface actions.
type SurfaceRequest struct {
	Surface string `json:"surface"`
}

// SlotStateResponse reports the slot state after an action.
type SlotStateResponse struct {
	Surface string `json:"surface"`
	State   string `json:"state"`
}

// VisibilityRequest is the body of POST /api/visibility.
// An empty surface means the whole page changed visibility.
type VisibilityRequest struct {
	Surface string `json:"surface,omitempty"`
	Visible bool   `json:"visible"`
}

// VisibilityResponse reports what a visibility change stopped.
type VisibilityResponse struct {
	Stopped string `json:"stopped,omitempty"`
}

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// handleServer handles GET /api/server.
func (s *Service) handleServer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	response := ServerResponse{
		Version:         s.version,
		Uptime:          getCurrentTime() - s.startTime,
		GoVersion:       runtime.Version(),
		PoolSize:        s.ctrl.Capacity(),
		EnabledServices: s.services,
	}
	s.writeJSON(w, http.StatusOK, response)
}

// handlePool handles GET /api/pool.
func (s *Service) handlePool(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	slots, err := s.ctrl.Snapshot(r.Context())
	if err != nil {
		s.writeControlError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, PoolResponse{Slots: slots})
}

// handleSurfaces handles GET /api/surfaces.
func (s *Service) handleSurfaces(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	states := s.canvases.List()
	surfaces := make([]SurfaceInfo, 0, len(states))
	for _, st := range states {
		surfaces = append(surfaces, SurfaceInfo{State: st, Viewers: s.registry.Viewers(st.ID)})
	}
	s.writeJSON(w, http.StatusOK, SurfacesResponse{Surfaces: surfaces})
}

// handleFocus handles POST /api/focus.
// Blocks until the image is fetched, probed and bound or rejected.
func (s *Service) handleFocus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req FocusRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Surface == "" || req.Src == "" {
		s.writeError(w, http.StatusBadRequest, "surface and src are required")
		return
	}

	res, err := s.ctrl.Focus(r.Context(), req.Surface, req.Src)
	if err != nil {
		s.writeControlError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

// slotAction builds a handler for POST actions addressed to one surface.
func (s *Service) slotAction(action func(context.Context, string) (playback.State, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		var req SurfaceRequest
		if !s.decode(w, r, &req) {
			return
		}
		if req.Surface == "" {
			s.writeError(w, http.StatusBadRequest, "surface is required")
			return
		}

		state, err := action(r.Context(), req.Surface)
		if err != nil {
			s.writeControlError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, SlotStateResponse{Surface: req.Surface, State: state.String()})
	}
}

// handleBlur handles POST /api/blur.
func (s *Service) handleBlur(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req SurfaceRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Surface == "" {
		s.writeError(w, http.StatusBadRequest, "surface is required")
		return
	}
	if err := s.ctrl.Blur(r.Context(), req.Surface); err != nil {
		s.writeControlError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleVisibility handles POST /api/visibility.
// Becoming visible never starts playback.
func (s *Service) handleVisibility(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req VisibilityRequest
	if !s.decode(w, r, &req) {
		return
	}

	var response VisibilityResponse
	switch {
	case req.Visible:
	case req.Surface == "":
		stopped, err := s.ctrl.Hidden(r.Context())
		if err != nil {
			s.writeControlError(w, err)
			return
		}
		response.Stopped = stopped
	default:
		_, err := s.ctrl.OutOfView(r.Context(), req.Surface)
		if err != nil && !errors.Is(err, director.ErrUnknownSurface) {
			s.writeControlError(w, err)
			return
		}
		if err == nil {
			response.Stopped = req.Surface
		}
	}
	s.writeJSON(w, http.StatusOK, response)
}

// handleSettings handles GET and PUT /api/settings.
func (s *Service) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.writeJSON(w, http.StatusOK, s.ctrl.Settings())
	case http.MethodPut:
		settings := s.ctrl.Settings()
		if !s.decode(w, r, &settings) {
			return
		}
		s.ctrl.SetSettings(settings)
		s.writeJSON(w, http.StatusOK, settings)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// decode reads a JSON body into dst, writing a 400 on failure.
func (s *Service) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// writeControlError maps controller errors to HTTP statuses.
func (s *Service) writeControlError(w http.ResponseWriter, err error) {
	var (
		transport *fetch.TransportError
		codecErr  *session.CodecInitError
	)
	switch {
	case errors.Is(err, director.ErrUnknownSurface):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, playback.ErrSlotNotEnabled):
		s.writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &transport):
		s.writeError(w, http.StatusBadGateway, err.Error())
	case errors.As(err, &codecErr):
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, sched.ErrLoopStopped), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		s.writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// writeJSON writes a JSON response.
func (s *Service) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func (s *Service) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, ErrorResponse{Error: message})
}
