// If you are AI: This file contains unit tests for API handlers.
// Tests verify JSON responses and error-to-status mapping.

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"animage/internal/core/bus"
	"animage/internal/core/playback"
	"animage/internal/svc/canvas"
	"animage/internal/svc/director"
	"animage/internal/svc/fetch"
)

// fakeController records calls and returns canned results.
type fakeController struct {
	calls    []string
	focus    director.Result
	focusErr error
	state    playback.State
	stateErr error
	hidden   string
	settings director.Settings
	slots    []playback.SlotInfo
}

func (f *fakeController) Focus(_ context.Context, surfaceID, src string) (director.Result, error) {
	f.calls = append(f.calls, "focus:"+surfaceID+":"+src)
	return f.focus, f.focusErr
}

func (f *fakeController) record(op, id string) (playback.State, error) {
	f.calls = append(f.calls, op+":"+id)
	return f.state, f.stateErr
}

func (f *fakeController) Activate(_ context.Context, id string) (playback.State, error) {
	return f.record("activate", id)
}

func (f *fakeController) Play(_ context.Context, id string) (playback.State, error) {
	return f.record("play", id)
}

func (f *fakeController) Stop(_ context.Context, id string) (playback.State, error) {
	return f.record("stop", id)
}

func (f *fakeController) Disable(_ context.Context, id string) (playback.State, error) {
	return f.record("disable", id)
}

func (f *fakeController) OutOfView(_ context.Context, id string) (playback.State, error) {
	return f.record("out_of_view", id)
}

func (f *fakeController) Blur(_ context.Context, id string) error {
	f.calls = append(f.calls, "blur:"+id)
	return nil
}

func (f *fakeController) Hidden(context.Context) (string, error) {
	f.calls = append(f.calls, "hidden")
	return f.hidden, nil
}

func (f *fakeController) Snapshot(context.Context) ([]playback.SlotInfo, error) {
	return f.slots, nil
}

func (f *fakeController) Settings() director.Settings { return f.settings }

func (f *fakeController) SetSettings(s director.Settings) { f.settings = s }

func (f *fakeController) Capacity() int { return 2 }

func newTestService(ctrl *fakeController) (*Service, *canvas.Manager) {
	canvases := canvas.NewManager(bus.NewRegistry())
	return NewService(ctrl, canvases, "1.2.3", []string{"api", "ws_view"}), canvases
}

func serve(s *Service, method, path, body string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestHandleServer(t *testing.T) {
	service, _ := newTestService(&fakeController{})

	w := serve(service, "GET", "/api/server", "")
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response ServerResponse
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.Version != "1.2.3" {
		t.Errorf("Expected version 1.2.3, got %s", response.Version)
	}
	if response.Uptime < 0 {
		t.Error("Uptime should be non-negative")
	}
	if response.GoVersion == "" {
		t.Error("GoVersion should not be empty")
	}
	if response.PoolSize != 2 {
		t.Errorf("Expected pool size 2, got %d", response.PoolSize)
	}
	if len(response.EnabledServices) != 2 {
		t.Errorf("Expected 2 services, got %v", response.EnabledServices)
	}
}

func TestHandlePool(t *testing.T) {
	ctrl := &fakeController{slots: []playback.SlotInfo{{ID: "1", State: "playing", Active: true}}}
	service, _ := newTestService(ctrl)

	w := serve(service, "GET", "/api/pool", "")
	var response PoolResponse
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(response.Slots) != 1 || !response.Slots[0].Active {
		t.Errorf("Unexpected slots: %+v", response.Slots)
	}
}

func TestHandleSurfaces(t *testing.T) {
	service, canvases := newTestService(&fakeController{})
	c := canvases.GetOrCreate("hero")
	c.SetCanvasSize(8, 6)
	c.Channel().AttachSubscriber(4, bus.BackpressureDropOldest)

	w := serve(service, "GET", "/api/surfaces", "")
	var response SurfacesResponse
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(response.Surfaces) != 1 {
		t.Fatalf("Expected 1 surface, got %d", len(response.Surfaces))
	}
	got := response.Surfaces[0]
	if got.ID != "hero" || got.Width != 8 || got.Viewers != 1 {
		t.Errorf("Unexpected surface: %+v", got)
	}
}

func TestHandleFocus(t *testing.T) {
	ctrl := &fakeController{focus: director.Result{Outcome: director.OutcomeEnabled, Slot: "1"}}
	service, _ := newTestService(ctrl)

	w := serve(service, "POST", "/api/focus", `{"surface":"hero","src":"http://x/a.gif"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body)
	}
	var res director.Result
	if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if res.Outcome != director.OutcomeEnabled || res.Slot != "1" {
		t.Errorf("Unexpected result: %+v", res)
	}
	if len(ctrl.calls) != 1 || ctrl.calls[0] != "focus:hero:http://x/a.gif" {
		t.Errorf("Unexpected calls: %v", ctrl.calls)
	}
}

func TestHandleFocusValidation(t *testing.T) {
	service, _ := newTestService(&fakeController{})

	tests := []struct {
		method string
		body   string
		want   int
	}{
		{"GET", "", http.StatusMethodNotAllowed},
		{"POST", `{"surface":"hero"}`, http.StatusBadRequest},
		{"POST", `not json`, http.StatusBadRequest},
		{"POST", `{"surface":"hero","src":"a.gif","extra":1}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		w := serve(service, tt.method, "/api/focus", tt.body)
		if w.Code != tt.want {
			t.Errorf("%s %q: expected status %d, got %d", tt.method, tt.body, tt.want, w.Code)
		}
	}
}

func TestHandleFocusErrors(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&fetch.TransportError{Locator: "a.gif", Status: 404}, http.StatusBadGateway},
		{fmt.Errorf("%w: hero", director.ErrUnknownSurface), http.StatusNotFound},
		{context.Canceled, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		service, _ := newTestService(&fakeController{focusErr: tt.err})
		w := serve(service, "POST", "/api/focus", `{"surface":"hero","src":"a.gif"}`)
		if w.Code != tt.want {
			t.Errorf("%v: expected status %d, got %d", tt.err, tt.want, w.Code)
		}
		var response ErrorResponse
		json.NewDecoder(w.Body).Decode(&response)
		if response.Error == "" {
			t.Errorf("%v: expected error message", tt.err)
		}
	}
}

func TestSlotActions(t *testing.T) {
	ctrl := &fakeController{state: playback.StatePlaying}
	service, _ := newTestService(ctrl)

	for _, op := range []string{"activate", "play", "stop", "disable"} {
		w := serve(service, "POST", "/api/"+op, `{"surface":"hero"}`)
		if w.Code != http.StatusOK {
			t.Errorf("%s: expected status 200, got %d", op, w.Code)
			continue
		}
		var res SlotStateResponse
		json.NewDecoder(w.Body).Decode(&res)
		if res.State != "playing" || res.Surface != "hero" {
			t.Errorf("%s: unexpected response %+v", op, res)
		}
	}
	if len(ctrl.calls) != 4 || ctrl.calls[3] != "disable:hero" {
		t.Errorf("Unexpected calls: %v", ctrl.calls)
	}

	ctrl.stateErr = playback.ErrSlotNotEnabled
	if w := serve(service, "POST", "/api/play", `{"surface":"hero"}`); w.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", w.Code)
	}
	if w := serve(service, "POST", "/api/play", `{}`); w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestHandleVisibility(t *testing.T) {
	ctrl := &fakeController{hidden: "2"}
	service, _ := newTestService(ctrl)

	w := serve(service, "POST", "/api/visibility", `{"visible":false}`)
	var res VisibilityResponse
	json.NewDecoder(w.Body).Decode(&res)
	if res.Stopped != "2" {
		t.Errorf("Expected slot 2 stopped, got %+v", res)
	}

	serve(service, "POST", "/api/visibility", `{"surface":"hero","visible":false}`)
	serve(service, "POST", "/api/visibility", `{"surface":"hero","visible":true}`)

	want := []string{"hidden", "out_of_view:hero"}
	if len(ctrl.calls) != len(want) || ctrl.calls[0] != want[0] || ctrl.calls[1] != want[1] {
		t.Errorf("Expected calls %v, got %v", want, ctrl.calls)
	}
}

func TestHandleBlur(t *testing.T) {
	ctrl := &fakeController{}
	service, _ := newTestService(ctrl)

	w := serve(service, "POST", "/api/blur", `{"surface":"hero"}`)
	if w.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", w.Code)
	}
	if len(ctrl.calls) != 1 || ctrl.calls[0] != "blur:hero" {
		t.Errorf("Unexpected calls: %v", ctrl.calls)
	}
}

func TestHandleSettings(t *testing.T) {
	ctrl := &fakeController{settings: director.Settings{ShowTimingStats: true}}
	service, _ := newTestService(ctrl)

	w := serve(service, "PUT", "/api/settings", `{"play_once":true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if !ctrl.settings.PlayOnce || !ctrl.settings.ShowTimingStats {
		t.Errorf("Expected partial update merged, got %+v", ctrl.settings)
	}

	w = serve(service, "GET", "/api/settings", "")
	var got director.Settings
	json.NewDecoder(w.Body).Decode(&got)
	if !got.PlayOnce {
		t.Errorf("Expected play_once in response, got %+v", got)
	}

	if w := serve(service, "DELETE", "/api/settings", ""); w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", w.Code)
	}
}
