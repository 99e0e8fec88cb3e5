// If you are AI: This file contains unit tests for the surface viewer handler.
// Tests verify WebSocket upgrade, replay of the latest state, and frame encoding.

package wsview

import (
	"encoding/json"
	"image"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"animage/internal/core/bus"

	"github.com/gorilla/websocket"
)

func TestViewerHandlerNotFound(t *testing.T) {
	handler := NewHandler(bus.NewRegistry(), nil)

	req := httptest.NewRequest("GET", "/ws/surfaces/missing", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestViewerHandlerNoPublisher(t *testing.T) {
	registry := bus.NewRegistry()
	registry.GetOrCreate("hero")
	handler := NewHandler(registry, nil)

	req := httptest.NewRequest("GET", "/ws/surfaces/hero", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 (no publisher), got %d", w.Code)
	}
}

func TestViewerHandlerBadPath(t *testing.T) {
	handler := NewHandler(bus.NewRegistry(), nil)

	for _, path := range []string{"/hero", "/ws/surfaces/", "/ws/surfaces/a/b"} {
		req := httptest.NewRequest("GET", path, nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected status 400, got %d", path, w.Code)
		}
	}
}

func TestViewerHandlerMethod(t *testing.T) {
	handler := NewHandler(bus.NewRegistry(), nil)

	req := httptest.NewRequest("POST", "/ws/surfaces/hero", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", w.Code)
	}
}

func TestViewerHandlerStreams(t *testing.T) {
	registry := bus.NewRegistry()
	channel, _ := registry.GetOrCreate("hero")
	channel.AttachPublisher(1)
	channel.Publish(bus.NewStateMessage("hero", []byte(`{"id":"hero","enabled":true}`)))

	handler := NewHandler(registry, nil)
	server := httptest.NewServer(http.HandlerFunc(handler.ServeHTTP))
	defer server.Close()

	wsURL := "ws" + server.URL[4:] + "/ws/surfaces/hero"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect WebSocket: %v", err)
	}
	defer conn.Close()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Errorf("Expected status 101, got %d", resp.StatusCode)
	}
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	messageType, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read hello: %v", err)
	}
	var hello Hello
	if messageType != websocket.TextMessage || json.Unmarshal(data, &hello) != nil {
		t.Fatalf("Expected JSON hello, got %d %q", messageType, data)
	}
	if hello.Surface != "hero" || hello.Viewer == "" {
		t.Errorf("Unexpected hello: %+v", hello)
	}

	messageType, data, err = conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read state: %v", err)
	}
	if messageType != websocket.TextMessage || string(data) != `{"id":"hero","enabled":true}` {
		t.Errorf("Expected replayed state, got %d %q", messageType, data)
	}

	frame := image.NewRGBA(image.Rect(0, 0, 3, 2))
	frame.Pix[0] = 77
	channel.Publish(bus.NewImageMessage(bus.MessageTypeFrame, "hero", frame, image.Point{}))

	messageType, data, err = conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read frame: %v", err)
	}
	if messageType != websocket.BinaryMessage {
		t.Fatalf("Expected binary frame, got %d", messageType)
	}
	kind, _, width, height, _, _, ok := DecodeHeader(data)
	if !ok || kind != bus.MessageTypeFrame || width != 3 || height != 2 {
		t.Errorf("Unexpected header: kind=%v %dx%d ok=%v", kind, width, height, ok)
	}
	if len(data) != HeaderSize+3*2*4 || data[HeaderSize] != 77 {
		t.Errorf("Unexpected payload (len %d)", len(data))
	}
}

func TestEncodeImageHeader(t *testing.T) {
	msg := &bus.Message{Type: bus.MessageTypeOverlay, Sequence: 9, Width: 2, Height: 1, X: 4, Y: 5, Payload: make([]byte, 8)}
	data := EncodeImage(msg)

	kind, seq, w, h, x, y, ok := DecodeHeader(data)
	if !ok || kind != bus.MessageTypeOverlay || seq != 9 || w != 2 || h != 1 || x != 4 || y != 5 {
		t.Errorf("Header round trip failed: %v %d %d %d %d %d %v", kind, seq, w, h, x, y, ok)
	}
	if _, _, _, _, _, _, ok := DecodeHeader(data[:3]); ok {
		t.Error("Short header should not decode")
	}
}

func TestViewerReleasesOrphanedChannel(t *testing.T) {
	registry := bus.NewRegistry()
	channel, _ := registry.GetOrCreate("hero")
	channel.AttachPublisher(1)

	handler := NewHandler(registry, nil)
	server := httptest.NewServer(http.HandlerFunc(handler.ServeHTTP))
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+server.URL[4:]+"/ws/surfaces/hero", nil)
	if err != nil {
		t.Fatalf("Failed to connect WebSocket: %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); err != nil {
		t.Fatalf("Failed to read hello: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for registry.Viewers("hero") != 1 {
		if time.Now().After(deadline) {
			t.Fatal("Viewer never attached")
		}
		time.Sleep(time.Millisecond)
	}

	// The canvas goes away while the viewer is still attached
	channel.DetachPublisher()
	if registry.Release("hero") {
		t.Fatal("Channel should survive while the viewer is attached")
	}
	conn.Close()

	deadline = time.Now().Add(2 * time.Second)
	for registry.Get("hero") != nil {
		if time.Now().After(deadline) {
			t.Fatal("Expected channel released after the last viewer left")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
