// If you are AI: This file implements Canvas, a playback surface that publishes to a bus channel.
// Remote viewers render what a canvas publishes; snapshots read its composite image.

package canvas

import (
	"encoding/json"
	"image"
	"image/draw"
	"sync"

	"animage/internal/core/bus"
)

// State is the presentation state of one canvas.
type State struct {
	ID        string `json:"id"`
	Enabled   bool   `json:"enabled"`
	Animating bool   `json:"animating"`
	Drawn     bool   `json:"drawn"`
	Control   bool   `json:"control"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Frames    uint64 `json:"frames"`
}

// Canvas is a headless drawing surface.
// Lock expectations: surface methods run on the loop goroutine; readers use the mutex.
type Canvas struct {
	id string
	ch *bus.Channel

	mu    sync.Mutex
	state State
	img   *image.RGBA
}

func newCanvas(id string, ch *bus.Channel) *Canvas {
	return &Canvas{
		id:    id,
		ch:    ch,
		state: State{ID: id},
	}
}

// ID returns the surface id.
func (c *Canvas) ID() string { return c.id }

// SetEnabled shows or hides the canvas.
func (c *Canvas) SetEnabled(enabled bool) {
	c.update(func(s *State) { s.Enabled = enabled })
}

// SetCanvasSize resizes the canvas, clearing its content.
func (c *Canvas) SetCanvasSize(width, height int) {
	c.mu.Lock()
	if c.img == nil || c.img.Rect.Dx() != width || c.img.Rect.Dy() != height {
		c.img = image.NewRGBA(image.Rect(0, 0, width, height))
	}
	c.mu.Unlock()

	c.update(func(s *State) {
		s.Width = width
		s.Height = height
	})
}

// Present copies frame onto the canvas and publishes it.
func (c *Canvas) Present(frame *image.RGBA) {
	c.mu.Lock()
	if c.img == nil || c.img.Rect.Size() != frame.Rect.Size() {
		c.img = image.NewRGBA(image.Rect(0, 0, frame.Rect.Dx(), frame.Rect.Dy()))
	}
	draw.Draw(c.img, c.img.Rect, frame, frame.Rect.Min, draw.Src)
	c.state.Frames++
	c.mu.Unlock()

	c.ch.Publish(bus.NewImageMessage(bus.MessageTypeFrame, c.id, frame, image.Point{}))
}

// MarkAnimating records whether frames are being shown.
func (c *Canvas) MarkAnimating(animating bool) {
	c.update(func(s *State) { s.Animating = animating })
}

// MarkDrawn records whether the canvas holds a drawn frame.
func (c *Canvas) MarkDrawn(drawn bool) {
	c.update(func(s *State) { s.Drawn = drawn })
}

// ShowControl records play/stop control visibility.
func (c *Canvas) ShowControl(shown bool) {
	c.update(func(s *State) { s.Control = shown })
}

// DrawOverlay composites img at the given point and publishes it as an overlay.
func (c *Canvas) DrawOverlay(img image.Image, at image.Point) {
	rgba, ok := img.(*image.RGBA)
	if !ok {
		b := img.Bounds()
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Rect, img, b.Min, draw.Src)
	}

	c.mu.Lock()
	if c.img != nil {
		r := image.Rectangle{Min: at, Max: at.Add(rgba.Rect.Size())}
		draw.Draw(c.img, r, rgba, rgba.Rect.Min, draw.Over)
	}
	c.mu.Unlock()

	c.ch.Publish(bus.NewImageMessage(bus.MessageTypeOverlay, c.id, rgba, at))
}

// State returns a copy of the presentation state.
func (c *Canvas) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot returns a copy of the composite image, nil before the canvas is sized.
func (c *Canvas) Snapshot() *image.RGBA {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.img == nil {
		return nil
	}
	out := image.NewRGBA(c.img.Rect)
	copy(out.Pix, c.img.Pix)
	return out
}

// Channel returns the bus channel the canvas publishes on.
func (c *Canvas) Channel() *bus.Channel { return c.ch }

// update applies fn and publishes the new state if anything changed.
func (c *Canvas) update(fn func(*State)) {
	c.mu.Lock()
	before := c.state
	fn(&c.state)
	after := c.state
	c.mu.Unlock()

	if before == after {
		return
	}
	doc, err := json.Marshal(after)
	if err != nil {
		return
	}
	c.ch.Publish(bus.NewStateMessage(c.id, doc))
}
