// If you are AI: This file provides a recording surface for playback tests.

package testsupport

import (
	"image"
)

// RecordingSurface records every call a playback slot makes on it.
type RecordingSurface struct {
	Name      string
	Enabled   bool
	Width     int
	Height    int
	Animating bool
	Drawn     bool
	Control   bool
	Overlays  int

	// Presents holds the first pixel byte of every presented frame.
	Presents []byte
	// Last is a copy of the most recent frame.
	Last *image.RGBA
}

// NewRecordingSurface returns a surface with the given id.
func NewRecordingSurface(id string) *RecordingSurface {
	return &RecordingSurface{Name: id}
}

// ID returns the surface name.
func (r *RecordingSurface) ID() string { return r.Name }

// SetEnabled records visibility.
func (r *RecordingSurface) SetEnabled(enabled bool) { r.Enabled = enabled }

// SetCanvasSize records the canvas size.
func (r *RecordingSurface) SetCanvasSize(width, height int) {
	r.Width = width
	r.Height = height
}

// Present copies the frame and records its first pixel.
func (r *RecordingSurface) Present(frame *image.RGBA) {
	var first byte
	if len(frame.Pix) > 0 {
		first = frame.Pix[0]
	}
	r.Presents = append(r.Presents, first)

	if r.Last == nil || r.Last.Rect != frame.Rect {
		r.Last = image.NewRGBA(frame.Rect)
	}
	copy(r.Last.Pix, frame.Pix)
}

// MarkAnimating records the animating flag.
func (r *RecordingSurface) MarkAnimating(animating bool) { r.Animating = animating }

// MarkDrawn records the drawn flag.
func (r *RecordingSurface) MarkDrawn(drawn bool) { r.Drawn = drawn }

// ShowControl records control visibility.
func (r *RecordingSurface) ShowControl(shown bool) { r.Control = shown }

// DrawOverlay counts overlay draws.
func (r *RecordingSurface) DrawOverlay(image.Image, image.Point) { r.Overlays++ }
