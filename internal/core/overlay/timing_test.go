// If you are AI: This file contains unit tests for the timing overlay bar graph.

package overlay

import (
	"testing"
)

func TestForCanvasGeometry(t *testing.T) {
	o := ForCanvas(100, 80)
	if o.Origin().X != 0 || o.Origin().Y != 30 {
		t.Errorf("Expected origin (0,30), got %v", o.Origin())
	}
	if o.Image().Rect.Dx() != 100 || o.Image().Rect.Dy() != 50 {
		t.Errorf("Expected 100x50 graph, got %v", o.Image().Rect)
	}

	small := ForCanvas(10, 20)
	if small.Image().Rect.Dy() != 20 || small.Origin().Y != 0 {
		t.Errorf("Expected graph clamped to canvas height, got %v at %v", small.Image().Rect, small.Origin())
	}
}

func TestUpdateDrawsBar(t *testing.T) {
	o := NewTiming(50, 0, 0, 10, 50)

	o.Update(25) // half height
	img := o.Image()

	top := img.RGBAAt(0, 24)
	if top.A != 0 {
		t.Errorf("Expected empty pixel above bar, got %v", top)
	}
	inside := img.RGBAAt(1, 30)
	if inside.A != 255 {
		t.Fatalf("Expected opaque bar pixel, got %v", inside)
	}
	// level = round(25*255/50) = 128
	if inside.R != 128 || inside.G != 127 {
		t.Errorf("Expected colour (128,127,0), got %v", inside)
	}
	if o.Column() != 1 {
		t.Errorf("Expected column 1, got %d", o.Column())
	}
}

func TestUpdateClampsAndWraps(t *testing.T) {
	o := NewTiming(50, 0, 0, 4, 10) // two columns

	o.Update(500)
	if px := o.Image().RGBAAt(0, 0); px.R != 255 || px.G != 0 {
		t.Errorf("Expected full red bar, got %v", px)
	}

	o.Update(0)
	if o.Column() != 0 {
		t.Errorf("Expected wrap to column 0, got %d", o.Column())
	}

	// Rewriting column 0 with a zero sample clears the old bar
	o.Update(0)
	if px := o.Image().RGBAAt(0, 0); px.A != 0 {
		t.Errorf("Expected cleared column, got %v", px)
	}
}
