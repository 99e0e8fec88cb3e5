// If you are AI: This file implements the timing overlay, a rolling bar graph of frame lateness.
// The overlay holds no scheduling state; it only renders the samples it is given.

package overlay

import (
	"image"
	"image/color"
	"image/draw"
	"math"
)

const (
	// DefaultMaxMillis is the lateness mapped to a full-height bar.
	DefaultMaxMillis = 50
	// DefaultHeight is the graph height in pixels.
	DefaultHeight = 50
	// BarWidth is the width of one sample bar in pixels.
	BarWidth = 2
)

// Timing renders one bar per sample, wrapping around horizontally.
// Bars are green when on time and shift to red as lateness approaches max.
type Timing struct {
	max    float64
	origin image.Point
	img    *image.RGBA
	count  int
	index  int
}

// NewTiming creates an overlay of width x height drawn at (x, y) on the canvas.
func NewTiming(max float64, x, y, width, height int) *Timing {
	if width < BarWidth {
		width = BarWidth
	}
	if height < 1 {
		height = 1
	}
	if max <= 0 {
		max = DefaultMaxMillis
	}
	return &Timing{
		max:    max,
		origin: image.Pt(x, y),
		img:    image.NewRGBA(image.Rect(0, 0, width, height)),
		count:  width / BarWidth,
	}
}

// ForCanvas creates the default overlay spanning the bottom of a canvas.
func ForCanvas(canvasWidth, canvasHeight int) *Timing {
	height := DefaultHeight
	if canvasHeight < height {
		height = canvasHeight
	}
	return NewTiming(DefaultMaxMillis, 0, canvasHeight-height, canvasWidth, height)
}

// Update records a lateness sample in milliseconds and advances the write column.
func (t *Timing) Update(sample float64) {
	h := t.img.Rect.Dy()
	barHeight := int(math.Round(sample * float64(h) / t.max))
	if barHeight > h {
		barHeight = h
	}
	if barHeight < 0 {
		barHeight = 0
	}

	x0 := t.index * BarWidth
	column := image.Rect(x0, 0, x0+BarWidth, h)
	draw.Draw(t.img, column, image.Transparent, image.Point{}, draw.Src)

	level := uint8(math.Round(float64(barHeight) * 255 / float64(h)))
	bar := image.Rect(x0, h-barHeight, x0+BarWidth, h)
	fill := image.NewUniform(color.RGBA{R: level, G: 255 - level, A: 255})
	draw.Draw(t.img, bar, fill, image.Point{}, draw.Src)

	t.index = (t.index + 1) % t.count
}

// Image returns the rendered graph.
func (t *Timing) Image() *image.RGBA { return t.img }

// Origin returns the canvas position of the graph's top-left corner.
func (t *Timing) Origin() image.Point { return t.origin }

// Column returns the index of the next bar to be written.
func (t *Timing) Column() int { return t.index }
