// If you are AI: This file implements the GIF engine on top of image/gif.
// Frames are composited onto a full RGBA canvas honouring each frame's disposal method.

package codec

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/gif"

	"animage/internal/core/format"
)

// GIFEngine returns the engine table for GIF images.
func GIFEngine() Engine {
	return Engine{
		Format: format.GIF,
		Create: newGIFReader,
	}
}

// gifReader composites paletted GIF frames onto an RGBA canvas.
// Allocation: canvas and restore buffers are allocated once per reader.
type gifReader struct {
	anim    *gif.GIF
	width   int
	height  int
	canvas  *image.RGBA
	restore *image.RGBA // canvas snapshot for DisposalPrevious
	index   int

	prevDisposal byte
	prevBounds   image.Rectangle
}

// newGIFReader parses the whole GIF and prepares an empty canvas.
func newGIFReader(data []byte) (Reader, error) {
	anim, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode gif: %w", err)
	}
	if len(anim.Image) == 0 {
		return nil, errors.New("gif has no frame")
	}

	width, height := anim.Config.Width, anim.Config.Height
	if width == 0 || height == 0 {
		var bounds image.Rectangle
		for _, frame := range anim.Image {
			bounds = bounds.Union(frame.Bounds())
		}
		width, height = bounds.Max.X, bounds.Max.Y
	}

	rect := image.Rect(0, 0, width, height)
	return &gifReader{
		anim:    anim,
		width:   width,
		height:  height,
		canvas:  image.NewRGBA(rect),
		restore: image.NewRGBA(rect),
		index:   -1,
	}, nil
}

// Destroy drops references to decoded frames.
func (r *gifReader) Destroy() {
	r.anim = nil
	r.canvas = nil
	r.restore = nil
}

// Width returns the logical screen width.
func (r *gifReader) Width() int { return r.width }

// Height returns the logical screen height.
func (r *gifReader) Height() int { return r.height }

// FrameCount returns the number of frames.
func (r *gifReader) FrameCount() int { return len(r.anim.Image) }

// LoopCount maps the Netscape loop extension to a number of full passes.
// No extension means a single pass, 0 means forever, n means n repeats after the first pass.
func (r *gifReader) LoopCount() int {
	switch n := r.anim.LoopCount; {
	case n < 0:
		return 1
	case n == 0:
		return 0
	default:
		return n + 1
	}
}

// Rewind clears the canvas so the next decode starts from frame 0.
func (r *gifReader) Rewind() error {
	r.index = -1
	r.resetCanvas()
	return nil
}

// DecodeNextFrame composites the next frame, wrapping to frame 0 after the last one.
func (r *gifReader) DecodeNextFrame() error {
	r.index++
	if r.index == len(r.anim.Image) {
		r.resetCanvas()
		r.index = 0
	}

	frame := r.anim.Image[r.index]
	bounds := frame.Bounds().Intersect(r.canvas.Rect)

	if r.index > 0 {
		switch r.prevDisposal {
		case gif.DisposalBackground:
			draw.Draw(r.canvas, r.prevBounds, image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			copy(r.canvas.Pix, r.restore.Pix)
		}
	}

	disposal := r.disposal(r.index)
	if disposal == gif.DisposalPrevious {
		copy(r.restore.Pix, r.canvas.Pix)
	}

	draw.Draw(r.canvas, bounds, frame, bounds.Min, draw.Over)
	r.prevDisposal = disposal
	r.prevBounds = bounds
	return nil
}

// FrameIndex returns the current frame index.
func (r *gifReader) FrameIndex() int { return r.index }

// FrameDuration returns the current frame delay in milliseconds.
func (r *gifReader) FrameDuration() int {
	if r.index < 0 || r.index >= len(r.anim.Delay) {
		return 0
	}
	return r.anim.Delay[r.index] * 10
}

// FramePixels returns the composited canvas.
func (r *gifReader) FramePixels() []byte { return r.canvas.Pix }

// disposal returns the disposal method of frame i, or 0 when unspecified.
func (r *gifReader) disposal(i int) byte {
	if i < len(r.anim.Disposal) {
		return r.anim.Disposal[i]
	}
	return 0
}

// resetCanvas clears the canvas and disposal state.
func (r *gifReader) resetCanvas() {
	clear(r.canvas.Pix)
	r.prevDisposal = 0
	r.prevBounds = image.Rectangle{}
}
