// If you are AI: This file defines the codec capability set and the closed format registry.
// Each format variant carries a fixed Engine table; there is no open-ended handler lookup.

package codec

import (
	"errors"
	"fmt"

	"animage/internal/core/format"
)

// ErrUnsupportedFormat is returned when a recognised format has no engine in this build.
var ErrUnsupportedFormat = errors.New("no codec engine for format")

// Reader is the opaque codec context created by an Engine.
// A Reader holds exactly one live frame buffer; FramePixels is overwritten by the
// next DecodeNextFrame call.
type Reader interface {
	// Destroy releases the codec context. The reader must not be used afterwards.
	Destroy()
	// Width and Height are the canvas dimensions in pixels.
	Width() int
	Height() int
	// FrameCount is the number of frames in one pass of the sequence.
	FrameCount() int
	// LoopCount is the number of full passes to play; zero or less means forever.
	LoopCount() int
	// Rewind resets decoding so the next decode yields frame 0.
	Rewind() error
	// DecodeNextFrame advances to the next frame, wrapping to 0 after the last one.
	DecodeNextFrame() error
	// FrameIndex is the index of the current frame, -1 before the first decode.
	FrameIndex() int
	// FrameDuration is the raw display duration of the current frame in milliseconds.
	FrameDuration() int
	// FramePixels is a read-only RGBA view (width*height*4 bytes) of the current frame.
	FramePixels() []byte
}

// Engine is the per-format capability table.
type Engine struct {
	Format format.Tag
	Create func(data []byte) (Reader, error)
}

// Registry maps format tags to engines.
// Lock expectations: immutable after construction, safe for concurrent reads.
type Registry struct {
	engines map[format.Tag]Engine
}

// NewRegistry creates a registry from the given engines.
// A later engine for the same format replaces an earlier one.
func NewRegistry(engines ...Engine) *Registry {
	r := &Registry{engines: make(map[format.Tag]Engine, len(engines))}
	for _, e := range engines {
		r.engines[e.Format] = e
	}
	return r
}

// DefaultRegistry returns the engines compiled into this build.
func DefaultRegistry() *Registry {
	return NewRegistry(GIFEngine())
}

// Lookup returns the engine for a format.
func (r *Registry) Lookup(tag format.Tag) (Engine, error) {
	e, ok := r.engines[tag]
	if !ok || e.Create == nil {
		return Engine{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, tag)
	}
	return e, nil
}

// Supported lists the formats that have an engine, in probe order.
func (r *Registry) Supported() []format.Tag {
	tags := make([]format.Tag, 0, len(r.engines))
	for _, tag := range format.All {
		if _, ok := r.engines[tag]; ok {
			tags = append(tags, tag)
		}
	}
	return tags
}
