// If you are AI: This file implements a deterministic in-memory engine for tests and demos.
// Every pixel byte of frame i equals byte(i), so presented frames are easy to identify.

package codec

import (
	"errors"

	"animage/internal/core/format"
)

// ErrScriptedCreate is returned by a Scripted engine configured to fail.
var ErrScriptedCreate = errors.New("scripted engine: create refused")

// Scripted describes a synthetic animation and counts engine calls.
// Lock expectations: not safe for concurrent use; drive it from one goroutine.
type Scripted struct {
	Width      int
	Height     int
	Frames     int
	Loops      int
	Durations  []int // per-frame raw durations in ms; missing entries use 100
	FailCreate bool

	Created   int
	Destroyed int
	Decodes   int
	Rewinds   int
}

// Engine returns an engine table bound to this script.
// The format tag is GIF so probes and registries treat it as a regular animation.
func (s *Scripted) Engine() Engine {
	return Engine{
		Format: format.GIF,
		Create: func(data []byte) (Reader, error) {
			if s.FailCreate {
				return nil, ErrScriptedCreate
			}
			if s.Frames <= 0 {
				return nil, errors.New("scripted engine: no frames")
			}
			s.Created++
			return &scriptedReader{
				script: s,
				index:  -1,
				pixels: make([]byte, s.Width*s.Height*4),
			}, nil
		},
	}
}

// Live returns the number of readers created and not yet destroyed.
func (s *Scripted) Live() int {
	return s.Created - s.Destroyed
}

// scriptedReader is the Reader produced by a Scripted engine.
type scriptedReader struct {
	script *Scripted
	index  int
	pixels []byte
}

// Destroy records the release.
func (r *scriptedReader) Destroy() { r.script.Destroyed++ }

// Width returns the scripted width.
func (r *scriptedReader) Width() int { return r.script.Width }

// Height returns the scripted height.
func (r *scriptedReader) Height() int { return r.script.Height }

// FrameCount returns the scripted frame count.
func (r *scriptedReader) FrameCount() int { return r.script.Frames }

// LoopCount returns the scripted loop count.
func (r *scriptedReader) LoopCount() int { return r.script.Loops }

// Rewind resets the frame index.
func (r *scriptedReader) Rewind() error {
	r.script.Rewinds++
	r.index = -1
	return nil
}

// DecodeNextFrame advances the index with wrap-around and fills the pixels.
func (r *scriptedReader) DecodeNextFrame() error {
	r.script.Decodes++
	r.index++
	if r.index == r.script.Frames {
		r.index = 0
	}
	for i := range r.pixels {
		r.pixels[i] = byte(r.index)
	}
	return nil
}

// FrameIndex returns the current index.
func (r *scriptedReader) FrameIndex() int { return r.index }

// FrameDuration returns the scripted duration for the current frame.
func (r *scriptedReader) FrameDuration() int {
	if r.index >= 0 && r.index < len(r.script.Durations) {
		return r.script.Durations[r.index]
	}
	return 100
}

// FramePixels returns the frame buffer.
func (r *scriptedReader) FramePixels() []byte { return r.pixels }
