// If you are AI: This file implements DecodeSession, an open decode context over one encoded image.
// A session is owned by exactly one playback slot; the slot guarantees no use after Destroy.

package session

import (
	"fmt"

	"animage/internal/core/codec"
	"animage/internal/core/format"

	"github.com/google/uuid"
)

const (
	// MinFrameDuration is the shortest frame duration honoured, in milliseconds.
	MinFrameDuration = 20
	// FallbackFrameDuration replaces durations below MinFrameDuration.
	FallbackFrameDuration = 100
)

// CodecInitError reports that the engine could not parse the encoded bytes.
type CodecInitError struct {
	Format format.Tag
	Err    error
}

// Error implements the error interface.
func (e *CodecInitError) Error() string {
	return fmt.Sprintf("codec init (%s): %v", e.Format, e.Err)
}

// Unwrap returns the underlying engine error.
func (e *CodecInitError) Unwrap() error {
	return e.Err
}

// Session is a decode context plus the cached metadata of its image.
// Lock expectations: none; all calls come from the scheduling goroutine.
type Session struct {
	id     string
	format format.Tag
	buf    *OwnedBuffer
	reader codec.Reader

	width      int
	height     int
	frameCount int
	loopCount  int

	frameIndex    int
	frameDuration int
	destroyed     bool
}

// New copies data into an owned buffer and opens a codec context over it.
// On failure the buffer is released and a *CodecInitError is returned.
func New(tag format.Tag, data []byte, engine codec.Engine) (*Session, error) {
	buf := NewOwnedBuffer(data)

	reader, err := engine.Create(buf.Bytes())
	if err != nil {
		buf.Release()
		return nil, &CodecInitError{Format: tag, Err: err}
	}

	return &Session{
		id:            uuid.NewString(),
		format:        tag,
		buf:           buf,
		reader:        reader,
		width:         reader.Width(),
		height:        reader.Height(),
		frameCount:    reader.FrameCount(),
		loopCount:     reader.LoopCount(),
		frameIndex:    -1,
		frameDuration: -1,
	}, nil
}

// ID returns the session identifier used in logs.
func (s *Session) ID() string { return s.id }

// Format returns the container format.
func (s *Session) Format() format.Tag { return s.format }

// Width returns the canvas width.
func (s *Session) Width() int { return s.width }

// Height returns the canvas height.
func (s *Session) Height() int { return s.height }

// FrameCount returns the number of frames per pass.
func (s *Session) FrameCount() int { return s.frameCount }

// LoopCount returns the signed number of passes reported by the codec.
func (s *Session) LoopCount() int { return s.loopCount }

// FrameIndex returns the current frame index, -1 before the first decode.
func (s *Session) FrameIndex() int { return s.frameIndex }

// FrameDuration returns the clamped duration of the current frame in milliseconds.
func (s *Session) FrameDuration() int { return s.frameDuration }

// EncodedSize returns the size of the owned encoded buffer.
func (s *Session) EncodedSize() int { return s.buf.Len() }

// IsLastFrame reports whether the current frame closes a pass.
func (s *Session) IsLastFrame() bool {
	return s.frameIndex+1 == s.frameCount
}

// DecodeNextFrame advances the codec and refreshes index and duration.
func (s *Session) DecodeNextFrame() error {
	if err := s.reader.DecodeNextFrame(); err != nil {
		return fmt.Errorf("decode frame %d: %w", s.frameIndex+1, err)
	}
	s.frameIndex = s.reader.FrameIndex()
	s.frameDuration = ClampDuration(s.reader.FrameDuration())
	return nil
}

// FramePixels returns a read-only view of the current RGBA frame.
// Callers must copy it before the next DecodeNextFrame.
func (s *Session) FramePixels() []byte {
	return s.reader.FramePixels()
}

// Rewind resets the codec to the pre-first-frame state.
func (s *Session) Rewind() error {
	if err := s.reader.Rewind(); err != nil {
		return fmt.Errorf("rewind: %w", err)
	}
	s.frameIndex = -1
	s.frameDuration = -1
	return nil
}

// Destroy releases the codec context and the encoded buffer.
// Returns false if the session was already destroyed.
func (s *Session) Destroy() bool {
	if s.destroyed {
		return false
	}
	s.destroyed = true
	s.reader.Destroy()
	s.buf.Release()
	return true
}

// Destroyed reports whether Destroy has run.
func (s *Session) Destroyed() bool { return s.destroyed }

// ClampDuration normalises a reported frame duration.
// Durations of 0 or below MinFrameDuration become FallbackFrameDuration.
func ClampDuration(ms int) int {
	if ms == 0 || ms < MinFrameDuration {
		return FallbackFrameDuration
	}
	return ms
}
