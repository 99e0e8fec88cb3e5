// If you are AI: This file defines Message, the unit flowing from a surface to its viewers.
// Messages are immutable once published; every subscriber shares the same instance.

package bus

import (
	"image"
)

// MessageType represents the kind of surface update.
type MessageType uint8

const (
	// MessageTypeFrame carries a full RGBA canvas frame.
	MessageTypeFrame MessageType = iota
	// MessageTypeOverlay carries an RGBA diagnostic image drawn at (X, Y).
	MessageTypeOverlay
	// MessageTypeState carries a JSON encoded surface state.
	MessageTypeState
)

// Message is one update published on a surface channel.
// Ownership: the publisher hands the message over on Publish and must not modify it afterwards.
// NOTE: messages are not pooled; a slow viewer may still hold a message the ring dropped.
type Message struct {
	Type     MessageType
	Surface  string // Surface id the message belongs to
	Sequence uint64 // Per-channel sequence number, assigned by Publish
	Width    int
	Height   int
	X        int
	Y        int
	Payload  []byte
}

// NewImageMessage copies img into a new message of type t drawn at origin.
// Allocation: one payload allocation sized to the image.
func NewImageMessage(t MessageType, surface string, img *image.RGBA, origin image.Point) *Message {
	b := img.Rect
	payload := make([]byte, b.Dx()*b.Dy()*4)
	rowLen := b.Dx() * 4
	for y := 0; y < b.Dy(); y++ {
		start := img.PixOffset(b.Min.X, b.Min.Y+y)
		copy(payload[y*rowLen:(y+1)*rowLen], img.Pix[start:start+rowLen])
	}
	return &Message{
		Type:    t,
		Surface: surface,
		Width:   b.Dx(),
		Height:  b.Dy(),
		X:       origin.X,
		Y:       origin.Y,
		Payload: payload,
	}
}

// NewStateMessage wraps an encoded state document.
func NewStateMessage(surface string, doc []byte) *Message {
	return &Message{
		Type:    MessageTypeState,
		Surface: surface,
		Payload: doc,
	}
}

// Image returns the payload as an RGBA image. Only valid for frame and overlay messages.
func (m *Message) Image() *image.RGBA {
	return &image.RGBA{
		Pix:    m.Payload,
		Stride: m.Width * 4,
		Rect:   image.Rect(0, 0, m.Width, m.Height),
	}
}

// String returns a human-readable representation of the message type.
func (t MessageType) String() string {
	switch t {
	case MessageTypeFrame:
		return "frame"
	case MessageTypeOverlay:
		return "overlay"
	case MessageTypeState:
		return "state"
	default:
		return "unknown"
	}
}
