// If you are AI: This file implements the WebSocket viewer that reads a surface channel and writes frames.
// Frames and overlays go out as binary messages; state documents go out as text messages.

package wsview

import (
	"encoding/binary"
	"encoding/json"

	"animage/internal/core/bus"

	"github.com/gorilla/websocket"
)

// HeaderSize is the length of the binary header preceding RGBA pixels.
// Layout (big endian): type u8, sequence u32, width u32, height u32, x u32, y u32.
const HeaderSize = 1 + 5*4

// viewerBuffer is the per-viewer ring capacity; slow viewers drop the oldest frames.
const viewerBuffer = 64

// WebSocketConn defines the WebSocket operations a viewer needs.
// This allows for easier testing and abstraction.
type WebSocketConn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Hello is the first text message sent to a viewer.
type Hello struct {
	Viewer  string `json:"viewer"`
	Surface string `json:"surface"`
}

// Viewer streams one surface channel to one WebSocket client.
type Viewer struct {
	id      string
	conn    WebSocketConn
	channel *bus.Channel
	sub     *bus.Subscriber
	subID   uint64
	sent    uint64
}

// NewViewer creates a viewer for channel.
func NewViewer(id string, conn WebSocketConn, channel *bus.Channel) *Viewer {
	return &Viewer{
		id:      id,
		conn:    conn,
		channel: channel,
	}
}

// ID returns the viewer id.
func (v *Viewer) ID() string { return v.id }

// Sent returns the number of messages written.
func (v *Viewer) Sent() uint64 { return v.sent }

// Attach subscribes the viewer to its channel.
// Backpressure strategy: DropOldest so a slow viewer never blocks the loop goroutine.
func (v *Viewer) Attach() {
	v.sub, v.subID = v.channel.AttachSubscriber(viewerBuffer, bus.BackpressureDropOldest)
}

// Detach unsubscribes the viewer.
func (v *Viewer) Detach() {
	if v.channel != nil && v.subID != 0 {
		v.channel.DetachSubscriber(v.subID)
		v.subID = 0
		v.sub = nil
	}
}

// WriteHello sends the greeting text message.
func (v *Viewer) WriteHello() error {
	doc, err := json.Marshal(Hello{Viewer: v.id, Surface: v.channel.Key()})
	if err != nil {
		return err
	}
	return v.conn.WriteMessage(websocket.TextMessage, doc)
}

// Run writes buffered messages until done is closed or a write fails.
// NOTE: Blocks; connection loss is detected by the caller's read pump closing done.
func (v *Viewer) Run(done <-chan struct{}) error {
	if v.sub == nil {
		return nil
	}
	for {
		if err := v.flush(); err != nil {
			return err
		}
		select {
		case <-done:
			return nil
		case <-v.sub.Ready():
		}
	}
}

// flush writes every buffered message.
func (v *Viewer) flush() error {
	for {
		msg, ok := v.sub.Buffer().Read()
		if !ok {
			return nil
		}
		if err := v.write(msg); err != nil {
			return err
		}
	}
}

func (v *Viewer) write(msg *bus.Message) error {
	var err error
	if msg.Type == bus.MessageTypeState {
		err = v.conn.WriteMessage(websocket.TextMessage, msg.Payload)
	} else {
		err = v.conn.WriteMessage(websocket.BinaryMessage, EncodeImage(msg))
	}
	if err == nil {
		v.sent++
	}
	return err
}

// EncodeImage serialises a frame or overlay message for the wire.
// Allocation: one buffer of HeaderSize plus the payload.
func EncodeImage(msg *bus.Message) []byte {
	out := make([]byte, HeaderSize+len(msg.Payload))
	out[0] = byte(msg.Type)
	binary.BigEndian.PutUint32(out[1:], uint32(msg.Sequence))
	binary.BigEndian.PutUint32(out[5:], uint32(msg.Width))
	binary.BigEndian.PutUint32(out[9:], uint32(msg.Height))
	binary.BigEndian.PutUint32(out[13:], uint32(msg.X))
	binary.BigEndian.PutUint32(out[17:], uint32(msg.Y))
	copy(out[HeaderSize:], msg.Payload)
	return out
}

// DecodeHeader parses the binary header written by EncodeImage.
func DecodeHeader(data []byte) (msgType bus.MessageType, seq uint32, width, height, x, y int, ok bool) {
	if len(data) < HeaderSize {
		return 0, 0, 0, 0, 0, 0, false
	}
	msgType = bus.MessageType(data[0])
	seq = binary.BigEndian.Uint32(data[1:])
	width = int(binary.BigEndian.Uint32(data[5:]))
	height = int(binary.BigEndian.Uint32(data[9:]))
	x = int(binary.BigEndian.Uint32(data[13:]))
	y = int(binary.BigEndian.Uint32(data[17:]))
	return msgType, seq, width, height, x, y, true
}
