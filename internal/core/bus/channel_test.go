// If you are AI: This file contains unit tests for channel fanout and publisher exclusivity.

package bus

import (
	"image"
	"image/color"
	"testing"
)

func TestChannelPublisherExclusive(t *testing.T) {
	ch := NewChannel("hero")

	if !ch.AttachPublisher(1) {
		t.Error("First publisher should attach")
	}
	if ch.AttachPublisher(2) {
		t.Error("Second publisher should be rejected")
	}
	ch.DetachPublisher()
	if ch.HasPublisher() {
		t.Error("Publisher should be detached")
	}
	if !ch.IsEmpty() {
		t.Error("Channel should be empty")
	}
}

func TestChannelFanout(t *testing.T) {
	ch := NewChannel("hero")
	sub1, _ := ch.AttachSubscriber(8, BackpressureDropOldest)
	sub2, id2 := ch.AttachSubscriber(8, BackpressureDropOldest)

	ch.Publish(&Message{Type: MessageTypeFrame})
	ch.Publish(&Message{Type: MessageTypeState, Payload: []byte(`{}`)})

	if sub1.Buffer().Len() != 2 || sub2.Buffer().Len() != 2 {
		t.Errorf("Expected 2 messages per subscriber, got %d and %d", sub1.Buffer().Len(), sub2.Buffer().Len())
	}

	select {
	case <-sub1.Ready():
	default:
		t.Error("Subscriber should be signalled")
	}

	var seqs []uint64
	sub1.SetMessageHandler(func(m *Message) { seqs = append(seqs, m.Sequence) })
	if n := sub1.Process(10); n != 2 {
		t.Errorf("Expected 2 processed, got %d", n)
	}
	if len(seqs) != 2 || seqs[0] != 1 || seqs[1] != 2 {
		t.Errorf("Expected sequences [1 2], got %v", seqs)
	}

	ch.DetachSubscriber(id2)
	if ch.SubscriberCount() != 1 {
		t.Errorf("Expected 1 subscriber, got %d", ch.SubscriberCount())
	}
}

func TestChannelLateSubscriberCatchesUp(t *testing.T) {
	ch := NewChannel("hero")
	ch.Publish(&Message{Type: MessageTypeFrame})
	ch.Publish(&Message{Type: MessageTypeFrame})
	ch.Publish(NewStateMessage("hero", []byte(`{"enabled":true}`)))
	ch.Publish(&Message{Type: MessageTypeOverlay})

	sub, _ := ch.AttachSubscriber(8, BackpressureDropOldest)
	state, _ := sub.Buffer().Read()
	frame, _ := sub.Buffer().Read()

	if state == nil || state.Type != MessageTypeState {
		t.Fatalf("Expected state first, got %v", state)
	}
	if frame == nil || frame.Type != MessageTypeFrame || frame.Sequence != 2 {
		t.Errorf("Expected latest frame (seq 2), got %+v", frame)
	}
	if _, ok := sub.Buffer().Read(); ok {
		t.Error("Overlays are not replayed")
	}
	if ch.Sequence() != 4 {
		t.Errorf("Expected sequence 4, got %d", ch.Sequence())
	}
}

func TestNewImageMessageCopiesSubImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	src.SetRGBA(1, 1, color.RGBA{R: 9, A: 255})
	sub := src.SubImage(image.Rect(1, 1, 3, 3)).(*image.RGBA)

	msg := NewImageMessage(MessageTypeOverlay, "hero", sub, image.Pt(5, 6))
	if msg.Width != 2 || msg.Height != 2 || msg.X != 5 || msg.Y != 6 {
		t.Errorf("Unexpected geometry: %+v", msg)
	}
	if len(msg.Payload) != 16 {
		t.Fatalf("Expected 16 payload bytes, got %d", len(msg.Payload))
	}
	if got := msg.Image().RGBAAt(0, 0); got.R != 9 {
		t.Errorf("Expected copied pixel, got %v", got)
	}

	src.SetRGBA(1, 1, color.RGBA{R: 1, A: 255})
	if msg.Payload[0] != 9 {
		t.Error("Message payload must not alias the source image")
	}
}
