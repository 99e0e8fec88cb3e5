// If you are AI: This file defines the Subscriber type used by surface viewers.
// Subscribers receive messages from channels via a ring buffer and a wake-up signal.

package bus

// Subscriber represents a consumer of surface messages from a channel.
// Each subscriber has its own ring buffer to avoid blocking the publisher.
type Subscriber struct {
	id        uint64
	buffer    *RingBuffer
	notify    chan struct{}
	onMessage func(*Message)
}

// NewSubscriber creates a new subscriber with the specified buffer capacity and strategy.
func NewSubscriber(id uint64, capacity uint32, strategy BackpressureStrategy) *Subscriber {
	return &Subscriber{
		id:     id,
		buffer: NewRingBuffer(capacity, strategy),
		notify: make(chan struct{}, 1),
	}
}

// ID returns the unique subscriber identifier.
func (s *Subscriber) ID() uint64 {
	return s.id
}

// Buffer returns the subscriber's ring buffer.
func (s *Subscriber) Buffer() *RingBuffer {
	return s.buffer
}

// Ready returns a channel that receives a value after new messages were buffered.
// A single receive may cover several messages; drain the buffer after each wake-up.
func (s *Subscriber) Ready() <-chan struct{} {
	return s.notify
}

// deliver buffers msg and wakes the reader without blocking.
func (s *Subscriber) deliver(msg *Message) {
	s.buffer.Write(msg)
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// SetMessageHandler sets a callback function to be called when messages are available.
func (s *Subscriber) SetMessageHandler(handler func(*Message)) {
	s.onMessage = handler
}

// Process reads and processes up to maxMessages messages from the buffer.
// Returns the number of messages processed.
func (s *Subscriber) Process(maxMessages int) int {
	processed := 0
	for i := 0; i < maxMessages; i++ {
		msg, ok := s.buffer.Read()
		if !ok {
			break
		}

		if s.onMessage != nil {
			s.onMessage(msg)
		}
		processed++
	}
	return processed
}

// Dropped returns the number of messages dropped due to backpressure.
func (s *Subscriber) Dropped() uint64 {
	return s.buffer.Dropped()
}
