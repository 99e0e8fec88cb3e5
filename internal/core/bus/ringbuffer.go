// If you are AI: This file implements a lock-free ring buffer for viewer message delivery.
// The ring buffer provides bounded buffering with configurable backpressure behavior.
// CRITICAL: Both writePos and readPos increment freely (never masked). Only use the mask
// when indexing into the buffer array. The emptiness check readPos==writePos relies on
// both counters using the same domain.

package bus

import (
	"sync/atomic"
)

// BackpressureStrategy defines how the ring buffer handles overflow.
type BackpressureStrategy uint8

const (
	// BackpressureDropOldest drops the oldest message when buffer is full.
	BackpressureDropOldest BackpressureStrategy = iota
	// BackpressureDropNewest drops the newest message when buffer is full.
	BackpressureDropNewest
)

// RingBuffer is a bounded circular buffer for Message delivery.
// It is lock-free for single producer, single consumer scenarios.
// Allocation: Pre-allocated slots, no per-message allocations.
type RingBuffer struct {
	slots    []atomic.Pointer[Message]
	size     uint32
	mask     uint32
	writePos atomic.Uint32
	readPos  atomic.Uint32
	strategy BackpressureStrategy
	dropped  atomic.Uint64
}

// NewRingBuffer creates a new ring buffer with the specified capacity.
// Capacity is rounded up to a power of 2 for efficient modulo via bitmask.
func NewRingBuffer(capacity uint32, strategy BackpressureStrategy) *RingBuffer {
	actualSize := uint32(1)
	for actualSize < capacity {
		actualSize <<= 1
	}

	return &RingBuffer{
		slots:    make([]atomic.Pointer[Message], actualSize),
		size:     actualSize,
		mask:     actualSize - 1,
		strategy: strategy,
	}
}

// Write attempts to write a message to the buffer.
// Returns true if written, false if buffer was full and message was dropped (DropNewest).
// Lock expectations: Single writer (publishing goroutine).
func (rb *RingBuffer) Write(msg *Message) bool {
	if msg == nil {
		return false
	}

	writePos := rb.writePos.Load()
	readPos := rb.readPos.Load()

	// Unsigned subtraction works correctly even after uint32 wrap.
	if writePos-readPos >= rb.size {
		rb.dropped.Add(1)
		if rb.strategy == BackpressureDropNewest {
			return false
		}
		rb.readPos.CompareAndSwap(readPos, readPos+1)
	}

	rb.slots[writePos&rb.mask].Store(msg)
	rb.writePos.Store(writePos + 1)
	return true
}

// Read attempts to read a message from the buffer.
// Returns the message and true if available, nil and false if empty.
// Lock expectations: Single reader (viewer goroutine).
func (rb *RingBuffer) Read() (*Message, bool) {
	for {
		readPos := rb.readPos.Load()
		if readPos == rb.writePos.Load() {
			return nil, false
		}

		msg := rb.slots[readPos&rb.mask].Load()
		// Lose the race against a DropOldest advance: retry from the new position.
		if rb.readPos.CompareAndSwap(readPos, readPos+1) {
			return msg, true
		}
	}
}

// Dropped returns the number of messages dropped due to backpressure.
func (rb *RingBuffer) Dropped() uint64 {
	return rb.dropped.Load()
}

// Available returns the number of free slots in the buffer.
func (rb *RingBuffer) Available() uint32 {
	used := rb.writePos.Load() - rb.readPos.Load()
	return rb.size - used
}

// Len returns the number of buffered messages.
func (rb *RingBuffer) Len() uint32 {
	return rb.writePos.Load() - rb.readPos.Load()
}
