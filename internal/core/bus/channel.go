// If you are AI: This file implements the Channel type that fans one surface out to its viewers.
// A channel allows exactly one publisher and multiple subscribers.

package bus

import (
	"sync"
)

// Channel carries the updates of one surface.
// It keeps the latest frame and state so late subscribers can catch up.
// Lock expectations: Uses mutex for publisher/subscriber management.
type Channel struct {
	key         string
	mu          sync.RWMutex
	publisher   uint64
	subscribers map[uint64]*Subscriber
	nextSubID   uint64
	sequence    uint64
	lastFrame   *Message
	lastState   *Message
}

// NewChannel creates a new channel for the surface with the given id.
func NewChannel(key string) *Channel {
	return &Channel{
		key:         key,
		subscribers: make(map[uint64]*Subscriber),
		nextSubID:   1,
	}
}

// Key returns the surface id.
func (c *Channel) Key() string {
	return c.key
}

// AttachPublisher attaches a publisher to the channel.
// Returns true if attached, false if a publisher is already attached.
func (c *Channel) AttachPublisher(id uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.publisher != 0 {
		return false
	}
	c.publisher = id
	return true
}

// DetachPublisher detaches the current publisher from the channel.
func (c *Channel) DetachPublisher() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.publisher = 0
}

// HasPublisher returns true if a publisher is currently attached.
func (c *Channel) HasPublisher() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.publisher != 0
}

// AttachSubscriber attaches a new subscriber to the channel.
// The latest state and frame, if any, are buffered for it immediately.
func (c *Channel) AttachSubscriber(capacity uint32, strategy BackpressureStrategy) (*Subscriber, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSubID
	c.nextSubID++

	sub := NewSubscriber(id, capacity, strategy)
	if c.lastState != nil {
		sub.deliver(c.lastState)
	}
	if c.lastFrame != nil {
		sub.deliver(c.lastFrame)
	}
	c.subscribers[id] = sub
	return sub, id
}

// DetachSubscriber detaches a subscriber from the channel.
func (c *Channel) DetachSubscriber(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.subscribers, id)
}

// Publish numbers msg and delivers it to all subscribers.
// Lock expectations: Write lock held during fanout; delivery never blocks.
func (c *Channel) Publish(msg *Message) {
	if msg == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.sequence++
	msg.Sequence = c.sequence
	switch msg.Type {
	case MessageTypeFrame:
		c.lastFrame = msg
	case MessageTypeState:
		c.lastState = msg
	}

	for _, sub := range c.subscribers {
		sub.deliver(msg)
	}
}

// LastFrame returns the most recently published frame, nil if none.
func (c *Channel) LastFrame() *Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastFrame
}

// LastState returns the most recently published state, nil if none.
func (c *Channel) LastState() *Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastState
}

// Sequence returns the number of messages published so far.
func (c *Channel) Sequence() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sequence
}

// SubscriberCount returns the number of active subscribers.
func (c *Channel) SubscriberCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.subscribers)
}

// IsEmpty returns true if the channel has no publisher and no subscribers.
func (c *Channel) IsEmpty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.publisher == 0 && len(c.subscribers) == 0
}
