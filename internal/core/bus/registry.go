// If you are AI: This file implements the Registry for managing surface channel lifecycle.
// The registry maps surface ids to Channel instances. A channel lives while its canvas
// publishes or any viewer still watches it.

package bus

import (
	"sort"
	"sync"
)

// Registry manages the lifecycle of channels.
// Lock expectations: Mutex-protected for concurrent access.
type Registry struct {
	mu       sync.RWMutex
	channels map[string]*Channel
}

// NewRegistry creates a new channel registry.
func NewRegistry() *Registry {
	return &Registry{
		channels: make(map[string]*Channel),
	}
}

// GetOrCreate retrieves an existing channel or creates a new one.
// Returns the channel and true if it was newly created, false if it already existed.
func (r *Registry) GetOrCreate(key string) (*Channel, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ch, exists := r.channels[key]; exists {
		return ch, false
	}

	ch := NewChannel(key)
	r.channels[key] = ch
	return ch, true
}

// Get retrieves a channel by key, returning nil if not found.
func (r *Registry) Get(key string) *Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.channels[key]
}

// Live returns the channel for a surface that currently has a canvas publishing on it.
// Returns nil for unknown surfaces and for channels kept alive only by lingering viewers.
func (r *Registry) Live(key string) *Channel {
	ch := r.Get(key)
	if ch == nil || !ch.HasPublisher() {
		return nil
	}
	return ch
}

// Viewers returns the number of viewers watching a surface, 0 when it has no channel.
func (r *Registry) Viewers(key string) int {
	if ch := r.Get(key); ch != nil {
		return ch.SubscriberCount()
	}
	return 0
}

// Release drops the channel for a surface once its canvas and every viewer have left.
// Called by both sides; whichever leaves last frees the channel and its replay state.
// Returns true if the channel was removed.
func (r *Registry) Release(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch, exists := r.channels[key]
	if !exists || !ch.IsEmpty() {
		return false
	}
	delete(r.channels, key)
	return true
}

// Count returns the number of channels in the registry.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.channels)
}

// List returns all channel keys in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.channels))
	for key := range r.channels {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
