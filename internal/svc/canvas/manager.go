// If you are AI: This file implements the canvas Manager, which owns one Canvas per surface id.

package canvas

import (
	"sort"
	"sync"

	"animage/internal/core/bus"
)

// Manager creates canvases on demand and publishes each on its own bus channel.
// Lock expectations: Mutex-protected; safe from any goroutine.
type Manager struct {
	registry *bus.Registry

	mu       sync.Mutex
	canvases map[string]*Canvas
	nextID   uint64
}

// NewManager creates a manager publishing on registry.
func NewManager(registry *bus.Registry) *Manager {
	return &Manager{
		registry: registry,
		canvases: make(map[string]*Canvas),
	}
}

// Registry returns the bus registry viewers subscribe through.
func (m *Manager) Registry() *bus.Registry { return m.registry }

// GetOrCreate returns the canvas for id, creating it and its channel if needed.
func (m *Manager) GetOrCreate(id string) *Canvas {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.canvases[id]; ok {
		return c
	}

	ch, _ := m.registry.GetOrCreate(id)
	m.nextID++
	ch.AttachPublisher(m.nextID)

	c := newCanvas(id, ch)
	m.canvases[id] = c
	return c
}

// Get returns the canvas for id, nil if none exists.
func (m *Manager) Get(id string) *Canvas {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.canvases[id]
}

// Remove drops the canvas for id and releases its channel once no viewer is attached.
func (m *Manager) Remove(id string) bool {
	m.mu.Lock()
	c, ok := m.canvases[id]
	delete(m.canvases, id)
	m.mu.Unlock()

	if !ok {
		return false
	}
	c.ch.DetachPublisher()
	m.registry.Release(id)
	return true
}

// List returns the state of every canvas sorted by id.
func (m *Manager) List() []State {
	m.mu.Lock()
	canvases := make([]*Canvas, 0, len(m.canvases))
	for _, c := range m.canvases {
		canvases = append(canvases, c)
	}
	m.mu.Unlock()

	out := make([]State, 0, len(canvases))
	for _, c := range canvases {
		out = append(out, c.State())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
