// If you are AI: This file implements the playback pool, a fixed set of slots with one active slot.
// Slots not playing sit in an idle FIFO; the oldest binding is reused first.

package playback

import (
	"log/slog"
	"strconv"

	"animage/internal/core/overlay"
	"animage/internal/core/sched"
	"animage/internal/core/session"
)

// DefaultCapacity is the slot count used when New is given a non-positive capacity.
const DefaultCapacity = 2

// Options carries the runtime policy shared by every slot in a pool.
type Options struct {
	// PlayOnce stops playback after a single pass regardless of loop count.
	PlayOnce func() bool
	// ShowTimingStats attaches a timing overlay when playback starts.
	ShowTimingStats func() bool
	// Logger receives slot lifecycle events. Nil discards them.
	Logger *slog.Logger
}

func (o *Options) playOnce() bool {
	return o.PlayOnce != nil && o.PlayOnce()
}

func (o *Options) showTimingStats() bool {
	return o.ShowTimingStats != nil && o.ShowTimingStats()
}

// SlotInfo is a point-in-time view of one slot.
type SlotInfo struct {
	ID             string  `json:"id"`
	State          string  `json:"state"`
	Surface        string  `json:"surface,omitempty"`
	Source         string  `json:"source,omitempty"`
	Session        string  `json:"session,omitempty"`
	Width          int     `json:"width,omitempty"`
	Height         int     `json:"height,omitempty"`
	Frames         int     `json:"frames,omitempty"`
	LoopsRemaining int     `json:"loops_remaining"`
	Presented      int     `json:"presented"`
	NextDue        float64 `json:"next_due"`
	Active         bool    `json:"active"`
}

// Pool keeps every slot either in the idle FIFO or in the active position, never both.
// Lock expectations: every method runs on the loop goroutine.
type Pool struct {
	loop   *sched.Loop
	opts   *Options
	logger *slog.Logger
	slots  []*Slot
	idle   []*Slot
	active *Slot
}

// New creates a pool of capacity slots, all idle.
func New(loop *sched.Loop, capacity int, opts Options) *Pool {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	opts.Logger = opts.Logger.With("component", "pool")

	p := &Pool{
		loop:   loop,
		opts:   &opts,
		logger: opts.Logger,
		slots:  make([]*Slot, 0, capacity),
		idle:   make([]*Slot, 0, capacity),
	}
	for i := 0; i < capacity; i++ {
		s := newSlot(strconv.Itoa(i+1), loop, p.opts)
		s.stopper = p.Stop
		p.slots = append(p.slots, s)
		p.idle = append(p.idle, s)
	}
	return p
}

// Capacity returns the number of slots.
func (p *Pool) Capacity() int { return len(p.slots) }

// Active returns the playing slot, nil if none.
func (p *Pool) Active() *Slot { return p.active }

// Slots returns every slot in creation order.
func (p *Pool) Slots() []*Slot { return p.slots }

// IdleOrder returns the slot ids in idle FIFO order, oldest first.
func (p *Pool) IdleOrder() []string {
	ids := make([]string, len(p.idle))
	for i, s := range p.idle {
		ids[i] = s.id
	}
	return ids
}

// Enable binds surface and sess to a slot, preferring the oldest idle slot and
// reclaiming the active slot when every slot is playing.
// When the pair is already bound the offered session is destroyed and the existing slot returned.
func (p *Pool) Enable(surface Surface, sourceID string, sess *session.Session) *Slot {
	if existing := p.findBound(surface.ID(), sourceID); existing != nil {
		sess.Destroy()
		p.logger.Debug("pair already bound", "slot", existing.id, "surface", surface.ID())
		return existing
	}

	var slot *Slot
	if len(p.idle) > 0 {
		slot = p.popIdle()
		p.pushIdle(slot)
	} else {
		slot = p.active
		p.Stop(slot)
	}

	if !slot.Enable(surface, sourceID, sess) {
		sess.Destroy()
	}
	return slot
}

// Play makes slot the only playing slot, stopping whichever slot was active.
func (p *Pool) Play(slot *Slot) error {
	if slot.State() == StateIdle {
		return ErrSlotNotEnabled
	}
	if slot == p.active && slot.State() == StatePlaying {
		return nil
	}
	if p.active != nil && p.active != slot {
		p.Stop(p.active)
	}

	p.removeIdle(slot)
	p.active = slot
	if err := slot.Play(); err != nil {
		p.active = nil
		p.pushIdle(slot)
		p.logger.Warn("play failed", "slot", slot.id, "error", err)
		return err
	}
	return nil
}

// Stop halts slot and returns it to the back of the idle FIFO if it was active.
func (p *Pool) Stop(slot *Slot) {
	slot.Stop()
	if slot == p.active {
		p.active = nil
		p.pushIdle(slot)
	}
}

// Disable stops slot and releases its binding. The slot keeps its idle FIFO position.
func (p *Pool) Disable(slot *Slot) bool {
	p.Stop(slot)
	return slot.Disable()
}

// SlotFor returns the slot bound to surfaceID, preferring the active slot; nil if none.
func (p *Pool) SlotFor(surfaceID string) *Slot {
	if p.active != nil && p.active.surface != nil && p.active.surface.ID() == surfaceID {
		return p.active
	}
	for _, s := range p.idle {
		if s.surface != nil && s.surface.ID() == surfaceID {
			return s
		}
	}
	return nil
}

// AttachTimingOverlay installs a timing overlay on slot if it is playing.
func (p *Pool) AttachTimingOverlay(slot *Slot, t *overlay.Timing) {
	if slot.State() == StatePlaying {
		slot.AttachTiming(t)
	}
}

// Snapshot reports every slot in creation order.
func (p *Pool) Snapshot() []SlotInfo {
	out := make([]SlotInfo, 0, len(p.slots))
	for _, s := range p.slots {
		info := SlotInfo{
			ID:             s.id,
			State:          s.state.String(),
			Source:         s.sourceID,
			LoopsRemaining: s.loops,
			Presented:      s.presented,
			NextDue:        s.next,
			Active:         s == p.active,
		}
		if s.surface != nil {
			info.Surface = s.surface.ID()
		}
		if s.session != nil {
			info.Session = s.session.ID()
			info.Width = s.session.Width()
			info.Height = s.session.Height()
			info.Frames = s.session.FrameCount()
		}
		out = append(out, info)
	}
	return out
}

// DisableAll releases every binding.
func (p *Pool) DisableAll() {
	for _, s := range p.slots {
		p.Disable(s)
	}
}

func (p *Pool) findBound(surfaceID, sourceID string) *Slot {
	for _, s := range p.slots {
		if s.Bound(surfaceID, sourceID) {
			return s
		}
	}
	return nil
}

func (p *Pool) popIdle() *Slot {
	s := p.idle[0]
	copy(p.idle, p.idle[1:])
	p.idle[len(p.idle)-1] = nil
	p.idle = p.idle[:len(p.idle)-1]
	return s
}

func (p *Pool) pushIdle(s *Slot) {
	p.idle = append(p.idle, s)
}

func (p *Pool) removeIdle(s *Slot) {
	for i, q := range p.idle {
		if q == s {
			copy(p.idle[i:], p.idle[i+1:])
			p.idle[len(p.idle)-1] = nil
			p.idle = p.idle[:len(p.idle)-1]
			return
		}
	}
}
