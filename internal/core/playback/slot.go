// If you are AI: This file implements the playback slot, one binding of surface plus decode session.
// Decode of frame N+1 runs as a deferred task while frame N is on screen.

package playback

import (
	"errors"
	"image"
	"log/slog"

	"animage/internal/core/overlay"
	"animage/internal/core/sched"
	"animage/internal/core/session"
)

// ErrSlotNotEnabled is returned when playing a slot that has nothing bound.
var ErrSlotNotEnabled = errors.New("slot not enabled")

// State is the lifecycle state of a slot.
type State uint8

const (
	// StateIdle means no surface or session is bound.
	StateIdle State = iota
	// StateEnabled means a surface and session are bound but no frames are scheduled.
	StateEnabled
	// StatePlaying means frames are being decoded and presented.
	StatePlaying
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEnabled:
		return "enabled"
	case StatePlaying:
		return "playing"
	default:
		return "unknown"
	}
}

// Slot owns at most one surface/session pair and drives its animation on the loop.
// Lock expectations: every method runs on the loop goroutine.
// Allocation: the presentation buffer is reused across frames and rebinds of equal size.
type Slot struct {
	id     string
	loop   *sched.Loop
	opts   *Options
	logger *slog.Logger

	// stopper routes transitions out of Playing through the owning pool.
	stopper func(*Slot)

	state    State
	surface  Surface
	sourceID string
	session  *session.Session
	frame    *image.RGBA

	loops     int
	next      float64
	anchored  bool
	pending   *sched.Task
	frameReq  *sched.FrameRequest
	token     *sched.Token
	decodeErr error
	timing    *overlay.Timing

	presented int
	lastIndex int
}

func newSlot(id string, loop *sched.Loop, opts *Options) *Slot {
	return &Slot{
		id:        id,
		loop:      loop,
		opts:      opts,
		logger:    opts.Logger.With("slot", id),
		lastIndex: -1,
	}
}

// ID returns the slot identifier.
func (s *Slot) ID() string { return s.id }

// State returns the lifecycle state.
func (s *Slot) State() State { return s.state }

// Surface returns the bound surface, nil when idle.
func (s *Slot) Surface() Surface { return s.surface }

// SourceID returns the bound source locator, empty when idle.
func (s *Slot) SourceID() string { return s.sourceID }

// Session returns the bound decode session, nil when idle.
func (s *Slot) Session() *session.Session { return s.session }

// LoopsRemaining returns the remaining pass counter of the current playback.
// Zero or negative values at the start of playback mean infinite.
func (s *Slot) LoopsRemaining() int { return s.loops }

// NextTimestamp returns the refresh timestamp at which the next frame is due.
func (s *Slot) NextTimestamp() float64 { return s.next }

// Presented returns the number of frames presented since the slot was bound.
func (s *Slot) Presented() int { return s.presented }

// LastIndex returns the index of the last presented frame, -1 if none.
func (s *Slot) LastIndex() int { return s.lastIndex }

// Frame returns the presentation buffer, nil when idle.
func (s *Slot) Frame() *image.RGBA { return s.frame }

// Bound reports whether the slot holds exactly this surface and source.
func (s *Slot) Bound(surfaceID, sourceID string) bool {
	return s.surface != nil && s.surface.ID() == surfaceID && s.sourceID == sourceID
}

// Enable binds surface and sess after releasing any previous binding.
// Returns false without touching anything when the same pair is already bound;
// in that case the caller keeps ownership of sess.
func (s *Slot) Enable(surface Surface, sourceID string, sess *session.Session) bool {
	if s.Bound(surface.ID(), sourceID) {
		return false
	}
	s.Disable()

	s.surface = surface
	s.sourceID = sourceID
	s.session = sess
	s.state = StateEnabled
	s.presented = 0
	s.lastIndex = -1

	w, h := sess.Width(), sess.Height()
	if s.frame == nil || s.frame.Rect.Dx() != w || s.frame.Rect.Dy() != h {
		s.frame = image.NewRGBA(image.Rect(0, 0, w, h))
	}

	surface.SetCanvasSize(w, h)
	surface.SetEnabled(true)
	surface.ShowControl(true)

	s.logger.Debug("slot enabled", "surface", surface.ID(), "source", sourceID,
		"session", sess.ID(), "frames", sess.FrameCount(), "loops", sess.LoopCount())
	return true
}

// Play starts frame scheduling. Playing an already playing slot is a no-op.
// Callers should go through Pool.Play so that only one slot plays at a time.
func (s *Slot) Play() error {
	switch s.state {
	case StateIdle:
		return ErrSlotNotEnabled
	case StatePlaying:
		return nil
	}

	if err := s.session.Rewind(); err != nil {
		return err
	}

	s.state = StatePlaying
	s.token = sched.NewToken()
	s.loops = s.session.LoopCount()
	s.next = 0
	s.anchored = false
	s.decodeErr = nil
	if s.opts.showTimingStats() {
		s.timing = overlay.ForCanvas(s.session.Width(), s.session.Height())
	}

	tok := s.token
	s.pending = s.prepareNextFrame(tok)
	s.pending.Then(func() {
		if tok.Live() {
			s.frameReq = s.loop.RequestFrame(s.animate(tok))
		}
	})

	s.logger.Debug("slot playing", "loops", s.loops)
	return nil
}

// Stop cancels scheduled work and returns to Enabled. Stopping a non-playing slot is a no-op.
func (s *Slot) Stop() {
	if s.state != StatePlaying {
		return
	}
	s.token.Cancel()
	s.loop.Cancel(s.pending)
	s.loop.CancelFrame(s.frameReq)
	s.pending = nil
	s.frameReq = nil
	s.timing = nil
	s.state = StateEnabled

	s.surface.MarkAnimating(false)
	s.surface.MarkDrawn(false)
	s.logger.Debug("slot stopped", "presented", s.presented)
}

// Disable stops playback, destroys the session exactly once and returns to Idle.
// Returns false if the slot was already idle.
func (s *Slot) Disable() bool {
	if s.state == StateIdle {
		return false
	}
	if s.state == StatePlaying {
		s.requestStop()
	}

	s.surface.ShowControl(false)
	s.surface.SetEnabled(false)
	s.session.Destroy()

	s.logger.Debug("slot disabled", "surface", s.surface.ID(), "session", s.session.ID())
	s.surface = nil
	s.sourceID = ""
	s.session = nil
	s.state = StateIdle
	return true
}

// AttachTiming installs a timing overlay on a playing slot.
func (s *Slot) AttachTiming(t *overlay.Timing) {
	s.timing = t
}

// requestStop leaves Playing through the pool so its bookkeeping stays consistent.
func (s *Slot) requestStop() {
	if s.stopper != nil {
		s.stopper(s)
		return
	}
	s.Stop()
}

// prepareNextFrame defers decoding of the next frame into the presentation buffer.
func (s *Slot) prepareNextFrame(tok *sched.Token) *sched.Task {
	sess := s.session
	return s.loop.Defer(func() {
		if !tok.Live() {
			return
		}
		if err := sess.DecodeNextFrame(); err != nil {
			s.decodeErr = err
			return
		}
		copy(s.frame.Pix, sess.FramePixels())
	})
}

// animate returns the refresh callback bound to one playback run.
func (s *Slot) animate(tok *sched.Token) func(ts float64) {
	var fn func(ts float64)
	fn = func(ts float64) {
		if !tok.Live() {
			return
		}
		if s.anchored && ts < s.next {
			s.frameReq = s.loop.RequestFrame(fn)
			return
		}
		if !s.anchored {
			s.next = ts
			s.anchored = true
		}
		s.pending.Then(func() { s.present(tok, ts, fn) })
	}
	return fn
}

// present shows the decoded frame and schedules the next one.
func (s *Slot) present(tok *sched.Token, ts float64, again func(ts float64)) {
	if !tok.Live() {
		return
	}
	if s.decodeErr != nil {
		s.logger.Warn("decode failed, stopping", "error", s.decodeErr)
		s.requestStop()
		return
	}

	sess := s.session
	duration := float64(sess.FrameDuration())
	s.surface.Present(s.frame)
	s.presented++
	s.lastIndex = sess.FrameIndex()

	if sess.IsLastFrame() {
		if s.opts.playOnce() {
			s.requestStop()
			return
		}
		s.loops--
		if s.loops == 0 {
			s.requestStop()
			return
		}
	}

	s.surface.MarkAnimating(true)
	s.surface.MarkDrawn(true)

	s.pending = s.prepareNextFrame(tok)

	if s.timing != nil {
		lateness := s.loop.Now() - s.next
		if lateness < 0 {
			lateness = 0
		}
		s.timing.Update(lateness)
		s.surface.DrawOverlay(s.timing.Image(), s.timing.Origin())
	}

	s.next = NextDue(s.next, duration, ts)
	s.frameReq = s.loop.RequestFrame(again)
}

// NextDue advances a schedule by one frame duration.
// A schedule that has fallen behind the refresh timestamp restarts at ts.
func NextDue(next, duration, ts float64) float64 {
	next += duration
	if next <= ts {
		return ts
	}
	return next
}
