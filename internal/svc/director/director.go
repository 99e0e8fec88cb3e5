// If you are AI: This file implements the Director, which turns surface focus and activation
// events into pool operations. Fetching and decoding run off the loop; commits run on it.

package director

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"animage/internal/core/codec"
	"animage/internal/core/format"
	"animage/internal/core/playback"
	"animage/internal/core/sched"
	"animage/internal/core/session"
)

// ErrStaleRequest marks a focus result that lost to a newer focus.
var ErrStaleRequest = errors.New("stale focus request")

// ErrUnknownSurface is returned when no slot is bound to the surface.
var ErrUnknownSurface = errors.New("no slot bound to surface")

// Outcome classifies the result of a focus request.
type Outcome string

// Outcomes other than OutcomeEnabled leave the pool unchanged, except that a different
// source previously bound to the surface has been released.
const (
	OutcomeEnabled      Outcome = "enabled"
	OutcomeAlreadyBound Outcome = "already_bound"
	OutcomeSkipped      Outcome = "skipped"
	OutcomeStale        Outcome = "stale"
	OutcomeUnsupported  Outcome = "unsupported"
	OutcomeNotAnimated  Outcome = "not_animated"
)

// Result describes what a focus request did.
type Result struct {
	Outcome Outcome `json:"outcome"`
	Slot    string  `json:"slot,omitempty"`
	Format  string  `json:"format,omitempty"`
	Frames  int     `json:"frames,omitempty"`
}

// Settings are the runtime toggles.
type Settings struct {
	Debug            bool `json:"debug" yaml:"debug" toml:"debug"`
	PlayOnce         bool `json:"play_once" yaml:"play_once" toml:"play_once"`
	ProcessAllImages bool `json:"process_all_images" yaml:"process_all_images" toml:"process_all_images"`
	ShowTimingStats  bool `json:"show_timing_stats" yaml:"show_timing_stats" toml:"show_timing_stats"`
}

// Fetcher resolves a locator to encoded bytes.
type Fetcher interface {
	Fetch(ctx context.Context, locator string) ([]byte, error)
}

// SurfaceFunc returns the surface for a host element id, creating it if needed.
type SurfaceFunc func(id string) playback.Surface

// Options configures a Director.
type Options struct {
	Capacity int
	Settings Settings
	// OnSettings is called after every settings change, from the caller's goroutine.
	OnSettings func(Settings)
	Logger     *slog.Logger
}

// Director owns the pool and serialises every pool operation onto the loop.
// Lock expectations: exported methods are safe from any goroutine except the loop's own.
type Director struct {
	loop     *sched.Loop
	pool     *playback.Pool
	engines  *codec.Registry
	fetcher  Fetcher
	surfaces SurfaceFunc
	logger   *slog.Logger

	settings   atomic.Pointer[Settings]
	onSettings func(Settings)

	// focusSeq counts focus requests; only touched on the loop goroutine.
	// A request whose sequence is no longer current is stale.
	focusSeq uint64
}

// New creates a director and its pool.
func New(loop *sched.Loop, engines *codec.Registry, fetcher Fetcher, surfaces SurfaceFunc, opts Options) *Director {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	d := &Director{
		loop:       loop,
		engines:    engines,
		fetcher:    fetcher,
		surfaces:   surfaces,
		logger:     logger.With("component", "director"),
		onSettings: opts.OnSettings,
	}
	initial := opts.Settings
	d.settings.Store(&initial)

	d.pool = playback.New(loop, opts.Capacity, playback.Options{
		PlayOnce:        func() bool { return d.Settings().PlayOnce },
		ShowTimingStats: func() bool { return d.Settings().ShowTimingStats },
		Logger:          logger,
	})
	return d
}

// Settings returns the current runtime settings.
func (d *Director) Settings() Settings {
	return *d.settings.Load()
}

// SetSettings replaces the runtime settings.
func (d *Director) SetSettings(s Settings) {
	d.settings.Store(&s)
	d.logger.Info("settings updated", "debug", s.Debug, "play_once", s.PlayOnce,
		"process_all_images", s.ProcessAllImages, "show_timing_stats", s.ShowTimingStats)
	if d.onSettings != nil {
		d.onSettings(s)
	}
}

// Focus handles a pointer entering surfaceID showing src.
// Transport and codec failures are returned as errors; every other result is an Outcome.
func (d *Director) Focus(ctx context.Context, surfaceID, src string) (Result, error) {
	settings := d.Settings()

	var (
		early *Result
		seq   uint64
	)
	err := d.loop.Do(ctx, func() {
		d.focusSeq++
		seq = d.focusSeq
		if slot := d.pool.SlotFor(surfaceID); slot != nil {
			if slot.SourceID() == src {
				early = &Result{Outcome: OutcomeAlreadyBound, Slot: slot.ID()}
				return
			}
			d.pool.Disable(slot)
		}
		if _, ok := format.DetectLocator(src); !ok && !settings.ProcessAllImages {
			early = &Result{Outcome: OutcomeSkipped}
		}
	})
	if err != nil {
		return Result{}, err
	}
	if early != nil {
		return *early, nil
	}

	log := d.logger.With("surface", surfaceID, "source", src)
	log.Debug("processing")

	data, err := d.fetcher.Fetch(ctx, src)
	if err != nil {
		log.Warn("fetch failed", "error", err)
		return Result{}, err
	}

	var stale bool
	if err := d.loop.Do(ctx, func() { stale = d.focusSeq != seq }); err != nil {
		return Result{}, err
	}
	if stale {
		log.Debug("discarding result", "error", ErrStaleRequest)
		return Result{Outcome: OutcomeStale}, nil
	}

	tag, ok := format.DetectBytes(data)
	if !ok {
		log.Debug("unsupported image format")
		return Result{Outcome: OutcomeUnsupported}, nil
	}
	engine, err := d.engines.Lookup(tag)
	if err != nil {
		log.Debug("no engine for format", "format", tag, "error", err)
		return Result{Outcome: OutcomeUnsupported, Format: tag.String()}, nil
	}
	sess, err := session.New(tag, data, engine)
	if err != nil {
		log.Warn("decoder init failed", "error", err)
		return Result{}, err
	}
	log.Debug("decoded", "format", tag, "frames", sess.FrameCount(), "session", sess.ID())

	res := Result{Format: tag.String(), Frames: sess.FrameCount()}
	err = d.loop.Do(ctx, func() {
		if sess.FrameCount() <= 1 {
			res.Outcome = OutcomeNotAnimated
			sess.Destroy()
			return
		}
		if d.focusSeq != seq {
			res.Outcome = OutcomeStale
			sess.Destroy()
			return
		}
		slot := d.pool.Enable(d.surfaces(surfaceID), src, sess)
		res.Outcome = OutcomeEnabled
		res.Slot = slot.ID()
	})
	if err != nil {
		// The loop never ran the commit, so the session is still ours.
		sess.Destroy()
		return Result{}, err
	}
	if res.Outcome == OutcomeStale {
		log.Debug("discarding result", "error", ErrStaleRequest)
	}
	return res, nil
}

// Activate toggles playback of the slot bound to surfaceID, like clicking its control.
// Returns the resulting slot state.
func (d *Director) Activate(ctx context.Context, surfaceID string) (playback.State, error) {
	return d.withSlot(ctx, surfaceID, func(slot *playback.Slot) error {
		if slot.State() == playback.StatePlaying {
			d.pool.Stop(slot)
			return nil
		}
		return d.pool.Play(slot)
	})
}

// Play starts the slot bound to surfaceID.
func (d *Director) Play(ctx context.Context, surfaceID string) (playback.State, error) {
	return d.withSlot(ctx, surfaceID, d.pool.Play)
}

// Stop halts the slot bound to surfaceID.
func (d *Director) Stop(ctx context.Context, surfaceID string) (playback.State, error) {
	return d.withSlot(ctx, surfaceID, func(slot *playback.Slot) error {
		d.pool.Stop(slot)
		return nil
	})
}

// Disable releases the slot bound to surfaceID.
func (d *Director) Disable(ctx context.Context, surfaceID string) (playback.State, error) {
	return d.withSlot(ctx, surfaceID, func(slot *playback.Slot) error {
		d.pool.Disable(slot)
		return nil
	})
}

// Blur hides the control of the slot bound to surfaceID, like the pointer leaving the image.
func (d *Director) Blur(ctx context.Context, surfaceID string) error {
	err := d.loop.Do(ctx, func() {
		if slot := d.pool.SlotFor(surfaceID); slot != nil {
			slot.Surface().ShowControl(false)
		}
	})
	return err
}

// Hidden stops whatever is playing, as when the page loses visibility.
// Returns the id of the stopped slot, empty if nothing was playing.
func (d *Director) Hidden(ctx context.Context) (string, error) {
	var stopped string
	err := d.loop.Do(ctx, func() {
		if active := d.pool.Active(); active != nil {
			stopped = active.ID()
			d.pool.Stop(active)
		}
	})
	return stopped, err
}

// OutOfView stops the slot bound to surfaceID if it is playing.
func (d *Director) OutOfView(ctx context.Context, surfaceID string) (playback.State, error) {
	return d.Stop(ctx, surfaceID)
}

// Snapshot returns the pool view.
func (d *Director) Snapshot(ctx context.Context) ([]playback.SlotInfo, error) {
	var out []playback.SlotInfo
	err := d.loop.Do(ctx, func() { out = d.pool.Snapshot() })
	return out, err
}

// Shutdown disables every slot, destroying all sessions.
func (d *Director) Shutdown(ctx context.Context) error {
	return d.loop.Do(ctx, d.pool.DisableAll)
}

// Capacity returns the pool size.
func (d *Director) Capacity() int {
	return d.pool.Capacity()
}

func (d *Director) withSlot(ctx context.Context, surfaceID string, fn func(*playback.Slot) error) (playback.State, error) {
	var (
		state playback.State
		opErr error
		bound bool
	)
	err := d.loop.Do(ctx, func() {
		slot := d.pool.SlotFor(surfaceID)
		if slot == nil {
			return
		}
		bound = true
		opErr = fn(slot)
		state = slot.State()
	})
	if err != nil {
		return state, err
	}
	if !bound {
		return state, fmt.Errorf("%w: %s", ErrUnknownSurface, surfaceID)
	}
	return state, opErr
}
