package tween

import (
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/vanderheijden86/keymatrix/pkg/metrics"
)

// Handle identifies a tween started by an Engine. The zero Handle is never issued.
type Handle uint64

// Clock returns the current time. Tests inject a fake one.
type Clock func() time.Time

type slot struct {
	handle Handle
	tween  Tween
}

// Engine owns the active tweens. It is not safe for concurrent use; the frame
// loop is its only caller.
type Engine struct {
	clock  Clock
	last   Handle
	active []slot
}

// NewEngine returns an engine reading time from clock (time.Now when nil).
func NewEngine(clock Clock) *Engine {
	if clock == nil {
		clock = time.Now
	}
	return &Engine{clock: clock}
}

// Now returns the engine's current time.
func (e *Engine) Now() time.Time { return e.clock() }

func (e *Engine) schedule(duration, delay time.Duration) timing {
	return timing{start: e.clock().Add(delay), duration: duration}
}

func (e *Engine) add(t Tween) Handle {
	e.last++
	e.active = append(e.active, slot{handle: e.last, tween: t})
	return e.last
}

// StartPosition moves target to `to`. The start value is read now, so a tween
// started over a moving target picks up from its current interpolated value.
func (e *Engine) StartPosition(target PositionTarget, to r3.Vec, duration, delay time.Duration) Handle {
	return e.add(&positionTween{
		timing: e.schedule(duration, delay),
		target: target,
		from:   target.Position(),
		to:     to,
	})
}

// StartColor blends target's color to `to` channel by channel.
func (e *Engine) StartColor(target ColorTarget, to colorful.Color, duration, delay time.Duration) Handle {
	return e.add(&colorTween{
		timing: e.schedule(duration, delay),
		target: target,
		from:   target.Color(),
		to:     to,
	})
}

// StartOpacity fades target's opacity to `to`.
func (e *Engine) StartOpacity(target OpacityTarget, to float64, duration, delay time.Duration) Handle {
	return e.add(&opacityTween{
		timing: e.schedule(duration, delay),
		target: target,
		from:   target.Opacity(),
		to:     to,
	})
}

// Lookup returns the active tween for h.
func (e *Engine) Lookup(h Handle) (Tween, bool) {
	for _, s := range e.active {
		if s.handle == h {
			return s.tween, true
		}
	}
	return nil, false
}

// Cancel stops and removes the tween for h. It returns false if h is not active.
func (e *Engine) Cancel(h Handle) bool {
	for i, s := range e.active {
		if s.handle == h {
			s.tween.Cancel()
			e.active = append(e.active[:i], e.active[i+1:]...)
			return true
		}
	}
	return false
}

// CancelAll stops every active tween and returns how many there were.
func (e *Engine) CancelAll() int {
	n := len(e.active)
	for _, s := range e.active {
		s.tween.Cancel()
	}
	e.active = e.active[:0]
	return n
}

// StepAll advances every active tween to now and drops the completed ones.
// It returns the number still active.
func (e *Engine) StepAll(now time.Time) int {
	defer metrics.Timer(metrics.TweenStep)()
	kept := e.active[:0]
	for _, s := range e.active {
		switch s.tween.Step(now) {
		case Finished, Canceled:
		default:
			kept = append(kept, s)
		}
	}
	// Clear the tail so dropped tweens can be collected.
	for i := len(kept); i < len(e.active); i++ {
		e.active[i] = slot{}
	}
	e.active = kept
	return len(e.active)
}

// Active returns the number of tweens still running or waiting.
func (e *Engine) Active() int { return len(e.active) }
