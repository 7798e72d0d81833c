// Package tween interpolates node and camera attributes over time.
//
// An Engine owns every running tween and is stepped once per frame from the
// frame loop. It never blocks and performs no I/O.
package tween

import (
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r3"
)

// State is the outcome of a Step.
type State int

const (
	// Waiting means the tween's delay has not elapsed; nothing was written.
	Waiting State = iota
	// Running means an intermediate value was written.
	Running
	// Finished means the end value was written and the tween is complete.
	Finished
	// Canceled means the tween was stopped before completion.
	Canceled
)

func (s State) String() string {
	switch s {
	case Waiting:
		return "waiting"
	case Running:
		return "running"
	case Finished:
		return "finished"
	case Canceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Tween is a single time-bounded interpolation. The set of implementations is
// closed: position, color and opacity tweens created by an Engine.
type Tween interface {
	// Step writes the value for time now and reports the resulting state.
	Step(now time.Time) State
	// Cancel stops the tween, leaving the target at its last written value.
	Cancel()
	// Done reports whether the tween finished or was canceled.
	Done() bool
	// Progress returns the most recent eased progress in [0, 1].
	Progress() float64

	sealed()
}

// PositionTarget is anything with a movable position.
type PositionTarget interface {
	Position() r3.Vec
	SetPosition(r3.Vec)
}

// ColorTarget is anything with a settable color.
type ColorTarget interface {
	Color() colorful.Color
	SetColor(colorful.Color)
}

// OpacityTarget is anything with a settable opacity.
type OpacityTarget interface {
	Opacity() float64
	SetOpacity(float64)
}

// EaseOutQuad is the easing used by every tween: 1 - (1-p)^2.
func EaseOutQuad(p float64) float64 {
	return 1 - (1-p)*(1-p)
}

// timing is the schedule shared by all tween kinds.
type timing struct {
	start    time.Time
	duration time.Duration
	eased    float64
	state    State
}

// advance computes the linear progress for now. ok is false while waiting.
func (t *timing) advance(now time.Time) (p float64, ok bool) {
	if now.Before(t.start) {
		return 0, false
	}
	if t.duration <= 0 {
		return 1, true
	}
	p = float64(now.Sub(t.start)) / float64(t.duration)
	if p > 1 {
		p = 1
	}
	if p < 0 {
		p = 0
	}
	return p, true
}

func (t *timing) step(now time.Time, write func(eased float64, final bool)) State {
	if t.state == Finished || t.state == Canceled {
		return t.state
	}
	p, ok := t.advance(now)
	if !ok {
		t.state = Waiting
		return Waiting
	}
	if p >= 1 {
		t.eased = 1
		write(1, true)
		t.state = Finished
		return Finished
	}
	t.eased = EaseOutQuad(p)
	write(t.eased, false)
	t.state = Running
	return Running
}

func (t *timing) Cancel() {
	if t.state != Finished {
		t.state = Canceled
	}
}

func (t *timing) Done() bool        { return t.state == Finished || t.state == Canceled }
func (t *timing) Progress() float64 { return t.eased }
func (t *timing) sealed()           {}

type positionTween struct {
	timing
	target   PositionTarget
	from, to r3.Vec
}

func (pt *positionTween) Step(now time.Time) State {
	return pt.timing.step(now, func(e float64, final bool) {
		if final {
			pt.target.SetPosition(pt.to)
			return
		}
		pt.target.SetPosition(r3.Add(pt.from, r3.Scale(e, r3.Sub(pt.to, pt.from))))
	})
}

type colorTween struct {
	timing
	target   ColorTarget
	from, to colorful.Color
}

func (ct *colorTween) Step(now time.Time) State {
	return ct.timing.step(now, func(e float64, final bool) {
		if final {
			ct.target.SetColor(ct.to)
			return
		}
		ct.target.SetColor(ct.from.BlendRgb(ct.to, e))
	})
}

type opacityTween struct {
	timing
	target   OpacityTarget
	from, to float64
}

func (ot *opacityTween) Step(now time.Time) State {
	return ot.timing.step(now, func(e float64, final bool) {
		if final {
			ot.target.SetOpacity(ot.to)
			return
		}
		ot.target.SetOpacity(ot.from + (ot.to-ot.from)*e)
	})
}
