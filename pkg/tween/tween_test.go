package tween

import (
	"math"
	"testing"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r3"
	"pgregory.net/rapid"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time           { return c.now }
func (c *fakeClock) Advance(d time.Duration)  { c.now = c.now.Add(d) }
func newFakeClock() *fakeClock                { return &fakeClock{now: time.Unix(1_700_000_000, 0)} }

type point struct {
	pos     r3.Vec
	col     colorful.Color
	opacity float64
	writes  int
}

func (p *point) Position() r3.Vec          { return p.pos }
func (p *point) SetPosition(v r3.Vec)      { p.pos = v; p.writes++ }
func (p *point) Color() colorful.Color     { return p.col }
func (p *point) SetColor(c colorful.Color) { p.col = c; p.writes++ }
func (p *point) Opacity() float64          { return p.opacity }
func (p *point) SetOpacity(o float64)      { p.opacity = o; p.writes++ }

func TestEaseOutQuad(t *testing.T) {
	cases := map[float64]float64{0: 0, 0.5: 0.75, 1: 1}
	for in, want := range cases {
		if got := EaseOutQuad(in); got != want {
			t.Errorf("EaseOutQuad(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestPositionTweenLifecycle(t *testing.T) {
	clk := newFakeClock()
	e := NewEngine(clk.Now)
	p := &point{}
	end := r3.Vec{X: 10, Y: -4, Z: 2}
	h := e.StartPosition(p, end, time.Second, 200*time.Millisecond)

	// Before the delay elapses nothing is written.
	clk.Advance(100 * time.Millisecond)
	if n := e.StepAll(clk.Now()); n != 1 {
		t.Fatalf("active = %d, want 1", n)
	}
	if p.writes != 0 {
		t.Fatalf("tween wrote before its start time")
	}

	clk.Advance(600 * time.Millisecond) // half way
	e.StepAll(clk.Now())
	if math.Abs(p.pos.X-7.5) > 1e-9 {
		t.Errorf("x at half time = %v, want 7.5", p.pos.X)
	}
	tw, ok := e.Lookup(h)
	if !ok || math.Abs(tw.Progress()-0.75) > 1e-9 {
		t.Errorf("progress = %v, want 0.75", tw.Progress())
	}

	clk.Advance(time.Second)
	if n := e.StepAll(clk.Now()); n != 0 {
		t.Fatalf("active = %d after completion, want 0", n)
	}
	if p.pos != end {
		t.Errorf("final position = %+v, want exactly %+v", p.pos, end)
	}
	if !tw.Done() {
		t.Error("finished tween should report Done")
	}
}

func TestZeroDurationCompletesImmediately(t *testing.T) {
	clk := newFakeClock()
	e := NewEngine(clk.Now)
	p := &point{opacity: 0.9}
	e.StartOpacity(p, 0.1, 0, 0)
	if n := e.StepAll(clk.Now()); n != 0 {
		t.Fatalf("active = %d, want 0", n)
	}
	if p.opacity != 0.1 {
		t.Errorf("opacity = %v, want 0.1", p.opacity)
	}
}

func TestCancelKeepsLastValue(t *testing.T) {
	clk := newFakeClock()
	e := NewEngine(clk.Now)
	p := &point{opacity: 1}
	h := e.StartOpacity(p, 0, time.Second, 0)
	clk.Advance(500 * time.Millisecond)
	e.StepAll(clk.Now())
	mid := p.opacity

	if !e.Cancel(h) {
		t.Fatal("cancel of active handle returned false")
	}
	if e.Cancel(h) {
		t.Error("second cancel should return false")
	}
	if e.Active() != 0 {
		t.Errorf("active = %d after cancel", e.Active())
	}
	clk.Advance(time.Second)
	e.StepAll(clk.Now())
	if p.opacity != mid {
		t.Errorf("canceled tween kept writing: %v != %v", p.opacity, mid)
	}
}

func TestCancelAll(t *testing.T) {
	clk := newFakeClock()
	e := NewEngine(clk.Now)
	p := &point{}
	e.StartPosition(p, r3.Vec{X: 1}, time.Second, 0)
	e.StartOpacity(p, 1, time.Second, 0)
	e.StartColor(p, colorful.Color{R: 1}, time.Second, time.Second)
	if n := e.CancelAll(); n != 3 {
		t.Errorf("CancelAll = %d, want 3", n)
	}
	if e.Active() != 0 {
		t.Error("expected no active tweens")
	}
}

func TestColorTweenBlendsChannels(t *testing.T) {
	clk := newFakeClock()
	e := NewEngine(clk.Now)
	p := &point{col: colorful.Color{}}
	white := colorful.Color{R: 1, G: 1, B: 1}
	e.StartColor(p, white, time.Second, 0)
	clk.Advance(500 * time.Millisecond)
	e.StepAll(clk.Now())
	for _, ch := range []float64{p.col.R, p.col.G, p.col.B} {
		if math.Abs(ch-0.75) > 1e-9 {
			t.Errorf("channel = %v, want 0.75", ch)
		}
	}
	clk.Advance(time.Second)
	e.StepAll(clk.Now())
	if p.col != white {
		t.Errorf("final color = %+v", p.col)
	}
}

func TestRetargetStartsFromCurrentValue(t *testing.T) {
	clk := newFakeClock()
	e := NewEngine(clk.Now)
	p := &point{}
	h := e.StartPosition(p, r3.Vec{X: 4}, time.Second, 0)
	clk.Advance(500 * time.Millisecond)
	e.StepAll(clk.Now())
	e.Cancel(h)
	e.StartPosition(p, r3.Vec{}, time.Second, 0)
	clk.Advance(time.Nanosecond)
	e.StepAll(clk.Now())
	if p.pos.X < 2.9 || p.pos.X > 3 {
		t.Errorf("retargeted tween jumped: x = %v", p.pos.X)
	}
}

func TestProgressMonotoneAndBounded(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		clk := newFakeClock()
		e := NewEngine(clk.Now)
		p := &point{}
		dur := time.Duration(rapid.Int64Range(1, int64(5*time.Second)).Draw(t, "dur"))
		delay := time.Duration(rapid.Int64Range(0, int64(time.Second)).Draw(t, "delay"))
		h := e.StartOpacity(p, 1, dur, delay)
		tw, _ := e.Lookup(h)

		steps := rapid.IntRange(1, 40).Draw(t, "steps")
		last := 0.0
		for i := 0; i < steps; i++ {
			clk.Advance(time.Duration(rapid.Int64Range(0, int64(300*time.Millisecond)).Draw(t, "dt")))
			e.StepAll(clk.Now())
			got := tw.Progress()
			if got < 0 || got > 1 {
				t.Fatalf("progress %v out of range", got)
			}
			if got < last {
				t.Fatalf("progress went backwards: %v -> %v", last, got)
			}
			last = got
		}

		clk.Advance(dur + delay)
		e.StepAll(clk.Now())
		if tw.Progress() != 1 || p.opacity != 1 {
			t.Fatalf("after start+duration progress=%v opacity=%v", tw.Progress(), p.opacity)
		}
		if e.Active() != 0 {
			t.Fatalf("finished tween still active")
		}
	})
}

func TestStateString(t *testing.T) {
	if Finished.String() != "finished" || State(42).String() != "unknown" {
		t.Error("unexpected State strings")
	}
}
