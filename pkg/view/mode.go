// Package view switches the globe between the global sphere layout and the
// focused radial layout of one keyword and its connections.
//
// The Machine is driven by selection events and by Tick from the frame loop.
// Transitions are scheduled as tweens on a shared tween.Engine and end on a
// fixed deadline rather than by polling the individual tweens.
package view

import (
	"math"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/vanderheijden86/keymatrix/pkg/palette"
)

// Mode is the current view state.
type Mode int

const (
	Global Mode = iota
	TransitioningToFocused
	Focused
	TransitioningToGlobal
)

func (m Mode) String() string {
	switch m {
	case Global:
		return "global"
	case TransitioningToFocused:
		return "transitioning-to-focused"
	case Focused:
		return "focused"
	case TransitioningToGlobal:
		return "transitioning-to-global"
	default:
		return "unknown"
	}
}

// Transitioning reports whether m is one of the two transition states.
func (m Mode) Transitioning() bool {
	return m == TransitioningToFocused || m == TransitioningToGlobal
}

// Transition timings and geometry.
const (
	TransitionDeadline = 1500 * time.Millisecond

	moveDuration   = 1200 * time.Millisecond
	colorDuration  = 1000 * time.Millisecond
	fadeDuration   = 1000 * time.Millisecond
	cameraDuration = 1500 * time.Millisecond

	radialStagger = 100 * time.Millisecond
	fadeDelay     = 200 * time.Millisecond

	radialBase       = 3.5
	radialMinGrowth  = 0.5
	radialPerNode    = 0.1
	backgroundShrink = 0.3
	backgroundPush   = 5.0
	backgroundAlpha  = 0.1

	highlightScale = 1.5
)

var (
	focusColor     = palette.MustParse(palette.FocusCenter)
	radialColor    = palette.MustParse(palette.RadialNeighbor)
	hoverColor     = palette.MustParse(palette.Hover)
	connectedColor = palette.MustParse(palette.ConnectedHighlight)
)

// RadialRadius is the circle radius used for count connected keywords.
func RadialRadius(count int) float64 {
	growth := radialPerNode * float64(count)
	if growth < radialMinGrowth {
		growth = radialMinGrowth
	}
	return radialBase + growth
}

// RadialPosition is the slot i of count on the radial circle in the XY plane.
func RadialPosition(i, count int) r3.Vec {
	if count <= 0 {
		return r3.Vec{}
	}
	r := RadialRadius(count)
	angle := 2 * math.Pi * float64(i) / float64(count)
	return r3.Vec{X: r * math.Cos(angle), Y: r * math.Sin(angle)}
}

// FocusCameraDistance frames count connected keywords; more means farther.
func FocusCameraDistance(count int) float64 {
	switch {
	case count > 10:
		return 12
	case count > 5:
		return 10
	default:
		return 8
	}
}

// backgroundPosition pushes an unconnected node toward the axis and away
// from the camera.
func backgroundPosition(p r3.Vec) r3.Vec {
	return r3.Vec{X: p.X * backgroundShrink, Y: p.Y * backgroundShrink, Z: p.Z - backgroundPush}
}
