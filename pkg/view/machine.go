package view

import (
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/vanderheijden86/keymatrix/pkg/debug"
	"github.com/vanderheijden86/keymatrix/pkg/model"
	"github.com/vanderheijden86/keymatrix/pkg/pick"
	"github.com/vanderheijden86/keymatrix/pkg/scene"
	"github.com/vanderheijden86/keymatrix/pkg/tween"
)

// Machine is the view-mode state machine. It owns no nodes; it mutates the
// scene only through tweens on engine and through direct highlight writes
// while in Global mode.
type Machine struct {
	ctx    *scene.Context
	engine *tween.Engine

	mode     Mode
	deadline time.Time
	focus    *scene.Node
	radial   []*scene.Node

	hovered     *scene.Node
	externalID  int
	hasExternal bool

	onClick func(model.Keyword)
}

// NewMachine returns a machine in Global mode.
func NewMachine(ctx *scene.Context, engine *tween.Engine) *Machine {
	return &Machine{ctx: ctx, engine: engine, mode: Global}
}

// Mode returns the current state.
func (m *Machine) Mode() Mode { return m.mode }

// Deadline returns when the running transition ends. Zero outside transitions.
func (m *Machine) Deadline() time.Time {
	if !m.mode.Transitioning() {
		return time.Time{}
	}
	return m.deadline
}

// Focus returns the focused node while a focus transition runs or holds.
func (m *Machine) Focus() (*scene.Node, bool) { return m.focus, m.focus != nil }

// Radial returns the nodes placed on the radial circle, in slot order.
func (m *Machine) Radial() []*scene.Node { return m.radial }

// AutoRotate reports whether the globe should orbit this frame.
func (m *Machine) AutoRotate() bool { return m.mode == Global }

// OnKeywordClick registers a callback fired for every accepted selection.
func (m *Machine) OnKeywordClick(fn func(model.Keyword)) { m.onClick = fn }

// HandleEvent applies a pointer event from the router.
func (m *Machine) HandleEvent(e pick.Event) {
	switch ev := e.(type) {
	case pick.HoverEvent:
		m.Hover(ev.Keyword.ID)
	case pick.HoverCleared:
		m.ClearHover()
	case pick.SelectEvent:
		m.Select(ev.Keyword.ID)
	case pick.DeselectEvent:
		m.Deselect()
	}
}

// Select handles a click on keyword id. Selections arriving during a
// transition are dropped and leave the state and tween set untouched.
// It reports whether the selection was accepted.
func (m *Machine) Select(id int) bool {
	n, ok := m.ctx.Registry().Get(id)
	if !ok {
		debug.Log("view: select of unknown keyword %d", id)
		return false
	}
	switch m.mode {
	case Global:
		m.clearHighlights()
		m.startFocus(n)
	case Focused:
		if n == m.focus {
			m.startGlobal()
		} else {
			m.startFocus(n)
		}
	default:
		debug.Log("view: select %d dropped while %s", id, m.mode)
		return false
	}
	if m.onClick != nil {
		m.onClick(*n.Keyword)
	}
	return true
}

// Deselect handles a click on empty space and reports whether it was accepted.
func (m *Machine) Deselect() bool {
	switch m.mode {
	case Global:
		m.hasExternal = false
		m.hovered = nil
		m.clearHighlights()
	case Focused:
		m.startGlobal()
	default:
		debug.Log("view: deselect dropped while %s", m.mode)
		return false
	}
	return true
}

// Tick ends the running transition once its deadline has passed.
func (m *Machine) Tick(now time.Time) {
	if !m.mode.Transitioning() || now.Before(m.deadline) {
		return
	}
	switch m.mode {
	case TransitioningToFocused:
		m.mode = Focused
	case TransitioningToGlobal:
		m.mode = Global
		m.applyHighlights()
	}
	debug.Log("view: transition complete, now %s", m.mode)
}

// Reset returns to Global without animating, e.g. after the scene reloaded.
// A pending external selection is kept and re-applied by keyword ID.
func (m *Machine) Reset() {
	m.engine.CancelAll()
	m.mode = Global
	m.focus = nil
	m.radial = nil
	m.hovered = nil
	m.deadline = time.Time{}
	m.applyHighlights()
}

func (m *Machine) startFocus(center *scene.Node) {
	m.engine.CancelAll()
	m.mode = TransitioningToFocused
	m.deadline = m.engine.Now().Add(TransitionDeadline)
	m.focus = center
	m.hovered = nil

	reg := m.ctx.Registry()
	m.radial = make([]*scene.Node, 0, len(center.Connections))
	inRadial := make(map[int]bool, len(center.Connections))
	for _, kw := range center.Connections {
		if n, ok := reg.Get(kw.ID); ok {
			m.radial = append(m.radial, n)
			inRadial[kw.ID] = true
		}
	}
	count := len(m.radial)
	debug.Log("view: focus %d %q with %d connections", center.ID(), center.Keyword.Name, count)

	e := m.engine
	e.StartPosition(center, r3.Vec{}, moveDuration, 0)
	e.StartColor(center, focusColor, colorDuration, 0)
	e.StartOpacity(center, scene.NodeOpacity, fadeDuration, 0)

	for i, n := range m.radial {
		delay := time.Duration(i) * radialStagger
		e.StartPosition(n, RadialPosition(i, count), moveDuration, delay)
		e.StartColor(n, radialColor, colorDuration, delay)
		e.StartOpacity(n, scene.NodeOpacity, fadeDuration, delay)
	}

	for _, n := range reg.Nodes() {
		if n == center || inRadial[n.ID()] {
			continue
		}
		e.StartPosition(n, backgroundPosition(n.OriginalPosition), fadeDuration, fadeDelay)
		e.StartColor(n, n.OriginalColor, colorDuration, fadeDelay)
		e.StartOpacity(n, backgroundAlpha, fadeDuration, fadeDelay)
	}

	cam := m.ctx.Camera()
	e.StartPosition(cam, r3.Vec{X: 0.2, Y: 0.1, Z: FocusCameraDistance(count)}, cameraDuration, 0)
	e.StartPosition(cam.LookAt(), r3.Vec{}, cameraDuration, 0)
}

func (m *Machine) startGlobal() {
	m.engine.CancelAll()
	m.mode = TransitioningToGlobal
	m.deadline = m.engine.Now().Add(TransitionDeadline)
	m.focus = nil
	m.radial = nil
	debug.Log("view: returning to global")

	e := m.engine
	for _, n := range m.ctx.Registry().Nodes() {
		e.StartPosition(n, n.OriginalPosition, moveDuration, 0)
		e.StartColor(n, n.OriginalColor, colorDuration, 0)
		e.StartOpacity(n, n.OriginalOpacity, fadeDuration, 0)
	}
	cam := m.ctx.Camera()
	e.StartPosition(cam, m.ctx.HomeCamera(), cameraDuration, 0)
	e.StartPosition(cam.LookAt(), r3.Vec{}, cameraDuration, 0)
}
