package pick

import (
	"time"

	"github.com/vanderheijden86/keymatrix/pkg/debug"
	"github.com/vanderheijden86/keymatrix/pkg/model"
	"github.com/vanderheijden86/keymatrix/pkg/scene"
)

// DefaultHoverThrottle is the minimum interval between processed pointer moves.
const DefaultHoverThrottle = 75 * time.Millisecond

// Event is delivered to the router's handler.
type Event interface{ event() }

// HoverEvent reports that the pointer entered a node.
type HoverEvent struct{ Keyword *model.Keyword }

// HoverCleared reports that the pointer left the hovered node.
type HoverCleared struct{}

// SelectEvent reports a click on a node.
type SelectEvent struct{ Keyword *model.Keyword }

// DeselectEvent reports a click on empty space.
type DeselectEvent struct{}

func (HoverEvent) event()    {}
func (HoverCleared) event()  {}
func (SelectEvent) event()   {}
func (DeselectEvent) event() {}

// Handler receives router events.
type Handler func(Event)

type pointerSample struct {
	x, y float64
}

// Router turns pointer input into hover and selection events. Moves are
// throttled; a move that arrives too early is kept and applied by Flush.
type Router struct {
	picker   *Picker
	throttle time.Duration
	handler  Handler

	lastMove time.Time
	pending  *pointerSample
	hovered  *scene.Node
}

// NewRouter returns a router using picker. A non-positive throttle uses
// DefaultHoverThrottle.
func NewRouter(picker *Picker, throttle time.Duration) *Router {
	if throttle <= 0 {
		throttle = DefaultHoverThrottle
	}
	return &Router{picker: picker, throttle: throttle}
}

// OnEvent registers the event handler, replacing any previous one.
func (r *Router) OnEvent(h Handler) { r.handler = h }

// Picker returns the router's picker.
func (r *Router) Picker() *Picker { return r.picker }

// Hovered returns the currently hovered node.
func (r *Router) Hovered() (*scene.Node, bool) { return r.hovered, r.hovered != nil }

// PointerMove records a pointer position in NDC. It is processed now if the
// throttle interval has elapsed, otherwise deferred to Flush.
func (r *Router) PointerMove(ndcX, ndcY float64, now time.Time) {
	if !r.lastMove.IsZero() && now.Sub(r.lastMove) < r.throttle {
		r.pending = &pointerSample{x: ndcX, y: ndcY}
		return
	}
	r.pending = nil
	r.lastMove = now
	r.hover(ndcX, ndcY)
}

// Flush applies a deferred pointer move once the throttle interval allows.
// The frame loop calls it once per tick.
func (r *Router) Flush(now time.Time) {
	if r.pending == nil || now.Sub(r.lastMove) < r.throttle {
		return
	}
	s := r.pending
	r.pending = nil
	r.lastMove = now
	r.hover(s.x, s.y)
}

func (r *Router) hover(x, y float64) {
	n, ok := r.picker.Pick(x, y)
	if !ok {
		if r.hovered != nil {
			r.hovered = nil
			r.emit(HoverCleared{})
		}
		return
	}
	if n == r.hovered {
		return
	}
	r.hovered = n
	r.emit(HoverEvent{Keyword: n.Keyword})
}

// Click resolves a click at an NDC point into a select or deselect event.
func (r *Router) Click(ndcX, ndcY float64) {
	if n, ok := r.picker.Pick(ndcX, ndcY); ok {
		debug.Log("pick: click on keyword %d %q", n.ID(), n.Keyword.Name)
		r.emit(SelectEvent{Keyword: n.Keyword})
		return
	}
	r.emit(DeselectEvent{})
}

// Reset forgets hover and pending state, e.g. after the scene was reloaded.
func (r *Router) Reset() {
	r.hovered = nil
	r.pending = nil
	r.lastMove = time.Time{}
}

// ForgetHover drops the hovered node without emitting HoverCleared, so the
// next pointer sample over that node reports it again.
func (r *Router) ForgetHover() { r.hovered = nil }

func (r *Router) emit(e Event) {
	if r.handler != nil {
		r.handler(e)
	}
}
