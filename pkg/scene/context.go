package scene

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/vanderheijden86/keymatrix/pkg/debug"
	"github.com/vanderheijden86/keymatrix/pkg/layout"
	"github.com/vanderheijden86/keymatrix/pkg/model"
	"github.com/vanderheijden86/keymatrix/pkg/palette"
)

// ErrDisposed is returned by operations on a disposed Context.
var ErrDisposed = errors.New("scene: context disposed")

// Defaults used when Options leaves a field zero.
const (
	DefaultRadius         = 3.2
	DefaultCameraDistance = 8.0
	DefaultFOV            = 75.0
	DefaultMaxConnections = 8
)

// Options configures a Context.
type Options struct {
	Radius         float64
	CameraDistance float64
	FOV            float64
	MaxConnections int
}

func (o Options) withDefaults() Options {
	if o.Radius <= 0 {
		o.Radius = DefaultRadius
	}
	if o.CameraDistance <= 0 {
		o.CameraDistance = DefaultCameraDistance
	}
	if o.FOV <= 0 || o.FOV >= 180 {
		o.FOV = DefaultFOV
	}
	if o.MaxConnections <= 0 {
		o.MaxConnections = DefaultMaxConnections
	}
	return o
}

// Context owns everything that gets drawn: the keyword copies, the node
// registry and the camera. Create one with NewContext and release it with
// Dispose; nothing in the scene lives at package level.
type Context struct {
	opts     Options
	keywords []model.Keyword
	registry *Registry
	camera   *Camera
	disposed bool
}

// NewContext returns an empty scene.
func NewContext(opts Options) *Context {
	opts = opts.withDefaults()
	return &Context{
		opts:     opts,
		registry: NewRegistry(),
		camera:   NewCamera(opts.CameraDistance, opts.FOV),
	}
}

// Options returns the effective options.
func (c *Context) Options() Options { return c.opts }

// Load replaces the scene with one node per keyword at the matching position.
// The keywords are copied so the nodes can reference stable records.
func (c *Context) Load(keywords []model.Keyword, positions []r3.Vec) error {
	if c.disposed {
		return ErrDisposed
	}
	if len(keywords) != len(positions) {
		return fmt.Errorf("scene: %d keywords but %d positions", len(keywords), len(positions))
	}

	kws := make([]model.Keyword, len(keywords))
	copy(kws, keywords)

	// The previous keywords and registry stay in place if any node is rejected.
	reg := NewRegistry()
	for i := range kws {
		kw := &kws[i]
		hex := kw.Color
		if hex == "" {
			hex = palette.CategoryColor(kw.Subcategory)
		}
		node := NewNode(kw, positions[i], palette.Parse(hex))
		node.Connections = Connections(kw, kws, c.opts.MaxConnections)
		if err := reg.Add(node); err != nil {
			return err
		}
	}
	c.keywords = kws
	c.registry = reg
	debug.Log("scene: loaded %d nodes", reg.Len())
	return nil
}

// LoadLayout lays keywords out with preset on the configured radius and
// loads the result.
func (c *Context) LoadLayout(keywords []model.Keyword, preset layout.Preset, seed int64) error {
	return c.Load(keywords, layout.Place(preset, keywords, c.opts.Radius, seed))
}

// Keywords returns the scene's keyword records.
func (c *Context) Keywords() []model.Keyword { return c.keywords }

// Registry returns the node registry.
func (c *Context) Registry() *Registry { return c.registry }

// Camera returns the scene camera.
func (c *Context) Camera() *Camera { return c.camera }

// HomeCamera is the camera eye used by the global view.
func (c *Context) HomeCamera() r3.Vec {
	return r3.Vec{Z: c.opts.CameraDistance}
}

// Resize updates the camera aspect ratio. Safe to call any number of times.
func (c *Context) Resize(width, height float64) {
	if c.disposed {
		return
	}
	c.camera.SetAspect(width, height)
}

// Dispose releases the nodes. The context cannot be reloaded afterwards.
func (c *Context) Dispose() {
	if c.disposed {
		return
	}
	c.registry.Reset()
	c.keywords = nil
	c.disposed = true
	debug.Log("scene: disposed")
}

// Disposed reports whether Dispose has been called.
func (c *Context) Disposed() bool { return c.disposed }
