package scene

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

var worldUp = r3.Vec{Y: 1}

// Camera is a perspective camera looking from Eye at Target.
type Camera struct {
	Eye    r3.Vec
	Target r3.Vec
	FOV    float64 // vertical field of view, degrees
	Aspect float64 // width / height
	Near   float64
	Far    float64
}

// NewCamera places a camera on the +Z axis looking at the origin.
func NewCamera(distance, fov float64) *Camera {
	return &Camera{
		Eye:    r3.Vec{Z: distance},
		FOV:    fov,
		Aspect: 1,
		Near:   0.1,
		Far:    1000,
	}
}

// SetAspect updates the aspect ratio from a viewport size. Zero sizes are
// ignored so repeated or early resize events are harmless.
func (c *Camera) SetAspect(width, height float64) {
	if width <= 0 || height <= 0 {
		return
	}
	c.Aspect = width / height
}

// Position returns the eye position.
func (c *Camera) Position() r3.Vec { return c.Eye }

// SetPosition moves the eye.
func (c *Camera) SetPosition(p r3.Vec) { c.Eye = p }

// LookAt returns a handle that moves the camera target.
func (c *Camera) LookAt() VecRef { return VecRef{V: &c.Target} }

// Basis returns the camera's forward, right and up unit vectors.
func (c *Camera) Basis() (forward, right, up r3.Vec) {
	forward = r3.Unit(r3.Sub(c.Target, c.Eye))
	right = r3.Cross(forward, worldUp)
	if r3.Norm(right) < 1e-12 {
		// Looking straight up or down; pick any perpendicular.
		right = r3.Vec{X: 1}
	}
	right = r3.Unit(right)
	up = r3.Cross(right, forward)
	return forward, right, up
}

// tanHalfFOV returns tan(fov/2).
func (c *Camera) tanHalfFOV() float64 {
	return math.Tan(c.FOV * math.Pi / 360)
}

// Project maps a world point to normalized device coordinates. depth is the
// distance along the view axis. ok is false when the point is behind the
// near plane, beyond the far plane, or outside the view frustum.
func (c *Camera) Project(p r3.Vec) (ndcX, ndcY, depth float64, ok bool) {
	forward, right, up := c.Basis()
	v := r3.Sub(p, c.Eye)
	depth = r3.Dot(v, forward)
	if depth <= c.Near || depth > c.Far {
		return 0, 0, depth, false
	}
	t := c.tanHalfFOV()
	ndcX = r3.Dot(v, right) / (depth * t * c.Aspect)
	ndcY = r3.Dot(v, up) / (depth * t)
	ok = ndcX >= -1 && ndcX <= 1 && ndcY >= -1 && ndcY <= 1
	return ndcX, ndcY, depth, ok
}

// Ray returns the origin and unit direction of the ray through an NDC point.
func (c *Camera) Ray(ndcX, ndcY float64) (origin, dir r3.Vec) {
	forward, right, up := c.Basis()
	t := c.tanHalfFOV()
	dir = r3.Add(forward, r3.Add(
		r3.Scale(ndcX*t*c.Aspect, right),
		r3.Scale(ndcY*t, up),
	))
	return c.Eye, r3.Unit(dir)
}

// WorldUnitsPerNDC returns how many world units one NDC unit spans
// vertically at the given depth.
func (c *Camera) WorldUnitsPerNDC(depth float64) float64 {
	return depth * c.tanHalfFOV()
}

// Orbit rotates the eye around the target about the world Y axis.
func (c *Camera) Orbit(angle float64) {
	rel := r3.Sub(c.Eye, c.Target)
	c.Eye = r3.Add(c.Target, r3.Rotate(rel, angle, worldUp))
}

// VecRef adapts a bare vector to a position target.
type VecRef struct{ V *r3.Vec }

// Position returns the referenced vector.
func (r VecRef) Position() r3.Vec { return *r.V }

// SetPosition overwrites the referenced vector.
func (r VecRef) SetPosition(p r3.Vec) { *r.V = p }

func r3Dist(a, b r3.Vec) float64 { return r3.Norm(r3.Sub(a, b)) }
