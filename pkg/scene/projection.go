package scene

import "sort"

// Projection is a node mapped to viewport coordinates.
type Projection struct {
	Node   *Node
	X, Y   float64 // viewport units, origin top-left
	Depth  float64 // distance along the view axis
	Radius float64 // on-screen primary radius, viewport units
	Front  bool    // on the camera-facing hemisphere of the globe
}

// Project maps every visible node into a width×height viewport, dropping
// nodes behind the camera or outside the frustum. The result is ordered far
// to near so later entries paint over earlier ones.
func (c *Context) Project(width, height float64) []Projection {
	if c.disposed || width <= 0 || height <= 0 {
		return nil
	}
	cam := c.camera
	targetDepth := r3Dist(cam.Eye, cam.Target)

	out := make([]Projection, 0, c.registry.Len())
	for _, n := range c.registry.Nodes() {
		if !n.Primary.Visible {
			continue
		}
		nx, ny, depth, ok := cam.Project(n.Position())
		if !ok {
			continue
		}
		units := cam.WorldUnitsPerNDC(depth)
		out = append(out, Projection{
			Node:   n,
			X:      (nx + 1) / 2 * width,
			Y:      (1 - ny) / 2 * height,
			Depth:  depth,
			Radius: n.Primary.BoundingRadius() / units * height / 2,
			Front:  depth <= targetDepth,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Depth != out[j].Depth {
			return out[i].Depth > out[j].Depth
		}
		return out[i].Node.ID() < out[j].Node.ID()
	})
	return out
}
