// Package pick resolves pointer positions to keyword nodes by casting a ray
// from the scene camera and intersecting it with each node's bounding sphere.
package pick

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/vanderheijden86/keymatrix/pkg/metrics"
	"github.com/vanderheijden86/keymatrix/pkg/scene"
)

// tieEpsilon is the distance below which two hits count as equally near.
const tieEpsilon = 1e-9

// Index is the key to node map used for hit resolution. Rebuild it whenever
// the registry is reloaded.
type Index struct {
	byID  map[int]*scene.Node
	nodes []*scene.Node
}

// NewIndex builds an index over reg. A nil registry yields an empty index.
func NewIndex(reg *scene.Registry) *Index {
	ix := &Index{}
	ix.Rebuild(reg)
	return ix
}

// Rebuild replaces the index contents with reg's nodes.
func (ix *Index) Rebuild(reg *scene.Registry) {
	ix.byID = make(map[int]*scene.Node)
	ix.nodes = nil
	if reg == nil {
		return
	}
	for _, n := range reg.Nodes() {
		ix.byID[n.ID()] = n
		ix.nodes = append(ix.nodes, n)
	}
}

// Get returns the node for a keyword ID.
func (ix *Index) Get(id int) (*scene.Node, bool) {
	n, ok := ix.byID[id]
	return n, ok
}

// Len returns the number of indexed nodes.
func (ix *Index) Len() int { return len(ix.nodes) }

// Candidates returns the visible nodes in registry order.
func (ix *Index) Candidates() []*scene.Node {
	out := make([]*scene.Node, 0, len(ix.nodes))
	for _, n := range ix.nodes {
		if n.Primary.Visible {
			out = append(out, n)
		}
	}
	return out
}

// IntersectSphere returns the distance along a unit-direction ray to the
// nearest positive intersection with the sphere (center, radius).
func IntersectSphere(origin, dir, center r3.Vec, radius float64) (float64, bool) {
	oc := r3.Sub(origin, center)
	b := r3.Dot(dir, oc)
	c := r3.Dot(oc, oc) - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	if t := -b - sq; t > 0 {
		return t, true
	}
	// Origin inside the sphere.
	if t := -b + sq; t > 0 {
		return t, true
	}
	return 0, false
}

// Picker casts rays from a camera into an Index.
type Picker struct {
	Camera *scene.Camera
	Index  *Index
	// MinRadius widens every node's hit sphere to at least this radius.
	// Terminal cells are much coarser than a node, so the UI sets it from
	// the world size of one cell.
	MinRadius float64
}

// Pick returns the nearest node hit by the ray through (ndcX, ndcY).
// Equal distances resolve to the lower keyword ID.
func (p *Picker) Pick(ndcX, ndcY float64) (*scene.Node, bool) {
	defer metrics.Timer(metrics.PickRay)()
	if p.Camera == nil || p.Index == nil {
		return nil, false
	}
	origin, dir := p.Camera.Ray(ndcX, ndcY)

	var best *scene.Node
	bestT := math.Inf(1)
	for _, n := range p.Index.Candidates() {
		r := math.Max(n.Primary.BoundingRadius(), p.MinRadius)
		t, ok := IntersectSphere(origin, dir, n.Position(), r)
		if !ok {
			continue
		}
		switch {
		case t < bestT-tieEpsilon:
			best, bestT = n, t
		case math.Abs(t-bestT) <= tieEpsilon && n.ID() < best.ID():
			best, bestT = n, t
		}
	}
	return best, best != nil
}

// ToNDC maps a cell coordinate in a width×height viewport to normalized
// device coordinates, sampling the cell center. Screen y grows downward,
// NDC y grows upward.
func ToNDC(x, y, width, height int) (float64, float64) {
	if width <= 0 || height <= 0 {
		return 0, 0
	}
	nx := (float64(x)+0.5)/float64(width)*2 - 1
	ny := 1 - (float64(y)+0.5)/float64(height)*2
	return nx, ny
}

// FromNDC is the inverse of ToNDC, returning the containing cell.
func FromNDC(nx, ny float64, width, height int) (int, int) {
	x := int(math.Floor((nx + 1) / 2 * float64(width)))
	y := int(math.Floor((1 - ny) / 2 * float64(height)))
	return x, y
}
