// Package scene holds the renderable state of the keyword globe: one Node per
// keyword, the camera, and the Context that owns both.
package scene

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/vanderheijden86/keymatrix/pkg/model"
)

// Appearance defaults for freshly laid out nodes.
const (
	NodeRadius  = 0.05
	GlowRadius  = 0.08
	NodeOpacity = 0.9
	GlowOpacity = 0.3
)

// Mesh is one drawable sphere.
type Mesh struct {
	Position r3.Vec
	Color    colorful.Color
	Opacity  float64
	Scale    float64
	Radius   float64
	Visible  bool
}

// BoundingRadius is the radius used for hit testing.
func (m *Mesh) BoundingRadius() float64 {
	return m.Radius * m.Scale
}

// Label is the text attached to a node.
type Label struct {
	Text     string
	Position r3.Vec
	Visible  bool
}

// Node is the renderable copy of a keyword. It points back at the canonical
// record without owning it; transitions only ever touch the meshes.
type Node struct {
	Keyword *model.Keyword
	Primary *Mesh
	Glow    *Mesh
	Label   *Label

	OriginalPosition r3.Vec
	OriginalColor    colorful.Color
	OriginalOpacity  float64

	// Connections is the capped related-keyword set used by the radial view.
	Connections []*model.Keyword
}

// NewNode builds a node at pos with the given base color.
func NewNode(kw *model.Keyword, pos r3.Vec, color colorful.Color) *Node {
	return &Node{
		Keyword: kw,
		Primary: &Mesh{Position: pos, Color: color, Opacity: NodeOpacity, Scale: 1, Radius: NodeRadius, Visible: true},
		Glow:    &Mesh{Position: pos, Color: color, Opacity: GlowOpacity, Scale: 1, Radius: GlowRadius, Visible: true},
		Label:   &Label{Text: kw.Name, Position: pos, Visible: true},

		OriginalPosition: pos,
		OriginalColor:    color,
		OriginalOpacity:  NodeOpacity,
	}
}

// ID returns the keyword ID the node renders.
func (n *Node) ID() int { return n.Keyword.ID }

// Position returns the primary mesh position.
func (n *Node) Position() r3.Vec { return n.Primary.Position }

// SetPosition moves the primary mesh and keeps glow and label on top of it.
func (n *Node) SetPosition(p r3.Vec) {
	n.Primary.Position = p
	if n.Glow != nil {
		n.Glow.Position = p
	}
	if n.Label != nil {
		n.Label.Position = p
	}
}

// Color returns the primary mesh color.
func (n *Node) Color() colorful.Color { return n.Primary.Color }

// SetColor recolors the primary mesh and its glow.
func (n *Node) SetColor(c colorful.Color) {
	n.Primary.Color = c
	if n.Glow != nil {
		n.Glow.Color = c
	}
}

// Opacity returns the primary mesh opacity.
func (n *Node) Opacity() float64 { return n.Primary.Opacity }

// SetOpacity changes the primary opacity; the glow follows at 30%.
func (n *Node) SetOpacity(o float64) {
	n.Primary.Opacity = o
	if n.Glow != nil {
		n.Glow.Opacity = o * GlowOpacity
	}
}

// SetScale scales the primary mesh and glow together.
func (n *Node) SetScale(s float64) {
	n.Primary.Scale = s
	if n.Glow != nil {
		n.Glow.Scale = s
	}
}

// RestoreAppearance resets color, opacity and scale to the laid-out values.
// Position is left alone; moving back is the job of a tween.
func (n *Node) RestoreAppearance() {
	n.SetColor(n.OriginalColor)
	n.SetOpacity(n.OriginalOpacity)
	n.SetScale(1)
}

// Registry maps keyword IDs to nodes and remembers insertion order.
type Registry struct {
	nodes []*Node
	byID  map[int]*Node
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[int]*Node)}
}

// Add registers a node. Keyword IDs must be unique.
func (r *Registry) Add(n *Node) error {
	if n == nil || n.Keyword == nil {
		return fmt.Errorf("scene: node without keyword")
	}
	if _, dup := r.byID[n.ID()]; dup {
		return fmt.Errorf("scene: duplicate keyword id %d", n.ID())
	}
	r.nodes = append(r.nodes, n)
	r.byID[n.ID()] = n
	return nil
}

// Get returns the node for a keyword ID.
func (r *Registry) Get(id int) (*Node, bool) {
	n, ok := r.byID[id]
	return n, ok
}

// Nodes returns all nodes in insertion order. The slice must not be modified.
func (r *Registry) Nodes() []*Node { return r.nodes }

// Len returns the number of nodes.
func (r *Registry) Len() int { return len(r.nodes) }

// Reset drops every node.
func (r *Registry) Reset() {
	r.nodes = nil
	r.byID = make(map[int]*Node)
}

// Connections returns up to max keywords sharing k's category or subcategory,
// excluding k itself, in the order they appear in all. max <= 0 means no cap.
func Connections(k *model.Keyword, all []model.Keyword, max int) []*model.Keyword {
	var out []*model.Keyword
	for i := range all {
		other := &all[i]
		if other.ID == k.ID {
			continue
		}
		if other.Category != k.Category && other.Subcategory != k.Subcategory {
			continue
		}
		out = append(out, other)
		if max > 0 && len(out) == max {
			break
		}
	}
	return out
}
