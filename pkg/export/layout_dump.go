package export

import (
	"io"
	"time"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/keymatrix/pkg/layout"
	"github.com/vanderheijden86/keymatrix/pkg/model"
	"github.com/vanderheijden86/keymatrix/pkg/scene"
)

// LayoutNode is one keyword in a layout dump.
type LayoutNode struct {
	ID          int        `json:"id"`
	Name        string     `json:"name"`
	Subcategory string     `json:"subcategory"`
	Color       string     `json:"color"`
	Position    model.Vec3 `json:"position"`
}

// LayoutDump is the machine-readable globe layout.
type LayoutDump struct {
	GeneratedAt time.Time    `json:"generated_at"`
	Source      model.Source `json:"source"`
	Preset      string       `json:"preset"`
	Radius      float64      `json:"radius"`
	Count       int          `json:"count"`
	Nodes       []LayoutNode `json:"nodes"`
}

// NewLayoutDump captures the laid-out (original) positions of every node.
func NewLayoutDump(ctx *scene.Context, preset layout.Preset, source model.Source, now time.Time) LayoutDump {
	nodes := ctx.Registry().Nodes()
	d := LayoutDump{
		GeneratedAt: now.UTC(),
		Source:      source,
		Preset:      string(preset),
		Radius:      ctx.Options().Radius,
		Count:       len(nodes),
		Nodes:       make([]LayoutNode, 0, len(nodes)),
	}
	for _, n := range nodes {
		d.Nodes = append(d.Nodes, LayoutNode{
			ID:          n.ID(),
			Name:        n.Keyword.Name,
			Subcategory: n.Keyword.Subcategory,
			Color:       n.OriginalColor.Hex(),
			Position:    layout.ToVec3(n.OriginalPosition),
		})
	}
	return d
}

// WriteLayoutJSON writes d as indented JSON.
func WriteLayoutJSON(w io.Writer, d LayoutDump) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}
