package ui

import (
	"math"
	"sort"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/vanderheijden86/keymatrix/pkg/scene"
)

// Node glyphs by level of detail.
const (
	glyphFront = '●'
	glyphBack  = '·'
	glyphFocus = '◉'
)

const (
	// Projections use a virtual viewport two units tall per cell row, since
	// terminal cells are roughly twice as tall as they are wide.
	cellAspect = 2.0
	// maxLabelWidth caps a label in cells, ellipsis included.
	maxLabelWidth = 18
	// labelMinOpacity hides labels of faded background nodes.
	labelMinOpacity = 0.3
	// backDim darkens far-side nodes to suggest depth.
	backDim = 0.45
)

var black = colorful.Color{}

// highlight marks nodes that always get a label and a bold glyph.
type highlight struct {
	focus    int
	hover    int
	selected int
}

func (h highlight) has(id int) bool {
	return id != 0 && (id == h.focus || id == h.hover || id == h.selected)
}

// drawGlobe paints projections (ordered far to near) onto cv. Labels go to the
// maxLabels nearest legible nodes plus every highlighted node.
func drawGlobe(cv *Canvas, projs []scene.Projection, hl highlight, maxLabels int) {
	cv.Clear()
	for _, p := range projs {
		x, y := cellOf(p)
		n := p.Node
		glyph := glyphBack
		if p.Front {
			glyph = glyphFront
		}
		if n.ID() == hl.focus {
			glyph = glyphFocus
		}
		cv.Set(x, y, glyph, nodeHex(n, p.Front), hl.has(n.ID()) || n.Primary.Scale > 1)
	}

	for _, p := range labelled(projs, hl, maxLabels) {
		x, y := cellOf(p)
		text := truncateRunesHelper(p.Node.Label.Text, min(maxLabelWidth, cv.w-x-2), "…")
		cv.Text(x+2, y, text, nodeHex(p.Node, true), hl.has(p.Node.ID()))
	}
}

func cellOf(p scene.Projection) (int, int) {
	return int(math.Floor(p.X)), int(math.Floor(p.Y / cellAspect))
}

// nodeHex folds opacity into the color, since terminals have no alpha.
func nodeHex(n *scene.Node, front bool) string {
	fade := 1 - n.Opacity()
	if !front {
		fade = 1 - n.Opacity()*(1-backDim)
	}
	return n.Color().BlendRgb(black, clamp01(fade)).Clamped().Hex()
}

// labelled picks the projections that get a label, returned far to near so
// nearer labels paint over farther ones.
func labelled(projs []scene.Projection, hl highlight, maxLabels int) []scene.Projection {
	near := make([]scene.Projection, 0, len(projs))
	for _, p := range projs {
		if !p.Node.Label.Visible {
			continue
		}
		if hl.has(p.Node.ID()) || p.Node.Opacity() >= labelMinOpacity {
			near = append(near, p)
		}
	}
	sort.SliceStable(near, func(i, j int) bool { return near[i].Depth < near[j].Depth })

	var out []scene.Projection
	budget := maxLabels
	for _, p := range near {
		switch {
		case hl.has(p.Node.ID()):
			out = append(out, p)
		case budget > 0:
			out = append(out, p)
			budget--
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Depth > out[j].Depth })
	return out
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
