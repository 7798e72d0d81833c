package ui

import (
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/vanderheijden86/keymatrix/pkg/layout"
	"github.com/vanderheijden86/keymatrix/pkg/model"
	"github.com/vanderheijden86/keymatrix/pkg/palette"
	"github.com/vanderheijden86/keymatrix/pkg/scene"
)

func testKeywords() []model.Keyword {
	return []model.Keyword{
		{ID: 1, Name: "creativity", Category: "A", Subcategory: "A-1", Status: model.StatusActive},
		{ID: 2, Name: "logic", Category: "A", Subcategory: "A-1", Status: model.StatusActive},
		{ID: 3, Name: "focus", Category: "A", Subcategory: "A-2", Status: model.StatusActive},
		{ID: 4, Name: "limbic", Category: "B", Subcategory: "B-3", Status: model.StatusActive},
		{ID: 5, Name: "stress", Category: "C", Subcategory: "C-1", Status: model.StatusActive},
	}
}

func testScene(t *testing.T) *scene.Context {
	t.Helper()
	sc := scene.NewContext(scene.Options{})
	if err := sc.LoadLayout(testKeywords(), layout.PresetGolden, 0); err != nil {
		t.Fatal(err)
	}
	return sc
}

func countGlyphs(cv *Canvas, glyphs ...rune) int {
	n := 0
	w, h := cv.Size()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for _, g := range glyphs {
				if cv.At(x, y) == g {
					n++
				}
			}
		}
	}
	return n
}

func TestDrawGlobeDrawsEveryNode(t *testing.T) {
	sc := testScene(t)
	cv := NewCanvas(100, 30)
	sc.Resize(100, 30*cellAspect)
	projs := sc.Project(100, 30*cellAspect)
	if len(projs) != 5 {
		t.Fatalf("expected 5 projections, got %d", len(projs))
	}
	drawGlobe(cv, projs, highlight{}, 24)
	if n := countGlyphs(cv, glyphFront, glyphBack); n != 5 {
		t.Errorf("expected 5 node glyphs, got %d", n)
	}
	nearest := projs[len(projs)-1].Node.Keyword.Name
	if !strings.Contains(cv.Plain(), nearest) {
		t.Errorf("expected label %q of the nearest node on canvas", nearest)
	}
}

func TestDrawGlobeFocusGlyph(t *testing.T) {
	sc := testScene(t)
	cv := NewCanvas(100, 30)
	sc.Resize(100, 30*cellAspect)
	drawGlobe(cv, sc.Project(100, 30*cellAspect), highlight{focus: 3}, 0)
	if n := countGlyphs(cv, glyphFocus); n != 1 {
		t.Errorf("expected one focus glyph, got %d", n)
	}
	plain := cv.Plain()
	if !strings.Contains(plain, "focus") {
		t.Error("expected focus label even with a zero label budget")
	}
	if strings.Contains(plain, "creativity") {
		t.Error("expected no other labels with a zero label budget")
	}
}

func TestLabelledBudgetAndOrder(t *testing.T) {
	mk := func(id int, depth float64) scene.Projection {
		kw := &model.Keyword{ID: id, Name: "k"}
		return scene.Projection{Node: scene.NewNode(kw, r3.Vec{}, palette.Parse("#3B82F6")), Depth: depth}
	}
	projs := []scene.Projection{mk(1, 10), mk(2, 8), mk(3, 6), mk(4, 4)}

	got := labelled(projs, highlight{hover: 1}, 2)
	ids := make([]int, len(got))
	for i, p := range got {
		ids[i] = p.Node.ID()
	}
	// Hovered far node plus the two nearest, far to near.
	want := []int{1, 3, 4}
	if len(ids) != len(want) {
		t.Fatalf("expected %v, got %v", want, ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, ids)
		}
	}

	projs[3].Node.SetOpacity(0.1)
	got = labelled(projs, highlight{}, 2)
	for _, p := range got {
		if p.Node.ID() == 4 {
			t.Error("expected faded node to lose its label")
		}
	}
}

func TestNodeHexFadesWithOpacity(t *testing.T) {
	n := scene.NewNode(&model.Keyword{ID: 1}, r3.Vec{}, palette.Parse("#FF6B35"))
	n.SetOpacity(1)
	if got := nodeHex(n, true); !strings.EqualFold(got, "#ff6b35") {
		t.Errorf("expected full color at opacity 1, got %s", got)
	}
	n.SetOpacity(0)
	if got := nodeHex(n, true); got != "#000000" {
		t.Errorf("expected black at opacity 0, got %s", got)
	}
	n.SetOpacity(1)
	if nodeHex(n, false) == nodeHex(n, true) {
		t.Error("expected back nodes to be dimmed")
	}
}
