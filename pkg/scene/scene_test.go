package scene

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/vanderheijden86/keymatrix/pkg/layout"
	"github.com/vanderheijden86/keymatrix/pkg/model"
	"github.com/vanderheijden86/keymatrix/pkg/palette"
)

func sampleKeywords() []model.Keyword {
	return []model.Keyword{
		{ID: 1, Name: "creativity", Category: "A", Subcategory: "A-1"},
		{ID: 2, Name: "logic", Category: "A", Subcategory: "A-1"},
		{ID: 3, Name: "focus", Category: "A", Subcategory: "A-2"},
		{ID: 4, Name: "limbic", Category: "B", Subcategory: "B-3"},
		{ID: 5, Name: "stress", Category: "C", Subcategory: "C-1", Color: "#000000"},
	}
}

func TestNodeSetPositionSyncsAttachments(t *testing.T) {
	kw := &model.Keyword{ID: 1, Name: "a"}
	n := NewNode(kw, r3.Vec{X: 1}, palette.Parse("#3B82F6"))
	p := r3.Vec{X: 2, Y: 3, Z: 4}
	n.SetPosition(p)
	if n.Glow.Position != p || n.Label.Position != p {
		t.Errorf("glow/label not synced: %+v %+v", n.Glow.Position, n.Label.Position)
	}
	n.SetOpacity(0.5)
	if math.Abs(n.Glow.Opacity-0.15) > 1e-12 {
		t.Errorf("glow opacity = %v, want 0.15", n.Glow.Opacity)
	}
	red := palette.Parse("#FF0000")
	n.SetColor(red)
	if n.Glow.Color != red {
		t.Error("glow color not synced")
	}
	n.SetScale(1.5)
	n.RestoreAppearance()
	if n.Primary.Scale != 1 || n.Opacity() != NodeOpacity || n.Color() != n.OriginalColor {
		t.Errorf("restore failed: %+v", n.Primary)
	}
	if n.Position() != p {
		t.Error("restore must not move the node")
	}
}

func TestRegistryDuplicate(t *testing.T) {
	r := NewRegistry()
	kw := &model.Keyword{ID: 1}
	if err := r.Add(NewNode(kw, r3.Vec{}, palette.Parse("#fff"))); err != nil {
		t.Fatal(err)
	}
	if err := r.Add(NewNode(kw, r3.Vec{}, palette.Parse("#fff"))); err == nil {
		t.Error("expected duplicate id error")
	}
	if _, ok := r.Get(1); !ok {
		t.Error("expected node 1")
	}
	r.Reset()
	if r.Len() != 0 {
		t.Error("expected empty registry after reset")
	}
}

func TestConnectionsCapAndMatch(t *testing.T) {
	kws := sampleKeywords()
	got := Connections(&kws[0], kws, 8)
	if len(got) != 2 || got[0].ID != 2 || got[1].ID != 3 {
		t.Fatalf("unexpected connections: %v", ids(got))
	}
	if got := Connections(&kws[0], kws, 1); len(got) != 1 {
		t.Errorf("cap not applied: %v", ids(got))
	}
	if got := Connections(&kws[3], kws, 8); len(got) != 0 {
		t.Errorf("B-3 should have no connections, got %v", ids(got))
	}
}

func ids(ks []*model.Keyword) []int {
	out := make([]int, len(ks))
	for i, k := range ks {
		out[i] = k.ID
	}
	return out
}

func TestContextLoad(t *testing.T) {
	c := NewContext(Options{})
	kws := sampleKeywords()
	if err := c.Load(kws, layout.GoldenSpiral(len(kws), c.Options().Radius)); err != nil {
		t.Fatal(err)
	}
	if c.Registry().Len() != 5 {
		t.Fatalf("expected 5 nodes, got %d", c.Registry().Len())
	}
	n, _ := c.Registry().Get(1)
	if n.Color().Hex() != palette.Parse("#3B82F6").Hex() {
		t.Errorf("expected category color, got %s", n.Color().Hex())
	}
	n5, _ := c.Registry().Get(5)
	if n5.Color().Hex() != "#000000" {
		t.Errorf("explicit keyword color should win, got %s", n5.Color().Hex())
	}

	// Canonical input records are never referenced by the scene.
	kws[0].Name = "mutated"
	if n.Keyword.Name == "mutated" {
		t.Error("scene should hold its own copy of the keywords")
	}

	if err := c.Load(kws, nil); err == nil {
		t.Error("expected mismatch error")
	}
}

func TestContextLoadRejectedKeepsPrevious(t *testing.T) {
	c := NewContext(Options{})
	kws := sampleKeywords()
	if err := c.Load(kws, layout.GoldenSpiral(len(kws), 3.2)); err != nil {
		t.Fatal(err)
	}

	dup := []model.Keyword{
		{ID: 1, Name: "a", Subcategory: "A-1"},
		{ID: 1, Name: "b", Subcategory: "A-1"},
	}
	if err := c.Load(dup, layout.GoldenSpiral(2, 3.2)); err == nil {
		t.Fatal("expected duplicate id error")
	}
	if len(c.Keywords()) != 5 || c.Registry().Len() != 5 {
		t.Errorf("rejected load changed the scene: %d keywords, %d nodes", len(c.Keywords()), c.Registry().Len())
	}
	if n, ok := c.Registry().Get(1); !ok || n.Keyword.Name != "creativity" {
		t.Error("expected the previous node 1 to survive")
	}
}

func TestContextDispose(t *testing.T) {
	c := NewContext(Options{})
	kws := sampleKeywords()
	_ = c.Load(kws, layout.GoldenSpiral(len(kws), 3.2))
	c.Dispose()
	c.Dispose()
	if !c.Disposed() || c.Registry().Len() != 0 {
		t.Error("dispose should release nodes")
	}
	if err := c.Load(kws, layout.GoldenSpiral(len(kws), 3.2)); err != ErrDisposed {
		t.Errorf("expected ErrDisposed, got %v", err)
	}
	c.Resize(100, 50)
}

func TestCameraProjectAndRay(t *testing.T) {
	cam := NewCamera(8, 75)
	cam.SetAspect(200, 100)
	cam.SetAspect(0, 100)
	if cam.Aspect != 2 {
		t.Fatalf("aspect = %v, want 2", cam.Aspect)
	}

	x, y, depth, ok := cam.Project(r3.Vec{})
	if !ok || math.Abs(x) > 1e-12 || math.Abs(y) > 1e-12 || math.Abs(depth-8) > 1e-12 {
		t.Errorf("origin projected to (%v,%v,%v,%v)", x, y, depth, ok)
	}
	if _, _, _, ok := cam.Project(r3.Vec{Z: 20}); ok {
		t.Error("point behind camera should not be visible")
	}

	p := r3.Vec{X: 1, Y: -0.5, Z: 1}
	nx, ny, _, ok := cam.Project(p)
	if !ok {
		t.Fatal("expected point in frustum")
	}
	origin, dir := cam.Ray(nx, ny)
	// The ray through p's projection must pass through p.
	v := r3.Sub(p, origin)
	along := r3.Dot(v, dir)
	closest := r3.Add(origin, r3.Scale(along, dir))
	if r3.Norm(r3.Sub(closest, p)) > 1e-9 {
		t.Errorf("ray misses projected point by %v", r3.Norm(r3.Sub(closest, p)))
	}
}

func TestCameraOrbitKeepsDistance(t *testing.T) {
	cam := NewCamera(8, 75)
	cam.Orbit(math.Pi / 3)
	if d := r3.Norm(cam.Eye); math.Abs(d-8) > 1e-9 {
		t.Errorf("orbit changed distance to %v", d)
	}
	if math.Abs(cam.Eye.Y) > 1e-12 {
		t.Errorf("orbit about Y should keep height, got %v", cam.Eye.Y)
	}
	ref := cam.LookAt()
	ref.SetPosition(r3.Vec{X: 1})
	if cam.Target.X != 1 {
		t.Error("LookAt handle should move the target")
	}
}

func TestProjectOrdersFarToNear(t *testing.T) {
	c := NewContext(Options{})
	kws := sampleKeywords()[:3]
	pos := []r3.Vec{{Z: 1}, {Z: -1}, {Z: 20}}
	if err := c.Load(kws, pos); err != nil {
		t.Fatal(err)
	}
	c.Resize(100, 100)
	got := c.Project(100, 100)
	if len(got) != 2 {
		t.Fatalf("expected the node behind the camera to be culled, got %d", len(got))
	}
	if got[0].Node.ID() != 2 || got[1].Node.ID() != 1 {
		t.Errorf("order = %d,%d, want far (2) then near (1)", got[0].Node.ID(), got[1].Node.ID())
	}
	if math.Abs(got[1].X-50) > 1e-9 || math.Abs(got[1].Y-50) > 1e-9 {
		t.Errorf("center node at (%v, %v)", got[1].X, got[1].Y)
	}
	if !got[1].Front || got[0].Front {
		t.Error("front flags wrong")
	}
	if got[1].Radius <= got[0].Radius {
		t.Error("nearer node should appear larger")
	}
	if c.Project(0, 10) != nil {
		t.Error("empty viewport should project nothing")
	}
}

func TestLoadLayoutUsesRadius(t *testing.T) {
	c := NewContext(Options{Radius: 5})
	kws := sampleKeywords()
	if err := c.LoadLayout(kws, layout.PresetGolden, 0); err != nil {
		t.Fatal(err)
	}
	for _, n := range c.Registry().Nodes() {
		if d := r3.Norm(n.Position()); math.Abs(d-5) > 1e-9 {
			t.Errorf("node %d at distance %v, want 5", n.ID(), d)
		}
	}
}
