package export

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/keymatrix/pkg/analysis"
	"github.com/vanderheijden86/keymatrix/pkg/layout"
	"github.com/vanderheijden86/keymatrix/pkg/model"
	"github.com/vanderheijden86/keymatrix/pkg/scene"
)

func testScene(t *testing.T) *scene.Context {
	t.Helper()
	kws := []model.Keyword{
		{ID: 1, Name: "creativity", Category: "A", Subcategory: "A-1", Dependencies: []int{2}},
		{ID: 2, Name: "logic", Category: "A", Subcategory: "A-1"},
		{ID: 3, Name: "limbic", Category: "B", Subcategory: "B-3"},
		{ID: 4, Name: "스트레스관리", Category: "C", Subcategory: "C-1"},
	}
	ctx := scene.NewContext(scene.Options{})
	if err := ctx.Load(kws, layout.GoldenSpiral(len(kws), ctx.Options().Radius)); err != nil {
		t.Fatal(err)
	}
	return ctx
}

func TestSaveSnapshotPNG(t *testing.T) {
	ctx := testScene(t)
	stats := analysis.NewAnalyzer(ctx.Keywords(), analysis.Options{}).Analyze()
	path := filepath.Join(t.TempDir(), "nested", "globe.png")

	err := SaveSnapshot(SnapshotOptions{Path: path, Scene: ctx, Stats: &stats, Width: 320, Height: 240})
	if err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 240 {
		t.Errorf("size = %v, want 320x240", b)
	}
	if ctx.Camera().Aspect != 1 {
		t.Errorf("snapshot must not change the camera aspect, got %v", ctx.Camera().Aspect)
	}
}

func TestSaveSnapshotSVG(t *testing.T) {
	ctx := testScene(t)
	path := filepath.Join(t.TempDir(), "globe.svg")
	if err := SaveSnapshot(SnapshotOptions{Path: path, Scene: ctx, Title: "Demo"}); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if !strings.Contains(out, "<svg") || !strings.Contains(out, "<circle") || !strings.Contains(out, "Demo") {
		t.Errorf("unexpected svg output:\n%s", out)
	}
}

func TestSaveSnapshotErrors(t *testing.T) {
	ctx := testScene(t)
	if err := SaveSnapshot(SnapshotOptions{Path: "x.gif", Scene: ctx}); err == nil {
		t.Error("expected unsupported format error")
	}
	if err := SaveSnapshot(SnapshotOptions{Scene: ctx}); err == nil {
		t.Error("expected missing path error")
	}
	if err := SaveSnapshot(SnapshotOptions{Path: "x.svg", Scene: scene.NewContext(scene.Options{})}); err == nil {
		t.Error("expected empty scene error")
	}
}

func TestSnapshotFormat(t *testing.T) {
	cases := []struct {
		format, path, want string
	}{
		{"", "a.PNG", "png"},
		{".svg", "a.png", "svg"},
		{"", "noext", "svg"},
	}
	for _, c := range cases {
		got, err := snapshotFormat(c.format, c.path)
		if err != nil || got != c.want {
			t.Errorf("snapshotFormat(%q, %q) = %q, %v; want %q", c.format, c.path, got, err, c.want)
		}
	}
}

func TestLayoutDump(t *testing.T) {
	ctx := testScene(t)
	d := NewLayoutDump(ctx, layout.PresetGolden, model.SourceFallback, time.Unix(0, 0))
	var buf bytes.Buffer
	if err := WriteLayoutJSON(&buf, d); err != nil {
		t.Fatal(err)
	}
	var back LayoutDump
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if back.Count != 4 || len(back.Nodes) != 4 || back.Preset != "golden" || back.Source != model.SourceFallback {
		t.Errorf("unexpected dump: %+v", back)
	}
	if back.Nodes[0].Color != "#3b82f6" {
		t.Errorf("color = %q", back.Nodes[0].Color)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("스트레스관리", 4); got != "스..." {
		t.Errorf("truncate = %q", got)
	}
	if truncate("abc", 0) != "" || truncate("abc", 5) != "abc" {
		t.Error("truncate edge cases")
	}
}
