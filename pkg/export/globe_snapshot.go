package export

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"git.sr.ht/~sbinet/gg"
	svg "github.com/ajstarks/svgo"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font/basicfont"

	"github.com/vanderheijden86/keymatrix/pkg/analysis"
	"github.com/vanderheijden86/keymatrix/pkg/metrics"
	"github.com/vanderheijden86/keymatrix/pkg/scene"
)

// SnapshotOptions controls globe snapshot export.
type SnapshotOptions struct {
	Path      string // Output path; format inferred from extension when Format empty
	Format    string // "svg" or "png" (case-insensitive)
	Title     string
	Width     int // default 1200
	Height    int // default 900
	MaxLabels int // labels drawn for the nearest nodes; default 24
	Scene     *scene.Context
	Stats     *analysis.GraphStats // optional; adds network figures to the summary
}

const (
	defaultSnapshotWidth  = 1200
	defaultSnapshotHeight = 900
	defaultSnapshotLabels = 24
	headerHeight          = 96.0
	minDotRadius          = 2.5
)

// SaveSnapshot renders the scene as seen by its camera to a PNG or SVG file.
func SaveSnapshot(opts SnapshotOptions) error {
	defer metrics.Timer(metrics.SnapshotRender)()

	if opts.Scene == nil || opts.Scene.Registry().Len() == 0 {
		return fmt.Errorf("no keywords to export")
	}
	if opts.Path == "" {
		return fmt.Errorf("output path is required")
	}
	format, err := snapshotFormat(opts.Format, opts.Path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	frame := buildFrame(opts)
	switch format {
	case "png":
		return renderGlobePNG(opts.Path, frame)
	default:
		f, err := os.Create(opts.Path)
		if err != nil {
			return err
		}
		defer f.Close()
		return renderGlobeSVG(f, frame)
	}
}

func snapshotFormat(format, path string) (string, error) {
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	if format == "" {
		format = strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	}
	switch format {
	case "png", "svg":
		return format, nil
	case "":
		return "svg", nil
	default:
		return "", fmt.Errorf("unsupported format %q (want svg or png)", format)
	}
}

// --- frame computation -----------------------------------------------------

type dot struct {
	X, Y    float64
	R       float64
	Color   color.NRGBA
	Label   string
	Labeled bool
}

type frame struct {
	Width, Height int
	Dots          []dot
	Summary       []string
	Title         string
}

func buildFrame(opts SnapshotOptions) frame {
	w, h := opts.Width, opts.Height
	if w <= 0 {
		w = defaultSnapshotWidth
	}
	if h <= 0 {
		h = defaultSnapshotHeight
	}
	maxLabels := opts.MaxLabels
	if maxLabels <= 0 {
		maxLabels = defaultSnapshotLabels
	}

	// The globe is drawn below the header band.
	plotH := float64(h) - headerHeight
	cam := opts.Scene.Camera()
	saved := cam.Aspect
	cam.SetAspect(float64(w), plotH)
	projected := opts.Scene.Project(float64(w), plotH)
	cam.Aspect = saved

	// Nearest nodes get labels.
	byDepth := make([]int, len(projected))
	for i := range byDepth {
		byDepth[i] = i
	}
	sort.SliceStable(byDepth, func(a, b int) bool { return projected[byDepth[a]].Depth < projected[byDepth[b]].Depth })
	labeled := make(map[int]bool, maxLabels)
	for i := 0; i < len(byDepth) && i < maxLabels; i++ {
		labeled[byDepth[i]] = true
	}

	f := frame{Width: w, Height: h, Title: opts.Title}
	if f.Title == "" {
		f.Title = "Keyword Matrix"
	}
	for i, p := range projected {
		f.Dots = append(f.Dots, dot{
			X:       p.X,
			Y:       p.Y + headerHeight,
			R:       max(p.Radius, minDotRadius),
			Color:   rgba(p.Node.Color(), p.Node.Opacity()),
			Label:   truncate(p.Node.Keyword.Name, 24),
			Labeled: labeled[i],
		})
	}

	f.Summary = append(f.Summary, fmt.Sprintf("keywords: %d  visible: %d", opts.Scene.Registry().Len(), len(projected)))
	if s := opts.Stats; s != nil {
		f.Summary = append(f.Summary,
			fmt.Sprintf("edges: %d  density: %.4f  components: %d", s.EdgeCount, s.Density, len(s.Components)))
		if len(s.Hubs) > 0 {
			f.Summary = append(f.Summary, fmt.Sprintf("top hub: %s (degree %d)", s.Hubs[0].Name, s.Hubs[0].Degree))
		}
	}
	return f
}

func rgba(c colorful.Color, alpha float64) color.NRGBA {
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(clamp01(alpha) * 255)}
}

func clamp01(v float64) float64 {
	return min(1, max(0, v))
}

// --- rendering -------------------------------------------------------------

var (
	colorBackdrop = color.RGBA{0x0b, 0x10, 0x20, 0xff}
	colorHeaderBG = color.RGBA{0x16, 0x1d, 0x33, 0xff}
	colorText     = color.RGBA{0xf3, 0xf4, 0xf6, 0xff}
	colorSubtle   = color.RGBA{0x9c, 0xa3, 0xaf, 0xff}
	colorGlobe    = color.RGBA{0x33, 0x41, 0x55, 0xff}
)

func renderGlobePNG(path string, f frame) error {
	dc := gg.NewContext(f.Width, f.Height)
	dc.SetColor(colorBackdrop)
	dc.Clear()

	dc.SetColor(colorHeaderBG)
	dc.DrawRoundedRectangle(16, 16, float64(f.Width)-32, headerHeight-24, 10)
	dc.Fill()

	dc.SetFontFace(basicfont.Face7x13)
	dc.SetColor(colorText)
	dc.DrawStringAnchored(f.Title, 32, 36, 0, 0.5)
	dc.SetColor(colorSubtle)
	for i, line := range f.Summary {
		dc.DrawStringAnchored(line, 32, 54+float64(i)*16, 0, 0.5)
	}

	for _, d := range f.Dots {
		dc.SetColor(d.Color)
		dc.DrawCircle(d.X, d.Y, d.R)
		dc.Fill()
		dc.SetColor(colorGlobe)
		dc.SetLineWidth(0.5)
		dc.DrawCircle(d.X, d.Y, d.R)
		dc.Stroke()
	}
	dc.SetColor(colorText)
	for _, d := range f.Dots {
		if d.Labeled {
			dc.DrawStringAnchored(d.Label, d.X+d.R+3, d.Y, 0, 0.5)
		}
	}
	return dc.SavePNG(path)
}

func renderGlobeSVG(w io.Writer, f frame) error {
	canvas := svg.New(w)
	canvas.Start(f.Width, f.Height)
	canvas.Rect(0, 0, f.Width, f.Height, fmt.Sprintf("fill:%s", css(colorBackdrop)))
	canvas.Roundrect(16, 16, f.Width-32, int(headerHeight-24), 10, 10, fmt.Sprintf("fill:%s", css(colorHeaderBG)))
	canvas.Text(32, 40, f.Title, fmt.Sprintf("fill:%s;font-size:16px;font-family:monospace;font-weight:bold", css(colorText)))
	for i, line := range f.Summary {
		canvas.Text(32, 58+i*16, line, fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace", css(colorSubtle)))
	}

	for _, d := range f.Dots {
		canvas.Circle(int(d.X), int(d.Y), int(d.R+0.5),
			fmt.Sprintf("fill:%s;fill-opacity:%.2f;stroke:%s;stroke-width:0.5", css(d.Color), float64(d.Color.A)/255, css(colorGlobe)))
	}
	for _, d := range f.Dots {
		if d.Labeled {
			canvas.Text(int(d.X+d.R+3), int(d.Y+4), d.Label, fmt.Sprintf("fill:%s;font-size:11px;font-family:sans-serif", css(colorText)))
		}
	}
	canvas.End()
	return nil
}

// --- helpers ---------------------------------------------------------------

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

func css(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
}
