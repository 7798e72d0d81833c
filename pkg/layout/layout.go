// Package layout computes deterministic positions for keyword nodes.
//
// The default preset is a Golden Spiral (Fibonacci lattice) over a sphere
// surface. A zoned preset groups keywords by subcategory into left, centre
// and right bands.
package layout

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/vanderheijden86/keymatrix/pkg/metrics"
	"github.com/vanderheijden86/keymatrix/pkg/model"
)

// Preset names a layout algorithm.
type Preset string

const (
	PresetGolden Preset = "golden"
	PresetZoned  Preset = "zoned"
)

// ParsePreset maps a config/flag value to a Preset. Empty means golden.
func ParsePreset(s string) (Preset, error) {
	switch Preset(strings.ToLower(strings.TrimSpace(s))) {
	case "", PresetGolden:
		return PresetGolden, nil
	case PresetZoned:
		return PresetZoned, nil
	default:
		return "", fmt.Errorf("unknown layout preset %q (want golden or zoned)", s)
	}
}

// goldenAngle is π(3-√5), the angular step of the Fibonacci lattice.
var goldenAngle = math.Pi * (3 - math.Sqrt(5))

// GoldenSpiral returns n points spread over a sphere of the given radius.
// Point i depends only on (i, n, radius). n <= 0 yields an empty slice and
// n == 1 yields the single point on the equator.
func GoldenSpiral(n int, radius float64) []r3.Vec {
	if n <= 0 {
		return []r3.Vec{}
	}
	points := make([]r3.Vec, n)
	for i := 0; i < n; i++ {
		y := 0.0
		if n > 1 {
			y = 1 - (float64(i)/float64(n-1))*2
		}
		ringRadius := math.Sqrt(math.Max(0, 1-y*y))
		theta := float64(i) * goldenAngle
		points[i] = r3.Vec{
			X: math.Cos(theta) * ringRadius * radius,
			Y: y * radius,
			Z: math.Sin(theta) * ringRadius * radius,
		}
	}
	return points
}

// ZoneReference is the globe radius the zoned band offsets were tuned for.
const ZoneReference = 3.2

// Zoned places each keyword in a band chosen by its subcategory group
// (A left, B centre, C right, anything else at the origin column) with a
// small jitter drawn from a generator seeded by seed and the keyword ID.
func Zoned(keywords []model.Keyword, radius float64, seed int64) []r3.Vec {
	scale := radius / ZoneReference
	points := make([]r3.Vec, len(keywords))
	for i, kw := range keywords {
		group := model.CategoryOf(kw.Subcategory)
		sub := subIndex(kw.Subcategory)

		var base r3.Vec
		switch group {
		case "A":
			base = r3.Vec{X: -2, Y: (float64(sub) - 2) * 0.8}
		case "B":
			base = r3.Vec{X: 0, Y: (float64(sub) - 2.5) * 0.6}
		case "C":
			base = r3.Vec{X: 2, Y: (float64(sub) - 4) * 0.5}
		}

		rng := rand.New(rand.NewSource(seed ^ int64(kw.ID)*7919))
		const jitter = 0.3
		p := r3.Vec{
			X: base.X + (rng.Float64()-0.5)*jitter,
			Y: base.Y + (rng.Float64()-0.5)*jitter,
			Z: base.Z + (rng.Float64()-0.5)*jitter,
		}
		points[i] = r3.Scale(scale, p)
	}
	return points
}

func subIndex(subcategory string) int {
	_, num, ok := strings.Cut(subcategory, "-")
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(num)
	if err != nil || n < 1 {
		return 0
	}
	return n - 1
}

// Place computes one position per keyword using the given preset.
func Place(preset Preset, keywords []model.Keyword, radius float64, seed int64) []r3.Vec {
	defer metrics.Timer(metrics.LayoutBuild)()
	if preset == PresetZoned {
		return Zoned(keywords, radius, seed)
	}
	return GoldenSpiral(len(keywords), radius)
}

// ToVec3 converts a gonum vector to the data-side triple.
func ToVec3(v r3.Vec) model.Vec3 {
	return model.Vec3{v.X, v.Y, v.Z}
}
