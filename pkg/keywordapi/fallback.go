package keywordapi

import (
	"math/rand"
	"time"

	"github.com/vanderheijden86/keymatrix/pkg/model"
	"github.com/vanderheijden86/keymatrix/pkg/palette"
)

// FallbackDensity is the density reported with the fallback matrix.
const FallbackDensity = 45.2

// fallbackSeed makes the sample dataset identical on every run.
const fallbackSeed = 442

var sampleKeywords = []struct {
	name, subcategory string
}{
	{"창의성", "A-1"},
	{"논리적사고", "A-1"},
	{"집중력", "A-1"},
	{"감정조절", "B-3"},
	{"스트레스관리", "C-1"},
}

// FallbackKeywords returns the fixed sample dataset used when the API is
// unreachable.
func FallbackKeywords() []model.Keyword {
	rng := rand.New(rand.NewSource(fallbackSeed))
	out := make([]model.Keyword, len(sampleKeywords))
	for i, s := range sampleKeywords {
		pos := model.Vec3{
			(rng.Float64() - 0.5) * 4,
			(rng.Float64() - 0.5) * 4,
			(rng.Float64() - 0.5) * 4,
		}
		out[i] = model.Keyword{
			ID:           i + 1,
			Name:         s.name,
			Category:     model.CategoryOf(s.subcategory),
			Subcategory:  s.subcategory,
			Weight:       rng.Float64()*8 + 2,
			Connections:  rng.Intn(20) + 5,
			Status:       model.StatusActive,
			Dependencies: []int{},
			Position:     &pos,
			Color:        palette.CategoryColor(s.subcategory),
		}
	}
	return out
}

// FallbackMatrix wraps FallbackKeywords in a matrix.
func FallbackMatrix(now time.Time) model.Matrix {
	ks := FallbackKeywords()
	return model.Matrix{
		TotalKeywords:    len(ks),
		ActiveKeywords:   len(ks),
		TotalConnections: TotalConnections(ks),
		NetworkDensity:   FallbackDensity,
		Keywords:         ks,
		LastUpdated:      now,
		Source:           model.SourceFallback,
	}
}

// FallbackHealth is reported when the health endpoint is unreachable.
func FallbackHealth(now time.Time) model.Health {
	return model.Health{
		Service:   "keywords_api_fallback",
		Status:    "degraded",
		Database:  "disconnected",
		Redis:     "disconnected",
		Timestamp: now.UTC().Format(time.RFC3339),
	}
}

// FallbackStats is reported when the stats endpoint is unreachable.
func FallbackStats() model.Stats {
	return model.Stats{
		CategoryDistribution: map[string]int{},
		CacheStatus:          "error",
	}
}
