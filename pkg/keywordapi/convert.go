package keywordapi

import (
	"math/rand"
	"strings"

	"github.com/vanderheijden86/keymatrix/pkg/layout"
	"github.com/vanderheijden86/keymatrix/pkg/model"
	"github.com/vanderheijden86/keymatrix/pkg/palette"
)

// apiKeyword is the wire shape of a keyword.
type apiKeyword struct {
	ID              int      `json:"id"`
	Keyword         string   `json:"keyword"`
	SubcategoryName string   `json:"subcategory_name"`
	Weight          *float64 `json:"weight"`
	Dependencies    []int    `json:"dependencies"`
	IsActive        bool     `json:"is_active"`
}

// synth returns the deterministic generator used to fill missing fields.
func synth(id int) *rand.Rand {
	return rand.New(rand.NewSource(int64(id)))
}

// toKeyword converts one wire record. A missing or zero weight becomes a
// synthetic value in [0, 10); missing dependencies give a synthetic
// connection count in [1, 15]. Both are seeded by the keyword ID.
func toKeyword(a apiKeyword) model.Keyword {
	rng := synth(a.ID)
	synthWeight := rng.Float64() * 10
	synthConns := rng.Intn(15) + 1

	k := model.Keyword{
		ID:           a.ID,
		Name:         a.Keyword,
		Category:     model.CategoryOf(a.SubcategoryName),
		Subcategory:  a.SubcategoryName,
		Weight:       synthWeight,
		Connections:  synthConns,
		Status:       model.StatusInactive,
		Dependencies: a.Dependencies,
		Color:        palette.CategoryColor(a.SubcategoryName),
	}
	if a.Weight != nil && *a.Weight != 0 {
		k.Weight = *a.Weight
	}
	if len(a.Dependencies) > 0 {
		k.Connections = len(a.Dependencies)
	}
	if k.Dependencies == nil {
		k.Dependencies = []int{}
	}
	if a.IsActive {
		k.Status = model.StatusActive
	}
	return k
}

// convert maps wire records to keywords and assigns zoned positions.
func convert(in []apiKeyword) []model.Keyword {
	out := make([]model.Keyword, len(in))
	for i, a := range in {
		out[i] = toKeyword(a)
	}
	for i, p := range layout.Zoned(out, layout.ZoneReference, 0) {
		v := layout.ToVec3(p)
		out[i].Position = &v
	}
	return out
}

// Filter narrows a keyword list on the client side.
type Filter struct {
	Category string // "" or "all" keeps every category
	Search   string // case-insensitive substring of name or subcategory
	Limit    int    // <= 0 means no limit
}

// Apply returns the keywords matching f, preserving order.
func (f Filter) Apply(ks []model.Keyword) []model.Keyword {
	term := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]model.Keyword, 0, len(ks))
	for _, k := range ks {
		if f.Category != "" && f.Category != "all" && k.Category != f.Category {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(k.Name), term) &&
			!strings.Contains(strings.ToLower(k.Subcategory), term) {
			continue
		}
		out = append(out, k)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out
}

// NetworkDensity is the summed connection count over the number of possible
// undirected pairs, as a percentage. Fewer than two keywords give 0.
func NetworkDensity(ks []model.Keyword) float64 {
	n := len(ks)
	pairs := float64(n*(n-1)) / 2
	if pairs <= 0 {
		return 0
	}
	return float64(TotalConnections(ks)) / pairs * 100
}

// TotalConnections sums the per-keyword connection counts.
func TotalConnections(ks []model.Keyword) int {
	total := 0
	for _, k := range ks {
		total += k.Connections
	}
	return total
}
