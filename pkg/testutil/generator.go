// Package testutil provides deterministic keyword fixtures and assertions
// shared by package tests.
package testutil

import (
	"fmt"
	"math/rand"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/keymatrix/pkg/model"
	"github.com/vanderheijden86/keymatrix/pkg/palette"
)

// GraphFixture is an abstract undirected keyword graph.
type GraphFixture struct {
	Description string   `json:"description"`
	Nodes       []string `json:"nodes"`
	Edges       [][2]int `json:"edges"` // [from_idx, to_idx]
	Components  int      `json:"components"`
}

// GeneratorConfig controls keyword generation.
type GeneratorConfig struct {
	Seed          int64    // random seed; fixtures are reproducible for a given seed
	FirstID       int      // id of node 0 (default 1)
	Subcategories []string // cycled through in node order (default: every palette code)
	InactiveEvery int      // every n-th keyword is inactive (0 = none)
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{Seed: 42, FirstID: 1}
}

// Generator creates keyword fixtures with various topologies.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	if cfg.FirstID <= 0 {
		cfg.FirstID = 1
	}
	if len(cfg.Subcategories) == 0 {
		for _, s := range palette.Subcategories() {
			cfg.Subcategories = append(cfg.Subcategories, s.Code)
		}
	}
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}
}

// NewDefault creates a Generator with DefaultConfig.
func NewDefault() *Generator { return New(DefaultConfig()) }

// Chain links n0 - n1 - ... - n{size-1}.
func (g *Generator) Chain(size int) GraphFixture {
	gf := GraphFixture{Description: fmt.Sprintf("chain of %d", size), Nodes: names("n", size), Components: min(size, 1)}
	for i := 1; i < size; i++ {
		gf.Edges = append(gf.Edges, [2]int{i, i - 1})
	}
	return gf
}

// Star links every spoke to a central hub at index 0.
func (g *Generator) Star(spokes int) GraphFixture {
	gf := GraphFixture{Description: fmt.Sprintf("star with %d spokes", spokes), Components: 1}
	gf.Nodes = append([]string{"hub"}, names("spoke", spokes)...)
	for i := 1; i <= spokes; i++ {
		gf.Edges = append(gf.Edges, [2]int{i, 0})
	}
	return gf
}

// Cycle closes a chain into a ring.
func (g *Generator) Cycle(size int) GraphFixture {
	gf := g.Chain(size)
	gf.Description = fmt.Sprintf("cycle of %d", size)
	if size > 2 {
		gf.Edges = append(gf.Edges, [2]int{0, size - 1})
	}
	return gf
}

// Complete links every pair of nodes.
func (g *Generator) Complete(size int) GraphFixture {
	gf := GraphFixture{Description: fmt.Sprintf("complete graph K%d", size), Nodes: names("n", size), Components: min(size, 1)}
	for i := 0; i < size; i++ {
		for j := i + 1; j < size; j++ {
			gf.Edges = append(gf.Edges, [2]int{j, i})
		}
	}
	return gf
}

// Disconnected builds separate chains.
func (g *Generator) Disconnected(components, size int) GraphFixture {
	gf := GraphFixture{Description: fmt.Sprintf("%d chains of %d", components, size), Components: components}
	for c := 0; c < components; c++ {
		base := len(gf.Nodes)
		gf.Nodes = append(gf.Nodes, names(fmt.Sprintf("c%d_n", c), size)...)
		for i := 1; i < size; i++ {
			gf.Edges = append(gf.Edges, [2]int{base + i, base + i - 1})
		}
	}
	return gf
}

// Random adds each possible edge with probability density.
func (g *Generator) Random(size int, density float64) GraphFixture {
	gf := GraphFixture{Description: fmt.Sprintf("random graph of %d at %.2f", size, density), Nodes: names("n", size)}
	for i := 0; i < size; i++ {
		for j := i + 1; j < size; j++ {
			if g.rng.Float64() < density {
				gf.Edges = append(gf.Edges, [2]int{j, i})
			}
		}
	}
	return gf
}

// ToKeywords converts a fixture into keywords. Edge [a, b] becomes a
// dependency of a on b, and connection counts equal node degree.
func (g *Generator) ToKeywords(gf GraphFixture) []model.Keyword {
	ks := make([]model.Keyword, len(gf.Nodes))
	for i, name := range gf.Nodes {
		sub := g.cfg.Subcategories[i%len(g.cfg.Subcategories)]
		status := model.StatusActive
		if g.cfg.InactiveEvery > 0 && (i+1)%g.cfg.InactiveEvery == 0 {
			status = model.StatusInactive
		}
		ks[i] = model.Keyword{
			ID:          g.cfg.FirstID + i,
			Name:        name,
			Category:    model.CategoryOf(sub),
			Subcategory: sub,
			Weight:      float64(g.rng.Intn(100)) / 10,
			Status:      status,
		}
	}
	for _, e := range gf.Edges {
		a, b := e[0], e[1]
		ks[a].Dependencies = append(ks[a].Dependencies, ks[b].ID)
		ks[a].Connections++
		ks[b].Connections++
	}
	return ks
}

// ToJSON encodes keywords as a data file body.
func ToJSON(ks []model.Keyword) string {
	data, err := json.MarshalIndent(ks, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(data)
}

func names(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s%d", prefix, i)
	}
	return out
}

// QuickChain creates a chain of keywords with default settings.
func QuickChain(size int) []model.Keyword {
	gen := NewDefault()
	return gen.ToKeywords(gen.Chain(size))
}

// QuickStar creates a star of keywords with default settings.
func QuickStar(spokes int) []model.Keyword {
	gen := NewDefault()
	return gen.ToKeywords(gen.Star(spokes))
}

// QuickRandom creates a random keyword graph with default settings.
func QuickRandom(size int, density float64) []model.Keyword {
	gen := NewDefault()
	return gen.ToKeywords(gen.Random(size, density))
}

// SameCategory returns size keywords that all share one subcategory, so
// every keyword is connected to every other in the scene.
func SameCategory(size int, subcategory string) []model.Keyword {
	gen := New(GeneratorConfig{Seed: 42, Subcategories: []string{subcategory}})
	return gen.ToKeywords(GraphFixture{Nodes: names("k", size)})
}
