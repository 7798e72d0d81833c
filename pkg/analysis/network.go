// Package analysis computes structural statistics of the keyword network.
package analysis

import (
	"sort"

	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/vanderheijden86/keymatrix/pkg/model"
	"github.com/vanderheijden86/keymatrix/pkg/scene"
)

// Options selects which relations become edges.
type Options struct {
	// IncludeRelated adds edges between keywords sharing a category or
	// subcategory, capped per keyword like the radial view.
	IncludeRelated bool
	MaxRelated     int
}

// Analyzer holds the undirected keyword graph.
type Analyzer struct {
	g     *simple.UndirectedGraph
	names map[int64]string
}

// NewAnalyzer builds the graph. Dependencies on keywords outside the set and
// self references are ignored.
func NewAnalyzer(keywords []model.Keyword, opts Options) *Analyzer {
	g := simple.NewUndirectedGraph()
	names := make(map[int64]string, len(keywords))
	for _, k := range keywords {
		id := int64(k.ID)
		if g.Node(id) == nil {
			g.AddNode(simple.Node(id))
		}
		names[id] = k.Name
	}

	link := func(a, b int64) {
		if a == b || g.Node(a) == nil || g.Node(b) == nil {
			return
		}
		g.SetEdge(g.NewEdge(g.Node(a), g.Node(b)))
	}
	for i := range keywords {
		k := &keywords[i]
		for _, dep := range k.Dependencies {
			link(int64(k.ID), int64(dep))
		}
		if opts.IncludeRelated {
			for _, rel := range scene.Connections(k, keywords, opts.MaxRelated) {
				link(int64(k.ID), int64(rel.ID))
			}
		}
	}
	return &Analyzer{g: g, names: names}
}

// Hub is one keyword ranked by centrality.
type Hub struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Degree      int     `json:"degree"`
	Betweenness float64 `json:"betweenness"`
}

// GraphStats summarizes the network.
type GraphStats struct {
	NodeCount          int         `json:"node_count"`
	EdgeCount          int         `json:"edge_count"`
	Density            float64     `json:"density"` // edges / possible pairs, in [0, 1]
	Degree             map[int]int `json:"degree"`
	Components         [][]int     `json:"components"`
	CoreNumber         map[int]int `json:"core_number"`
	ArticulationPoints []int       `json:"articulation_points"`
	Hubs               []Hub       `json:"hubs"`
}

// maxHubs bounds GraphStats.Hubs.
const maxHubs = 10

// Analyze computes every statistic.
func (a *Analyzer) Analyze() GraphStats {
	n := a.g.Nodes().Len()
	e := a.g.Edges().Len()
	stats := GraphStats{
		NodeCount:  n,
		EdgeCount:  e,
		Degree:     make(map[int]int, n),
		CoreNumber: make(map[int]int, n),
	}
	if n > 1 {
		stats.Density = float64(e) / (float64(n) * float64(n-1) / 2)
	}

	nodes := a.g.Nodes()
	for nodes.Next() {
		id := nodes.Node().ID()
		stats.Degree[int(id)] = a.g.From(id).Len()
	}

	for _, comp := range topo.ConnectedComponents(a.g) {
		ids := make([]int, len(comp))
		for i, node := range comp {
			ids[i] = int(node.ID())
		}
		sort.Ints(ids)
		stats.Components = append(stats.Components, ids)
	}
	sort.Slice(stats.Components, func(i, j int) bool {
		ci, cj := stats.Components[i], stats.Components[j]
		if len(ci) != len(cj) {
			return len(ci) > len(cj)
		}
		return ci[0] < cj[0]
	})

	for id, k := range computeKCore(a.g) {
		stats.CoreNumber[int(id)] = k
	}
	for id := range findArticulationPoints(a.g) {
		stats.ArticulationPoints = append(stats.ArticulationPoints, int(id))
	}
	sort.Ints(stats.ArticulationPoints)

	stats.Hubs = a.hubs(stats.Degree)
	return stats
}

func (a *Analyzer) hubs(degree map[int]int) []Hub {
	if a.g.Edges().Len() == 0 {
		return nil
	}
	between := network.Betweenness(a.g)
	hubs := make([]Hub, 0, len(degree))
	for id, d := range degree {
		if d == 0 {
			continue
		}
		hubs = append(hubs, Hub{
			ID:          id,
			Name:        a.names[int64(id)],
			Degree:      d,
			Betweenness: between[int64(id)],
		})
	}
	sort.Slice(hubs, func(i, j int) bool {
		if hubs[i].Degree != hubs[j].Degree {
			return hubs[i].Degree > hubs[j].Degree
		}
		if hubs[i].Betweenness != hubs[j].Betweenness {
			return hubs[i].Betweenness > hubs[j].Betweenness
		}
		return hubs[i].ID < hubs[j].ID
	})
	if len(hubs) > maxHubs {
		hubs = hubs[:maxHubs]
	}
	return hubs
}

// Neighbors returns the keyword IDs adjacent to id in ascending order.
func (a *Analyzer) Neighbors(id int) []int {
	if a.g.Node(int64(id)) == nil {
		return nil
	}
	var out []int
	it := a.g.From(int64(id))
	for it.Next() {
		out = append(out, int(it.Node().ID()))
	}
	sort.Ints(out)
	return out
}

// computeKCore returns core numbers using iterative k peeling.
func computeKCore(g *simple.UndirectedGraph) map[int64]int {
	deg := make(map[int64]int)
	adj := make(map[int64][]int64)
	nodes := g.Nodes()
	for nodes.Next() {
		id := nodes.Node().ID()
		it := g.From(id)
		for it.Next() {
			adj[id] = append(adj[id], it.Node().ID())
		}
		deg[id] = len(adj[id])
	}

	core := make(map[int64]int, len(deg))
	removed := make(map[int64]bool, len(deg))
	maxDeg := 0
	for _, d := range deg {
		maxDeg = max(maxDeg, d)
	}

	for k := 1; k <= maxDeg; k++ {
		var queue []int64
		for id, d := range deg {
			if !removed[id] && d < k {
				queue = append(queue, id)
			}
		}
		for len(queue) > 0 {
			v := queue[len(queue)-1]
			queue = queue[:len(queue)-1]
			if removed[v] {
				continue
			}
			removed[v] = true
			core[v] = k - 1
			for _, nbr := range adj[v] {
				if removed[nbr] {
					continue
				}
				deg[nbr]--
				if deg[nbr] < k {
					queue = append(queue, nbr)
				}
			}
		}
	}
	for id := range deg {
		if !removed[id] {
			core[id] = maxDeg
		}
	}
	return core
}

// findArticulationPoints runs Tarjan's cut-vertex search.
func findArticulationPoints(g *simple.UndirectedGraph) map[int64]bool {
	var clock int
	disc := make(map[int64]int)
	low := make(map[int64]int)
	parent := make(map[int64]int64)
	isRoot := make(map[int64]bool)
	ap := make(map[int64]bool)

	var dfs func(v int64)
	dfs = func(v int64) {
		clock++
		disc[v] = clock
		low[v] = clock
		children := 0

		it := g.From(v)
		for it.Next() {
			u := it.Node().ID()
			if disc[u] == 0 {
				parent[u] = v
				children++
				dfs(u)
				low[v] = min(low[v], low[u])
				if isRoot[v] && children > 1 {
					ap[v] = true
				}
				if !isRoot[v] && low[u] >= disc[v] {
					ap[v] = true
				}
			} else if u != parent[v] {
				low[v] = min(low[v], disc[u])
			}
		}
	}

	nodes := g.Nodes()
	for nodes.Next() {
		id := nodes.Node().ID()
		if disc[id] == 0 {
			isRoot[id] = true
			dfs(id)
		}
	}
	return ap
}
