package datastructure

import (
	"sort"
)

type Edge struct {
	ID       int32   `json:"id"`
	From     int32   `json:"from"`
	To       int32   `json:"to"`
	Weight   float64 `json:"weight"`
	Duration float64 `json:"duration"` // second
	Distance float64 `json:"distance"` // meter
}

func NewEdge(from, to int32, weight, duration, distance float64) Edge {
	return Edge{
		ID:       -1,
		From:     from,
		To:       to,
		Weight:   weight,
		Duration: duration,
		Distance: distance,
	}
}

func (e Edge) Cost() Cost {
	return NewCost(e.Weight, e.Duration, e.Distance)
}

// Graph is the road network shared by both index variants. Outgoing edges are
// stored contiguously per node (CSR), incoming edges are addressed through
// InEdges, which holds edge ids grouped by head node.
type Graph struct {
	Nodes    []Coordinate
	Edges    []Edge
	FirstOut []int32
	FirstIn  []int32
	InEdges  []int32
	Twin     []int32

	WeakComponent       []int32
	StrongComponent     []int32
	StrongComponentSize []int32
}

// NewGraph builds the CSR graph. Self loops are dropped and parallel edges
// collapse to the one with the smallest weight. Edge ids are reassigned.
func NewGraph(nodes []Coordinate, edges []Edge) *Graph {
	n := int32(len(nodes))
	filtered := make([]Edge, 0, len(edges))
	for _, e := range edges {
		if e.From == e.To || e.From < 0 || e.To < 0 || e.From >= n || e.To >= n {
			continue
		}
		filtered = append(filtered, e)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		a, b := filtered[i], filtered[j]
		if a.From != b.From {
			return a.From < b.From
		}
		if a.To != b.To {
			return a.To < b.To
		}
		return a.Weight < b.Weight
	})

	unique := filtered[:0]
	for i, e := range filtered {
		if i > 0 && e.From == filtered[i-1].From && e.To == filtered[i-1].To {
			continue
		}
		unique = append(unique, e)
	}

	g := &Graph{
		Nodes:    nodes,
		Edges:    make([]Edge, len(unique)),
		FirstOut: make([]int32, n+1),
		FirstIn:  make([]int32, n+1),
		InEdges:  make([]int32, len(unique)),
		Twin:     make([]int32, len(unique)),
	}
	copy(g.Edges, unique)

	for i := range g.Edges {
		g.Edges[i].ID = int32(i)
		g.FirstOut[g.Edges[i].From+1]++
		g.FirstIn[g.Edges[i].To+1]++
	}
	for i := int32(0); i < n; i++ {
		g.FirstOut[i+1] += g.FirstOut[i]
		g.FirstIn[i+1] += g.FirstIn[i]
	}

	pos := make([]int32, n)
	copy(pos, g.FirstIn[:n])
	for _, e := range g.Edges {
		g.InEdges[pos[e.To]] = e.ID
		pos[e.To]++
	}

	for i, e := range g.Edges {
		g.Twin[i] = g.FindEdge(e.To, e.From)
	}

	g.WeakComponent = make([]int32, n)
	g.StrongComponent = make([]int32, n)
	g.StrongComponentSize = []int32{n}
	return g
}

func (g *Graph) NumNodes() int {
	return len(g.Nodes)
}

func (g *Graph) NumEdges() int {
	return len(g.Edges)
}

func (g *Graph) GetEdge(id int32) Edge {
	return g.Edges[id]
}

func (g *Graph) GetCoordinate(u int32) Coordinate {
	return g.Nodes[u]
}

// OutEdges returns the outgoing edges of u without copying.
func (g *Graph) OutEdges(u int32) []Edge {
	return g.Edges[g.FirstOut[u]:g.FirstOut[u+1]]
}

// InEdgeIDs returns the ids of the edges whose head is v.
func (g *Graph) InEdgeIDs(v int32) []int32 {
	return g.InEdges[g.FirstIn[v]:g.FirstIn[v+1]]
}

// FindEdge returns the id of edge from->to or -1.
func (g *Graph) FindEdge(from, to int32) int32 {
	out := g.OutEdges(from)
	i := sort.Search(len(out), func(i int) bool {
		return out[i].To >= to
	})
	if i < len(out) && out[i].To == to {
		return out[i].ID
	}
	return -1
}

// SetComponents stores the weak and strong component id of every node.
func (g *Graph) SetComponents(weak, strong []int32) {
	g.WeakComponent = weak
	g.StrongComponent = strong

	maxID := int32(-1)
	for _, c := range strong {
		if c > maxID {
			maxID = c
		}
	}
	g.StrongComponentSize = make([]int32, maxID+1)
	for _, c := range strong {
		g.StrongComponentSize[c]++
	}
}

// IsTinyComponent reports whether u belongs to a strongly connected component
// with fewer than threshold nodes.
func (g *Graph) IsTinyComponent(u int32, threshold int) bool {
	if int(u) >= len(g.StrongComponent) || len(g.StrongComponentSize) == 0 {
		return false
	}
	return int(g.StrongComponentSize[g.StrongComponent[u]]) < threshold
}

// ApplyMetric sets every edge weight to the chosen metric.
func (g *Graph) ApplyMetric(metric WeightMetric) {
	for i := range g.Edges {
		g.Edges[i].Weight = metric.WeightOf(g.Edges[i].Duration, g.Edges[i].Distance)
	}
}
