package datastructure

import "sort"

// EdgeCH is an edge of the contracted graph. Shortcuts carry the contracted
// node in ViaNodeID, original edges carry -1.
type EdgeCH struct {
	FromNodeID int32
	ToNodeID   int32
	Weight     float64
	Duration   float64
	Dist       float64
	ViaNodeID  int32
}

func NewEdgeCH(from, to int32, cost Cost, via int32) EdgeCH {
	return EdgeCH{
		FromNodeID: from,
		ToNodeID:   to,
		Weight:     cost.Weight,
		Duration:   cost.Duration,
		Dist:       cost.Distance,
		ViaNodeID:  via,
	}
}

func (e EdgeCH) Cost() Cost {
	return NewCost(e.Weight, e.Duration, e.Dist)
}

func (e EdgeCH) IsShortcut() bool {
	return e.ViaNodeID >= 0
}

// UpwardGraph is a CSR adjacency holding only edges toward higher ranked nodes.
type UpwardGraph struct {
	FirstOut []int32
	Head     []int32
	Weight   []float64
	Duration []float64
	Distance []float64
	Middle   []int32
}

// newUpwardGraph groups edges by tail. tail/head select the orientation so the
// same builder serves the forward and the backward graph.
func newUpwardGraph(numNodes int, edges []EdgeCH, tail, head func(EdgeCH) int32) UpwardGraph {
	sorted := make([]EdgeCH, len(edges))
	copy(sorted, edges)
	sort.Slice(sorted, func(i, j int) bool {
		ti, tj := tail(sorted[i]), tail(sorted[j])
		if ti != tj {
			return ti < tj
		}
		hi, hj := head(sorted[i]), head(sorted[j])
		if hi != hj {
			return hi < hj
		}
		return sorted[i].Weight < sorted[j].Weight
	})

	ug := UpwardGraph{
		FirstOut: make([]int32, numNodes+1),
	}
	for i, e := range sorted {
		if i > 0 && tail(e) == tail(sorted[i-1]) && head(e) == head(sorted[i-1]) {
			continue
		}
		ug.FirstOut[tail(e)+1]++
		ug.Head = append(ug.Head, head(e))
		ug.Weight = append(ug.Weight, e.Weight)
		ug.Duration = append(ug.Duration, e.Duration)
		ug.Distance = append(ug.Distance, e.Dist)
		ug.Middle = append(ug.Middle, e.ViaNodeID)
	}
	for i := 0; i < numNodes; i++ {
		ug.FirstOut[i+1] += ug.FirstOut[i]
	}
	return ug
}

func (ug *UpwardGraph) EdgeRange(u int32) (int32, int32) {
	return ug.FirstOut[u], ug.FirstOut[u+1]
}

func (ug *UpwardGraph) EdgeCost(e int32) Cost {
	return NewCost(ug.Weight[e], ug.Duration[e], ug.Distance[e])
}

func (ug *UpwardGraph) NumEdges() int {
	return len(ug.Head)
}

// CHIndex is the immutable contraction hierarchy. Fwd holds, per node x, the
// edges x->y with rank[y] > rank[x]. Bwd holds, per node x, the edges y->x
// with rank[y] > rank[x], stored with head y.
type CHIndex struct {
	Graph Graph
	Rank  []int32
	Fwd   UpwardGraph
	Bwd   UpwardGraph
}

// NewCHIndex splits the contracted edge set into the two upward graphs.
func NewCHIndex(g *Graph, rank []int32, edges []EdgeCH) *CHIndex {
	fwdEdges := make([]EdgeCH, 0, len(edges)/2)
	bwdEdges := make([]EdgeCH, 0, len(edges)/2)
	for _, e := range edges {
		if rank[e.ToNodeID] > rank[e.FromNodeID] {
			fwdEdges = append(fwdEdges, e)
		} else if rank[e.FromNodeID] > rank[e.ToNodeID] {
			bwdEdges = append(bwdEdges, e)
		}
	}

	n := g.NumNodes()
	return &CHIndex{
		Graph: *g,
		Rank:  rank,
		Fwd: newUpwardGraph(n, fwdEdges,
			func(e EdgeCH) int32 { return e.FromNodeID },
			func(e EdgeCH) int32 { return e.ToNodeID }),
		Bwd: newUpwardGraph(n, bwdEdges,
			func(e EdgeCH) int32 { return e.ToNodeID },
			func(e EdgeCH) int32 { return e.FromNodeID }),
	}
}

func (ch *CHIndex) NumNodes() int {
	return len(ch.Rank)
}

// NumShortcuts counts both upward graphs.
func (ch *CHIndex) NumShortcuts() int {
	count := 0
	for _, m := range ch.Fwd.Middle {
		if m >= 0 {
			count++
		}
	}
	for _, m := range ch.Bwd.Middle {
		if m >= 0 {
			count++
		}
	}
	return count
}
