package routingalgorithm

import (
	"github.com/lintang-b-s/navigatorx-table/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-table/pkg/util"
)

// MLDManyToMany is the bucket based many-to-many search over the multi-level
// overlay. Around its own endpoint a search uses original edges; further
// away it jumps over whole cells with the clique arcs of the highest level
// separating the node from the endpoint.
type MLDManyToMany struct {
	mld     *datastructure.MLDIndex
	workers int
	heaps   *heapPool
}

func NewMLDManyToMany(mld *datastructure.MLDIndex, workers int) *MLDManyToMany {
	return &MLDManyToMany{
		mld:     mld,
		workers: util.NumWorkers(workers),
		heaps:   newHeapPool(mld.Graph.NumNodes()),
	}
}

func (m *MLDManyToMany) Algorithm() datastructure.Algorithm {
	return datastructure.AlgorithmMLD
}

func (m *MLDManyToMany) ManyToMany(sources, targets []datastructure.PhantomNode) *datastructure.CostTable {
	return runManyToMany(m, m.heaps, m.workers, sources, targets)
}

// endpointNodes are the graph nodes of the segments a phantom lies on.
func endpointNodes(pn datastructure.PhantomNode) []int32 {
	nodes := make([]int32, 0, 2)
	for _, seg := range pn.Segments() {
		for _, u := range [2]int32{seg.Tail, seg.Head} {
			dup := false
			for _, v := range nodes {
				if v == u {
					dup = true
					break
				}
			}
			if !dup {
				nodes = append(nodes, u)
			}
		}
	}
	return nodes
}

// queryLevel is the lowest of the highest different levels between node and
// the endpoints. Level 0 means node shares its leaf cell with an endpoint.
func (m *MLDManyToMany) queryLevel(endpoints []int32, node int32) int {
	level := m.mld.Partition.NumLevels()
	for _, u := range endpoints {
		if l := m.mld.Partition.HighestDifferentLevel(u, node); l < level {
			level = l
		}
	}
	return level
}

func (m *MLDManyToMany) backward(heap *datastructure.QueryHeap[searchData], column int,
	target datastructure.PhantomNode) []bucketEntry {
	seedTarget(heap, target)
	endpoints := endpointNodes(target)

	entries := make([]bucketEntry, 0, 64)
	for !heap.Empty() {
		key := heap.MinKey()
		node := heap.DeleteMin()
		data := *heap.GetData(node)

		entries = append(entries, bucketEntry{
			node:   node,
			target: int32(column),
			cost:   datastructure.NewCost(key, data.duration, data.distance),
		})
		m.relaxBackward(heap, m.queryLevel(endpoints, node), node, key, data)
	}
	return entries
}

func (m *MLDManyToMany) forward(heap *datastructure.QueryHeap[searchData], row int, source datastructure.PhantomNode,
	buckets *bucketTable, table *datastructure.CostTable) {
	seedSource(heap, source)
	endpoints := endpointNodes(source)

	for !heap.Empty() {
		key := heap.MinKey()
		node := heap.DeleteMin()
		data := *heap.GetData(node)

		scanBuckets(buckets, node, key, &data, row, table)
		m.relaxForward(heap, m.queryLevel(endpoints, node), node, key, data)
	}
}

/*
relaxForward at level l > 0 follows the clique arcs of the node's level-l
cell, unless the node was itself reached by one, and the original edges that
leave a cell of level >= l. At level 0 every original edge is followed.
*/
func (m *MLDManyToMany) relaxForward(heap *datastructure.QueryHeap[searchData], level int, node int32,
	key float64, data searchData) {
	p := &m.mld.Partition
	g := &m.mld.Graph

	if level >= 1 && !data.fromClique {
		m.mld.Overlay.ForOutCliqueArcs(p, level, node, func(v int32, cost datastructure.Cost) {
			relaxNode(heap, v, key+cost.Weight, searchData{
				duration:   data.duration + cost.Duration,
				distance:   data.distance + cost.Distance,
				fromClique: true,
			})
		})
	}

	for _, e := range g.OutEdges(node) {
		if level > 0 && p.HighestDifferentLevel(node, e.To) < level {
			continue
		}
		relaxNode(heap, e.To, key+e.Weight, searchData{
			duration: data.duration + e.Duration,
			distance: data.distance + e.Distance,
		})
	}
}

// relaxBackward mirrors relaxForward on reversed clique arcs and in-edges.
func (m *MLDManyToMany) relaxBackward(heap *datastructure.QueryHeap[searchData], level int, node int32,
	key float64, data searchData) {
	p := &m.mld.Partition
	g := &m.mld.Graph

	if level >= 1 && !data.fromClique {
		m.mld.Overlay.ForInCliqueArcs(p, level, node, func(v int32, cost datastructure.Cost) {
			relaxNode(heap, v, key+cost.Weight, searchData{
				duration:   data.duration + cost.Duration,
				distance:   data.distance + cost.Distance,
				fromClique: true,
			})
		})
	}

	for _, id := range g.InEdgeIDs(node) {
		e := g.GetEdge(id)
		if level > 0 && p.HighestDifferentLevel(e.From, node) < level {
			continue
		}
		relaxNode(heap, e.From, key+e.Weight, searchData{
			duration: data.duration + e.Duration,
			distance: data.distance + e.Distance,
		})
	}
}
