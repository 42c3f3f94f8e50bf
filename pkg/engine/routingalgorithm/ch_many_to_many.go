package routingalgorithm

import (
	"github.com/lintang-b-s/navigatorx-table/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-table/pkg/util"
)

// CHManyToMany is the bucket based many-to-many search over a contraction
// hierarchy.
type CHManyToMany struct {
	ch      *datastructure.CHIndex
	workers int
	heaps   *heapPool
}

func NewCHManyToMany(ch *datastructure.CHIndex, workers int) *CHManyToMany {
	return &CHManyToMany{
		ch:      ch,
		workers: util.NumWorkers(workers),
		heaps:   newHeapPool(ch.NumNodes()),
	}
}

func (c *CHManyToMany) Algorithm() datastructure.Algorithm {
	return datastructure.AlgorithmCH
}

func (c *CHManyToMany) ManyToMany(sources, targets []datastructure.PhantomNode) *datastructure.CostTable {
	return runManyToMany(c, c.heaps, c.workers, sources, targets)
}

// stallAtNode reports whether node can be reached more cheaply through a
// higher ranked neighbour found in the opposite graph: key(y) + w < key(node).
func stallAtNode(heap *datastructure.QueryHeap[searchData], opposite *datastructure.UpwardGraph, node int32, key float64) bool {
	start, end := opposite.EdgeRange(node)
	for e := start; e < end; e++ {
		y := opposite.Head[e]
		if heap.WasInserted(y) && heap.GetKey(y)+opposite.Weight[e] < key {
			return true
		}
	}
	return false
}

// backward walks Bwd from the target. Every settled node gets a bucket entry,
// stalled or not; a stalled node is not expanded.
func (c *CHManyToMany) backward(heap *datastructure.QueryHeap[searchData], column int,
	target datastructure.PhantomNode) []bucketEntry {
	seedTarget(heap, target)

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

		if stallAtNode(heap, &c.ch.Fwd, node, key) {
			continue
		}
		c.relaxUpward(heap, &c.ch.Bwd, node, key, data)
	}
	return entries
}

// forward walks Fwd from the source and joins with the buckets of every
// settled node.
func (c *CHManyToMany) forward(heap *datastructure.QueryHeap[searchData], row int, source datastructure.PhantomNode,
	buckets *bucketTable, table *datastructure.CostTable) {
	seedSource(heap, source)

	for !heap.Empty() {
		key := heap.MinKey()
		node := heap.DeleteMin()
		data := *heap.GetData(node)

		scanBuckets(buckets, node, key, &data, row, table)

		if stallAtNode(heap, &c.ch.Bwd, node, key) {
			continue
		}
		c.relaxUpward(heap, &c.ch.Fwd, node, key, data)
	}
}

func (c *CHManyToMany) relaxUpward(heap *datastructure.QueryHeap[searchData], ug *datastructure.UpwardGraph,
	node int32, key float64, data searchData) {
	start, end := ug.EdgeRange(node)
	for e := start; e < end; e++ {
		relaxNode(heap, ug.Head[e], key+ug.Weight[e], searchData{
			duration: data.duration + ug.Duration[e],
			distance: data.distance + ug.Distance[e],
		})
	}
}
