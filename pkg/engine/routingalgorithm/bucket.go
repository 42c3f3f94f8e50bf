package routingalgorithm

import (
	"sort"
	"sync"

	"github.com/lintang-b-s/navigatorx-table/pkg/concurrent"
	"github.com/lintang-b-s/navigatorx-table/pkg/datastructure"
)

// searchData is carried next to the weight key of every heap entry.
type searchData struct {
	duration   float64
	distance   float64
	fromClique bool
}

// bucketEntry records that target can be reached from node at cost.
type bucketEntry struct {
	node   int32
	target int32
	cost   datastructure.Cost
}

// bucketTable holds the entries of every backward search sorted by
// (node, target), so the entries of one node are contiguous.
type bucketTable struct {
	entries []bucketEntry
}

func newBucketTable(parts [][]bucketEntry) *bucketTable {
	total := 0
	for _, p := range parts {
		total += len(p)
	}
	entries := make([]bucketEntry, 0, total)
	for _, p := range parts {
		entries = append(entries, p...)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].node != entries[j].node {
			return entries[i].node < entries[j].node
		}
		return entries[i].target < entries[j].target
	})
	return &bucketTable{entries: entries}
}

// find returns the bucket of node.
func (bt *bucketTable) find(node int32) []bucketEntry {
	lo := sort.Search(len(bt.entries), func(i int) bool {
		return bt.entries[i].node >= node
	})
	hi := lo
	for hi < len(bt.entries) && bt.entries[hi].node == node {
		hi++
	}
	return bt.entries[lo:hi]
}

func (bt *bucketTable) size() int {
	return len(bt.entries)
}

// bucketSearch is one index specific pair of searches. backward fills the
// bucket of every node it settles for target column; forward writes row of
// table from the buckets.
type bucketSearch interface {
	backward(heap *datastructure.QueryHeap[searchData], column int, target datastructure.PhantomNode) []bucketEntry
	forward(heap *datastructure.QueryHeap[searchData], row int, source datastructure.PhantomNode,
		buckets *bucketTable, table *datastructure.CostTable)
}

// heapPool hands out one query heap per worker, sized to the node count.
type heapPool struct {
	pool sync.Pool
}

func newHeapPool(numNodes int) *heapPool {
	return &heapPool{
		pool: sync.Pool{
			New: func() any {
				return datastructure.NewQueryHeap[searchData](numNodes)
			},
		},
	}
}

func (hp *heapPool) get() *datastructure.QueryHeap[searchData] {
	h := hp.pool.Get().(*datastructure.QueryHeap[searchData])
	h.Clear()
	return h
}

func (hp *heapPool) put(h *datastructure.QueryHeap[searchData]) {
	hp.pool.Put(h)
}

/*
runManyToMany runs every backward search in parallel, waits for all of
them, merges the buckets and only then starts the forward searches. Rows
are disjoint, so forward workers write the table without locking.
*/
func runManyToMany(bs bucketSearch, heaps *heapPool, workers int,
	sources, targets []datastructure.PhantomNode) *datastructure.CostTable {
	table := datastructure.NewCostTable(len(sources), len(targets))
	if len(sources) == 0 || len(targets) == 0 {
		return table
	}

	backwardPool := concurrent.NewWorkerPool[concurrent.SearchJob, []bucketEntry](workers, len(targets))
	for j := range targets {
		backwardPool.AddJob(concurrent.NewSearchJob(j))
	}
	backwardPool.Close()
	backwardPool.Start(func(job concurrent.SearchJob) []bucketEntry {
		heap := heaps.get()
		defer heaps.put(heap)
		return bs.backward(heap, job.Index, targets[job.Index])
	})
	backwardPool.Wait()

	parts := make([][]bucketEntry, 0, len(targets))
	for part := range backwardPool.CollectResults() {
		parts = append(parts, part)
	}
	buckets := newBucketTable(parts)

	forwardPool := concurrent.NewWorkerPool[concurrent.SearchJob, int](workers, len(sources))
	for i := range sources {
		forwardPool.AddJob(concurrent.NewSearchJob(i))
	}
	forwardPool.Close()
	forwardPool.Start(func(job concurrent.SearchJob) int {
		heap := heaps.get()
		defer heaps.put(heap)
		bs.forward(heap, job.Index, sources[job.Index], buckets, table)

		for j, target := range targets {
			if direct, ok := datastructure.DirectCost(sources[job.Index], target); ok {
				table.Relax(job.Index, j, direct)
			}
		}
		return job.Index
	})
	forwardPool.Wait()

	return table
}

// relaxNode inserts node or lowers its key. Settled nodes are left alone.
func relaxNode(heap *datastructure.QueryHeap[searchData], node int32, key float64, data searchData) {
	if !heap.WasInserted(node) {
		heap.Insert(node, key, data)
		return
	}
	if !heap.WasRemoved(node) && key < heap.GetKey(node) {
		heap.DecreaseKey(node, key, data)
	}
}

// seedTarget puts the tail of every segment of target into the heap with
// the cost from the tail to the target point.
func seedTarget(heap *datastructure.QueryHeap[searchData], target datastructure.PhantomNode) {
	for _, seg := range target.Segments() {
		relaxNode(heap, seg.Tail, seg.Offset.Weight, searchData{
			duration: seg.Offset.Duration,
			distance: seg.Offset.Distance,
		})
	}
}

// seedSource puts the head of every segment of source into the heap with
// the cost from the source point to the head.
func seedSource(heap *datastructure.QueryHeap[searchData], source datastructure.PhantomNode) {
	for _, seg := range source.Segments() {
		rest := seg.Remaining()
		relaxNode(heap, seg.Head, rest.Weight, searchData{
			duration: rest.Duration,
			distance: rest.Distance,
		})
	}
}

// scanBuckets combines the settled forward node with every bucket entry.
func scanBuckets(buckets *bucketTable, node int32, key float64, data *searchData, row int, table *datastructure.CostTable) {
	for _, b := range buckets.find(node) {
		table.Relax(row, int(b.target), datastructure.NewCost(
			key+b.cost.Weight,
			data.duration+b.cost.Duration,
			data.distance+b.cost.Distance,
		))
	}
}
