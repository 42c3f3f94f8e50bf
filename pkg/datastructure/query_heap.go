package datastructure

// heapEntry is a node that was inserted during the current search.
type heapEntry[T any] struct {
	node    int32
	key     float64
	data    T
	heapPos int32 // -1 once removed from the heap (settled)
}

// QueryHeap is an addressable binary min heap over node ids. The node index
// is sized to the graph once and only the touched slots are reset by Clear,
// so one heap serves many searches without reallocating.
type QueryHeap[T any] struct {
	index    []int32 // node -> position in inserted, -1 if untouched
	inserted []heapEntry[T]
	heap     []int32 // positions in inserted
}

func NewQueryHeap[T any](numNodes int) *QueryHeap[T] {
	index := make([]int32, numNodes)
	for i := range index {
		index[i] = -1
	}
	return &QueryHeap[T]{
		index:    index,
		inserted: make([]heapEntry[T], 0, 64),
		heap:     make([]int32, 0, 64),
	}
}

// Clear resets the heap for the next search.
func (h *QueryHeap[T]) Clear() {
	for _, e := range h.inserted {
		h.index[e.node] = -1
	}
	h.inserted = h.inserted[:0]
	h.heap = h.heap[:0]
}

func (h *QueryHeap[T]) Capacity() int {
	return len(h.index)
}

func (h *QueryHeap[T]) Size() int {
	return len(h.heap)
}

func (h *QueryHeap[T]) Empty() bool {
	return len(h.heap) == 0
}

func (h *QueryHeap[T]) Insert(node int32, key float64, data T) {
	pos := int32(len(h.inserted))
	h.index[node] = pos
	h.inserted = append(h.inserted, heapEntry[T]{node: node, key: key, data: data, heapPos: int32(len(h.heap))})
	h.heap = append(h.heap, pos)
	h.heapifyUp(len(h.heap) - 1)
}

func (h *QueryHeap[T]) WasInserted(node int32) bool {
	return h.index[node] >= 0
}

// WasRemoved reports whether node was already settled.
func (h *QueryHeap[T]) WasRemoved(node int32) bool {
	pos := h.index[node]
	return pos >= 0 && h.inserted[pos].heapPos < 0
}

func (h *QueryHeap[T]) GetKey(node int32) float64 {
	return h.inserted[h.index[node]].key
}

func (h *QueryHeap[T]) GetData(node int32) *T {
	return &h.inserted[h.index[node]].data
}

// DecreaseKey lowers the key of a node that is still in the heap.
func (h *QueryHeap[T]) DecreaseKey(node int32, key float64, data T) {
	e := &h.inserted[h.index[node]]
	e.key = key
	e.data = data
	h.heapifyUp(int(e.heapPos))
}

func (h *QueryHeap[T]) MinKey() float64 {
	return h.inserted[h.heap[0]].key
}

func (h *QueryHeap[T]) Min() int32 {
	return h.inserted[h.heap[0]].node
}

// DeleteMin removes the node with the smallest key and marks it settled.
func (h *QueryHeap[T]) DeleteMin() int32 {
	top := h.heap[0]
	last := len(h.heap) - 1
	h.swap(0, last)
	h.heap = h.heap[:last]
	if last > 0 {
		h.heapifyDown(0)
	}
	h.inserted[top].heapPos = -1
	return h.inserted[top].node
}

func (h *QueryHeap[T]) less(i, j int) bool {
	return h.inserted[h.heap[i]].key < h.inserted[h.heap[j]].key
}

func (h *QueryHeap[T]) swap(i, j int) {
	h.heap[i], h.heap[j] = h.heap[j], h.heap[i]
	h.inserted[h.heap[i]].heapPos = int32(i)
	h.inserted[h.heap[j]].heapPos = int32(j)
}

// heapifyUp naik ke parent selama key parent lebih besar.
func (h *QueryHeap[T]) heapifyUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !h.less(i, parent) {
			return
		}
		h.swap(i, parent)
		i = parent
	}
}

// heapifyDown turun ke child terkecil selama heap property belum terpenuhi.
func (h *QueryHeap[T]) heapifyDown(i int) {
	n := len(h.heap)
	for {
		smallest := i
		left, right := 2*i+1, 2*i+2
		if left < n && h.less(left, smallest) {
			smallest = left
		}
		if right < n && h.less(right, smallest) {
			smallest = right
		}
		if smallest == i {
			return
		}
		h.swap(i, smallest)
		i = smallest
	}
}
