package contractor

import "errors"

var errEmptyHeap = errors.New("heap is empty")

type PriorityQueueNode[T comparable] struct {
	Rank float64
	Item T
}

// MinHeap binary heap priorityqueue. pos menyimpan index item di heap supaya
// DecreaseKey O(logN).
type MinHeap[T comparable] struct {
	heap []PriorityQueueNode[T]
	pos  map[T]int
}

func NewMinHeap[T comparable]() *MinHeap[T] {
	return &MinHeap[T]{
		heap: make([]PriorityQueueNode[T], 0),
		pos:  make(map[T]int),
	}
}

func (h *MinHeap[T]) parent(index int) int {
	return (index - 1) / 2
}

func (h *MinHeap[T]) leftChild(index int) int {
	return 2*index + 1
}

func (h *MinHeap[T]) rightChild(index int) int {
	return 2*index + 2
}

func (h *MinHeap[T]) swap(i, j int) {
	h.heap[i], h.heap[j] = h.heap[j], h.heap[i]
	h.pos[h.heap[i].Item] = i
	h.pos[h.heap[j].Item] = j
}

// heapifyUp swap dengan parent selama rank parent lebih besar.
func (h *MinHeap[T]) heapifyUp(index int) {
	for index != 0 && h.heap[index].Rank < h.heap[h.parent(index)].Rank {
		h.swap(index, h.parent(index))
		index = h.parent(index)
	}
}

// heapifyDown swap dengan child terkecil selama heap property belum terpenuhi.
func (h *MinHeap[T]) heapifyDown(index int) {
	for {
		smallest := index
		left := h.leftChild(index)
		right := h.rightChild(index)

		if left < len(h.heap) && h.heap[left].Rank < h.heap[smallest].Rank {
			smallest = left
		}
		if right < len(h.heap) && h.heap[right].Rank < h.heap[smallest].Rank {
			smallest = right
		}
		if smallest == index {
			return
		}
		h.swap(index, smallest)
		index = smallest
	}
}

func (h *MinHeap[T]) Size() int {
	return len(h.heap)
}

// Insert adds item, or updates its rank when it is already queued.
func (h *MinHeap[T]) Insert(item PriorityQueueNode[T]) {
	if i, ok := h.pos[item.Item]; ok {
		old := h.heap[i].Rank
		h.heap[i].Rank = item.Rank
		if item.Rank < old {
			h.heapifyUp(i)
		} else {
			h.heapifyDown(i)
		}
		return
	}
	h.heap = append(h.heap, item)
	h.pos[item.Item] = len(h.heap) - 1
	h.heapifyUp(len(h.heap) - 1)
}

func (h *MinHeap[T]) GetMin() (PriorityQueueNode[T], error) {
	if len(h.heap) == 0 {
		return PriorityQueueNode[T]{}, errEmptyHeap
	}
	return h.heap[0], nil
}

func (h *MinHeap[T]) ExtractMin() (PriorityQueueNode[T], error) {
	if len(h.heap) == 0 {
		return PriorityQueueNode[T]{}, errEmptyHeap
	}
	root := h.heap[0]
	h.swap(0, len(h.heap)-1)
	h.heap = h.heap[:len(h.heap)-1]
	delete(h.pos, root.Item)
	if len(h.heap) > 0 {
		h.heapifyDown(0)
	}
	return root, nil
}

func (h *MinHeap[T]) DecreaseKey(item PriorityQueueNode[T]) error {
	i, ok := h.pos[item.Item]
	if !ok {
		return errors.New("item not found in heap")
	}
	if item.Rank > h.heap[i].Rank {
		return errors.New("new rank is greater than current rank")
	}
	h.heap[i].Rank = item.Rank
	h.heapifyUp(i)
	return nil
}
