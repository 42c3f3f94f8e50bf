package datastructure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/exp/rand"
)

func generateRandomInteger(rng *rand.Rand, min int, max int) int {
	return min + rng.Intn(max-min)
}

func TestQueryHeap(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	pq := NewQueryHeap[int](10000)

	for i := 0; i < 10000; i++ {
		pq.Insert(int32(i), float64(generateRandomInteger(rng, 0, 10000)), i)
	}
	assert.Equal(t, 10000, pq.Size())

	prevKey := pq.MinKey()
	prev := pq.DeleteMin()
	assert.True(t, pq.WasRemoved(prev))
	for !pq.Empty() {
		key := pq.MinKey()
		node := pq.DeleteMin()
		assert.LessOrEqual(t, prevKey, key)
		assert.Equal(t, int(node), *pq.GetData(node))
		prevKey = key
	}
}

func TestQueryHeapDecreaseKeyAndClear(t *testing.T) {
	pq := NewQueryHeap[string](5)
	pq.Insert(0, 10, "a")
	pq.Insert(1, 5, "b")
	pq.Insert(2, 7, "c")

	pq.DecreaseKey(0, 1, "a2")
	assert.Equal(t, int32(0), pq.Min())
	assert.Equal(t, 1.0, pq.MinKey())
	assert.Equal(t, "a2", *pq.GetData(0))

	assert.Equal(t, int32(0), pq.DeleteMin())
	assert.Equal(t, int32(1), pq.DeleteMin())
	assert.False(t, pq.WasRemoved(2))
	assert.True(t, pq.WasInserted(2))
	assert.False(t, pq.WasInserted(3))

	pq.Clear()
	assert.True(t, pq.Empty())
	for i := int32(0); i < 5; i++ {
		assert.False(t, pq.WasInserted(i))
	}

	pq.Insert(4, 3, "d")
	assert.Equal(t, int32(4), pq.DeleteMin())
}
