package contractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/exp/rand"
)

func generateRandomInteger(rng *rand.Rand, min int, max int) int {
	return min + rng.Intn(max-min)
}

func TestPriorityQueueDecreaseKey(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	pq := NewMinHeap[int32]()

	itemSlice := make([]PriorityQueueNode[int32], 10000)
	for i := 0; i < 10000; i++ {
		item := PriorityQueueNode[int32]{Rank: float64(generateRandomInteger(rng, 10000, 100000000)), Item: int32(i)}
		pq.Insert(item)
		itemSlice[i] = item
	}

	for i := 0; i < 10000; i++ {
		itemSlice[i].Rank = float64(generateRandomInteger(rng, 0, int(itemSlice[i].Rank)))
		assert.NoError(t, pq.DecreaseKey(itemSlice[i]))
	}

	prevItem, err := pq.ExtractMin()
	assert.NoError(t, err)
	for i := 1; i < 10000; i++ {
		item, err := pq.ExtractMin()
		assert.NoError(t, err)
		assert.LessOrEqual(t, prevItem.Rank, item.Rank)
		prevItem = item
	}

	_, err = pq.ExtractMin()
	assert.Error(t, err)
}

func TestPriorityQueueInsertUpdatesRank(t *testing.T) {
	pq := NewMinHeap[int32]()
	pq.Insert(PriorityQueueNode[int32]{Rank: 1, Item: 7})
	pq.Insert(PriorityQueueNode[int32]{Rank: 2, Item: 8})
	pq.Insert(PriorityQueueNode[int32]{Rank: 5, Item: 7})

	assert.Equal(t, 2, pq.Size())
	min, err := pq.GetMin()
	assert.NoError(t, err)
	assert.Equal(t, int32(8), min.Item)
}
