package partitioner

import (
	"testing"

	"github.com/lintang-b-s/navigatorx-table/pkg/datastructure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/exp/rand"
)

func TestNewH3PartitionerValidation(t *testing.T) {
	cases := []struct {
		name string
		res  []int
		ok   bool
	}{
		{"empty", nil, false},
		{"increasing", []int{5, 7}, false},
		{"out of range", []int{16}, false},
		{"valid", []int{9, 7, 5}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := NewH3Partitioner(c.res, zap.NewNop())
			if c.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestH3PartitionIsNested(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	nodes := make([]datastructure.Coordinate, 500)
	for i := range nodes {
		nodes[i] = datastructure.NewCoordinate(-7.80+rng.Float64()*0.3, 110.30+rng.Float64()*0.3)
	}
	g := datastructure.NewGraph(nodes, nil)

	hp, err := NewH3Partitioner([]int{9, 7, 5}, zap.NewNop())
	require.NoError(t, err)
	p, err := hp.Partition(g)
	require.NoError(t, err)

	assert.Equal(t, 3, p.NumLevels())
	assert.Greater(t, p.NumCells[0], p.NumCells[1])
	assert.GreaterOrEqual(t, p.NumCells[1], p.NumCells[2])
	for u := int32(0); u < int32(len(nodes)); u++ {
		for v := int32(0); v < int32(len(nodes)); v += 37 {
			if p.Cell(1, u) == p.Cell(1, v) {
				assert.Equal(t, 0, p.HighestDifferentLevel(u, v))
			}
		}
	}
}
