package partitioner

import (
	"fmt"

	"github.com/lintang-b-s/navigatorx-table/pkg/datastructure"
	"github.com/uber/h3-go/v4"
	"go.uber.org/zap"
)

// H3Partitioner derives nested cells from the H3 hierarchy. Level 1 uses the
// finest resolution; every coarser level takes the parent of the node's
// level-1 cell, so the nesting is exact even though H3 children do not
// cover their parent geometrically.
type H3Partitioner struct {
	resolutions []int
	logger      *zap.Logger
}

// NewH3Partitioner expects strictly decreasing resolutions, finest first,
// e.g. []int{9, 7, 5}.
func NewH3Partitioner(resolutions []int, logger *zap.Logger) (*H3Partitioner, error) {
	if len(resolutions) == 0 {
		return nil, fmt.Errorf("at least one h3 resolution is required")
	}
	for i, r := range resolutions {
		if r < 0 || r > 15 {
			return nil, fmt.Errorf("h3 resolution %d out of range [0,15]", r)
		}
		if i > 0 && r >= resolutions[i-1] {
			return nil, fmt.Errorf("h3 resolutions must be strictly decreasing, got %v", resolutions)
		}
	}
	return &H3Partitioner{
		resolutions: resolutions,
		logger:      logger,
	}, nil
}

func (hp *H3Partitioner) Partition(g *datastructure.Graph) (*datastructure.MultiLevelPartition, error) {
	n := g.NumNodes()
	finest := make([]h3.Cell, n)
	for u := 0; u < n; u++ {
		c := g.Nodes[u]
		finest[u] = h3.LatLngToCell(h3.NewLatLng(c.Lat, c.Lon), hp.resolutions[0])
	}

	cellIDs := make([][]int32, len(hp.resolutions))
	for l, res := range hp.resolutions {
		dense := make(map[h3.Cell]int32)
		ids := make([]int32, n)
		for u := 0; u < n; u++ {
			cell := finest[u]
			if l > 0 {
				cell = cell.Parent(res)
			}
			id, ok := dense[cell]
			if !ok {
				id = int32(len(dense))
				dense[cell] = id
			}
			ids[u] = id
		}
		cellIDs[l] = ids
		hp.logger.Info("partition level",
			zap.Int("level", l+1),
			zap.Int("resolution", res),
			zap.Int("cells", len(dense)))
	}

	return datastructure.NewMultiLevelPartition(cellIDs)
}
