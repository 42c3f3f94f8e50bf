package snap

import (
	"context"
	"math"

	"github.com/dhconnelly/rtreego"
	"github.com/lintang-b-s/navigatorx-table/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-table/pkg/geo"
	"go.uber.org/zap"
)

const (
	rtreeMinChildren = 25
	rtreeMaxChildren = 50
	rectPadding      = 1e-7
)

// edgeLeaf is one road segment stored in the r-tree, keyed by lat/lon.
type edgeLeaf struct {
	edgeID int32
	rect   rtreego.Rect
}

func (l *edgeLeaf) Bounds() rtreego.Rect {
	return l.rect
}

// RtreeIndex keeps every edge of the graph in an in-memory r-tree. Twin
// edges share geometry so only one of each pair is inserted.
type RtreeIndex struct {
	tree *rtreego.Rtree
}

func NewRtreeIndex(g *datastructure.Graph, logger *zap.Logger) *RtreeIndex {
	leaves := make([]rtreego.Spatial, 0, g.NumEdges())
	for _, e := range g.Edges {
		if twin := g.Twin[e.ID]; twin >= 0 && twin < e.ID {
			continue
		}
		a, b := g.GetCoordinate(e.From), g.GetCoordinate(e.To)
		rect, err := rtreego.NewRectFromPoints(
			rtreego.Point{math.Min(a.Lat, b.Lat) - rectPadding, math.Min(a.Lon, b.Lon) - rectPadding},
			rtreego.Point{math.Max(a.Lat, b.Lat) + rectPadding, math.Max(a.Lon, b.Lon) + rectPadding},
		)
		if err != nil {
			logger.Warn("skip edge with invalid bounds", zap.Int32("edge", e.ID), zap.Error(err))
			continue
		}
		leaves = append(leaves, &edgeLeaf{edgeID: e.ID, rect: rect})
	}

	logger.Info("r-tree built", zap.Int("segments", len(leaves)))
	return &RtreeIndex{
		tree: rtreego.NewTree(2, rtreeMinChildren, rtreeMaxChildren, leaves...),
	}
}

// Candidates returns the edges whose bounding box intersects the square of
// half-size radius meters around c.
func (ri *RtreeIndex) Candidates(ctx context.Context, c datastructure.Coordinate, radius float64) ([]int32, error) {
	lo, hi := geo.BoundingBox(c, radius)
	bound, err := rtreego.NewRectFromPoints(rtreego.Point{lo.Lat, lo.Lon}, rtreego.Point{hi.Lat, hi.Lon})
	if err != nil {
		return nil, err
	}

	found := ri.tree.SearchIntersect(bound)
	ids := make([]int32, 0, len(found))
	for _, s := range found {
		ids = append(ids, s.(*edgeLeaf).edgeID)
	}
	return ids, ctx.Err()
}

func (ri *RtreeIndex) Size() int {
	return ri.tree.Size()
}
