package snap

import (
	"context"
	"errors"
	"fmt"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/lintang-b-s/navigatorx-table/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-table/pkg/geo"
	"github.com/lintang-b-s/navigatorx-table/pkg/kv"
	"github.com/lintang-b-s/navigatorx-table/pkg/util"
	"go.uber.org/zap"
)

var ErrNoSegment = errors.New("no road segment within snapping radius")

const (
	DefaultMaxSnapRadius      = 500.0 // meter
	DefaultSmallComponentSize = 1000
	DefaultCacheSize          = 1 << 16

	cachePrecision = 6
)

// CandidateIndex returns ids of edges that may lie within radius meters of c.
// It can over-approximate; the locator measures the exact distance.
type CandidateIndex interface {
	Candidates(ctx context.Context, c datastructure.Coordinate, radius float64) ([]int32, error)
}

type LocatorOptions struct {
	MaxSnapRadius      float64
	SmallComponentSize int
	CacheSize          int
}

// Locator snaps coordinates onto the nearest usable road segment.
type Locator struct {
	graph  *datastructure.Graph
	index  CandidateIndex
	opts   LocatorOptions
	cache  *lru.Cache[datastructure.Coordinate, datastructure.PhantomNode]
	logger *zap.Logger
}

func NewLocator(g *datastructure.Graph, index CandidateIndex, opts LocatorOptions, logger *zap.Logger) (*Locator, error) {
	if opts.MaxSnapRadius <= 0 {
		opts.MaxSnapRadius = DefaultMaxSnapRadius
	}
	if opts.SmallComponentSize <= 0 {
		opts.SmallComponentSize = DefaultSmallComponentSize
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultCacheSize
	}
	cache, err := lru.New[datastructure.Coordinate, datastructure.PhantomNode](opts.CacheSize)
	if err != nil {
		return nil, err
	}
	return &Locator{
		graph:  g,
		index:  index,
		opts:   opts,
		cache:  cache,
		logger: logger,
	}, nil
}

type candidate struct {
	edgeID int32
	proj   geo.Projection
	tiny   bool
}

// Locate returns the phantom node of the closest segment. A segment in a big
// strongly connected component wins over a closer one in a tiny component.
func (l *Locator) Locate(ctx context.Context, c datastructure.Coordinate) (datastructure.PhantomNode, error) {
	key := datastructure.NewCoordinate(util.RoundFloat(c.Lat, cachePrecision), util.RoundFloat(c.Lon, cachePrecision))
	if pn, ok := l.cache.Get(key); ok {
		pn.InputLocation = c
		return pn, nil
	}

	ids, err := l.index.Candidates(ctx, c, l.opts.MaxSnapRadius)
	if errors.Is(err, kv.ErrEdgesNotFound) || (err == nil && len(ids) == 0) {
		return datastructure.NewInvalidPhantomNode(c), ErrNoSegment
	}
	if err != nil {
		return datastructure.NewInvalidPhantomNode(c), fmt.Errorf("candidate lookup: %w", err)
	}

	cands := make([]candidate, 0, len(ids))
	for _, id := range ids {
		e := l.graph.GetEdge(id)
		proj := geo.ProjectPointToSegment(l.graph.GetCoordinate(e.From), l.graph.GetCoordinate(e.To), c)
		if proj.Distance > l.opts.MaxSnapRadius {
			continue
		}
		cands = append(cands, candidate{
			edgeID: id,
			proj:   proj,
			tiny:   l.graph.IsTinyComponent(e.From, l.opts.SmallComponentSize),
		})
	}
	if len(cands) == 0 {
		return datastructure.NewInvalidPhantomNode(c), ErrNoSegment
	}

	sort.Slice(cands, func(i, j int) bool {
		if cands[i].tiny != cands[j].tiny {
			return !cands[i].tiny
		}
		if cands[i].proj.Distance != cands[j].proj.Distance {
			return cands[i].proj.Distance < cands[j].proj.Distance
		}
		return cands[i].edgeID < cands[j].edgeID
	})

	best := cands[0]
	pn := datastructure.NewPhantomNode(l.graph, best.edgeID, best.proj.Ratio, best.proj.Location, c, best.proj.Distance)
	l.cache.Add(key, pn)
	return pn, nil
}

// LocateAll snaps every coordinate. Coordinates without a segment get an
// invalid phantom node; the table engine decides what that means.
func (l *Locator) LocateAll(ctx context.Context, coords []datastructure.Coordinate) ([]datastructure.PhantomNode, error) {
	phantoms := make([]datastructure.PhantomNode, len(coords))
	for i, c := range coords {
		pn, err := l.Locate(ctx, c)
		if err != nil && !errors.Is(err, ErrNoSegment) {
			return nil, err
		}
		if err != nil {
			l.logger.Debug("coordinate not snapped", zap.Int("index", i), zap.Float64("lat", c.Lat), zap.Float64("lon", c.Lon))
		}
		phantoms[i] = pn
	}
	return phantoms, nil
}
