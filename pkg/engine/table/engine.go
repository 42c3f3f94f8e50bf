package table

import (
	"context"
	"time"

	"github.com/lintang-b-s/navigatorx-table/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-table/pkg/engine/routingalgorithm"
	"github.com/lintang-b-s/navigatorx-table/pkg/server"
	"go.uber.org/zap"
)

type Options struct {
	MaxMatrixSize     int
	UnsnappablePolicy UnsnappablePolicy
}

// Engine validates table requests, runs them on the router it was built
// with and assembles the matrix. It keeps no state between queries.
type Engine struct {
	router routingalgorithm.ManyToManyRouter
	opts   Options
	logger *zap.Logger
}

func NewEngine(router routingalgorithm.ManyToManyRouter, opts Options, logger *zap.Logger) *Engine {
	return &Engine{
		router: router,
		opts:   opts,
		logger: logger,
	}
}

func (e *Engine) Algorithm() datastructure.Algorithm {
	return e.router.Algorithm()
}

func (e *Engine) MaxMatrixSize() int {
	return e.opts.MaxMatrixSize
}

func resolveSubset(subset []int, n int, what string) ([]int, error) {
	if subset == nil {
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		return all, nil
	}
	if len(subset) == 0 {
		return nil, server.NewErrorf(server.ErrInvalidRequest, "%s list must not be empty", what)
	}
	for _, idx := range subset {
		if idx < 0 || idx >= n {
			return nil, server.NewErrorf(server.ErrInvalidRequest,
				"%s index %d out of range, %d coordinates given", what, idx, n)
		}
	}
	return subset, nil
}

// ComputeTable returns the full |sources| x |destinations| matrix or an
// error, never a partial matrix.
func (e *Engine) ComputeTable(ctx context.Context, phantoms []datastructure.PhantomNode, params Params) (*Matrix, error) {
	if len(phantoms) == 0 {
		return nil, server.NewErrorf(server.ErrInvalidRequest, "no coordinates given")
	}
	sources, err := resolveSubset(params.Sources, len(phantoms), "source")
	if err != nil {
		return nil, err
	}
	destinations, err := resolveSubset(params.Destinations, len(phantoms), "destination")
	if err != nil {
		return nil, err
	}
	if params.Annotations&(AnnotationDuration|AnnotationDistance) == 0 {
		return nil, server.NewErrorf(server.ErrInvalidRequest, "at least one of duration or distance must be requested")
	}

	if err := CheckSize(len(phantoms), params, e.opts.MaxMatrixSize); err != nil {
		return nil, err
	}

	scale := params.ScaleFactor
	if scale < 0 {
		return nil, server.NewErrorf(server.ErrInvalidRequest, "scale factor must be positive")
	}
	if scale == 0 {
		scale = 1
	}

	if e.opts.UnsnappablePolicy == PolicyReject {
		if idx, ok := firstInvalid(phantoms, sources, destinations); ok {
			return nil, server.NewErrorf(server.ErrNoRoute, "Could not find a matching segment for coordinate %d", idx)
		}
	}

	srcPhantoms, srcRows := validPhantoms(phantoms, sources)
	dstPhantoms, dstCols := validPhantoms(phantoms, destinations)
	if len(srcPhantoms) == 0 {
		return nil, server.NewErrorf(server.ErrInvalidRequest, "no valid source after snapping")
	}
	if len(dstPhantoms) == 0 {
		return nil, server.NewErrorf(server.ErrInvalidRequest, "no valid destination after snapping")
	}

	if err := ctx.Err(); err != nil {
		return nil, server.WrapErrorf(err, server.ErrInternalServerError, "table query cancelled")
	}

	st := time.Now()
	costs := e.router.ManyToMany(srcPhantoms, dstPhantoms)

	m := newMatrix(sources, destinations, params.Annotations)
	for i := 0; i < m.Rows; i++ {
		for j := 0; j < m.Cols; j++ {
			m.setUnreachable(i, j)
		}
	}

	unreachable := 0
	for ri, row := range srcRows {
		for ci, col := range dstCols {
			s, d := phantoms[sources[row]], phantoms[destinations[col]]
			if s.ComponentID != d.ComponentID || !costs.IsReachable(ri, ci) {
				unreachable++
				continue
			}
			c := costs.Get(ri, ci)
			m.set(row, col, c.Duration*scale, c.Distance)
		}
	}

	e.logger.Debug("table computed",
		zap.Stringer("algorithm", e.router.Algorithm()),
		zap.Int("sources", len(sources)),
		zap.Int("destinations", len(destinations)),
		zap.Int("unreachable", unreachable),
		zap.Duration("elapsed", time.Since(st)))
	return m, nil
}

// firstInvalid returns the smallest coordinate index used by the request
// whose phantom is invalid.
func firstInvalid(phantoms []datastructure.PhantomNode, sources, destinations []int) (int, bool) {
	first := -1
	for _, list := range [2][]int{sources, destinations} {
		for _, idx := range list {
			if !phantoms[idx].IsValid() && (first < 0 || idx < first) {
				first = idx
			}
		}
	}
	return first, first >= 0
}

// validPhantoms keeps the valid phantoms of subset and returns, per kept
// phantom, its position in subset.
func validPhantoms(phantoms []datastructure.PhantomNode, subset []int) ([]datastructure.PhantomNode, []int) {
	kept := make([]datastructure.PhantomNode, 0, len(subset))
	pos := make([]int, 0, len(subset))
	for i, idx := range subset {
		if phantoms[idx].IsValid() {
			kept = append(kept, phantoms[idx])
			pos = append(pos, i)
		}
	}
	return kept, pos
}

// EffectiveMaxSize combines the configured limit with a per-request one. A
// request may only tighten the limit; 0 means unlimited.
func EffectiveMaxSize(configured, requested int) int {
	switch {
	case requested <= 0:
		return configured
	case configured <= 0:
		return requested
	}
	return min(configured, requested)
}

// CheckSize rejects a request whose matrix would exceed the limit with
// TooBig. It only needs the coordinate count, so callers run it before
// snapping.
func CheckSize(numCoords int, params Params, configured int) error {
	rows, cols := numCoords, numCoords
	if params.Sources != nil {
		rows = len(params.Sources)
	}
	if params.Destinations != nil {
		cols = len(params.Destinations)
	}
	maxSize := EffectiveMaxSize(configured, params.MaxMatrixSize)
	if maxSize > 0 && rows*cols > maxSize {
		return server.NewErrorf(server.ErrTooBig,
			"Too many table coordinates: %d x %d exceeds %d", rows, cols, maxSize)
	}
	return nil
}
