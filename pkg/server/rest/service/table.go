package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lintang-b-s/navigatorx-table/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-table/pkg/engine/table"
	"github.com/lintang-b-s/navigatorx-table/pkg/server"
	"go.uber.org/zap"
)

type TableEngine interface {
	Table(ctx context.Context, phantoms []datastructure.PhantomNode, params table.Params) (*table.Matrix, error)
	MaxMatrixSize() int
}

type Locator interface {
	LocateAll(ctx context.Context, coords []datastructure.Coordinate) ([]datastructure.PhantomNode, error)
}

// TableResult is a computed matrix plus the snapped coordinates of its rows
// and columns.
type TableResult struct {
	QueryID      string
	Matrix       *table.Matrix
	Sources      []datastructure.PhantomNode
	Destinations []datastructure.PhantomNode
}

type TableService struct {
	engine       TableEngine
	locator      Locator
	defaultScale float64
	logger       *zap.Logger
}

func NewTableService(engine TableEngine, locator Locator, defaultScale float64, logger *zap.Logger) *TableService {
	if defaultScale <= 0 {
		defaultScale = 1
	}
	return &TableService{
		engine:       engine,
		locator:      locator,
		defaultScale: defaultScale,
		logger:       logger,
	}
}

// Table snaps coords and runs the table query.
func (s *TableService) Table(ctx context.Context, coords []datastructure.Coordinate, params table.Params) (*TableResult, error) {
	queryID := uuid.NewString()
	st := time.Now()

	if len(coords) == 0 {
		return nil, server.NewErrorf(server.ErrInvalidRequest, "coordinates must not be empty")
	}
	if params.ScaleFactor == 0 {
		params.ScaleFactor = s.defaultScale
	}

	// reject oversized requests before any snapping work
	if err := table.CheckSize(len(coords), params, s.engine.MaxMatrixSize()); err != nil {
		s.logger.Info("table query rejected",
			zap.String("query_id", queryID),
			zap.Stringer("code", server.CodeOf(err)),
			zap.Error(err))
		return nil, err
	}

	phantoms, err := s.locator.LocateAll(ctx, coords)
	if err != nil {
		s.logger.Error("snapping failed", zap.String("query_id", queryID), zap.Error(err))
		return nil, server.WrapErrorf(err, server.ErrInternalServerError, "internal server error")
	}

	m, err := s.engine.Table(ctx, phantoms, params)
	if err != nil {
		s.logger.Info("table query rejected",
			zap.String("query_id", queryID),
			zap.Stringer("code", server.CodeOf(err)),
			zap.Error(err))
		return nil, err
	}

	res := &TableResult{
		QueryID:      queryID,
		Matrix:       m,
		Sources:      make([]datastructure.PhantomNode, len(m.Sources)),
		Destinations: make([]datastructure.PhantomNode, len(m.Destinations)),
	}
	for i, idx := range m.Sources {
		res.Sources[i] = phantoms[idx]
	}
	for j, idx := range m.Destinations {
		res.Destinations[j] = phantoms[idx]
	}

	s.logger.Info("table query",
		zap.String("query_id", queryID),
		zap.Int("coordinates", len(coords)),
		zap.Int("rows", m.Rows),
		zap.Int("cols", m.Cols),
		zap.Duration("elapsed", time.Since(st)))
	return res, nil
}
