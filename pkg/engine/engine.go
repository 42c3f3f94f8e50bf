package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lintang-b-s/navigatorx-table/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-table/pkg/engine/routingalgorithm"
	"github.com/lintang-b-s/navigatorx-table/pkg/engine/table"
	"github.com/lintang-b-s/navigatorx-table/pkg/server"
	"github.com/lintang-b-s/navigatorx-table/pkg/storage"
	"go.uber.org/zap"
)

var (
	ErrAlgorithmMismatch = errors.New("index algorithm does not match configuration")
	ErrMetricMismatch    = errors.New("index metric does not match configuration")
	ErrAlreadyLoaded     = errors.New("index already loaded")
)

type State int32

const (
	StateUnloaded State = iota
	StateLoading
	StateReady
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	}
	return "unloaded"
}

type Config struct {
	IndexPath string
	Algorithm datastructure.Algorithm
	Metric    datastructure.WeightMetric
	Workers   int
	Table     table.Options
}

// Engine owns one index image. Queries are served only in StateReady; the
// image is never mutated after loading, so any number of queries may run at
// once. Several engines, each with its own image, can live in one process.
type Engine struct {
	cfg    Config
	state  atomic.Int32
	mu     sync.Mutex
	image  *storage.Image
	table  *table.Engine
	logger *zap.Logger
}

func NewEngine(cfg Config, logger *zap.Logger) *Engine {
	return &Engine{
		cfg:    cfg,
		logger: logger,
	}
}

func (e *Engine) State() State {
	return State(e.state.Load())
}

// Load reads the configured index file. The header is checked first so an
// index built for another algorithm or metric is rejected before the payload
// is decoded. On failure the engine goes back to StateUnloaded.
func (e *Engine) Load(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.State() == StateReady {
		return ErrAlreadyLoaded
	}
	e.state.Store(int32(StateLoading))

	st := time.Now()
	e.logger.Info("loading index",
		zap.String("path", e.cfg.IndexPath),
		zap.Stringer("algorithm", e.cfg.Algorithm),
		zap.Stringer("metric", e.cfg.Metric))

	image, err := e.readImage(ctx)
	if err == nil {
		err = e.install(image)
	}
	if err != nil {
		e.state.Store(int32(StateUnloaded))
		return fmt.Errorf("load index %s: %w", e.cfg.IndexPath, err)
	}

	e.state.Store(int32(StateReady))
	e.logger.Info("index ready",
		zap.Int("nodes", image.Graph().NumNodes()),
		zap.Int("edges", image.Graph().NumEdges()),
		zap.Duration("elapsed", time.Since(st)))
	return nil
}

func (e *Engine) readImage(ctx context.Context) (*storage.Image, error) {
	algo, metric, err := storage.ReadHeader(e.cfg.IndexPath)
	if err != nil {
		return nil, err
	}
	if err := e.checkKind(algo, metric); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return storage.ReadIndex(e.cfg.IndexPath)
}

func (e *Engine) checkKind(algo datastructure.Algorithm, metric datastructure.WeightMetric) error {
	if algo != e.cfg.Algorithm {
		return fmt.Errorf("%w: index is %s, configured %s", ErrAlgorithmMismatch, algo, e.cfg.Algorithm)
	}
	if metric != e.cfg.Metric {
		return fmt.Errorf("%w: index is %s, configured %s", ErrMetricMismatch, metric, e.cfg.Metric)
	}
	return nil
}

// LoadImage installs an image that is already in memory.
func (e *Engine) LoadImage(image *storage.Image) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.State() == StateReady {
		return ErrAlreadyLoaded
	}
	e.state.Store(int32(StateLoading))
	if err := e.install(image); err != nil {
		e.state.Store(int32(StateUnloaded))
		return err
	}
	e.state.Store(int32(StateReady))
	return nil
}

func (e *Engine) install(image *storage.Image) error {
	if err := e.checkKind(image.Algorithm, image.Metric); err != nil {
		return err
	}

	var router routingalgorithm.ManyToManyRouter
	switch image.Algorithm {
	case datastructure.AlgorithmCH:
		if image.CH == nil {
			return fmt.Errorf("CH image without hierarchy")
		}
		router = routingalgorithm.NewCHManyToMany(image.CH, e.cfg.Workers)
	case datastructure.AlgorithmMLD:
		if image.MLD == nil {
			return fmt.Errorf("MLD image without overlay")
		}
		router = routingalgorithm.NewMLDManyToMany(image.MLD, e.cfg.Workers)
	default:
		return storage.ErrUnknownAlgorithm
	}

	e.image = image
	e.table = table.NewEngine(router, e.cfg.Table, e.logger)
	return nil
}

// Graph returns the base graph of the loaded image, nil before StateReady.
func (e *Engine) Graph() *datastructure.Graph {
	if e.State() != StateReady {
		return nil
	}
	return e.image.Graph()
}

func (e *Engine) Algorithm() datastructure.Algorithm {
	return e.cfg.Algorithm
}

func (e *Engine) Metric() datastructure.WeightMetric {
	return e.cfg.Metric
}

func (e *Engine) MaxMatrixSize() int {
	return e.cfg.Table.MaxMatrixSize
}

func (e *Engine) Table(ctx context.Context, phantoms []datastructure.PhantomNode, params table.Params) (*table.Matrix, error) {
	if e.State() != StateReady {
		return nil, server.NewErrorf(server.ErrIndexNotReady, "index is %s", e.State())
	}
	return e.table.ComputeTable(ctx, phantoms, params)
}
