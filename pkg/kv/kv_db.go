package kv

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/lintang-b-s/navigatorx-table/pkg/concurrent"
	"github.com/lintang-b-s/navigatorx-table/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-table/pkg/geo"
	"github.com/uber/h3-go/v4"
	"go.uber.org/zap"
)

const (
	DefaultResolution = 9
	batchSize         = 1000
	sampleSpacingM    = 100.0
)

// KVDB maps an H3 cell to the ids of the edges passing through it.
type KVDB struct {
	store      Store
	resolution int
	logger     *zap.Logger
}

func NewKVDB(store Store, resolution int, logger *zap.Logger) *KVDB {
	if resolution <= 0 || resolution > 15 {
		resolution = DefaultResolution
	}
	return &KVDB{
		store:      store,
		resolution: resolution,
		logger:     logger,
	}
}

func (k *KVDB) cellOf(c datastructure.Coordinate) h3.Cell {
	return h3.LatLngToCell(h3.NewLatLng(c.Lat, c.Lon), k.resolution)
}

// edgeCells samples the edge every sampleSpacingM so a long edge lands in
// every cell it crosses, not only in the cells of its endpoints.
func (k *KVDB) edgeCells(a, b datastructure.Coordinate) []h3.Cell {
	steps := int(math.Ceil(geo.HaversineMeters(a, b) / sampleSpacingM))
	if steps < 1 {
		steps = 1
	}
	cells := make([]h3.Cell, 0, steps+1)
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		p := datastructure.NewCoordinate(a.Lat+(b.Lat-a.Lat)*t, a.Lon+(b.Lon-a.Lon)*t)
		c := k.cellOf(p)
		if len(cells) > 0 && cells[len(cells)-1] == c {
			continue
		}
		cells = append(cells, c)
	}
	return cells
}

type encodedCell struct {
	kv  KeyValue
	err error
}

// BuildH3IndexedEdges writes the cell index of g. Values are encoded on the
// worker pool and written in batches.
func (k *KVDB) BuildH3IndexedEdges(ctx context.Context, g *datastructure.Graph, workers int) error {
	k.logger.Info("creating h3 indexed edges", zap.Int("edges", g.NumEdges()), zap.Int("resolution", k.resolution))

	byCell := make(map[h3.Cell][]int32)
	for _, e := range g.Edges {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		for _, c := range k.edgeCells(g.GetCoordinate(e.From), g.GetCoordinate(e.To)) {
			ids := byCell[c]
			if len(ids) > 0 && ids[len(ids)-1] == e.ID {
				continue
			}
			byCell[c] = append(ids, e.ID)
		}
	}

	wp := concurrent.NewWorkerPool[concurrent.KVCellJob, encodedCell](workers, len(byCell))
	for cell, ids := range byCell {
		wp.AddJob(concurrent.NewKVCellJob(cell.String(), ids))
	}
	wp.Close()
	wp.Start(func(job concurrent.KVCellJob) encodedCell {
		val, err := encodeEdgeIDs(job.EdgeIDs)
		return encodedCell{kv: KeyValue{Key: []byte(job.Key), Value: val}, err: err}
	})
	wp.Wait()

	batch := make([]KeyValue, 0, batchSize)
	written := 0
	for res := range wp.CollectResults() {
		if res.err != nil {
			return fmt.Errorf("encode cell %s: %w", res.kv.Key, res.err)
		}
		batch = append(batch, res.kv)
		if len(batch) == batchSize {
			if err := k.store.WriteBatch(batch); err != nil {
				return err
			}
			written += len(batch)
			batch = batch[:0]

			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}
	}
	if len(batch) > 0 {
		if err := k.store.WriteBatch(batch); err != nil {
			return err
		}
		written += len(batch)
	}

	k.logger.Info("h3 indexed edges saved", zap.Int("cells", written))
	return nil
}

func (k *KVDB) getCell(c h3.Cell) ([]int32, error) {
	val, err := k.store.Get([]byte(c.String()))
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeEdgeIDs(val)
}

// Candidates returns the ids of the edges stored in the cells covering a disk
// of radius meters around c.
func (k *KVDB) Candidates(ctx context.Context, c datastructure.Coordinate, radius float64) ([]int32, error) {
	origin := k.cellOf(c)
	seen := make(map[int32]struct{})
	for _, cell := range h3.GridDisk(origin, k.ringSize(origin, radius)) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		ids, err := k.getCell(cell)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			seen[id] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return nil, ErrEdgesNotFound
	}

	out := make([]int32, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// ringSize picks the grid disk radius whose area covers the search circle,
// plus one ring for the sampling gap.
func (k *KVDB) ringSize(origin h3.Cell, radius float64) int {
	originArea := h3.CellAreaKm2(origin)
	radiusKm := radius/1000 + sampleSpacingM/1000
	searchArea := math.Pi * radiusKm * radiusKm

	ring := 0
	diskArea := originArea
	for diskArea < searchArea {
		ring++
		cellCount := float64(3*ring*(ring+1) + 1)
		diskArea = cellCount * originArea
	}
	return ring + 1
}

func (k *KVDB) Close() error {
	return k.store.Close()
}
