package customizer

import (
	"sync"
	"time"

	"github.com/lintang-b-s/navigatorx-table/pkg/concurrent"
	"github.com/lintang-b-s/navigatorx-table/pkg/datastructure"
	"go.uber.org/zap"
)

type pathData struct {
	duration float64
	distance float64
}

// Customizer fills the overlay cliques level by level. Level 1 cliques come
// from the original edges inside a cell, level l > 1 cliques from the level
// l-1 cliques of its sub-cells joined by the original edges between them.
type Customizer struct {
	graph     *datastructure.Graph
	partition *datastructure.MultiLevelPartition
	overlay   *datastructure.Overlay
	workers   int
	heapPool  sync.Pool
	logger    *zap.Logger
}

func NewCustomizer(g *datastructure.Graph, p *datastructure.MultiLevelPartition, workers int,
	logger *zap.Logger) *Customizer {
	c := &Customizer{
		graph:     g,
		partition: p,
		overlay:   datastructure.NewOverlay(g, p),
		workers:   workers,
		logger:    logger,
	}
	n := g.NumNodes()
	c.heapPool = sync.Pool{
		New: func() any {
			return datastructure.NewQueryHeap[pathData](n)
		},
	}
	return c
}

// Customize computes every clique and returns the overlay.
func (c *Customizer) Customize() *datastructure.Overlay {
	st := time.Now()
	for l := 1; l <= c.partition.NumLevels(); l++ {
		numCells := int(c.partition.NumCells[l-1])
		wp := concurrent.NewWorkerPool[concurrent.CellJob, int](c.workers, numCells)
		for cell := 0; cell < numCells; cell++ {
			wp.AddJob(concurrent.NewCellJob(l, int32(cell)))
		}
		wp.Close()
		wp.Start(c.customizeCell)
		wp.Wait()

		arcs := 0
		for n := range wp.CollectResults() {
			arcs += n
		}
		c.logger.Info("customized level",
			zap.Int("level", l),
			zap.Int("cells", numCells),
			zap.Int("clique_arcs", arcs))
	}
	c.logger.Info("customization done", zap.Duration("elapsed", time.Since(st)))
	return c.overlay
}

// customizeCell runs one restricted dijkstra per source boundary node and
// returns the number of finite clique arcs.
func (c *Customizer) customizeCell(job concurrent.CellJob) int {
	cell := c.overlay.GetCell(job.Level, job.Cell)
	if len(cell.Sources) == 0 || len(cell.Destinations) == 0 {
		return 0
	}

	pq := c.heapPool.Get().(*datastructure.QueryHeap[pathData])
	defer c.heapPool.Put(pq)

	finite := 0
	for si, s := range cell.Sources {
		c.searchInsideCell(pq, job.Level, job.Cell, s)
		for di, d := range cell.Destinations {
			if !pq.WasInserted(d) {
				continue
			}
			data := pq.GetData(d)
			cell.SetCost(int32(si), int32(di), datastructure.NewCost(pq.GetKey(d), data.duration, data.distance))
			finite++
		}
	}
	return finite
}

func (c *Customizer) searchInsideCell(pq *datastructure.QueryHeap[pathData], level int, cellID int32, source int32) {
	p := c.partition
	pq.Clear()
	pq.Insert(source, 0, pathData{})

	relax := func(to int32, key float64, data pathData) {
		if !pq.WasInserted(to) {
			pq.Insert(to, key, data)
		} else if key < pq.GetKey(to) {
			pq.DecreaseKey(to, key, data)
		}
	}

	for !pq.Empty() {
		key := pq.MinKey()
		u := pq.DeleteMin()
		data := *pq.GetData(u)

		if level > 1 {
			c.overlay.ForOutCliqueArcs(p, level-1, u, func(v int32, cost datastructure.Cost) {
				relax(v, key+cost.Weight, pathData{data.duration + cost.Duration, data.distance + cost.Distance})
			})
		}

		for _, e := range c.graph.OutEdges(u) {
			if p.Cell(level, e.To) != cellID {
				continue
			}
			if level > 1 && p.Cell(level-1, u) == p.Cell(level-1, e.To) {
				continue
			}
			relax(e.To, key+e.Weight, pathData{data.duration + e.Duration, data.distance + e.Distance})
		}
	}
}
