package contractor

import (
	"time"

	"github.com/lintang-b-s/navigatorx-table/pkg/datastructure"
	"go.uber.org/zap"
)

const (
	maxSettledNodesContraction = 1000
	maxSettledNodesHeuristic   = 100
)

// Contractor builds a contraction hierarchy over a base graph. Edges are kept
// in one growing slice, shortcuts are appended (or replace a costlier edge
// between the same pair) while nodes are contracted in priority order.
type Contractor struct {
	graph            *datastructure.Graph
	edges            []datastructure.EdgeCH
	outEdges         [][]int32
	inEdges          [][]int32
	contracted       []bool
	deletedNeighbors []int32
	rank             []int32
	witnessHeap      *datastructure.QueryHeap[struct{}]
	shortcutsCount   int
	logger           *zap.Logger
}

func NewContractor(g *datastructure.Graph, logger *zap.Logger) *Contractor {
	n := g.NumNodes()
	c := &Contractor{
		graph:            g,
		edges:            make([]datastructure.EdgeCH, 0, g.NumEdges()*2),
		outEdges:         make([][]int32, n),
		inEdges:          make([][]int32, n),
		contracted:       make([]bool, n),
		deletedNeighbors: make([]int32, n),
		rank:             make([]int32, n),
		witnessHeap:      datastructure.NewQueryHeap[struct{}](n),
		logger:           logger,
	}

	for _, e := range g.Edges {
		id := int32(len(c.edges))
		c.edges = append(c.edges, datastructure.NewEdgeCH(e.From, e.To, e.Cost(), -1))
		c.outEdges[e.From] = append(c.outEdges[e.From], id)
		c.inEdges[e.To] = append(c.inEdges[e.To], id)
	}
	return c
}

// Contract orders every node and returns the immutable hierarchy.
func (c *Contractor) Contract() *datastructure.CHIndex {
	st := time.Now()
	n := c.graph.NumNodes()

	nq := NewMinHeap[int32]()
	for v := int32(0); v < int32(n); v++ {
		nq.Insert(PriorityQueueNode[int32]{Item: v, Rank: c.calculatePriority(v)})
	}

	c.logger.Info("contracting graph", zap.Int("nodes", n), zap.Int("edges", len(c.edges)))

	orderNum := int32(0)
	for nq.Size() != 0 {
		polledItem, _ := nq.ExtractMin()
		v := polledItem.Item

		// lazy update
		priority := c.calculatePriority(v)
		if smallestItem, err := nq.GetMin(); err == nil && priority > smallestItem.Rank {
			nq.Insert(PriorityQueueNode[int32]{Item: v, Rank: priority})
			continue
		}

		c.rank[v] = orderNum
		c.contractNode(v, maxSettledNodesContraction, false)
		c.contracted[v] = true
		for _, id := range c.outEdges[v] {
			c.deletedNeighbors[c.edges[id].ToNodeID]++
		}
		for _, id := range c.inEdges[v] {
			c.deletedNeighbors[c.edges[id].FromNodeID]++
		}

		orderNum++
		if orderNum%10000 == 0 {
			c.logger.Info("contracting node", zap.Int32("done", orderNum), zap.Int("shortcuts", c.shortcutsCount))
		}
	}

	c.logger.Info("contraction done",
		zap.Int("shortcuts", c.shortcutsCount),
		zap.Duration("elapsed", time.Since(st)))

	return datastructure.NewCHIndex(c.graph, c.rank, c.edges)
}

// calculatePriority: 10 * edge difference + deleted neighbours.
func (c *Contractor) calculatePriority(v int32) float64 {
	shortcuts, degree := c.contractNode(v, maxSettledNodesHeuristic, true)
	edgeDifference := shortcuts - degree
	return float64(10*edgeDifference) + float64(c.deletedNeighbors[v])
}

/*
contractNode: for every uncontracted pair u->v->w we look for a witness path
u->w that avoids v and costs no more than c(u,v) + c(v,w). Without a witness
the shortcut (u,w) is needed. In simulate mode the shortcuts are only counted.
*/
func (c *Contractor) contractNode(v int32, maxSettled int, simulate bool) (int, int) {
	degree := 0
	shortcuts := 0

	outs := make([]int32, 0, len(c.outEdges[v]))
	maxOut := 0.0
	for _, id := range c.outEdges[v] {
		if c.contracted[c.edges[id].ToNodeID] {
			continue
		}
		outs = append(outs, id)
		if c.edges[id].Weight > maxOut {
			maxOut = c.edges[id].Weight
		}
	}
	degree += len(outs)

	for _, inID := range c.inEdges[v] {
		inEdge := c.edges[inID]
		u := inEdge.FromNodeID
		if c.contracted[u] {
			continue
		}
		degree++
		if len(outs) == 0 {
			continue
		}

		c.witnessSearch(u, v, inEdge.Weight+maxOut, maxSettled)

		for _, outID := range outs {
			outEdge := c.edges[outID]
			w := outEdge.ToNodeID
			if w == u {
				continue
			}
			via := inEdge.Cost().Add(outEdge.Cost())
			if c.witnessHeap.WasInserted(w) && c.witnessHeap.GetKey(w) <= via.Weight {
				continue
			}
			shortcuts++
			if !simulate {
				c.addOrUpdateShortcut(u, w, via, v)
			}
		}
	}
	return shortcuts, degree
}

// addOrUpdateShortcut keeps at most one edge per ordered pair.
func (c *Contractor) addOrUpdateShortcut(from, to int32, cost datastructure.Cost, via int32) {
	for _, id := range c.outEdges[from] {
		if c.edges[id].ToNodeID != to {
			continue
		}
		if cost.Weight < c.edges[id].Weight {
			c.edges[id] = datastructure.NewEdgeCH(from, to, cost, via)
		}
		return
	}

	id := int32(len(c.edges))
	c.edges = append(c.edges, datastructure.NewEdgeCH(from, to, cost, via))
	c.outEdges[from] = append(c.outEdges[from], id)
	c.inEdges[to] = append(c.inEdges[to], id)
	c.shortcutsCount++
}
