package datastructure

import (
	"fmt"
	"math"
)

// MultiLevelPartition assigns every node one cell per level. Level 1 is the
// finest level and every level-l cell lies inside exactly one level-(l+1) cell.
type MultiLevelPartition struct {
	CellIDs  [][]int32 // [level-1][node]
	NumCells []int32   // [level-1]
}

// NewMultiLevelPartition validates nesting and cell id density.
func NewMultiLevelPartition(cellIDs [][]int32) (*MultiLevelPartition, error) {
	if len(cellIDs) == 0 {
		return nil, fmt.Errorf("partition needs at least one level")
	}
	numNodes := len(cellIDs[0])
	p := &MultiLevelPartition{
		CellIDs:  cellIDs,
		NumCells: make([]int32, len(cellIDs)),
	}
	for l, cells := range cellIDs {
		if len(cells) != numNodes {
			return nil, fmt.Errorf("level %d has %d nodes, want %d", l+1, len(cells), numNodes)
		}
		for _, c := range cells {
			if c < 0 {
				return nil, fmt.Errorf("level %d: negative cell id", l+1)
			}
			if c+1 > p.NumCells[l] {
				p.NumCells[l] = c + 1
			}
		}
	}

	for l := 0; l+1 < len(cellIDs); l++ {
		parent := make(map[int32]int32, p.NumCells[l])
		for u := 0; u < numNodes; u++ {
			c, up := cellIDs[l][u], cellIDs[l+1][u]
			if prev, ok := parent[c]; ok && prev != up {
				return nil, fmt.Errorf("cell %d of level %d is split across level %d cells %d and %d",
					c, l+1, l+2, prev, up)
			}
			parent[c] = up
		}
	}
	return p, nil
}

func (p *MultiLevelPartition) NumLevels() int {
	return len(p.CellIDs)
}

func (p *MultiLevelPartition) NumNodes() int {
	if len(p.CellIDs) == 0 {
		return 0
	}
	return len(p.CellIDs[0])
}

// Cell returns the cell of u at level (1-based).
func (p *MultiLevelPartition) Cell(level int, u int32) int32 {
	return p.CellIDs[level-1][u]
}

// HighestDifferentLevel returns the highest level at which u and v lie in
// different cells, or 0 when they share every cell.
func (p *MultiLevelPartition) HighestDifferentLevel(u, v int32) int {
	for l := len(p.CellIDs); l >= 1; l-- {
		if p.CellIDs[l-1][u] != p.CellIDs[l-1][v] {
			return l
		}
	}
	return 0
}

// OverlayCell holds the clique of one cell: shortest paths inside the cell
// from every source boundary node to every destination boundary node.
type OverlayCell struct {
	Sources      []int32
	Destinations []int32
	Weights      []float64 // row-major |Sources| x |Destinations|
	Durations    []float64
	Distances    []float64
}

func (c *OverlayCell) offset(srcIdx, dstIdx int32) int {
	return int(srcIdx)*len(c.Destinations) + int(dstIdx)
}

func (c *OverlayCell) GetCost(srcIdx, dstIdx int32) Cost {
	i := c.offset(srcIdx, dstIdx)
	return NewCost(c.Weights[i], c.Durations[i], c.Distances[i])
}

func (c *OverlayCell) SetCost(srcIdx, dstIdx int32, cost Cost) {
	i := c.offset(srcIdx, dstIdx)
	c.Weights[i] = cost.Weight
	c.Durations[i] = cost.Duration
	c.Distances[i] = cost.Distance
}

// NewOverlayCell allocates a clique with every entry unreachable.
func NewOverlayCell(sources, destinations []int32) OverlayCell {
	size := len(sources) * len(destinations)
	c := OverlayCell{
		Sources:      sources,
		Destinations: destinations,
		Weights:      make([]float64, size),
		Durations:    make([]float64, size),
		Distances:    make([]float64, size),
	}
	for i := 0; i < size; i++ {
		c.Weights[i] = math.Inf(1)
		c.Durations[i] = math.Inf(1)
		c.Distances[i] = math.Inf(1)
	}
	return c
}

// Overlay stores the cliques of every level. SourceIndex and DestIndex map a
// node to its position inside its cell's boundary lists, -1 when it is not a
// boundary node of that kind.
type Overlay struct {
	Cells       [][]OverlayCell // [level-1][cell]
	SourceIndex [][]int32       // [level-1][node]
	DestIndex   [][]int32       // [level-1][node]
}

// NewOverlay computes the boundary nodes of every cell from the crossing
// edges. Weights stay unreachable until customization fills them.
func NewOverlay(g *Graph, p *MultiLevelPartition) *Overlay {
	numLevels := p.NumLevels()
	n := g.NumNodes()
	o := &Overlay{
		Cells:       make([][]OverlayCell, numLevels),
		SourceIndex: make([][]int32, numLevels),
		DestIndex:   make([][]int32, numLevels),
	}

	for l := 1; l <= numLevels; l++ {
		isSource := make([]bool, n)
		isDest := make([]bool, n)
		for _, e := range g.Edges {
			if p.Cell(l, e.From) != p.Cell(l, e.To) {
				isDest[e.From] = true
				isSource[e.To] = true
			}
		}

		numCells := p.NumCells[l-1]
		sources := make([][]int32, numCells)
		dests := make([][]int32, numCells)
		srcIdx := make([]int32, n)
		dstIdx := make([]int32, n)
		for u := int32(0); u < int32(n); u++ {
			c := p.Cell(l, u)
			srcIdx[u], dstIdx[u] = -1, -1
			if isSource[u] {
				srcIdx[u] = int32(len(sources[c]))
				sources[c] = append(sources[c], u)
			}
			if isDest[u] {
				dstIdx[u] = int32(len(dests[c]))
				dests[c] = append(dests[c], u)
			}
		}

		cells := make([]OverlayCell, numCells)
		for c := int32(0); c < numCells; c++ {
			cells[c] = NewOverlayCell(sources[c], dests[c])
		}
		o.Cells[l-1] = cells
		o.SourceIndex[l-1] = srcIdx
		o.DestIndex[l-1] = dstIdx
	}
	return o
}

func (o *Overlay) GetCell(level int, cell int32) *OverlayCell {
	return &o.Cells[level-1][cell]
}

// ForOutCliqueArcs calls fn for every clique arc leaving u inside its level
// cell. Nothing happens when u is not a source boundary node.
func (o *Overlay) ForOutCliqueArcs(p *MultiLevelPartition, level int, u int32, fn func(v int32, cost Cost)) {
	si := o.SourceIndex[level-1][u]
	if si < 0 {
		return
	}
	cell := o.GetCell(level, p.Cell(level, u))
	for di, v := range cell.Destinations {
		cost := cell.GetCost(si, int32(di))
		if cost.IsInf() {
			continue
		}
		fn(v, cost)
	}
}

// ForInCliqueArcs calls fn for every clique arc entering u inside its level cell.
func (o *Overlay) ForInCliqueArcs(p *MultiLevelPartition, level int, u int32, fn func(v int32, cost Cost)) {
	di := o.DestIndex[level-1][u]
	if di < 0 {
		return
	}
	cell := o.GetCell(level, p.Cell(level, u))
	for si, v := range cell.Sources {
		cost := cell.GetCost(int32(si), di)
		if cost.IsInf() {
			continue
		}
		fn(v, cost)
	}
}

// MLDIndex is the immutable multi-level dijkstra index.
type MLDIndex struct {
	Graph     Graph
	Partition MultiLevelPartition
	Overlay   Overlay
}

func NewMLDIndex(g *Graph, p *MultiLevelPartition, o *Overlay) *MLDIndex {
	return &MLDIndex{
		Graph:     *g,
		Partition: *p,
		Overlay:   *o,
	}
}
