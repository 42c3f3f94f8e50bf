package datastructure

import "math"

// CostTable is the raw result of a many-to-many search. Entries that were
// never reached stay +Inf.
type CostTable struct {
	Rows      int
	Cols      int
	Weights   []float64
	Durations []float64
	Distances []float64
}

func NewCostTable(rows, cols int) *CostTable {
	size := rows * cols
	t := &CostTable{
		Rows:      rows,
		Cols:      cols,
		Weights:   make([]float64, size),
		Durations: make([]float64, size),
		Distances: make([]float64, size),
	}
	inf := math.Inf(1)
	for i := 0; i < size; i++ {
		t.Weights[i] = inf
		t.Durations[i] = inf
		t.Distances[i] = inf
	}
	return t
}

func (t *CostTable) Get(row, col int) Cost {
	i := row*t.Cols + col
	return NewCost(t.Weights[i], t.Durations[i], t.Distances[i])
}

// Relax stores cost when it beats the current entry.
func (t *CostTable) Relax(row, col int, cost Cost) {
	i := row*t.Cols + col
	if cost.Weight < t.Weights[i] {
		t.Weights[i] = cost.Weight
		t.Durations[i] = cost.Duration
		t.Distances[i] = cost.Distance
	}
}

func (t *CostTable) IsReachable(row, col int) bool {
	return !math.IsInf(t.Weights[row*t.Cols+col], 1)
}
