package table

import (
	"gonum.org/v1/gonum/mat"
)

// Unreachable marks a pair without a route.
const Unreachable = -1.0

// Matrix is the result of a table query. A matrix that was not requested is
// nil. Sources and Destinations are the coordinate indices of rows and
// columns.
type Matrix struct {
	Rows         int
	Cols         int
	Durations    *mat.Dense
	Distances    *mat.Dense
	Sources      []int
	Destinations []int
}

func newMatrix(sources, destinations []int, annotations Annotation) *Matrix {
	m := &Matrix{
		Rows:         len(sources),
		Cols:         len(destinations),
		Sources:      sources,
		Destinations: destinations,
	}
	if annotations.Has(AnnotationDuration) {
		m.Durations = mat.NewDense(m.Rows, m.Cols, nil)
	}
	if annotations.Has(AnnotationDistance) {
		m.Distances = mat.NewDense(m.Rows, m.Cols, nil)
	}
	return m
}

func (m *Matrix) set(i, j int, duration, distance float64) {
	if m.Durations != nil {
		m.Durations.Set(i, j, duration)
	}
	if m.Distances != nil {
		m.Distances.Set(i, j, distance)
	}
}

func (m *Matrix) setUnreachable(i, j int) {
	m.set(i, j, Unreachable, Unreachable)
}

// Rows2D copies a matrix into nested slices, nil stays nil.
func Rows2D(d *mat.Dense) [][]float64 {
	if d == nil {
		return nil
	}
	r, c := d.Dims()
	out := make([][]float64, r)
	for i := 0; i < r; i++ {
		out[i] = mat.Row(make([]float64, c), i, d)
	}
	return out
}
