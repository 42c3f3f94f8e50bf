package table

import (
	"context"
	"math"
	"testing"

	"github.com/lintang-b-s/navigatorx-table/pkg/contractor"
	"github.com/lintang-b-s/navigatorx-table/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-table/pkg/engine/routingalgorithm"
	"github.com/lintang-b-s/navigatorx-table/pkg/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// countingRouter answers cost(s, t) = 100*s.edge + t.edge and remembers how
// often and with how many endpoints it was called.
type countingRouter struct {
	calls    int
	sources  int
	targets  int
	infPairs map[[2]int32]bool
}

func (r *countingRouter) ManyToMany(sources, targets []datastructure.PhantomNode) *datastructure.CostTable {
	r.calls++
	r.sources, r.targets = len(sources), len(targets)
	t := datastructure.NewCostTable(len(sources), len(targets))
	for i, s := range sources {
		for j, d := range targets {
			if r.infPairs[[2]int32{s.Forward.EdgeID, d.Forward.EdgeID}] {
				continue
			}
			w := float64(100*s.Forward.EdgeID + d.Forward.EdgeID)
			t.Relax(i, j, datastructure.NewCost(w, w, 2*w))
		}
	}
	return t
}

func (r *countingRouter) Algorithm() datastructure.Algorithm {
	return datastructure.AlgorithmCH
}

func phantom(edgeID, component int32) datastructure.PhantomNode {
	return datastructure.PhantomNode{
		Forward:     datastructure.PhantomSegment{EdgeID: edgeID, Tail: edgeID, Head: edgeID + 1},
		Reverse:     datastructure.PhantomSegment{EdgeID: -1, Tail: -1, Head: -1},
		ComponentID: component,
	}
}

func invalidPhantom() datastructure.PhantomNode {
	return datastructure.NewInvalidPhantomNode(datastructure.Coordinate{})
}

func threePhantoms() []datastructure.PhantomNode {
	return []datastructure.PhantomNode{phantom(1, 0), phantom(2, 0), phantom(3, 0)}
}

func both() Annotation {
	return AnnotationDuration | AnnotationDistance
}

func TestComputeTableRejectsBadRequests(t *testing.T) {
	cases := []struct {
		name     string
		phantoms []datastructure.PhantomNode
		params   Params
		maxSize  int
		wantCode server.ErrorCode
	}{
		{"no coordinates", nil, Params{Annotations: both()}, 0, server.ErrInvalidRequest},
		{"source out of range", threePhantoms(), Params{Sources: []int{0, 3}, Annotations: both()}, 0, server.ErrInvalidRequest},
		{"negative destination", threePhantoms(), Params{Destinations: []int{-1}, Annotations: both()}, 0, server.ErrInvalidRequest},
		{"empty source list", threePhantoms(), Params{Sources: []int{}, Annotations: both()}, 0, server.ErrInvalidRequest},
		{"no annotations", threePhantoms(), Params{}, 0, server.ErrInvalidRequest},
		{"too big", threePhantoms(), Params{Annotations: both()}, 8, server.ErrTooBig},
		{"too big by request limit", threePhantoms(), Params{Annotations: both(), MaxMatrixSize: 2}, 100, server.ErrTooBig},
		{"request limit cannot loosen the configured one", threePhantoms(), Params{Annotations: both(), MaxMatrixSize: 100}, 8, server.ErrTooBig},
		{"negative scale", threePhantoms(), Params{Annotations: both(), ScaleFactor: -1}, 0, server.ErrInvalidRequest},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			router := &countingRouter{}
			e := NewEngine(router, Options{MaxMatrixSize: c.maxSize}, zap.NewNop())

			m, err := e.ComputeTable(context.Background(), c.phantoms, c.params)
			require.Error(t, err)
			assert.Nil(t, m)
			assert.Equal(t, c.wantCode, server.CodeOf(err))
			assert.Equal(t, 0, router.calls, "no search work before validation passed")
		})
	}
}

func TestComputeTableAllCoordinates(t *testing.T) {
	router := &countingRouter{}
	e := NewEngine(router, Options{MaxMatrixSize: 9}, zap.NewNop())

	m, err := e.ComputeTable(context.Background(), threePhantoms(), Params{Annotations: both()})
	require.NoError(t, err)
	assert.Equal(t, 1, router.calls)
	assert.Equal(t, 3, m.Rows)
	assert.Equal(t, 3, m.Cols)
	assert.Equal(t, []int{0, 1, 2}, m.Sources)

	assert.Equal(t, 102.0, m.Durations.At(0, 1))
	assert.Equal(t, 301.0, m.Durations.At(2, 0))
	assert.Equal(t, 604.0, m.Distances.At(2, 1))
}

func TestComputeTableSubsetsAndScale(t *testing.T) {
	e := NewEngine(&countingRouter{}, Options{}, zap.NewNop())

	m, err := e.ComputeTable(context.Background(), threePhantoms(), Params{
		Sources:      []int{2},
		Destinations: []int{0, 1},
		Annotations:  AnnotationDuration,
		ScaleFactor:  2,
	})
	require.NoError(t, err)
	assert.Nil(t, m.Distances)
	r, c := m.Durations.Dims()
	assert.Equal(t, 1, r)
	assert.Equal(t, 2, c)
	assert.Equal(t, 602.0, m.Durations.At(0, 0))
	assert.Equal(t, 604.0, m.Durations.At(0, 1))
}

func TestUnsnappablePolicy(t *testing.T) {
	phantoms := []datastructure.PhantomNode{phantom(1, 0), invalidPhantom(), phantom(3, 0)}

	t.Run("reject", func(t *testing.T) {
		router := &countingRouter{}
		e := NewEngine(router, Options{UnsnappablePolicy: PolicyReject}, zap.NewNop())

		_, err := e.ComputeTable(context.Background(), phantoms, Params{Annotations: both()})
		require.Error(t, err)
		assert.Equal(t, server.ErrNoRoute, server.CodeOf(err))
		assert.Contains(t, err.Error(), "Could not find a matching segment for coordinate 1")
		assert.Equal(t, 0, router.calls)
	})

	t.Run("reject ignores unused coordinates", func(t *testing.T) {
		e := NewEngine(&countingRouter{}, Options{UnsnappablePolicy: PolicyReject}, zap.NewNop())
		_, err := e.ComputeTable(context.Background(), phantoms, Params{
			Sources:      []int{0},
			Destinations: []int{2},
			Annotations:  both(),
		})
		assert.NoError(t, err)
	})

	t.Run("unreachable", func(t *testing.T) {
		router := &countingRouter{}
		e := NewEngine(router, Options{UnsnappablePolicy: PolicyUnreachable}, zap.NewNop())

		m, err := e.ComputeTable(context.Background(), phantoms, Params{Annotations: both()})
		require.NoError(t, err)
		assert.Equal(t, 2, router.sources)
		assert.Equal(t, 2, router.targets)

		for k := 0; k < 3; k++ {
			assert.Equal(t, Unreachable, m.Durations.At(1, k))
			assert.Equal(t, Unreachable, m.Distances.At(k, 1))
		}
		assert.Equal(t, 103.0, m.Durations.At(0, 2))
		assert.Equal(t, 301.0, m.Durations.At(2, 0))
	})

	t.Run("no valid source", func(t *testing.T) {
		e := NewEngine(&countingRouter{}, Options{UnsnappablePolicy: PolicyUnreachable}, zap.NewNop())
		_, err := e.ComputeTable(context.Background(), phantoms, Params{Sources: []int{1}, Annotations: both()})
		assert.Equal(t, server.ErrInvalidRequest, server.CodeOf(err))
	})
}

func TestSentinelForComponentsAndInf(t *testing.T) {
	router := &countingRouter{infPairs: map[[2]int32]bool{{1, 2}: true}}
	e := NewEngine(router, Options{}, zap.NewNop())

	phantoms := []datastructure.PhantomNode{phantom(1, 0), phantom(2, 0), phantom(3, 7)}
	m, err := e.ComputeTable(context.Background(), phantoms, Params{Annotations: both()})
	require.NoError(t, err)

	assert.Equal(t, Unreachable, m.Durations.At(0, 1), "router found no path")
	assert.Equal(t, 201.0, m.Durations.At(1, 0))
	assert.Equal(t, Unreachable, m.Durations.At(0, 2), "different components")
	assert.Equal(t, Unreachable, m.Distances.At(2, 1), "different components")
	assert.Equal(t, 303.0, m.Durations.At(2, 2))

	for i := 0; i < m.Rows; i++ {
		for j := 0; j < m.Cols; j++ {
			v := m.Durations.At(i, j)
			assert.True(t, v == Unreachable || v >= 0)
			assert.False(t, math.IsInf(v, 0))
		}
	}
}

func TestComputeTableWithCHRouter(t *testing.T) {
	// directed square 0 -> 1 -> 2 -> 3 -> 0
	nodes := make([]datastructure.Coordinate, 4)
	edges := []datastructure.Edge{}
	for u := int32(0); u < 4; u++ {
		edges = append(edges, datastructure.NewEdge(u, (u+1)%4, 10, 10, 100))
	}
	g := datastructure.NewGraph(nodes, edges)
	ch := contractor.NewContractor(g, zap.NewNop()).Contract()

	phantoms := make([]datastructure.PhantomNode, 4)
	for u := int32(0); u < 4; u++ {
		phantoms[u] = datastructure.NewPhantomNode(g, g.OutEdges(u)[0].ID, 0,
			datastructure.Coordinate{}, datastructure.Coordinate{}, 0)
	}

	e := NewEngine(routingalgorithm.NewCHManyToMany(ch, 2), Options{MaxMatrixSize: 16}, zap.NewNop())
	m, err := e.ComputeTable(context.Background(), phantoms, Params{Annotations: both()})
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		assert.Equal(t, 0.0, m.Durations.At(i, i))
	}
	assert.Equal(t, 10.0, m.Durations.At(0, 1))
	assert.Equal(t, 30.0, m.Durations.At(1, 0))
	assert.Equal(t, 300.0, m.Distances.At(1, 0))
}

func TestParseAnnotations(t *testing.T) {
	a, err := ParseAnnotations("distance, duration")
	require.NoError(t, err)
	assert.True(t, a.Has(AnnotationDistance))
	assert.True(t, a.Has(AnnotationDuration))

	a, err = ParseAnnotations("")
	require.NoError(t, err)
	assert.Equal(t, AnnotationDuration, a)

	_, err = ParseAnnotations("speed")
	assert.Error(t, err)
}

func TestEffectiveMaxSize(t *testing.T) {
	assert.Equal(t, 9, EffectiveMaxSize(9, 0))
	assert.Equal(t, 4, EffectiveMaxSize(0, 4))
	assert.Equal(t, 4, EffectiveMaxSize(9, 4))
	assert.Equal(t, 9, EffectiveMaxSize(9, 100))
	assert.Equal(t, 0, EffectiveMaxSize(0, 0))
}

func TestCheckSize(t *testing.T) {
	assert.NoError(t, CheckSize(3, Params{}, 9))
	assert.Equal(t, server.ErrTooBig, server.CodeOf(CheckSize(4, Params{}, 9)))
	assert.NoError(t, CheckSize(100, Params{Sources: []int{0}, Destinations: []int{1, 2}}, 2))
	assert.Equal(t, server.ErrTooBig, server.CodeOf(CheckSize(100, Params{Sources: []int{0}}, 50)))
}
