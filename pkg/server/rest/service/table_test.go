package service

import (
	"context"
	"errors"
	"testing"

	"github.com/lintang-b-s/navigatorx-table/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-table/pkg/engine/table"
	"github.com/lintang-b-s/navigatorx-table/pkg/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeLocator struct {
	err     error
	snapped int
}

func (f *fakeLocator) LocateAll(ctx context.Context, coords []datastructure.Coordinate) ([]datastructure.PhantomNode, error) {
	f.snapped += len(coords)
	if f.err != nil {
		return nil, f.err
	}
	out := make([]datastructure.PhantomNode, len(coords))
	for i, c := range coords {
		out[i] = datastructure.PhantomNode{Location: c, InputLocation: c}
	}
	return out, nil
}

type fakeEngine struct {
	got     table.Params
	maxSize int
	calls   int
}

func (f *fakeEngine) MaxMatrixSize() int {
	return f.maxSize
}

func (f *fakeEngine) Table(ctx context.Context, phantoms []datastructure.PhantomNode, params table.Params) (*table.Matrix, error) {
	f.got = params
	f.calls++
	if len(phantoms) > 2 {
		return nil, server.NewErrorf(server.ErrTooBig, "too big")
	}
	return &table.Matrix{Rows: 1, Cols: 2, Sources: []int{1}, Destinations: []int{0, 1}}, nil
}

func TestTableService(t *testing.T) {
	eng := &fakeEngine{}
	svc := NewTableService(eng, &fakeLocator{}, 1.5, zap.NewNop())
	coords := []datastructure.Coordinate{{Lat: 1, Lon: 2}, {Lat: 3, Lon: 4}}

	res, err := svc.Table(context.Background(), coords, table.Params{})
	require.NoError(t, err)
	assert.NotEmpty(t, res.QueryID)
	assert.Equal(t, 1.5, eng.got.ScaleFactor)
	require.Len(t, res.Sources, 1)
	assert.Equal(t, 3.0, res.Sources[0].Location.Lat)
	assert.Len(t, res.Destinations, 2)

	_, err = svc.Table(context.Background(), append(coords, coords[0]), table.Params{ScaleFactor: 2})
	assert.Equal(t, server.ErrTooBig, server.CodeOf(err))
	assert.Equal(t, 2.0, eng.got.ScaleFactor)

	_, err = svc.Table(context.Background(), nil, table.Params{})
	assert.Equal(t, server.ErrInvalidRequest, server.CodeOf(err))

	svc = NewTableService(eng, &fakeLocator{err: errors.New("kv down")}, 1, zap.NewNop())
	_, err = svc.Table(context.Background(), coords, table.Params{})
	assert.Equal(t, server.ErrInternalServerError, server.CodeOf(err))
}

func TestTableServiceTooBigBeforeSnapping(t *testing.T) {
	coords := make([]datastructure.Coordinate, 5000)
	cases := []struct {
		name    string
		maxSize int
		params  table.Params
		tooBig  bool
	}{
		{"all coordinates", 100, table.Params{}, true},
		{"subsets under the limit", 100, table.Params{Sources: []int{0, 1}, Destinations: []int{2, 3}}, false},
		{"subsets over the limit", 100, table.Params{Sources: make([]int, 20), Destinations: make([]int, 10)}, true},
		{"request cannot loosen the limit", 100, table.Params{Sources: make([]int, 20), Destinations: make([]int, 10), MaxMatrixSize: 1000}, true},
		{"request can tighten the limit", 0, table.Params{Sources: []int{0, 1}, Destinations: []int{2, 3}, MaxMatrixSize: 3}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			eng := &fakeEngine{maxSize: c.maxSize}
			loc := &fakeLocator{}
			svc := NewTableService(eng, loc, 1, zap.NewNop())

			_, err := svc.Table(context.Background(), coords, c.params)
			if c.tooBig {
				assert.Equal(t, server.ErrTooBig, server.CodeOf(err))
				assert.Zero(t, loc.snapped)
				assert.Zero(t, eng.calls)
				return
			}
			assert.Equal(t, len(coords), loc.snapped)
			assert.Equal(t, 1, eng.calls)
		})
	}
}
