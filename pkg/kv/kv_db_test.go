package kv

import (
	"context"
	"testing"

	"github.com/lintang-b-s/navigatorx-table/pkg/datastructure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// two short streets in Yogyakarta and one far away in Jakarta
func kvTestGraph() *datastructure.Graph {
	nodes := []datastructure.Coordinate{
		datastructure.NewCoordinate(-7.7956, 110.3695),
		datastructure.NewCoordinate(-7.7960, 110.3710),
		datastructure.NewCoordinate(-7.7975, 110.3712),
		datastructure.NewCoordinate(-6.2000, 106.8166),
		datastructure.NewCoordinate(-6.2010, 106.8170),
	}
	return datastructure.NewGraph(nodes, []datastructure.Edge{
		datastructure.NewEdge(0, 1, 20, 20, 170),
		datastructure.NewEdge(1, 2, 20, 20, 170),
		datastructure.NewEdge(3, 4, 15, 15, 120),
	})
}

func TestKVDBCandidates(t *testing.T) {
	for _, backend := range []Backend{BackendBadger, BackendPebble, BackendBolt} {
		t.Run(string(backend), func(t *testing.T) {
			store, err := OpenStore(backend, t.TempDir())
			require.NoError(t, err)

			db := NewKVDB(store, DefaultResolution, zap.NewNop())
			defer db.Close()

			g := kvTestGraph()
			require.NoError(t, db.BuildH3IndexedEdges(context.Background(), g, 2))

			ids, err := db.Candidates(context.Background(), datastructure.NewCoordinate(-7.7958, 110.3702), 200)
			require.NoError(t, err)
			assert.Contains(t, ids, g.FindEdge(0, 1))
			assert.NotContains(t, ids, g.FindEdge(3, 4))

			_, err = db.Candidates(context.Background(), datastructure.NewCoordinate(1.35, 103.82), 200)
			assert.ErrorIs(t, err, ErrEdgesNotFound)
		})
	}
}

func TestEdgeIDCodec(t *testing.T) {
	ids := []int32{3, 7, 1 << 20}
	bb, err := encodeEdgeIDs(ids)
	require.NoError(t, err)
	got, err := decodeEdgeIDs(bb)
	require.NoError(t, err)
	assert.Equal(t, ids, got)
}

func TestParseBackend(t *testing.T) {
	b, err := ParseBackend("Pebble")
	require.NoError(t, err)
	assert.Equal(t, BackendPebble, b)

	b, err = ParseBackend("bolt")
	require.NoError(t, err)
	assert.Equal(t, BackendBolt, b)

	_, err = ParseBackend("leveldb")
	assert.Error(t, err)
}

func TestStoreGetMissing(t *testing.T) {
	for _, backend := range []Backend{BackendBadger, BackendPebble, BackendBolt} {
		t.Run(string(backend), func(t *testing.T) {
			store, err := OpenStore(backend, t.TempDir())
			require.NoError(t, err)
			defer store.Close()

			require.NoError(t, store.WriteBatch([]KeyValue{{Key: []byte("a"), Value: []byte("1")}}))
			v, err := store.Get([]byte("a"))
			require.NoError(t, err)
			assert.Equal(t, []byte("1"), v)

			_, err = store.Get([]byte("b"))
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}
