package storage

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/lintang-b-s/navigatorx-table/pkg/datastructure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallGraph() *datastructure.Graph {
	nodes := []datastructure.Coordinate{
		datastructure.NewCoordinate(-7.0, 110.0),
		datastructure.NewCoordinate(-7.1, 110.1),
		datastructure.NewCoordinate(-7.2, 110.2),
	}
	return datastructure.NewGraph(nodes, []datastructure.Edge{
		datastructure.NewEdge(0, 1, 4, 4, 40),
		datastructure.NewEdge(1, 0, 4, 4, 40),
		datastructure.NewEdge(1, 2, 2, 2, 20),
	})
}

func writeSmallCH(t *testing.T) string {
	t.Helper()
	g := smallGraph()
	edges := []datastructure.EdgeCH{}
	for _, e := range g.Edges {
		edges = append(edges, datastructure.NewEdgeCH(e.From, e.To, e.Cost(), -1))
	}
	ch := datastructure.NewCHIndex(g, []int32{2, 0, 1}, edges)

	path := filepath.Join(t.TempDir(), "small.idx")
	require.NoError(t, WriteCHIndex(path, ch, datastructure.MetricDuration))
	return path
}

func TestCHIndexRoundTrip(t *testing.T) {
	path := writeSmallCH(t)

	algo, metric, err := ReadHeader(path)
	require.NoError(t, err)
	assert.Equal(t, datastructure.AlgorithmCH, algo)
	assert.Equal(t, datastructure.MetricDuration, metric)

	im, err := ReadIndex(path)
	require.NoError(t, err)
	require.NotNil(t, im.CH)
	assert.Nil(t, im.MLD)
	assert.Equal(t, []int32{2, 0, 1}, im.CH.Rank)
	assert.Equal(t, 3, im.Graph().NumNodes())
	assert.Equal(t, 3, im.Graph().NumEdges())
	assert.Equal(t, -7.1, im.Graph().GetCoordinate(1).Lat)
	assert.Equal(t, smallGraph().FindEdge(0, 1), im.Graph().FindEdge(0, 1))
	assert.Equal(t, 3, im.CH.Fwd.NumEdges()+im.CH.Bwd.NumEdges())
}

func TestMLDIndexRoundTrip(t *testing.T) {
	g := smallGraph()
	p, err := datastructure.NewMultiLevelPartition([][]int32{{0, 0, 1}})
	require.NoError(t, err)
	o := datastructure.NewOverlay(g, p)
	idx := datastructure.NewMLDIndex(g, p, o)

	path := filepath.Join(t.TempDir(), "mld.idx")
	require.NoError(t, WriteMLDIndex(path, idx, datastructure.MetricDistance))

	im, err := ReadIndex(path)
	require.NoError(t, err)
	require.NotNil(t, im.MLD)
	assert.Equal(t, datastructure.AlgorithmMLD, im.Algorithm)
	assert.Equal(t, datastructure.MetricDistance, im.Metric)
	assert.Equal(t, []int32{0, 0, 1}, im.MLD.Partition.CellIDs[0])
	assert.Equal(t, []int32{1}, im.MLD.Overlay.GetCell(1, 0).Destinations)
	assert.Equal(t, []int32{2}, im.MLD.Overlay.GetCell(1, 1).Sources)
	assert.Equal(t, int32(0), im.MLD.Overlay.DestIndex[0][1])
}

func TestReadIndexRejectsDamagedFiles(t *testing.T) {
	cases := []struct {
		name    string
		corrupt func(data []byte) []byte
		wantErr error
	}{
		{
			name: "bad magic",
			corrupt: func(data []byte) []byte {
				data[0] = 'X'
				return data
			},
			wantErr: ErrBadMagic,
		},
		{
			name: "version mismatch",
			corrupt: func(data []byte) []byte {
				binary.LittleEndian.PutUint32(data[8:12], IndexFormatVersion+1)
				return data
			},
			wantErr: ErrVersionMismatch,
		},
		{
			name: "payload corruption",
			corrupt: func(data []byte) []byte {
				data[headerSize+2] ^= 0xff
				return data
			},
			wantErr: ErrChecksumMismatch,
		},
		{
			name: "truncated",
			corrupt: func(data []byte) []byte {
				return data[:len(data)-3]
			},
			wantErr: ErrTruncated,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			path := writeSmallCH(t)
			data, err := os.ReadFile(path)
			require.NoError(t, err)
			require.NoError(t, os.WriteFile(path, c.corrupt(data), 0o644))

			_, err = ReadIndex(path)
			assert.ErrorIs(t, err, c.wantErr)
		})
	}
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	path := writeSmallCH(t)
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestPayloadCompression(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
	}{
		{"empty", []byte{}},
		{"short", []byte("navigatorx")},
		{"repetitive", bytes.Repeat([]byte{1, 2, 3, 4}, 4096)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			compressed, err := compressPayload(tt.in)
			require.NoError(t, err)
			got, err := decompressPayload(compressed)
			require.NoError(t, err)
			assert.Equal(t, len(tt.in), len(got))
			if len(tt.in) > 0 {
				assert.Equal(t, tt.in, got)
			}
		})
	}

	_, err := decompressPayload([]byte("not zstd"))
	assert.Error(t, err)
}
