package kv

import (
	"github.com/kelindar/binary"
	"github.com/klauspost/compress/zstd"
)

// EncodeAll and DecodeAll are safe for concurrent use, so one pair serves
// every worker of BuildH3IndexedEdges and every Candidates call.
var (
	cellEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	cellDecoder, _ = zstd.NewReader(nil)
)

func encodeEdgeIDs(ids []int32) ([]byte, error) {
	encoded, err := binary.Marshal(ids)
	if err != nil {
		return nil, err
	}
	return cellEncoder.EncodeAll(encoded, nil), nil
}

func decodeEdgeIDs(bb []byte) ([]int32, error) {
	if len(bb) == 0 {
		return nil, nil
	}
	decompressed, err := cellDecoder.DecodeAll(bb, nil)
	if err != nil {
		return nil, err
	}
	var ids []int32
	if err := binary.Unmarshal(decompressed, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}
