package storage

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"

	kbinary "github.com/kelindar/binary"
	"github.com/klauspost/compress/zstd"
	"github.com/lintang-b-s/navigatorx-table/pkg/datastructure"
)

// fileHeader is written little endian at the start of every index file.
type fileHeader struct {
	Magic      [8]byte
	Version    uint32
	Algorithm  uint8
	Metric     uint8
	PayloadLen uint64
}

// Image is a decoded index file. Exactly one of CH and MLD is set, matching
// Algorithm.
type Image struct {
	Algorithm datastructure.Algorithm
	Metric    datastructure.WeightMetric
	CH        *datastructure.CHIndex
	MLD       *datastructure.MLDIndex
}

func (im *Image) Graph() *datastructure.Graph {
	switch im.Algorithm {
	case datastructure.AlgorithmCH:
		return &im.CH.Graph
	case datastructure.AlgorithmMLD:
		return &im.MLD.Graph
	}
	return nil
}

func WriteCHIndex(path string, idx *datastructure.CHIndex, metric datastructure.WeightMetric) error {
	return writeImage(path, datastructure.AlgorithmCH, metric, idx)
}

func WriteMLDIndex(path string, idx *datastructure.MLDIndex, metric datastructure.WeightMetric) error {
	return writeImage(path, datastructure.AlgorithmMLD, metric, idx)
}

// crc32Writer forwards writes and keeps a running checksum.
type crc32Writer struct {
	w   io.Writer
	crc uint32
}

func (cw *crc32Writer) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.crc = crc32.Update(cw.crc, crc32.IEEETable, p[:n])
	return n, err
}

func writeImage(path string, algo datastructure.Algorithm, metric datastructure.WeightMetric, idx any) error {
	encoded, err := kbinary.Marshal(idx)
	if err != nil {
		return fmt.Errorf("encode %s index: %w", algo, err)
	}
	payload, err := compressPayload(encoded)
	if err != nil {
		return fmt.Errorf("compress %s index: %w", algo, err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp index file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	hdr := fileHeader{
		Version:    IndexFormatVersion,
		Algorithm:  uint8(algo),
		Metric:     uint8(metric),
		PayloadLen: uint64(len(payload)),
	}
	copy(hdr.Magic[:], IndexMagic)

	cw := &crc32Writer{w: tmp}
	if err := binary.Write(cw, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("write index header: %w", err)
	}
	if _, err := cw.Write(payload); err != nil {
		return fmt.Errorf("write index payload: %w", err)
	}
	if err := binary.Write(tmp, binary.LittleEndian, cw.crc); err != nil {
		return fmt.Errorf("write index checksum: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename index file: %w", err)
	}
	committed = true
	return nil
}

// ReadHeader validates magic and version and returns the algorithm and metric
// stored in the file without decoding the payload.
func ReadHeader(path string) (datastructure.Algorithm, datastructure.WeightMetric, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	buf := make([]byte, headerSize)
	if _, err := io.ReadFull(f, buf); err != nil {
		return 0, 0, ErrTruncated
	}
	hdr, err := parseHeader(buf)
	if err != nil {
		return 0, 0, err
	}
	return datastructure.Algorithm(hdr.Algorithm), datastructure.WeightMetric(hdr.Metric), nil
}

func parseHeader(data []byte) (fileHeader, error) {
	var hdr fileHeader
	if len(data) < headerSize {
		return hdr, ErrTruncated
	}
	if err := binary.Read(bytes.NewReader(data[:headerSize]), binary.LittleEndian, &hdr); err != nil {
		return hdr, ErrTruncated
	}
	if string(hdr.Magic[:]) != IndexMagic {
		return hdr, ErrBadMagic
	}
	if hdr.Version != IndexFormatVersion {
		return hdr, fmt.Errorf("%w: file has %d, want %d", ErrVersionMismatch, hdr.Version, IndexFormatVersion)
	}
	switch datastructure.Algorithm(hdr.Algorithm) {
	case datastructure.AlgorithmCH, datastructure.AlgorithmMLD:
	default:
		return hdr, ErrUnknownAlgorithm
	}
	switch datastructure.WeightMetric(hdr.Metric) {
	case datastructure.MetricDuration, datastructure.MetricDistance:
	default:
		return hdr, ErrUnknownMetric
	}
	if hdr.PayloadLen == 0 {
		return hdr, ErrEmptyIndexPayload
	}
	if hdr.PayloadLen > maxPayloadSize {
		return hdr, fmt.Errorf("payload length %d exceeds limit", hdr.PayloadLen)
	}
	return hdr, nil
}

// ReadIndex maps the file, checks header and checksum and decodes the index.
func ReadIndex(path string) (*Image, error) {
	data, release, err := mapFile(path)
	if err != nil {
		return nil, err
	}
	defer release()

	hdr, err := parseHeader(data)
	if err != nil {
		return nil, err
	}
	end := uint64(headerSize) + hdr.PayloadLen
	if uint64(len(data)) != end+trailerSize {
		return nil, fmt.Errorf("%w: %d bytes, header says %d", ErrTruncated, len(data), end+trailerSize)
	}
	want := binary.LittleEndian.Uint32(data[end:])
	if got := crc32.ChecksumIEEE(data[:end]); got != want {
		return nil, fmt.Errorf("%w: got %08x, want %08x", ErrChecksumMismatch, got, want)
	}

	decoded, err := decompressPayload(data[headerSize:end])
	if err != nil {
		return nil, fmt.Errorf("decompress index: %w", err)
	}

	im := &Image{
		Algorithm: datastructure.Algorithm(hdr.Algorithm),
		Metric:    datastructure.WeightMetric(hdr.Metric),
	}
	switch im.Algorithm {
	case datastructure.AlgorithmCH:
		im.CH = &datastructure.CHIndex{}
		err = kbinary.Unmarshal(decoded, im.CH)
	case datastructure.AlgorithmMLD:
		im.MLD = &datastructure.MLDIndex{}
		err = kbinary.Unmarshal(decoded, im.MLD)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s index: %w", im.Algorithm, err)
	}
	return im, nil
}

func compressPayload(in []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(in, make([]byte, 0, len(in)/4)), nil
}

// decompressPayload copies out of the mapped file; kelindar may keep
// references into the buffer it decodes from.
func decompressPayload(in []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxPayloadSize))
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(in, nil)
}
