package storage

import "errors"

const (
	IndexMagic         = "NAVXTBL\x00"
	IndexFormatVersion = uint32(1)

	// magic(8) + version(4) + algorithm(1) + metric(1) + payload length(8)
	headerSize  = 22
	trailerSize = 4

	maxPayloadSize = 64 << 30

	DefaultIndexFileName = "navigatorx.idx"
)

var (
	ErrBadMagic          = errors.New("not a navigatorx index file")
	ErrVersionMismatch   = errors.New("index format version mismatch")
	ErrChecksumMismatch  = errors.New("index checksum mismatch")
	ErrTruncated         = errors.New("index file truncated")
	ErrUnknownAlgorithm  = errors.New("index carries an unknown algorithm")
	ErrUnknownMetric     = errors.New("index carries an unknown metric")
	ErrEmptyIndexPayload = errors.New("index payload is empty")
)
