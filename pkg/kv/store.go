package kv

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound      = errors.New("key not found")
	ErrEdgesNotFound = errors.New("edges not found")
)

// KeyValue is one entry of a write batch.
type KeyValue struct {
	Key   []byte
	Value []byte
}

// Store is the minimal key-value surface the cell index needs. Get returns
// ErrNotFound for a missing key.
type Store interface {
	Get(key []byte) ([]byte, error)
	WriteBatch(kvs []KeyValue) error
	Close() error
}

type Backend string

const (
	BackendBadger Backend = "badger"
	BackendPebble Backend = "pebble"
	BackendBolt   Backend = "bolt"
)

func ParseBackend(s string) (Backend, error) {
	switch Backend(strings.ToLower(s)) {
	case BackendBadger:
		return BackendBadger, nil
	case BackendPebble:
		return BackendPebble, nil
	case BackendBolt:
		return BackendBolt, nil
	}
	return "", fmt.Errorf("unknown kv backend %q, want badger, pebble or bolt", s)
}

// OpenStore opens (or creates) a store of the given backend in dir.
func OpenStore(backend Backend, dir string) (Store, error) {
	switch backend {
	case BackendBadger:
		return OpenBadgerStore(dir)
	case BackendPebble:
		return OpenPebbleStore(dir)
	case BackendBolt:
		return OpenBoltStore(dir)
	}
	return nil, fmt.Errorf("unknown kv backend %q", backend)
}
