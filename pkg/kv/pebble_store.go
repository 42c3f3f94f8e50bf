package kv

import (
	"errors"

	"github.com/cockroachdb/pebble"
)

type PebbleStore struct {
	db *pebble.DB
}

func OpenPebbleStore(dir string) (*PebbleStore, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	return &PebbleStore{db: db}, nil
}

func (s *PebbleStore) Get(key []byte) ([]byte, error) {
	val, closer, err := s.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (s *PebbleStore) WriteBatch(kvs []KeyValue) error {
	batch := s.db.NewBatch()
	defer batch.Close()

	for _, kv := range kvs {
		if err := batch.Set(kv.Key, kv.Value, nil); err != nil {
			return err
		}
	}
	return batch.Commit(pebble.Sync)
}

func (s *PebbleStore) Close() error {
	return s.db.Close()
}
