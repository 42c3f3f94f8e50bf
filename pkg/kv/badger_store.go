package kv

import (
	"errors"

	"github.com/dgraph-io/badger/v4"
)

type BadgerStore struct {
	db *badger.DB
}

func OpenBadgerStore(dir string) (*BadgerStore, error) {
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, err
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Get(key []byte) ([]byte, error) {
	var val []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	return val, err
}

func (s *BadgerStore) WriteBatch(kvs []KeyValue) error {
	batch := s.db.NewWriteBatch()
	defer batch.Cancel()

	for _, kv := range kvs {
		if err := batch.Set(kv.Key, kv.Value); err != nil {
			return err
		}
	}
	return batch.Flush()
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
