package kv

import (
	"os"
	"path/filepath"

	bolt "go.etcd.io/bbolt"
)

const (
	boltFileName  = "navigatorx.db"
	H3_BOLTBUCKET = "h3_edges"
)

// BoltStore keeps every cell in one bucket of a single bolt file inside dir.
type BoltStore struct {
	db *bolt.DB
}

func OpenBoltStore(dir string) (*BoltStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(filepath.Join(dir, boltFileName), 0600, nil)
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(H3_BOLTBUCKET))
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Get(key []byte) ([]byte, error) {
	var val []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(H3_BOLTBUCKET)).Get(key)
		if v == nil {
			return ErrNotFound
		}
		// v is only valid inside the transaction
		val = append([]byte(nil), v...)
		return nil
	})
	return val, err
}

func (s *BoltStore) WriteBatch(kvs []KeyValue) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(H3_BOLTBUCKET))
		for _, kv := range kvs {
			if err := b.Put(kv.Key, kv.Value); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
