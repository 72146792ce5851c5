package storage

import (
	"go.etcd.io/bbolt"

	lsserrors "github.com/dbros-oss/lss-broker/pkg/errors"
)

// BoltKV is a KV table backed by a single go.etcd.io/bbolt database file.
// Each "table" is a bbolt bucket, created lazily on first Put.
type BoltKV struct {
	db *bbolt.DB
}

// OpenBoltKV opens (creating if absent) a bbolt database at path.
func OpenBoltKV(path string) (*BoltKV, error) {
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, lsserrors.Wrap("open bolt storage", err)
	}
	return &BoltKV{db: db}, nil
}

// Close releases the underlying database file.
func (b *BoltKV) Close() error {
	return b.db.Close()
}

// Get implements KV.
func (b *BoltKV) Get(table, key string) (string, bool, error) {
	var value string
	var found bool
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(table))
		if bucket == nil {
			return nil
		}
		v := bucket.Get([]byte(key))
		if v == nil {
			return nil
		}
		found = true
		value = string(v)
		return nil
	})
	if err != nil {
		return "", false, lsserrors.Wrap("bolt get", err)
	}
	return value, found, nil
}

// Put implements KV.
func (b *BoltKV) Put(table, key, value string) error {
	err := b.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(table))
		if err != nil {
			return err
		}
		return bucket.Put([]byte(key), []byte(value))
	})
	if err != nil {
		return lsserrors.Wrap("bolt put", err)
	}
	return nil
}
