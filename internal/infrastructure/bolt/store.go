// Package bolt implements the default key-value backend on a local bbolt file.
package bolt

import (
	"context"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/fastygo/todos/internal/infrastructure/kv"
)

// DefaultBucket holds every persisted key.
const DefaultBucket = "kv"

// Store wraps BoltDB as a kv.Backend.
type Store struct {
	db     *bolt.DB
	bucket []byte
}

// Open initializes the BoltDB file and ensures the bucket exists. A file held
// by another process fails after timeout.
func Open(path string, bucket string, timeout time.Duration) (*Store, error) {
	if bucket == "" {
		bucket = DefaultBucket
	}
	if timeout <= 0 {
		timeout = time.Second
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db:     db,
		bucket: []byte(bucket),
	}, nil
}

// Opener returns a kv.Opener that opens the file at path on first use.
func Opener(path, bucket string, timeout time.Duration) kv.Opener {
	return func(context.Context) (kv.Backend, error) {
		return Open(path, bucket, timeout)
	}
}

// Get returns a copy of the value stored at key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	if s == nil || s.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}
	var value []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(s.bucket).Get([]byte(key))
		if v == nil {
			return kv.ErrNotFound
		}
		value = append([]byte(nil), v...)
		return nil
	})
	return value, err
}

// Put replaces the value at key inside a single transaction.
func (s *Store) Put(_ context.Context, key string, value []byte) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(key), value)
	})
}

// Delete removes key. Missing keys are ignored.
func (s *Store) Delete(_ context.Context, key string) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Delete([]byte(key))
	})
}

// Usage sums the size of every stored value.
func (s *Store) Usage(_ context.Context) (int64, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var total int64
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).ForEach(func(_, v []byte) error {
			total += int64(len(v))
			return nil
		})
	})
	return total, err
}

// Close closes the Bolt database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil || s.db == nil {
		return ""
	}
	return s.db.Path()
}

var _ kv.Backend = (*Store)(nil)
