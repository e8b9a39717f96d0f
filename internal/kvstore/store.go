// Package kvstore reads and writes the shared preferences database the
// application layer persists alarm definitions in.
package kvstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

// BucketName is the single bucket holding preference keys.
const BucketName = "prefs"

// ErrStoreLocked is returned when another process holds the database lock
// past the configured timeout.
var ErrStoreLocked = errors.New("preferences store is locked by another process")

// Store is a bbolt-backed string map. The database is opened per operation so
// other writers are never blocked for longer than one call.
type Store struct {
	path        string
	lockTimeout time.Duration
}

// New returns a store for the database at path.
func New(path string, lockTimeout time.Duration) *Store {
	if lockTimeout <= 0 {
		lockTimeout = time.Second
	}
	return &Store{path: path, lockTimeout: lockTimeout}
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Get returns the value stored under key. A missing database, bucket, or key
// reports found=false without error.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	if _, err := os.Stat(s.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("stat store %q: %w", s.path, err)
	}

	db, err := s.open(true)
	if err != nil {
		return "", false, err
	}
	defer db.Close()

	var (
		value string
		found bool
	)
	err = db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(BucketName))
		if bucket == nil {
			return nil
		}
		raw := bucket.Get([]byte(key))
		if raw == nil {
			return nil
		}
		value = string(raw)
		found = true
		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("read %q: %w", key, err)
	}
	return value, found, nil
}

// Put stores value under key, creating the database and bucket as needed.
func (s *Store) Put(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}

	db, err := s.open(false)
	if err != nil {
		return err
	}
	defer db.Close()

	err = db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(BucketName))
		if err != nil {
			return err
		}
		return bucket.Put([]byte(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("write %q: %w", key, err)
	}
	return nil
}

// Keys lists every key in the preferences bucket.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}

	db, err := s.open(true)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var keys []string
	err = db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(BucketName))
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	return keys, nil
}

func (s *Store) open(readOnly bool) (*bolt.DB, error) {
	db, err := bolt.Open(s.path, 0o600, &bolt.Options{ReadOnly: readOnly, Timeout: s.lockTimeout})
	if err != nil {
		if errors.Is(err, bolt.ErrTimeout) {
			return nil, fmt.Errorf("%w: %s", ErrStoreLocked, s.path)
		}
		return nil, fmt.Errorf("open store %q: %w", s.path, err)
	}
	return db, nil
}
