// Package snapstore implements ports.SnapshotStore using bbolt (embedded
// B+ tree). All snapshots live as JSON values in a single bucket, keyed by
// name. Writes are transactional — a crash mid-write cannot corrupt
// previously committed snapshots.
package snapstore

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/corey/kwtree"
	bolt "go.etcd.io/bbolt"
)

var bucketSnapshots = []byte("snapshots")

// Store implements ports.SnapshotStore backed by bbolt.
type Store struct {
	db *bolt.DB
}

// NewStore opens (or creates) a bbolt database at the given path.
func NewStore(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores a snapshot under name, replacing any previous one.
func (s *Store) Save(name string, snap *kwtree.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("nil snapshot")
	}
	if name == "" {
		return fmt.Errorf("empty snapshot name")
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot %q: %w", name, err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketSnapshots)
		if err != nil {
			return err
		}
		return b.Put([]byte(name), data)
	})
}

// Load retrieves a snapshot by name.
// Returns nil, nil if no snapshot with that name exists.
func (s *Store) Load(name string) (*kwtree.Snapshot, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSnapshots)
		if b == nil {
			return nil
		}
		// Copy bytes out of the transaction (bbolt slices are only valid within tx)
		if v := b.Get([]byte(name)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	var snap kwtree.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot %q: %w", name, err)
	}
	return &snap, nil
}

// Delete removes a snapshot.
// Idempotent: deleting a nonexistent name is not an error.
func (s *Store) Delete(name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSnapshots)
		if b == nil {
			return nil
		}
		return b.Delete([]byte(name))
	})
}

// List returns the stored snapshot names. bbolt iterates keys in byte order,
// so the result is already sorted.
func (s *Store) List() ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSnapshots)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}
