// Package ports defines the interfaces the CLI layer consumes. Adapters
// under internal/adapters implement them; the core library in the repo root
// knows nothing about any of this.
package ports

import "github.com/corey/kwtree"

// SnapshotStore persists compiled automatons under caller-chosen names.
type SnapshotStore interface {
	// Save stores a snapshot under name, replacing any previous snapshot
	// with the same name.
	Save(name string, snap *kwtree.Snapshot) error

	// Load retrieves a snapshot by name. Returns nil, nil if no snapshot
	// with that name exists.
	Load(name string) (*kwtree.Snapshot, error)

	// Delete removes a snapshot. Deleting a nonexistent name is not an error.
	Delete(name string) error

	// List returns the stored snapshot names in lexical order.
	List() ([]string, error)

	// Close releases the underlying database.
	Close() error
}
