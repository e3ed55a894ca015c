package kwtree

import "errors"

// Every error in this package is a contract violation surfaced synchronously
// to the caller. There is nothing to retry: a finalized tree stays finalized,
// and a tree that was never finalized cannot be searched.
var (
	// ErrAlreadyFinalized is returned by Add and Finalize once Finalize has
	// succeeded. The tree is immutable from that point on.
	ErrAlreadyFinalized = errors.New("keyword tree already finalized")

	// ErrNotFinalized is returned by the search operations until Finalize
	// has been called.
	ErrNotFinalized = errors.New("keyword tree not finalized")

	// ErrCorruptSnapshot is returned by FromSnapshot when the snapshot
	// references nodes that do not exist or violates the tree shape.
	ErrCorruptSnapshot = errors.New("corrupt snapshot")
)
