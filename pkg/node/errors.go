package node

import "errors"

var (
	// ErrNilParent indicates an attach onto a nil parent.
	ErrNilParent = errors.New("node: nil parent")

	// ErrAlreadyAttached indicates the node already occupies a tree position.
	ErrAlreadyAttached = errors.New("node: already attached; detach first")

	// ErrCycle indicates an attach that would make a node its own ancestor.
	ErrCycle = errors.New("node: attach would create a cycle")

	// ErrNotFound indicates no node matched the given path or id.
	ErrNotFound = errors.New("node: not found")
)
