package model

import "errors"

// Structural errors are detected before any mutation; a call that returns
// one is a clean no-op. Partial application is never acceptable.
var (
	// ErrInvalidParent means the referenced parent or view does not exist.
	ErrInvalidParent = errors.New("invalid parent")
	// ErrCycleDetected means a move would make a node its own ancestor.
	ErrCycleDetected = errors.New("move would create a cycle")
	// ErrNotAGroup means a group-only operation targeted a non-group node.
	ErrNotAGroup = errors.New("node is not a group")
	// ErrNodeNotFound means the node id is stale or unknown.
	ErrNodeNotFound = errors.New("node not found")
	// ErrViewNotFound means the view id is stale or unknown.
	ErrViewNotFound = errors.New("view not found")
	// ErrPersistence means a durable write did not complete. The in-memory
	// model remains the source of truth; callers treat this as a warning.
	ErrPersistence = errors.New("persistence failure")
)
