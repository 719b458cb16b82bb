// Package store provides the durable key-value store behind the
// persistence gateway: whole-document get/set keyed by name, plus a
// change-notification subscription.
//
// The store is deliberately dumb. It does not understand tree documents;
// partial writes are not supported, so every flush is whole-document. The
// UI observes state through the store, never through a direct in-memory
// reference, which makes the store a message bus rather than shared memory.
package store

import "errors"

// ErrNotFound is returned by Get for a key that has never been set.
var ErrNotFound = errors.New("document not found")

// Change is delivered to subscribers after a successful Set.
type Change struct {
	Key      string
	NewValue []byte
}

// Store is the durable document store contract.
type Store interface {
	// Get returns the serialized document for key, or ErrNotFound.
	Get(key string) ([]byte, error)
	// Set durably replaces the document for key and notifies subscribers.
	Set(key string, value []byte) error
	// Subscribe returns a channel receiving every subsequent change.
	// Slow subscribers may miss intermediate changes; they never block a
	// writer.
	Subscribe() <-chan Change
	// Close releases the store. Subscription channels are not closed.
	Close() error
}
