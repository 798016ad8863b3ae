// Package store provides local key/value persistence for client state.
package store

import (
	"context"
)

// Repository defines the interface for persisting serialized client state
// under fixed keys.
type Repository interface {
	// Get returns the value stored under key. The boolean is false when
	// no value exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set creates or replaces the value stored under key.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Ping verifies database connectivity and returns an error if the database is unreachable.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
