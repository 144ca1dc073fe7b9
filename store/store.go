// Package store provides the durable object substrate for cache entries
// and rate counters.
//
// A Store is deliberately dumb: structured JSON documents keyed by
// slash-separated paths, with no expiry semantics of its own. All TTL
// logic lives in the components built on top of it. Backends are
// pluggable; local files for development, Redis for production.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when no object exists at the path.
var ErrNotFound = errors.New("store: object not found")

// Metadata describes a stored object. LastModified may be zero when the
// backend does not track modification times.
type Metadata struct {
	LastModified time.Time
	Size         int64
}

// Store is a key/timestamped-value object store. Put followed by Get on
// the same path must observe the write within a single logical request.
type Store interface {
	// Put writes value at path, overwriting any existing object.
	Put(ctx context.Context, path string, value []byte) error

	// Get reads the object at path. Returns ErrNotFound if absent.
	Get(ctx context.Context, path string) ([]byte, Metadata, error)

	// Delete removes the object at path. Deleting an absent path is not
	// an error.
	Delete(ctx context.Context, path string) error

	// List returns the paths of all objects under prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}
