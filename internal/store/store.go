// Package store implements the content store: an append-only map from
// content address to bytes.
//
// The Store interface keeps Perkeep's simplicity:
// - Get/Put/Has for single objects, GetMulti/PutMulti for transfers
// - no update or delete; an address always names the same bytes
// - filesystem-based with an LRU read cache
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no object has the address.
var ErrNotFound = errors.New("store: object not found")

// Store handles local content storage.
type Store interface {
	// Get retrieves an object by address.
	Get(ctx context.Context, hash string) ([]byte, error)

	// Put stores an object and returns its address. Storing the same bytes
	// twice is a no-op that returns the same address.
	Put(ctx context.Context, data []byte) (hash string, err error)

	// Has checks if an object exists.
	Has(ctx context.Context, hash string) (bool, error)

	// List returns every stored address.
	List(ctx context.Context) ([]string, error)

	// GetMulti retrieves multiple objects (batch operation).
	GetMulti(ctx context.Context, hashes []string) (map[string][]byte, error)

	// PutMulti stores multiple objects (batch operation). Every object is
	// re-addressed from its content and must match its key.
	PutMulti(ctx context.Context, objects map[string][]byte) error
}
