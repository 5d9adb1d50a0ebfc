// Package remote implements the endpoints a repository synchronizes with.
//
// A remote is another repository reachable through local storage, never a
// live connection. DirEndpoint reads a regular repository's storage
// directory. LayoutEndpoint keeps a bare repository as an OCI image layout,
// with the state in a config label and the blobs packed into zstd layers.
//
// Endpoints move opaque state snapshots plus content-addressed blobs; the
// caller decodes and merges the state.
package remote

import (
	"context"
	"errors"
)

var (
	// ErrNoRepository is returned when the location holds no repository.
	ErrNoRepository = errors.New("remote: no repository at location")

	// ErrEmpty is returned by LoadState for a location that can hold a
	// repository but has never been written to.
	ErrEmpty = errors.New("remote: repository is empty")

	// ErrObjectNotFound is returned by Get for unknown addresses.
	ErrObjectNotFound = errors.New("remote: object not found")
)

// Endpoint is one remote repository location.
type Endpoint interface {
	// String returns the location as configured.
	String() string

	// LoadState returns the encoded state snapshot.
	LoadState(ctx context.Context) ([]byte, error)

	// List returns the addresses of every stored blob.
	List(ctx context.Context) ([]string, error)

	// Get returns one blob.
	Get(ctx context.Context, hash string) ([]byte, error)

	// Store writes the given blobs, then replaces the state snapshot.
	Store(ctx context.Context, state []byte, objects map[string][]byte) error
}
