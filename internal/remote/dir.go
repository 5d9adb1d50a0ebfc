package remote

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/aweris/twig/internal/fsutil"
	"github.com/aweris/twig/internal/store"
)

// DirEndpoint is a repository storage directory on the local filesystem.
type DirEndpoint struct {
	dir       string
	statePath string
	objects   store.Store
}

// NewDirEndpoint returns an endpoint reading its state from statePath and
// its blobs from objects. dir is only used for display.
func NewDirEndpoint(dir, statePath string, objects store.Store) *DirEndpoint {
	return &DirEndpoint{dir: dir, statePath: statePath, objects: objects}
}

func (e *DirEndpoint) String() string { return e.dir }

func (e *DirEndpoint) LoadState(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(e.statePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoRepository, e.dir)
		}
		return nil, fmt.Errorf("read remote state: %w", err)
	}
	return data, nil
}

func (e *DirEndpoint) List(ctx context.Context) ([]string, error) {
	return e.objects.List(ctx)
}

func (e *DirEndpoint) Get(ctx context.Context, hash string) ([]byte, error) {
	data, err := e.objects.Get(ctx, hash)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, hash)
	}
	return data, err
}

func (e *DirEndpoint) Store(ctx context.Context, state []byte, objects map[string][]byte) error {
	if err := e.objects.PutMulti(ctx, objects); err != nil {
		return fmt.Errorf("copy objects: %w", err)
	}
	if err := fsutil.SafeWrite(e.statePath, state, 0644); err != nil {
		return fmt.Errorf("write remote state: %w", err)
	}
	return nil
}
