package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/aweris/twig/internal/compression"
	"github.com/aweris/twig/internal/digest"
	"github.com/aweris/twig/internal/fsutil"
)

// LocalStore implements Store using the local filesystem.
//
// Storage layout:
//
//	dir/
//	  a9993e364706816aba3e25717850c26c9cd0d89d  (one file per object)
//
// Object files carry a one-byte compression header; the address is always
// computed over the uncompressed bytes.
type LocalStore struct {
	dir        string
	cache      Cache
	compressor *compression.Compressor
}

// Options configures a LocalStore.
type Options struct {
	CacheSize          int
	CompressionLevel   int
	CompressionEnabled bool
}

// DefaultOptions returns the settings used when none are configured.
func DefaultOptions() Options {
	return Options{CacheSize: 256, CompressionLevel: 2, CompressionEnabled: true}
}

func NewLocalStore(dir string, opts Options) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create objects dir %s: %w", dir, err)
	}

	compressor, err := compression.NewCompressor(opts.CompressionLevel, opts.CompressionEnabled)
	if err != nil {
		return nil, fmt.Errorf("create compressor: %w", err)
	}

	return &LocalStore{
		dir:        dir,
		cache:      NewLRUCache(opts.CacheSize),
		compressor: compressor,
	}, nil
}

// Dir returns the objects directory.
func (s *LocalStore) Dir() string { return s.dir }

// Get retrieves an object by address.
func (s *LocalStore) Get(ctx context.Context, hash string) ([]byte, error) {
	if data, ok := s.cache.Get(hash); ok {
		return data, nil
	}
	if !digest.Valid(hash) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, hash)
	}

	raw, err := os.ReadFile(s.objectPath(hash))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, hash)
		}
		return nil, fmt.Errorf("read object %s: %w", hash, err)
	}

	data, err := s.compressor.Decompress(raw)
	if err != nil {
		return nil, fmt.Errorf("decode object %s: %w", hash, err)
	}

	s.cache.Add(hash, data)
	return data, nil
}

// Put stores an object and returns its address.
func (s *LocalStore) Put(ctx context.Context, data []byte) (string, error) {
	hash, err := digest.Sum(data)
	if err != nil {
		return "", err
	}

	path := s.objectPath(hash)
	if fsutil.Exists(path) {
		return hash, nil
	}

	if err := fsutil.SafeWrite(path, s.compressor.Compress(data), 0644); err != nil {
		return "", fmt.Errorf("write object %s: %w", hash, err)
	}

	s.cache.Add(hash, data)
	return hash, nil
}

// Has checks if an object exists.
func (s *LocalStore) Has(ctx context.Context, hash string) (bool, error) {
	if s.cache.Has(hash) {
		return true, nil
	}
	if !digest.Valid(hash) {
		return false, nil
	}
	_, err := os.Stat(s.objectPath(hash))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// List returns every stored address in sorted order.
func (s *LocalStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list objects: %w", err)
	}
	hashes := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !digest.Valid(e.Name()) {
			continue
		}
		hashes = append(hashes, e.Name())
	}
	sort.Strings(hashes)
	return hashes, nil
}

// GetMulti retrieves multiple objects.
func (s *LocalStore) GetMulti(ctx context.Context, hashes []string) (map[string][]byte, error) {
	result := make(map[string][]byte, len(hashes))
	for _, hash := range hashes {
		data, err := s.Get(ctx, hash)
		if err != nil {
			return nil, err
		}
		result[hash] = data
	}
	return result, nil
}

// PutMulti stores multiple objects.
func (s *LocalStore) PutMulti(ctx context.Context, objects map[string][]byte) error {
	for key, data := range objects {
		hash, err := s.Put(ctx, data)
		if err != nil {
			return err
		}
		if hash != key {
			return fmt.Errorf("object %s: content hashes to %s", key, hash)
		}
	}
	return nil
}

// Close releases the compressor.
func (s *LocalStore) Close() error {
	s.cache.Clear()
	return s.compressor.Close()
}

func (s *LocalStore) objectPath(hash string) string {
	return filepath.Join(s.dir, hash)
}
