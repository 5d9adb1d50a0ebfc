package twig

import (
	"log"
	"time"

	"github.com/aweris/twig/internal/logging"
	"github.com/aweris/twig/internal/remote"
	"github.com/aweris/twig/internal/store"
)

// SplitStrategy selects how the merge base of two commits is found.
type SplitStrategy string

const (
	// SplitLCA picks the latest common ancestor that is not an ancestor of
	// another common ancestor.
	SplitLCA SplitStrategy = "lca"
	// SplitLockstep scans both time-ordered ancestor lists side by side and
	// keeps the last position where they agree.
	SplitLockstep SplitStrategy = "lockstep"
)

// Options configures a Repository.
type Options struct {
	Compression         bool
	CompressionLevel    int
	CacheSize           int
	SplitStrategy       SplitStrategy
	TransferConcurrency int
	Logger              *log.Logger
	Clock               func() time.Time
}

// Option is a functional option for configuring Init and Open.
type Option func(*Options)

func defaultOptions() *Options {
	so := store.DefaultOptions()
	return &Options{
		Compression:         so.CompressionEnabled,
		CompressionLevel:    so.CompressionLevel,
		CacheSize:           so.CacheSize,
		SplitStrategy:       SplitLCA,
		TransferConcurrency: remote.DefaultConcurrency,
		Logger:              logging.Discard(),
		Clock:               time.Now,
	}
}

// WithCompression sets whether blobs are zstd-compressed on disk and at
// which level (1 fastest, 2 default, 3 better).
func WithCompression(enabled bool, level int) Option {
	return func(o *Options) {
		o.Compression = enabled
		o.CompressionLevel = level
	}
}

// WithCacheSize sets the number of blobs kept in the read cache.
func WithCacheSize(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.CacheSize = n
		}
	}
}

// WithSplitStrategy selects the merge-base algorithm.
func WithSplitStrategy(s SplitStrategy) Option {
	return func(o *Options) { o.SplitStrategy = s }
}

// WithTransferConcurrency sets the number of parallel layer decodes when
// reading OCI layout remotes.
func WithTransferConcurrency(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.TransferConcurrency = n
		}
	}
}

// WithLogger sets the debug logger.
func WithLogger(l *log.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithClock sets the time source for new commits.
func WithClock(now func() time.Time) Option {
	return func(o *Options) {
		if now != nil {
			o.Clock = now
		}
	}
}

func (o *Options) storeOptions() store.Options {
	return store.Options{
		CacheSize:          o.CacheSize,
		CompressionLevel:   o.CompressionLevel,
		CompressionEnabled: o.Compression,
	}
}
