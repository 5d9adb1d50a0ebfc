// Package logging builds the debug logger shared by the engine and the CLI.
package logging

import (
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects the logger's sinks.
type Options struct {
	// File, when set, receives every line through a rotating writer.
	File string
	// Verbose also mirrors lines to stderr.
	Verbose bool
	// MaxSizeMB is the rotation threshold. Zero means 10.
	MaxSizeMB int
}

// New returns a logger prefixed with "twig: ". With no sinks configured the
// logger discards everything. The returned closer flushes and releases the
// log file, if any.
func New(opts Options) (*log.Logger, io.Closer) {
	var writers []io.Writer
	var closer io.Closer = nopCloser{}

	if opts.File != "" {
		size := opts.MaxSizeMB
		if size <= 0 {
			size = 10
		}
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    size,
			MaxBackups: 3,
			MaxAge:     28,
		}
		writers = append(writers, lj)
		closer = lj
	}
	if opts.Verbose {
		writers = append(writers, os.Stderr)
	}

	var w io.Writer
	switch len(writers) {
	case 0:
		w = io.Discard
	case 1:
		w = writers[0]
	default:
		w = io.MultiWriter(writers...)
	}
	return log.New(w, "twig: ", log.LstdFlags), closer
}

// Discard returns a logger that drops every line.
func Discard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
