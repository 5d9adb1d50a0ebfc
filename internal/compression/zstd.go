// Package compression wraps zstd for on-disk objects.
//
// Every encoded object starts with a one-byte header, so an object written
// with compression disabled can still be read by a store that has it
// enabled (and the other way round).
package compression

import (
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

const (
	headerRaw  byte = 'r'
	headerZstd byte = 'z'

	// objects smaller than this are never worth a zstd frame
	minCompressSize = 128
)

// ErrCorrupt is returned when an object has no recognizable header.
var ErrCorrupt = errors.New("compression: corrupt object")

type Compressor struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
	enabled bool
}

func NewCompressor(level int, enabled bool) (*Compressor, error) {
	decoder, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	if !enabled {
		return &Compressor{decoder: decoder}, nil
	}

	var encoderLevel zstd.EncoderLevel
	switch level {
	case 1:
		encoderLevel = zstd.SpeedFastest
	case 3:
		encoderLevel = zstd.SpeedBetterCompression
	default:
		encoderLevel = zstd.SpeedDefault
	}

	encoder, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(encoderLevel),
		zstd.WithEncoderConcurrency(1),
	)
	if err != nil {
		decoder.Close()
		return nil, err
	}

	return &Compressor{
		encoder: encoder,
		decoder: decoder,
		enabled: true,
	}, nil
}

// Compress frames data, compressing it when that makes it smaller.
func (c *Compressor) Compress(data []byte) []byte {
	if c.enabled && len(data) >= minCompressSize {
		out := c.encoder.EncodeAll(data, []byte{headerZstd})
		if len(out) < len(data)+1 {
			return out
		}
	}
	out := make([]byte, 0, len(data)+1)
	out = append(out, headerRaw)
	return append(out, data...)
}

// Decompress reverses Compress.
func (c *Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrCorrupt
	}
	switch data[0] {
	case headerRaw:
		return data[1:], nil
	case headerZstd:
		out, err := c.decoder.DecodeAll(data[1:], nil)
		if err != nil {
			return nil, fmt.Errorf("zstd decode: %w", err)
		}
		return out, nil
	default:
		return nil, ErrCorrupt
	}
}

func (c *Compressor) Close() error {
	if c.encoder != nil {
		c.encoder.Close()
	}
	if c.decoder != nil {
		c.decoder.Close()
	}
	return nil
}
