// Package compression wraps zstd for content that crosses the store
// boundary compressed: zstd-encoded payloads handed to Write, and
// compressed output from the CLI.
package compression

import (
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Level names accepted by ParseLevel.
const (
	LevelFastest = "fastest"
	LevelDefault = "default"
	LevelBetter  = "better"
	LevelBest    = "best"
)

// ParseLevel maps a level name to a zstd encoder level. An empty name
// selects the default level.
func ParseLevel(name string) (zstd.EncoderLevel, error) {
	switch strings.ToLower(name) {
	case LevelFastest:
		return zstd.SpeedFastest, nil
	case "", LevelDefault:
		return zstd.SpeedDefault, nil
	case LevelBetter:
		return zstd.SpeedBetterCompression, nil
	case LevelBest:
		return zstd.SpeedBestCompression, nil
	}
	return 0, fmt.Errorf("unknown compression level %q", name)
}

// DefaultMaxDecodedSize caps how large a single decompressed payload may
// grow in memory.
const DefaultMaxDecodedSize = 256 << 20

// Decompressor decodes whole zstd payloads in memory. It is safe for
// concurrent use.
type Decompressor struct {
	decoder *zstd.Decoder
}

// NewDecompressor builds a decoder that refuses output larger than
// maxSize bytes. A zero maxSize selects DefaultMaxDecodedSize.
func NewDecompressor(maxSize uint64) (*Decompressor, error) {
	if maxSize == 0 {
		maxSize = DefaultMaxDecodedSize
	}
	decoder, err := zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderMaxMemory(maxSize),
	)
	if err != nil {
		return nil, err
	}
	return &Decompressor{decoder: decoder}, nil
}

// Decompress fails on anything that is not a complete zstd stream, and on
// streams that would decode past the size cap.
func (d *Decompressor) Decompress(data []byte) ([]byte, error) {
	out, err := d.decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decode: %w", err)
	}
	return out, nil
}

// Close releases the decoder.
func (d *Decompressor) Close() {
	d.decoder.Close()
}

// CompressStream copies src to dst as a single zstd stream.
func CompressStream(dst io.Writer, src io.Reader, level zstd.EncoderLevel) (int64, error) {
	w, err := zstd.NewWriter(dst, zstd.WithEncoderLevel(level))
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(w, src)
	if err != nil {
		w.Close()
		return n, err
	}
	return n, w.Close()
}
