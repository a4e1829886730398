package castore

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"github.com/aweris/castore/internal/compression"
)

// maxDecodedSize caps the decompressed size of a zstd payload given to Write.
const maxDecodedSize = compression.DefaultMaxDecodedSize

// zstdDecoder is shared by every Write; DecodeAll is safe for concurrent use.
var zstdDecoder = sync.OnceValues(func() (*compression.Decompressor, error) {
	return compression.NewDecompressor(maxDecodedSize)
})

// Encoding describes how content handed to Write is encoded.
type Encoding string

const (
	EncodingBase64 Encoding = "base64"
	EncodingHex    Encoding = "hex"
	EncodingUTF8   Encoding = "utf8"
	EncodingBinary Encoding = "binary"
	// EncodingZstd is a raw zstd stream; the store keeps the decompressed bytes.
	EncodingZstd Encoding = "zstd"
)

// DefaultEncoding applies when Write is given an empty Encoding.
const DefaultEncoding = EncodingBase64

// ParseEncoding accepts the encoding names case-insensitively, plus the
// common aliases "utf-8", "raw" and "text".
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultEncoding, nil
	case "base64":
		return EncodingBase64, nil
	case "hex":
		return EncodingHex, nil
	case "utf8", "utf-8", "text":
		return EncodingUTF8, nil
	case "binary", "raw":
		return EncodingBinary, nil
	case "zstd":
		return EncodingZstd, nil
	}
	return "", fmt.Errorf("unknown encoding %q", s)
}

func (e Encoding) decode(content []byte) ([]byte, error) {
	switch e {
	case "", EncodingBase64:
		s := strings.TrimSpace(string(content))
		out, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			// Accept unpadded input as well.
			if out2, err2 := base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "=")); err2 == nil {
				return out2, nil
			}
			return nil, fmt.Errorf("base64: %w", err)
		}
		return out, nil
	case EncodingHex:
		out, err := hex.DecodeString(strings.TrimSpace(string(content)))
		if err != nil {
			return nil, fmt.Errorf("hex: %w", err)
		}
		return out, nil
	case EncodingUTF8, EncodingBinary:
		return content, nil
	case EncodingZstd:
		d, err := zstdDecoder()
		if err != nil {
			return nil, err
		}
		return d.Decompress(content)
	}
	return nil, fmt.Errorf("unknown encoding %q", string(e))
}
