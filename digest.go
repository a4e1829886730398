package castore

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/spf13/afero"
)

// Digest is the lowercase hex SHA-256 of a file's bytes.
type Digest string

// digestChunkSize bounds how much of a source is held in memory while hashing.
const digestChunkSize = 32 * 1024

func (d Digest) String() string { return string(d) }

// Short returns the first 12 characters, for log lines.
func (d Digest) Short() string {
	if len(d) > 12 {
		return string(d[:12])
	}
	return string(d)
}

// ComputeDigest streams r through SHA-256. A read error aborts the
// computation; no partial digest is ever returned.
func ComputeDigest(r io.Reader) (Digest, error) {
	h := sha256.New()
	buf := make([]byte, digestChunkSize)
	if _, err := io.CopyBuffer(h, r, buf); err != nil {
		return "", err
	}
	return Digest(hex.EncodeToString(h.Sum(nil))), nil
}

func digestFile(fs afero.Fs, path string) (Digest, error) {
	f, err := fs.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s: is a directory", path)
	}
	return ComputeDigest(f)
}

// digestLen is the length of a hex-encoded SHA-256 sum.
const digestLen = sha256.Size * 2

// validDigest accepts exactly 64 hex characters of either case, which also
// keeps digests from addressing paths outside the root.
func validDigest(d Digest) bool {
	if len(d) != digestLen {
		return false
	}
	for i := 0; i < len(d); i++ {
		c := d[i]
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
