package compression

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compressString(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	n, err := CompressStream(&buf, strings.NewReader(s), zstd.SpeedDefault)
	require.NoError(t, err)
	assert.EqualValues(t, len(s), n)
	return buf.Bytes()
}

func TestCompressStream_RoundTrip(t *testing.T) {
	data := strings.Repeat("content addressed ", 1000)
	compressed := compressString(t, data)
	assert.Less(t, len(compressed), len(data))

	d, err := NewDecompressor(0)
	require.NoError(t, err)
	defer d.Close()

	out, err := d.Decompress(compressed)
	require.NoError(t, err)
	assert.Equal(t, data, string(out))
}

func TestDecompressor_Garbage(t *testing.T) {
	d, err := NewDecompressor(0)
	require.NoError(t, err)
	defer d.Close()

	_, err = d.Decompress([]byte("definitely not zstd"))
	assert.Error(t, err)
}

func TestDecompressor_SizeCap(t *testing.T) {
	compressed := compressString(t, strings.Repeat("\x00", 1<<20))
	assert.Less(t, len(compressed), 1<<10)

	d, err := NewDecompressor(64 << 10)
	require.NoError(t, err)
	defer d.Close()

	_, err = d.Decompress(compressed)
	require.Error(t, err)
	assert.True(t, errors.Is(err, zstd.ErrDecoderSizeExceeded) || errors.Is(err, zstd.ErrWindowSizeExceeded), err.Error())

	unbounded, err := NewDecompressor(0)
	require.NoError(t, err)
	defer unbounded.Close()
	out, err := unbounded.Decompress(compressed)
	require.NoError(t, err)
	assert.Len(t, out, 1<<20)
}

func TestParseLevel(t *testing.T) {
	for name, want := range map[string]zstd.EncoderLevel{
		"":        zstd.SpeedDefault,
		"fastest": zstd.SpeedFastest,
		"Better":  zstd.SpeedBetterCompression,
		"best":    zstd.SpeedBestCompression,
	} {
		got, err := ParseLevel(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseLevel("ludicrous")
	assert.Error(t, err)
}
