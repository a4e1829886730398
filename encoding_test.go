package castore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEncoding(t *testing.T) {
	cases := map[string]Encoding{
		"":       EncodingBase64,
		"BASE64": EncodingBase64,
		"hex":    EncodingHex,
		"utf-8":  EncodingUTF8,
		"text":   EncodingUTF8,
		"raw":    EncodingBinary,
		"zstd":   EncodingZstd,
	}
	for in, want := range cases {
		got, err := ParseEncoding(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseEncoding("rot13")
	assert.Error(t, err)
}

func TestDecode_Base64Unpadded(t *testing.T) {
	out, err := EncodingBase64.decode([]byte("aGVsbG8"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(out))

	out, err = EncodingBase64.decode([]byte("aGVsbG8=\n"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(out))
}

func TestDecode_Hex(t *testing.T) {
	out, err := EncodingHex.decode([]byte("68656c6c6f"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(out))

	_, err = EncodingHex.decode([]byte("xyz"))
	assert.Error(t, err)
}
