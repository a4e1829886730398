package castore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList(t *testing.T) {
	s, mem := newMemStore(t)

	for _, c := range []string{"one", "two", "three"} {
		_, err := s.Write([]byte(c), c+".txt", EncodingUTF8, false)
		require.NoError(t, err)
	}
	// Corrupted entry and a stray staging file are not listed.
	require.NoError(t, mem.MkdirAll(filepath.Join(s.Root(), string(unusedHex)), 0755))
	require.NoError(t, afero.WriteFile(mem, filepath.Join(s.Root(), stagingPrefix+"x"), []byte("x"), 0644))

	entries, err := s.List()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for i := 1; i < len(entries); i++ {
		assert.Less(t, entries[i-1].Digest, entries[i].Digest)
	}
}

func TestStats(t *testing.T) {
	s, mem := newMemStore(t)

	_, err := s.Write([]byte("hello"), "a.txt", EncodingUTF8, false)
	require.NoError(t, err)
	_, err = s.Write([]byte("hello world"), "b.txt", EncodingUTF8, false)
	require.NoError(t, err)
	require.NoError(t, mem.MkdirAll(filepath.Join(s.Root(), string(unusedHex)), 0755))
	require.NoError(t, afero.WriteFile(mem, filepath.Join(s.Root(), stagingPrefix+"x"), []byte("x"), 0644))

	st, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, Stats{Entries: 2, Corrupt: 1, Staging: 1, Bytes: 16}, st)
}

func TestVerify(t *testing.T) {
	s, mem := newMemStore(t)

	_, err := s.Write([]byte("hello"), "good.txt", EncodingUTF8, false)
	require.NoError(t, err)

	// Empty entry directory.
	require.NoError(t, mem.MkdirAll(filepath.Join(s.Root(), string(unusedHex)), 0755))
	// Content that does not match its directory name.
	wrong := filepath.Join(s.Root(), string(emptyDigest))
	writeSource(t, mem, wrong, "lies.txt", "not empty")

	report, err := s.Verify(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, report.Checked)
	assert.False(t, report.OK())
	require.Len(t, report.Problems, 2)

	byDigest := map[Digest]ProblemKind{}
	for _, p := range report.Problems {
		byDigest[p.Digest] = p.Kind
	}
	assert.Equal(t, ProblemCorrupt, byDigest[unusedHex])
	assert.Equal(t, ProblemMismatch, byDigest[emptyDigest])

	// Verify never repairs.
	exists, err := afero.Exists(mem, filepath.Join(wrong, "lies.txt"))
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestVerify_Clean(t *testing.T) {
	s := newTestStore(t)
	for _, c := range []string{"a", "b", "c", "d", "e", "f"} {
		_, err := s.Write([]byte(c), "txt", EncodingUTF8, false)
		require.NoError(t, err)
	}

	report, err := s.Verify(context.Background())
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Equal(t, 6, report.Checked)
}

func TestVerify_Cancelled(t *testing.T) {
	s, _ := newMemStore(t)
	_, err := s.Write([]byte("hello"), "a.txt", EncodingUTF8, false)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Verify(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSweep(t *testing.T) {
	s, mem := newMemStore(t)

	_, err := s.Write([]byte("hello"), "a.txt", EncodingUTF8, false)
	require.NoError(t, err)

	old := filepath.Join(s.Root(), stagingPrefix+"old")
	fresh := filepath.Join(s.Root(), stagingPrefix+"fresh")
	require.NoError(t, afero.WriteFile(mem, old, []byte("x"), 0644))
	require.NoError(t, afero.WriteFile(mem, fresh, []byte("y"), 0644))
	past := time.Now().Add(-2 * time.Hour)
	require.NoError(t, mem.Chtimes(old, past, past))

	n, err := s.Sweep(context.Background(), time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	exists, err := afero.Exists(mem, old)
	require.NoError(t, err)
	assert.False(t, exists)
	exists, err = afero.Exists(mem, fresh)
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = s.Find(helloDigest)
	assert.NoError(t, err)
}

func TestSweep_KeepsYoungStagingFiles(t *testing.T) {
	s, mem := newMemStore(t)

	inFlight := filepath.Join(s.Root(), stagingPrefix+"inflight")
	require.NoError(t, afero.WriteFile(mem, inFlight, []byte("x"), 0644))
	recent := time.Now().Add(-MinStagingAge / 2)
	require.NoError(t, mem.Chtimes(inFlight, recent, recent))

	for _, olderThan := range []time.Duration{0, -time.Hour, time.Second} {
		n, err := s.Sweep(context.Background(), olderThan)
		require.NoError(t, err)
		assert.Zero(t, n, "olderThan %s", olderThan)
	}

	exists, err := afero.Exists(mem, inFlight)
	require.NoError(t, err)
	assert.True(t, exists)
}
