package castore

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

const stagingPrefix = ".staging-"

// Move ingests the file at sourcePath under the digest of its content,
// storing it as name. The source is renamed, not copied: on success it no
// longer exists at sourcePath. On every failure before the rename it is
// left untouched. The source must be a regular file; symlinks and
// directories are rejected with KindBadRequest.
//
// If an entry for the digest already exists, Move fails with KindConflict
// unless overwrite is set, in which case the old entry is deleted first.
func (s *Store) Move(sourcePath, name string, overwrite bool) (*Entry, error) {
	const op = "move"
	if sourcePath == "" {
		return nil, badRequest(op, "source path is required")
	}
	if name == "" {
		return nil, badRequest(op, "name is required")
	}
	if !validName(name) {
		return nil, badRequest(op, "invalid name %q", name)
	}

	info, err := lstat(s.fs, sourcePath)
	if err != nil {
		return nil, internal(op, "stat source", err)
	}
	if !info.Mode().IsRegular() {
		return nil, badRequest(op, "source %s is not a regular file", sourcePath)
	}

	digest, err := digestFile(s.fs, sourcePath)
	if err != nil {
		return nil, internal(op, "compute digest", err)
	}
	if overwrite && s.insideEntry(sourcePath, digest) {
		return nil, badRequest(op, "source %s is already stored under %s", sourcePath, digest.Short())
	}
	return s.ingest(op, sourcePath, digest, name, overwrite)
}

// insideEntry reports whether path lies in the entry directory for digest.
// Overwriting that entry would delete the source along with it.
func (s *Store) insideEntry(path string, digest Digest) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	return filepath.Dir(abs) == s.entryDir(digest)
}

// lstat does not follow a trailing symlink when the filesystem supports it.
func lstat(fsys afero.Fs, path string) (os.FileInfo, error) {
	if l, ok := fsys.(afero.Lstater); ok {
		info, _, err := l.LstatIfPossible(path)
		return info, err
	}
	return fsys.Stat(path)
}

// Write stores in-memory content. content is decoded per enc (base64 when
// empty) and buffered to a staging file under the root, which is then
// moved into place. A name without an extension is taken as a bare
// extension and given a generated base name: "txt" and ".txt" both become
// "<uuid>.txt".
func (s *Store) Write(content []byte, name string, enc Encoding, overwrite bool) (*Entry, error) {
	const op = "write"
	if len(content) == 0 {
		return nil, badRequest(op, "content is required")
	}
	if name == "" {
		return nil, badRequest(op, "name is required")
	}

	data, err := enc.decode(content)
	if err != nil {
		return nil, &Error{Kind: KindBadRequest, Op: op, Msg: "decode content", Err: err}
	}

	name = resolveName(name)
	if !validName(name) {
		return nil, badRequest(op, "invalid name %q", name)
	}

	staging, digest, err := s.stage(data)
	if err != nil {
		return nil, internal(op, "create staging file", err)
	}

	entry, err := s.ingest("move", staging, digest, name, overwrite)
	if err != nil {
		if rmErr := s.fs.Remove(staging); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			s.log.WithError(rmErr).WithField("path", staging).Warn("failed to remove staging file")
		}
		return nil, &Error{Kind: KindOf(err), Op: op, Err: err}
	}
	return entry, nil
}

func (s *Store) ingest(op, src string, digest Digest, name string, overwrite bool) (*Entry, error) {
	unlock := s.locks.Lock(digest)
	defer unlock()

	log := s.log.WithFields(logrus.Fields{"digest": digest.Short(), "name": name})
	dir := s.entryDir(digest)

	exists, err := afero.Exists(s.fs, dir)
	if err != nil {
		return nil, internal(op, "stat entry dir", err)
	}
	if exists {
		if !overwrite {
			return nil, conflict(op, digest)
		}
		if err := s.fs.RemoveAll(dir); err != nil {
			return nil, internal(op, "remove existing entry", err)
		}
		log.Debug("removed existing entry for overwrite")
	}

	// Mkdir, not MkdirAll: another process creating the same entry makes
	// this fail, and that failure is the conflict.
	if err := s.fs.Mkdir(dir, 0755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, conflict(op, digest)
		}
		return nil, internal(op, "create entry dir", err)
	}

	if err := s.fs.Rename(src, filepath.Join(dir, name)); err != nil {
		if rmErr := s.fs.Remove(dir); rmErr != nil {
			log.WithError(rmErr).Warn("failed to remove empty entry dir")
		}
		return nil, internal(op, "rename into entry", err)
	}

	entry, err := s.find(op, digest)
	if err != nil {
		log.WithError(err).Error("entry not found after rename")
		return nil, internal(op, "entry not found after rename", nil)
	}

	log.Debug("stored entry")
	return entry, nil
}

// stage writes data to a fresh staging file, hashing it on the way.
func (s *Store) stage(data []byte) (string, Digest, error) {
	path := filepath.Join(s.root, stagingPrefix+uuid.NewString())
	f, err := s.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", "", err
	}

	digest, err := ComputeDigest(io.TeeReader(bytes.NewReader(data), f))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = s.fs.Remove(path)
		return "", "", err
	}
	return path, digest, nil
}

func isStagingName(name string) bool {
	return strings.HasPrefix(name, stagingPrefix)
}

func resolveName(name string) string {
	if strings.LastIndexByte(name, '.') > 0 {
		return name
	}
	return uuid.NewString() + "." + strings.TrimPrefix(name, ".")
}

// validName accepts plain base names only.
func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsRune(name, 0) || strings.ContainsAny(name, `/\`) {
		return false
	}
	return !strings.ContainsRune(name, filepath.Separator)
}
