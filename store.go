package castore

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// Store is a content-addressed file store rooted at a single directory.
//
// Layout:
//
//	root/
//	  <digest>/          one directory per stored digest
//	    <name>           exactly one file, caller-chosen name
//	  .staging-<uuid>    transient files written by Write
//
// The directory tree is the whole index; a Store keeps no other state.
type Store struct {
	root        string
	fs          afero.Fs
	log         *logrus.Logger
	locks       *digestLocker
	concurrency int
}

// Entry describes one stored file.
type Entry struct {
	Digest    Digest
	Name      string
	Extension string
	Dir       string
	Path      string
	Size      int64
}

// Open resolves the root directory and creates it if needed. Failure here
// is not recoverable; callers should abort.
func Open(opts ...Option) (*Store, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	root, err := resolveRoot(options.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	if err := options.Fs.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("create root dir: %w", err)
	}
	info, err := options.Fs.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %s: not a directory", root)
	}

	options.Logger.WithField("root", root).Debug("store opened")

	return &Store{
		root:        root,
		fs:          options.Fs,
		log:         options.Logger,
		locks:       newDigestLocker(),
		concurrency: options.Concurrency,
	}, nil
}

// Root returns the absolute root directory.
func (s *Store) Root() string { return s.root }

// DigestFile computes the digest of the file at path.
func (s *Store) DigestFile(path string) (Digest, error) {
	d, err := digestFile(s.fs, path)
	if err != nil {
		return "", internal("digest", "compute digest", err)
	}
	return d, nil
}

// Find looks up the entry for digest. A digest directory that does not
// hold exactly one file is reported as not found, the same as a missing one.
func (s *Store) Find(digest Digest) (*Entry, error) {
	return s.find("find", digest)
}

// Read returns the full content stored under digest. Lookup failures are
// returned exactly as Find reports them.
func (s *Store) Read(digest Digest) ([]byte, error) {
	entry, err := s.Find(digest)
	if err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(s.fs, entry.Path)
	if err != nil {
		return nil, internal("read", "read entry file", err)
	}
	return data, nil
}

// Reader returns a reader over the stored file, for content too large to
// hold in memory. The caller closes it.
func (s *Store) Reader(digest Digest) (io.ReadCloser, *Entry, error) {
	entry, err := s.find("reader", digest)
	if err != nil {
		return nil, nil, err
	}
	f, err := s.fs.Open(entry.Path)
	if err != nil {
		return nil, nil, internal("reader", "open entry file", err)
	}
	return f, entry, nil
}

// Remove deletes the entry for digest and its file.
func (s *Store) Remove(digest Digest) error {
	const op = "remove"
	digest, err := checkDigest(op, digest)
	if err != nil {
		return err
	}

	unlock := s.locks.Lock(digest)
	defer unlock()

	entry, err := s.find(op, digest)
	if err != nil {
		return err
	}
	if err := s.fs.RemoveAll(entry.Dir); err != nil {
		return internal(op, "remove entry dir", err)
	}
	exists, err := afero.Exists(s.fs, entry.Dir)
	if err != nil {
		return internal(op, "stat entry dir", err)
	}
	if exists {
		return internal(op, "entry dir still present after removal", nil)
	}

	s.log.WithFields(logrus.Fields{"digest": digest.Short(), "name": entry.Name}).Debug("removed entry")
	return nil
}

func (s *Store) find(op string, digest Digest) (*Entry, error) {
	digest, err := checkDigest(op, digest)
	if err != nil {
		return nil, err
	}

	dir := s.entryDir(digest)
	info, err := s.fs.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, notFound(op, digest)
		}
		return nil, internal(op, "stat entry dir", err)
	}
	if !info.IsDir() {
		return nil, notFound(op, digest)
	}

	files, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		return nil, internal(op, "list entry dir", err)
	}
	if len(files) != 1 || !files[0].Mode().IsRegular() {
		s.log.WithFields(logrus.Fields{"digest": digest.Short(), "files": len(files)}).Warn("corrupted entry")
		return nil, notFound(op, digest)
	}

	name := files[0].Name()
	return &Entry{
		Digest:    digest,
		Name:      name,
		Extension: extensionOf(name),
		Dir:       dir,
		Path:      filepath.Join(dir, name),
		Size:      files[0].Size(),
	}, nil
}

func (s *Store) entryDir(digest Digest) string {
	return filepath.Join(s.root, string(digest))
}

func checkDigest(op string, digest Digest) (Digest, error) {
	if digest == "" {
		return "", badRequest(op, "digest is required")
	}
	// Anything that is not a full digest cannot name an entry, and is
	// never joined onto the root.
	if !validDigest(digest) {
		return "", notFound(op, digest)
	}
	return Digest(strings.ToLower(string(digest))), nil
}

// extensionOf returns what follows the last dot, or "" when there is none.
func extensionOf(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return ""
	}
	return name[i+1:]
}
