package castore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/afero"
)

// Stats summarizes the contents of the root directory.
type Stats struct {
	Entries int
	Corrupt int
	Staging int
	Bytes   int64
}

// ProblemKind names what Verify found wrong with an entry.
type ProblemKind string

const (
	// ProblemCorrupt: the entry directory does not hold exactly one file.
	ProblemCorrupt ProblemKind = "corrupt"
	// ProblemMismatch: the file's content does not hash to the directory name.
	ProblemMismatch ProblemKind = "mismatch"
	// ProblemUnreadable: the file could not be read.
	ProblemUnreadable ProblemKind = "unreadable"
)

// Problem is one damaged entry found by Verify.
type Problem struct {
	Digest Digest
	Kind   ProblemKind
	Detail string
}

// Report is the result of Verify.
type Report struct {
	Checked  int
	Problems []Problem
}

func (r *Report) OK() bool { return len(r.Problems) == 0 }

// List returns every valid entry, ordered by digest. Corrupted entries
// and staging files are skipped.
func (s *Store) List() ([]Entry, error) {
	digests, err := s.entryDigests()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(digests))
	for _, d := range digests {
		e, err := s.find("list", d)
		if err != nil {
			if KindOf(err) == KindNotFound {
				continue
			}
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, nil
}

// Stats counts valid entries, corrupted entry directories and staging files.
func (s *Store) Stats() (Stats, error) {
	var st Stats

	infos, err := afero.ReadDir(s.fs, s.root)
	if err != nil {
		return st, internal("stats", "list root", err)
	}
	for _, info := range infos {
		switch {
		case !info.IsDir() && isStagingName(info.Name()):
			st.Staging++
		case info.IsDir() && validDigest(Digest(info.Name())):
			e, err := s.find("stats", Digest(info.Name()))
			if err != nil {
				if KindOf(err) != KindNotFound {
					return st, err
				}
				st.Corrupt++
				continue
			}
			st.Entries++
			st.Bytes += e.Size
		}
	}
	return st, nil
}

// Verify re-hashes every entry and reports entries that are corrupted or
// whose content no longer matches their digest. It never modifies the store.
func (s *Store) Verify(ctx context.Context) (*Report, error) {
	digests, err := s.entryDigests()
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	report := &Report{}

	p := pool.New().WithMaxGoroutines(s.concurrency).WithContext(ctx).WithCancelOnError()
	for _, d := range digests {
		d := d // per-iteration copy for Go < 1.22 loop semantics
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			problem, err := s.verifyEntry(d)
			if err != nil {
				return err
			}
			mu.Lock()
			report.Checked++
			if problem != nil {
				report.Problems = append(report.Problems, *problem)
			}
			mu.Unlock()
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(report.Problems, func(i, j int) bool {
		return report.Problems[i].Digest < report.Problems[j].Digest
	})
	for _, pr := range report.Problems {
		s.log.WithFields(logrus.Fields{"digest": pr.Digest.Short(), "problem": pr.Kind}).Warn(pr.Detail)
	}
	return report, nil
}

func (s *Store) verifyEntry(d Digest) (*Problem, error) {
	dir := s.entryDir(d)
	files, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// Removed while we were walking.
			return nil, nil
		}
		return nil, internal("verify", "list entry dir", err)
	}

	if len(files) != 1 || !files[0].Mode().IsRegular() {
		return &Problem{Digest: d, Kind: ProblemCorrupt, Detail: fmt.Sprintf("expected one file, found %d entries", len(files))}, nil
	}

	got, err := digestFile(s.fs, filepath.Join(dir, files[0].Name()))
	if err != nil {
		return &Problem{Digest: d, Kind: ProblemUnreadable, Detail: err.Error()}, nil
	}
	if got != d {
		return &Problem{Digest: d, Kind: ProblemMismatch, Detail: "content hashes to " + string(got)}, nil
	}
	return nil, nil
}

// MinStagingAge is the youngest a staging file can be and still be swept.
// Younger files may belong to a Write that is still in progress.
const MinStagingAge = time.Minute

// Sweep deletes staging files last modified more than olderThan ago and
// returns how many it removed. olderThan is raised to MinStagingAge when
// smaller. Entries are never touched.
func (s *Store) Sweep(ctx context.Context, olderThan time.Duration) (int, error) {
	const op = "sweep"
	if olderThan < MinStagingAge {
		olderThan = MinStagingAge
	}
	infos, err := afero.ReadDir(s.fs, s.root)
	if err != nil {
		return 0, internal(op, "list root", err)
	}

	cutoff := time.Now().Add(-olderThan)
	removed := 0
	for _, info := range infos {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if info.IsDir() || !isStagingName(info.Name()) || info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(s.root, info.Name())
		if err := s.fs.Remove(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return removed, internal(op, "remove staging file", err)
		}
		s.log.WithField("path", path).Debug("swept staging file")
		removed++
	}
	return removed, nil
}

// entryDigests lists directory names under the root that look like digests.
func (s *Store) entryDigests() ([]Digest, error) {
	infos, err := afero.ReadDir(s.fs, s.root)
	if err != nil {
		return nil, internal("list", "list root", err)
	}
	var digests []Digest
	for _, info := range infos {
		if info.IsDir() && validDigest(Digest(info.Name())) {
			digests = append(digests, Digest(info.Name()))
		}
	}
	return digests, nil
}
