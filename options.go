package castore

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// EnvRoot names the environment variable consulted for the root directory
// when no explicit root is given.
const EnvRoot = "CASTORE_ROOT"

// DefaultConcurrency bounds the number of entries Verify hashes in parallel.
const DefaultConcurrency = 4

// Options configures a Store.
type Options struct {
	Root        string
	Fs          afero.Fs
	Logger      *logrus.Logger
	Concurrency int
}

// Option is a functional option for configuring Open.
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		Fs:          afero.NewOsFs(),
		Logger:      defaultLogger(),
		Concurrency: DefaultConcurrency,
	}
}

// WithRoot sets the root directory. It takes precedence over CASTORE_ROOT.
func WithRoot(dir string) Option {
	return func(o *Options) { o.Root = dir }
}

// WithFs sets the filesystem the store operates on.
func WithFs(fs afero.Fs) Option {
	return func(o *Options) {
		if fs != nil {
			o.Fs = fs
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logrus.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithConcurrency sets the number of parallel workers used by Verify.
func WithConcurrency(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.Concurrency = n
		}
	}
}

func defaultLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.WarnLevel)
	return l
}

// DiscardLogger returns a logger that drops everything. Handy in tests.
func DiscardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// resolveRoot applies the root precedence: explicit option, then the
// environment, then the platform temp directory.
func resolveRoot(explicit string) (string, error) {
	root := explicit
	if root == "" {
		root = os.Getenv(EnvRoot)
	}
	if root == "" {
		root = filepath.Join(os.TempDir(), "castore")
	}
	root = expandPath(root)
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}

func expandPath(path string) string {
	if len(path) > 1 && path[0] == '~' && os.IsPathSeparator(path[1]) {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
