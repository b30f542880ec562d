// Package blob stores original audio recordings.
//
// Keys are opaque strings handed back to the caller at write time; a note's
// input history references its recording by key. The store is backed by an
// afero filesystem so that production uses the OS filesystem while tests and
// offline mode run entirely in memory.
package blob

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/afero"
)

// Store writes and reads audio blobs. Safe for concurrent use as long as the
// underlying afero filesystem is; both backends used here are.
type Store struct {
	fs   afero.Fs
	root string
}

// NewFileStore stores blobs under dir on the OS filesystem, creating it if
// needed.
func NewFileStore(dir string) (*Store, error) {
	fs := afero.NewOsFs()
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("blob: create dir %q: %w", dir, err)
	}
	return &Store{fs: fs, root: dir}, nil
}

// NewMemStore stores blobs in memory. Used in tests and when no audio
// directory is configured.
func NewMemStore() *Store {
	return &Store{fs: afero.NewMemMapFs(), root: "/"}
}

// Put writes r to a new blob and returns its key. ext is the filename
// extension including the dot (e.g. ".ogg"); it is kept so the original
// container format survives round trips.
func (s *Store) Put(r io.Reader, ext string) (string, error) {
	key := ulid.Make().String() + ext
	path := s.path(key)

	f, err := s.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("blob: create %q: %w", key, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		s.fs.Remove(path)
		return "", fmt.Errorf("blob: write %q: %w", key, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("blob: close %q: %w", key, err)
	}
	return key, nil
}

// Open returns a reader for the blob at key. The caller must close it.
func (s *Store) Open(key string) (io.ReadCloser, error) {
	f, err := s.fs.Open(s.path(key))
	if err != nil {
		return nil, fmt.Errorf("blob: open %q: %w", key, err)
	}
	return f, nil
}

// Delete removes the blob at key. Deleting a missing key is not an error.
func (s *Store) Delete(key string) error {
	err := s.fs.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("blob: delete %q: %w", key, err)
	}
	return nil
}

// Stat returns the blob's size and modification time.
func (s *Store) Stat(key string) (int64, time.Time, error) {
	info, err := s.fs.Stat(s.path(key))
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("blob: stat %q: %w", key, err)
	}
	return info.Size(), info.ModTime(), nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.root, key)
}
