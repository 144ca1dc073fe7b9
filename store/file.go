package store

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileStore is a filesystem-backed Store rooted at a base directory.
// Object paths map to files under the base; parent directories are
// created on demand. Intended for local development.
type FileStore struct {
	base string
}

// NewFileStore creates a FileStore rooted at base, creating the
// directory if needed.
func NewFileStore(base string) (*FileStore, error) {
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, fmt.Errorf("creating store root: %w", err)
	}
	return &FileStore{base: base}, nil
}

// resolve maps an object path to a filesystem path, rejecting escapes
// from the base directory.
func (s *FileStore) resolve(path string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(path))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid object path %q", path)
	}
	return filepath.Join(s.base, clean), nil
}

// Put writes value at path, creating parent directories as needed.
func (s *FileStore) Put(ctx context.Context, path string, value []byte) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("creating parent directory: %w", err)
	}
	if err := os.WriteFile(full, value, 0o644); err != nil {
		return fmt.Errorf("writing object: %w", err)
	}
	return nil
}

// Get reads the object at path.
func (s *FileStore) Get(ctx context.Context, path string) ([]byte, Metadata, error) {
	full, err := s.resolve(path)
	if err != nil {
		return nil, Metadata{}, err
	}

	info, err := os.Stat(full)
	if os.IsNotExist(err) {
		return nil, Metadata{}, ErrNotFound
	}
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("stat object: %w", err)
	}

	data, err := os.ReadFile(full) // #nosec G304 - path is confined to the store root
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("reading object: %w", err)
	}

	return data, Metadata{LastModified: info.ModTime().UTC(), Size: info.Size()}, nil
}

// Delete removes the object at path. Absent paths are ignored.
func (s *FileStore) Delete(ctx context.Context, path string) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting object: %w", err)
	}
	return nil
}

// List returns the paths of all regular files under prefix, in sorted
// order, using forward slashes regardless of platform.
func (s *FileStore) List(ctx context.Context, prefix string) ([]string, error) {
	root, err := s.resolve(prefix)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil, nil
	}

	var paths []string
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.base, p)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing objects: %w", err)
	}

	sort.Strings(paths)
	return paths, nil
}

// Verify FileStore implements Store
var _ Store = (*FileStore)(nil)
