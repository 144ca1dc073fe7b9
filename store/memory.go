package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// memObject holds a stored value with its write timestamp.
type memObject struct {
	value   []byte
	modTime time.Time
}

// MemStore is a thread-safe in-memory Store. Useful for tests and for
// ephemeral single-process deployments where durability does not matter.
type MemStore struct {
	objects map[string]memObject
	mu      sync.RWMutex
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{objects: make(map[string]memObject)}
}

// Put writes value at path.
func (s *MemStore) Put(ctx context.Context, path string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf := make([]byte, len(value))
	copy(buf, value)
	s.objects[path] = memObject{value: buf, modTime: time.Now().UTC()}
	return nil
}

// Get reads the object at path.
func (s *MemStore) Get(ctx context.Context, path string) ([]byte, Metadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[path]
	if !ok {
		return nil, Metadata{}, ErrNotFound
	}

	buf := make([]byte, len(obj.value))
	copy(buf, obj.value)
	return buf, Metadata{LastModified: obj.modTime, Size: int64(len(obj.value))}, nil
}

// Delete removes the object at path.
func (s *MemStore) Delete(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, path)
	return nil
}

// List returns all paths under prefix, sorted.
func (s *MemStore) List(ctx context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var paths []string
	for path := range s.objects {
		if strings.HasPrefix(path, prefix) {
			paths = append(paths, path)
		}
	}

	sort.Strings(paths)
	return paths, nil
}

// Len returns the number of stored objects.
func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

// SetModTime overrides the recorded write time of an existing object.
// Intended for tests that exercise age-based cleanup.
func (s *MemStore) SetModTime(path string, t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if obj, ok := s.objects[path]; ok {
		obj.modTime = t
		s.objects[path] = obj
	}
}

// Verify MemStore implements Store
var _ Store = (*MemStore)(nil)
