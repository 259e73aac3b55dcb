package vfs

import (
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"
	"time"
)

// memEpoch is the default modification time of files added with Put.
// A fixed non-zero instant keeps mtime-based tests deterministic.
var memEpoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

type memFile struct {
	data     []byte
	modTime  time.Time
	priority Priority
}

// MemFS is an in-memory FS for tests. All methods are safe for concurrent
// use.
type MemFS struct {
	mu    sync.RWMutex
	files map[string]*memFile
}

// NewMem returns an empty in-memory filesystem.
func NewMem() *MemFS {
	return &MemFS{files: make(map[string]*memFile)}
}

// Put stores a file at priority 0 with the default modification time.
func (m *MemFS) Put(p string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[normalize(p)] = &memFile{data: append([]byte(nil), data...), modTime: memEpoch}
}

// SetModTime overrides the modification time of an existing file.
func (m *MemFS) SetModTime(p string, t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.files[normalize(p)]; ok {
		f.modTime = t
	}
}

// SetPriority overrides the layer priority of an existing file.
func (m *MemFS) SetPriority(p string, prio Priority) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.files[normalize(p)]; ok {
		f.priority = prio
	}
}

// Remove deletes a file. Removing a missing file is a no-op.
func (m *MemFS) Remove(p string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, normalize(p))
}

// Exists reports whether the path holds a file.
func (m *MemFS) Exists(p string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.files[normalize(p)]
	return ok
}

// Priority returns the stored layer priority of the file.
func (m *MemFS) Priority(p string) (Priority, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[normalize(p)]
	if !ok {
		return 0, false
	}
	return f.priority, true
}

// Stat returns size and modification time of the file.
func (m *MemFS) Stat(p string) (FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[normalize(p)]
	if !ok {
		return FileInfo{}, fmt.Errorf("vfs: %s: %w", p, fs.ErrNotExist)
	}
	return FileInfo{Size: int64(len(f.data)), ModTime: f.modTime}, nil
}

// ReadFile returns a copy of the file contents.
func (m *MemFS) ReadFile(p string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[normalize(p)]
	if !ok {
		return nil, fmt.Errorf("vfs: %s: %w", p, fs.ErrNotExist)
	}
	return append([]byte(nil), f.data...), nil
}

// WriteFile stores the file, replacing any previous contents. The
// modification time advances past the previous one so cache invalidation
// logic observes the change.
func (m *MemFS) WriteFile(p string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p = normalize(p)
	mod := memEpoch
	if prev, ok := m.files[p]; ok {
		mod = prev.modTime.Add(time.Second)
	}
	m.files[p] = &memFile{data: append([]byte(nil), data...), modTime: mod}
	return nil
}

// Walk visits files under root in sorted path order.
func (m *MemFS) Walk(root string, fn WalkFunc) error {
	m.mu.RLock()
	root = normalize(root)
	paths := make([]string, 0, len(m.files))
	for p := range m.files {
		if root == "" || p == root || strings.HasPrefix(p, root+"/") {
			paths = append(paths, p)
		}
	}
	m.mu.RUnlock()

	sort.Strings(paths)
	for _, p := range paths {
		info, err := m.Stat(p)
		if err != nil {
			continue
		}
		if err := fn(p, info); err != nil {
			return err
		}
	}
	return nil
}
