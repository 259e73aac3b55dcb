package vfs

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/natefinch/atomic"
)

// Mount maps a virtual prefix onto an OS directory.
type Mount struct {
	// Point is the virtual prefix, "" for the root.
	Point string
	// Dir is the backing OS directory.
	Dir string
	// Priority decides shadowing between mounts providing the same path.
	Priority Priority
	// Writable marks the mount WriteFile targets. At most one mount should
	// be writable per point.
	Writable bool
}

// Layered filesystem errors.
var (
	// ErrNoWritableMount is returned by WriteFile when no writable mount
	// covers the path.
	ErrNoWritableMount = errors.New("vfs: no writable mount for path")

	// ErrNoMounts is returned by NewLayered when no mounts are given.
	ErrNoMounts = errors.New("vfs: at least one mount required")
)

// Layered is the production FS: an ordered list of mounts resolved per
// operation. The mount table is immutable after construction, so Layered is
// safe for concurrent use.
type Layered struct {
	mounts []Mount
}

// New builds a Layered filesystem from configuration: the asset root at
// priority 0, each overlay above it, and the cache directory mounted
// writable at CacheMount. The cache directory is created if missing.
func New(cfg Config) (*Layered, error) {
	if _, err := os.Stat(cfg.Root); err != nil {
		return nil, fmt.Errorf("vfs: asset root %q: %w", cfg.Root, err)
	}

	mounts := []Mount{{Point: "", Dir: cfg.Root, Priority: 0}}
	for i, dir := range cfg.OverlayDirs() {
		if _, err := os.Stat(dir); err != nil {
			return nil, fmt.Errorf("vfs: overlay %q: %w", dir, err)
		}
		mounts = append(mounts, Mount{Point: "", Dir: dir, Priority: Priority(i + 1)})
	}

	if err := os.MkdirAll(cfg.Cache, 0o755); err != nil {
		return nil, fmt.Errorf("vfs: cache dir %q: %w", cfg.Cache, err)
	}
	mounts = append(mounts, Mount{Point: CacheMount, Dir: cfg.Cache, Priority: 0, Writable: true})

	return NewLayered(mounts...)
}

// NewLayered builds a Layered filesystem from an explicit mount table.
// Mount directories are made absolute so OSPath/VFSPath mapping is stable.
func NewLayered(mounts ...Mount) (*Layered, error) {
	if len(mounts) == 0 {
		return nil, ErrNoMounts
	}
	table := make([]Mount, len(mounts))
	for i, m := range mounts {
		abs, err := filepath.Abs(m.Dir)
		if err != nil {
			return nil, fmt.Errorf("vfs: mount %q: %w", m.Dir, err)
		}
		m.Dir = abs
		m.Point = normalize(m.Point)
		table[i] = m
	}
	return &Layered{mounts: table}, nil
}

// Mounts returns a copy of the mount table in mount order.
func (l *Layered) Mounts() []Mount {
	out := make([]Mount, len(l.mounts))
	copy(out, l.mounts)
	return out
}

// resolve finds the winning version of a virtual path. Directories do not
// count: only regular files resolve.
func (l *Layered) resolve(p string) (osPath string, mount Mount, ok bool) {
	p = normalize(p)
	if p == "" {
		return "", Mount{}, false
	}
	for _, m := range l.mounts {
		rel, under := underPoint(p, m.Point)
		if !under || rel == "" {
			continue
		}
		candidate := filepath.Join(m.Dir, filepath.FromSlash(rel))
		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() {
			continue
		}
		// Later mounts win ties, so >= keeps the last best.
		if !ok || m.Priority >= mount.Priority {
			osPath, mount, ok = candidate, m, true
		}
	}
	return osPath, mount, ok
}

// Exists reports whether the path resolves to a file in any mount.
func (l *Layered) Exists(p string) bool {
	_, _, ok := l.resolve(p)
	return ok
}

// Priority returns the layer priority of the winning mount for the path.
func (l *Layered) Priority(p string) (Priority, bool) {
	_, m, ok := l.resolve(p)
	if !ok {
		return 0, false
	}
	return m.Priority, true
}

// Stat returns size and modification time of the winning version.
func (l *Layered) Stat(p string) (FileInfo, error) {
	osPath, _, ok := l.resolve(p)
	if !ok {
		return FileInfo{}, fmt.Errorf("vfs: %s: %w", p, fs.ErrNotExist)
	}
	info, err := os.Stat(osPath)
	if err != nil {
		return FileInfo{}, fmt.Errorf("vfs: %s: %w", p, err)
	}
	return FileInfo{Size: info.Size(), ModTime: info.ModTime()}, nil
}

// ReadFile returns the contents of the winning version of the file.
func (l *Layered) ReadFile(p string) ([]byte, error) {
	osPath, _, ok := l.resolve(p)
	if !ok {
		return nil, fmt.Errorf("vfs: %s: %w", p, fs.ErrNotExist)
	}
	data, err := os.ReadFile(osPath)
	if err != nil {
		return nil, fmt.Errorf("vfs: %s: %w", p, err)
	}
	return data, nil
}

// WriteFile atomically replaces the file in the writable mount covering the
// path. Parent directories are created as needed; a crash mid-write never
// leaves a partial file behind.
func (l *Layered) WriteFile(p string, data []byte) error {
	p = normalize(p)
	for _, m := range l.mounts {
		rel, under := underPoint(p, m.Point)
		if !under || !m.Writable || rel == "" {
			continue
		}
		osPath := filepath.Join(m.Dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(osPath), 0o755); err != nil {
			return fmt.Errorf("vfs: write %s: %w", p, err)
		}
		if err := atomic.WriteFile(osPath, bytes.NewReader(data)); err != nil {
			return fmt.Errorf("vfs: write %s: %w", p, err)
		}
		return nil
	}
	return fmt.Errorf("vfs: write %s: %w", p, ErrNoWritableMount)
}

// Walk visits every logical file under root in sorted path order, applying
// the same shadowing rule as resolve.
func (l *Layered) Walk(root string, fn WalkFunc) error {
	root = normalize(root)

	type winner struct {
		priority Priority
		info     FileInfo
	}
	seen := make(map[string]winner)

	for _, m := range l.mounts {
		// Either the walk root lies inside the mount, or the mount point
		// lies inside the walk root. Otherwise the mount is irrelevant.
		var startRel, prefix string
		if rel, under := underPoint(root, m.Point); under {
			startRel, prefix = rel, root
		} else if rel, under := underPoint(m.Point, root); under && rel != "" {
			startRel, prefix = "", m.Point
		} else {
			continue
		}

		start := filepath.Join(m.Dir, filepath.FromSlash(startRel))
		err := filepath.WalkDir(start, func(osPath string, d os.DirEntry, err error) error {
			if err != nil {
				// A mount root that does not exist yet is not an error.
				return nil
			}
			if d.IsDir() {
				return nil
			}
			rel, relErr := filepath.Rel(start, osPath)
			if relErr != nil {
				return relErr
			}
			logical := path.Join(prefix, filepath.ToSlash(rel))
			info, statErr := d.Info()
			if statErr != nil {
				return nil
			}
			// Later mounts win ties, same as resolve.
			if w, exists := seen[logical]; exists && w.priority > m.Priority {
				return nil
			}
			seen[logical] = winner{
				priority: m.Priority,
				info:     FileInfo{Size: info.Size(), ModTime: info.ModTime()},
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("vfs: walk %s: %w", root, err)
		}
	}

	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		if err := fn(p, seen[p].info); err != nil {
			return err
		}
	}
	return nil
}

// OSPath returns the OS path of the winning version of a virtual path.
func (l *Layered) OSPath(p string) (string, bool) {
	osPath, _, ok := l.resolve(p)
	return osPath, ok
}

// VFSPath maps an OS path inside any mount back to its virtual path. The
// first matching mount in mount order wins; the virtual path may still
// resolve to a different layer.
func (l *Layered) VFSPath(osPath string) (string, bool) {
	abs, err := filepath.Abs(osPath)
	if err != nil {
		return "", false
	}
	for _, m := range l.mounts {
		rel, err := filepath.Rel(m.Dir, abs)
		if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			continue
		}
		return path.Join(m.Point, filepath.ToSlash(rel)), true
	}
	return "", false
}
