package vfs

import (
	"path"
	"strings"
	"time"
)

// CacheMount is the mount point under which generated cache artifacts live.
// The cache directory from Config is mounted here, writable.
const CacheMount = "cache"

// Priority identifies the layer a file resolved from. Larger values shadow
// smaller ones; packaged assets sit at 0 and user overlays above it.
type Priority int

// FileInfo describes a resolved virtual file.
type FileInfo struct {
	// Size is the file size in bytes.
	Size int64
	// ModTime is the file modification time.
	ModTime time.Time
}

// WalkFunc is called by FS.Walk for every logical file, in sorted path order.
// Returning an error aborts the walk and is returned from Walk.
type WalkFunc func(path string, info FileInfo) error

// FS defines the filesystem operations the texture pipeline consumes.
//
// All paths are virtual: slash-separated and relative to the VFS root.
// Implementations must be safe for concurrent use.
type FS interface {
	// Exists reports whether the path resolves to a file in any mount.
	Exists(path string) bool

	// Priority returns the layer priority of the mount the path resolves
	// from, and whether the path exists at all.
	Priority(path string) (Priority, bool)

	// Stat returns size and modification time for the path. The error wraps
	// io/fs.ErrNotExist when no mount provides the file.
	Stat(path string) (FileInfo, error)

	// ReadFile returns the contents of the winning version of the file.
	ReadFile(path string) ([]byte, error)

	// WriteFile atomically replaces the file in the writable mount,
	// creating parent directories as needed.
	WriteFile(path string, data []byte) error

	// Walk visits every logical file under root. Where several mounts
	// provide the same path only the winning version is visited.
	Walk(root string, fn WalkFunc) error
}

// Config holds configuration for the layered filesystem.
type Config struct {
	// Root is the OS directory holding the packaged assets, mounted at the
	// VFS root with priority 0.
	Root string `mapstructure:"root" default:"assets"`
	// Overlays is a comma-separated list of OS directories mounted over the
	// root in ascending priority (the last entry shadows everything).
	Overlays string `mapstructure:"overlays" default:""`
	// Cache is the OS directory for generated artifacts, mounted writable
	// at CacheMount. Created if missing.
	Cache string `mapstructure:"cache" default:"cache"`
}

// OverlayDirs returns the overlay directories in mount order.
func (c Config) OverlayDirs() []string {
	if strings.TrimSpace(c.Overlays) == "" {
		return nil
	}
	parts := strings.Split(c.Overlays, ",")
	dirs := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			dirs = append(dirs, p)
		}
	}
	return dirs
}

// normalize cleans a virtual path: forward slashes, no leading slash, and ""
// for the root.
func normalize(p string) string {
	p = path.Clean("/" + strings.ReplaceAll(p, "\\", "/"))
	return strings.TrimPrefix(p, "/")
}

// underPoint reports whether p lives under the mount point and returns the
// remainder relative to it.
func underPoint(p, point string) (string, bool) {
	if point == "" {
		return p, true
	}
	if p == point {
		return "", true
	}
	if strings.HasPrefix(p, point+"/") {
		return p[len(point)+1:], true
	}
	return "", false
}
