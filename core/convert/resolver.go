package convert

import (
	"path"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"texture-manager/core/vfs"
)

// Resolver computes effective settings for source files, caching parsed
// descriptors along the way. Absence is cached too: a directory probed
// once and found without a descriptor is not probed again until
// Invalidate.
type Resolver struct {
	fs  vfs.FS
	log *zap.Logger

	mu    sync.RWMutex
	files map[string]*SettingsFile // nil value = known absent
	sf    singleflight.Group
}

// NewResolver returns a Resolver reading descriptors from fs. log may be
// nil.
func NewResolver(fs vfs.FS, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{
		fs:    fs,
		log:   log,
		files: make(map[string]*SettingsFile),
	}
}

// Settings returns the effective conversion settings for a source file by
// merging the descriptors of all its ancestor directories, root first.
// Missing or malformed descriptors contribute nothing.
//
// The optional track callback receives every descriptor path consulted,
// whether or not the descriptor exists. Hotloading registers these paths
// so that adding a descriptor later still invalidates the textures below
// it.
func (r *Resolver) Settings(srcPath string, track func(descriptorPath string)) Settings {
	var files []*SettingsFile
	for _, sp := range DescriptorPaths(srcPath) {
		if track != nil {
			track(sp)
		}
		if f := r.file(sp); f != nil {
			files = append(files, f)
		}
	}
	return ComputeSettings(path.Base(srcPath), files)
}

// Invalidate drops the cached descriptor at the given path. Dropping a
// path that was never cached is a no-op.
func (r *Resolver) Invalidate(descriptorPath string) {
	r.mu.Lock()
	delete(r.files, descriptorPath)
	r.mu.Unlock()
}

// file loads and caches one descriptor, collapsing concurrent loads of
// the same path into a single read.
func (r *Resolver) file(p string) *SettingsFile {
	r.mu.RLock()
	f, ok := r.files[p]
	r.mu.RUnlock()
	if ok {
		return f
	}

	result, _, _ := r.sf.Do(p, func() (interface{}, error) {
		r.mu.RLock()
		f, ok := r.files[p]
		r.mu.RUnlock()
		if ok {
			return f, nil
		}

		loaded := r.load(p)
		r.mu.Lock()
		r.files[p] = loaded
		r.mu.Unlock()
		return loaded, nil
	})
	if result == nil {
		return nil
	}
	return result.(*SettingsFile)
}

func (r *Resolver) load(p string) *SettingsFile {
	data, err := r.fs.ReadFile(p)
	if err != nil {
		return nil
	}
	f, err := ParseSettingsFile(data)
	if err != nil {
		// A broken descriptor behaves like an absent one; editing it
		// triggers invalidation and a re-parse.
		r.log.Warn("ignoring malformed settings descriptor",
			zap.String("path", p),
			zap.Error(err))
		return nil
	}
	return f
}

// DescriptorPaths returns the descriptor paths governing a source file,
// root first. The list covers the root directory and every ancestor of
// the file.
func DescriptorPaths(srcPath string) []string {
	dir := path.Dir(strings.TrimPrefix(srcPath, "/"))
	paths := []string{SettingsFileName}
	if dir == "." || dir == "" {
		return paths
	}
	parts := strings.Split(dir, "/")
	prefix := ""
	for _, part := range parts {
		prefix = path.Join(prefix, part)
		paths = append(paths, path.Join(prefix, SettingsFileName))
	}
	return paths
}
