package convert_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"texture-manager/core/convert"
	"texture-manager/core/vfs"
)

// countingFS counts descriptor reads so tests can observe caching.
type countingFS struct {
	*vfs.MemFS
	mu    sync.Mutex
	reads map[string]int
}

func newCountingFS() *countingFS {
	return &countingFS{MemFS: vfs.NewMem(), reads: map[string]int{}}
}

func (c *countingFS) ReadFile(p string) ([]byte, error) {
	c.mu.Lock()
	c.reads[p]++
	c.mu.Unlock()
	return c.MemFS.ReadFile(p)
}

func (c *countingFS) readCount(p string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads[p]
}

func TestDescriptorPaths(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "nested",
			src:  "textures/terrain/grass.png",
			want: []string{"textures.hujson", "textures/textures.hujson", "textures/terrain/textures.hujson"},
		},
		{
			name: "root file",
			src:  "grass.png",
			want: []string{"textures.hujson"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, convert.DescriptorPaths(tt.src))
		})
	}
}

func TestResolverMergesAncestry(t *testing.T) {
	fs := vfs.NewMem()
	fs.Put("textures.hujson", []byte(`{"rules": [{"match": "*", "maxSize": 1024}]}`))
	fs.Put("textures/terrain/textures.hujson", []byte(`{"rules": [{"match": "*_norm.png", "normalMap": true, "maxSize": 512}]}`))

	r := convert.NewResolver(fs, nil)

	s := r.Settings("textures/terrain/rock_norm.png", nil)
	assert.Equal(t, convert.Settings{Mipmaps: true, MaxSize: 512, NormalMap: true}, s)

	s = r.Settings("textures/terrain/rock.png", nil)
	assert.Equal(t, convert.Settings{Mipmaps: true, MaxSize: 1024}, s)

	s = r.Settings("other/thing.png", nil)
	assert.Equal(t, convert.Settings{Mipmaps: true, MaxSize: 1024}, s)
}

func TestResolverCachesPresenceAndAbsence(t *testing.T) {
	fs := newCountingFS()
	fs.Put("textures.hujson", []byte(`{"rules": [{"match": "*", "maxSize": 64}]}`))

	r := convert.NewResolver(fs, nil)

	for i := 0; i < 3; i++ {
		r.Settings("textures/terrain/grass.png", nil)
	}

	assert.Equal(t, 1, fs.readCount("textures.hujson"))
	// Absent descriptors are probed exactly once too.
	assert.Equal(t, 1, fs.readCount("textures/textures.hujson"))
	assert.Equal(t, 1, fs.readCount("textures/terrain/textures.hujson"))
}

func TestResolverInvalidate(t *testing.T) {
	fs := newCountingFS()
	r := convert.NewResolver(fs, nil)

	s := r.Settings("textures/grass.png", nil)
	assert.Equal(t, convert.DefaultSettings(), s)

	// A descriptor appearing later takes effect once its path is
	// invalidated, without rebuilding the resolver.
	fs.Put("textures/textures.hujson", []byte(`{"rules": [{"match": "*", "mipmaps": false}]}`))
	s = r.Settings("textures/grass.png", nil)
	assert.Equal(t, convert.DefaultSettings(), s, "negative entry must stay cached until invalidated")

	r.Invalidate("textures/textures.hujson")
	s = r.Settings("textures/grass.png", nil)
	assert.False(t, s.Mipmaps)
	assert.Equal(t, 2, fs.readCount("textures/textures.hujson"))
}

func TestResolverMalformedDescriptorIgnored(t *testing.T) {
	fs := vfs.NewMem()
	fs.Put("textures.hujson", []byte(`{"rules":`))

	r := convert.NewResolver(fs, nil)
	assert.Equal(t, convert.DefaultSettings(), r.Settings("a.png", nil))
}

func TestResolverTracksProbedPaths(t *testing.T) {
	fs := vfs.NewMem()
	fs.Put("textures.hujson", []byte(`{"rules": []}`))

	r := convert.NewResolver(fs, nil)

	tracked := map[string]int{}
	r.Settings("textures/terrain/grass.png", func(p string) {
		tracked[p]++
	})
	// Every descriptor path is reported, present or not, so hotloading
	// can watch descriptors that do not exist yet.
	require.Len(t, tracked, 3)
	assert.Contains(t, tracked, "textures.hujson")
	assert.Contains(t, tracked, "textures/textures.hujson")
	assert.Contains(t, tracked, "textures/terrain/textures.hujson")
}
