package watch_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"texture-manager/core/vfs"
	"texture-manager/core/watch"
)

type recorder struct {
	mu   sync.Mutex
	seen map[string]int
}

func (r *recorder) record(p string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.seen == nil {
		r.seen = make(map[string]int)
	}
	r.seen[p]++
}

func (r *recorder) count(p string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seen[p]
}

func newTestWatcher(t *testing.T) (*watch.Watcher, *recorder, string) {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "textures"), 0o755))

	l, err := vfs.New(vfs.Config{Root: root, Cache: filepath.Join(root, "cache")})
	require.NoError(t, err)

	rec := &recorder{}
	w, err := watch.New(l, nil, rec.record)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	return w, rec, root
}

func TestWatcherForwardsFileChanges(t *testing.T) {
	_, rec, root := newTestWatcher(t)

	target := filepath.Join(root, "textures", "stone.png")
	require.NoError(t, os.WriteFile(target, []byte("v1"), 0o644))

	require.Eventually(t, func() bool {
		return rec.count("textures/stone.png") > 0
	}, 5*time.Second, 10*time.Millisecond)
}

func TestWatcherFollowsNewDirectories(t *testing.T) {
	_, rec, root := newTestWatcher(t)

	dir := filepath.Join(root, "textures", "terrain")
	require.NoError(t, os.Mkdir(dir, 0o755))

	// Registering the new directory races with the write, so keep writing
	// until an event lands.
	target := filepath.Join(dir, "grass.png")
	require.Eventually(t, func() bool {
		require.NoError(t, os.WriteFile(target, []byte("v"), 0o644))
		return rec.count("textures/terrain/grass.png") > 0
	}, 5*time.Second, 50*time.Millisecond)
}

func TestWatcherIgnoresCacheMount(t *testing.T) {
	_, rec, root := newTestWatcher(t)

	require.NoError(t, os.MkdirAll(filepath.Join(root, "cache", "textures"), 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(root, "cache", "textures", "stone.png.abcd.tex"), []byte("art"), 0o644))

	// A later event on a watched path proves the queue has drained.
	require.NoError(t, os.WriteFile(filepath.Join(root, "marker.png"), []byte("m"), 0o644))
	require.Eventually(t, func() bool {
		return rec.count("marker.png") > 0
	}, 5*time.Second, 10*time.Millisecond)

	assert.Zero(t, rec.count(vfs.CacheMount+"/textures/stone.png.abcd.tex"))
	assert.Zero(t, rec.count("cache/textures/stone.png.abcd.tex"))
}

func TestWatcherCloseStopsCallbacks(t *testing.T) {
	w, rec, root := newTestWatcher(t)
	require.NoError(t, w.Close())

	require.NoError(t, os.WriteFile(filepath.Join(root, "late.png"), []byte("x"), 0o644))
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, rec.count("late.png"))
}
