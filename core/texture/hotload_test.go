package texture_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"texture-manager/core/codec"
	"texture-manager/core/texture"
)

func TestHotloadResetsLoadedTexture(t *testing.T) {
	m, fs, _ := newTestManager(t)
	defer m.Close()

	putPNG(t, fs, "textures/stone.png", 8, 8)
	fs.Put(loosePathFor(t, fs, "textures/stone.png"), artifactBytes(t, 4, 4))

	tex := m.GetOrCreate(texture.NewProperties("textures/stone.png"))
	require.True(t, tex.TryLoad())

	m.OnFileChanged("textures/stone.png")

	assert.Equal(t, texture.StateUnloaded, tex.State())
	assert.False(t, tex.IsLoaded())
	r, g, b, _ := tex.BaseColor().RGBA8()
	assert.Equal(t, [3]uint8{64, 64, 64}, [3]uint8{r, g, b}, "back to the placeholder")

	// The artifact is still valid, so reloading succeeds immediately.
	assert.True(t, tex.TryLoad())
	assert.Equal(t, 4, tex.Width())
}

func TestHotloadResetsAllSamplerVariants(t *testing.T) {
	m, fs, _ := newTestManager(t)
	defer m.Close()

	putPNG(t, fs, "textures/stone.png", 8, 8)
	fs.Put(loosePathFor(t, fs, "textures/stone.png"), artifactBytes(t, 4, 4))

	a := m.GetOrCreate(texture.NewProperties("textures/stone.png"))
	nearest := texture.NewProperties("textures/stone.png")
	nearest.Sampler.Filter = codec.FilterNearest
	b := m.GetOrCreate(nearest)
	require.True(t, a.TryLoad())
	require.True(t, b.TryLoad())

	m.OnFileChanged("textures/stone.png")

	assert.Equal(t, texture.StateUnloaded, a.State())
	assert.Equal(t, texture.StateUnloaded, b.State())
}

func TestHotloadUnrelatedPathIsNoOp(t *testing.T) {
	m, fs, _ := newTestManager(t)
	defer m.Close()

	putPNG(t, fs, "textures/stone.png", 8, 8)
	fs.Put(loosePathFor(t, fs, "textures/stone.png"), artifactBytes(t, 4, 4))

	tex := m.GetOrCreate(texture.NewProperties("textures/stone.png"))
	require.True(t, tex.TryLoad())
	h := tex.Handle()

	m.OnFileChanged("textures/other.png")

	assert.True(t, tex.IsLoaded())
	assert.Same(t, h, tex.Handle())
}

func TestHotloadReconvertsEditedSource(t *testing.T) {
	m, fs, _ := newTestManager(t)
	defer m.Close()

	putPNG(t, fs, "textures/stone.png", 8, 8)
	tex := m.GetOrCreate(texture.NewProperties("textures/stone.png"))
	require.False(t, tex.TryLoad())
	drain(t, m)
	require.True(t, tex.IsLoaded())
	before := loosePathFor(t, fs, "textures/stone.png")

	// An edit bumps the modification time past the fingerprint mask.
	info, err := fs.Stat("textures/stone.png")
	require.NoError(t, err)
	fs.SetModTime("textures/stone.png", info.ModTime.Add(2*time.Second))
	m.OnFileChanged("textures/stone.png")

	require.Equal(t, texture.StateUnloaded, tex.State())
	after := loosePathFor(t, fs, "textures/stone.png")
	require.NotEqual(t, before, after)

	assert.False(t, tex.TryLoad(), "the old artifact no longer matches")
	drain(t, m)
	assert.True(t, tex.IsLoaded())
	assert.True(t, fs.Exists(after))
}

func TestHotloadSettingsDescriptorChange(t *testing.T) {
	m, fs, _ := newTestManager(t)
	defer m.Close()

	fs.Put("textures/textures.hujson", []byte(`{
		// downscale everything in this directory
		"rules": [{"match": "*.png", "maxSize": 4}],
	}`))
	putPNG(t, fs, "textures/stone.png", 8, 8)

	tex := m.GetOrCreate(texture.NewProperties("textures/stone.png"))
	require.False(t, tex.TryLoad())
	drain(t, m)
	require.Equal(t, 4, tex.Width())

	fs.Put("textures/textures.hujson", []byte(`{"rules": [{"match": "*.png", "maxSize": 2}]}`))
	m.OnFileChanged("textures/textures.hujson")

	require.Equal(t, texture.StateUnloaded, tex.State())
	require.False(t, tex.TryLoad())
	drain(t, m)
	assert.Equal(t, 2, tex.Width(), "the new rules apply on reload")
}

func TestHotloadDescriptorAppearing(t *testing.T) {
	m, fs, _ := newTestManager(t)
	defer m.Close()

	putPNG(t, fs, "textures/stone.png", 8, 8)
	tex := m.GetOrCreate(texture.NewProperties("textures/stone.png"))
	require.False(t, tex.TryLoad())
	drain(t, m)
	require.Equal(t, 8, tex.Width())

	// The load probed for this descriptor and found nothing; creating it
	// must still invalidate the texture.
	fs.Put("textures/textures.hujson", []byte(`{"rules": [{"match": "*", "maxSize": 2}]}`))
	m.OnFileChanged("textures/textures.hujson")

	require.Equal(t, texture.StateUnloaded, tex.State())
	require.False(t, tex.TryLoad())
	drain(t, m)
	assert.Equal(t, 2, tex.Width())
}

func TestHotloadDiscardsInFlightConversion(t *testing.T) {
	m, fs, _ := newTestManager(t)
	defer m.Close()

	putPNG(t, fs, "textures/stone.png", 8, 8)
	loose := loosePathFor(t, fs, "textures/stone.png")

	tex := m.GetOrCreate(texture.NewProperties("textures/stone.png"))
	require.False(t, tex.TryLoad())
	require.True(t, m.Advance())

	// Wait for the conversion to finish, then invalidate before the
	// result has been picked up.
	require.Eventually(t, func() bool { return fs.Exists(loose) }, 5*time.Second, time.Millisecond)
	m.OnFileChanged("textures/stone.png")
	require.Equal(t, texture.StateUnloaded, tex.State())

	require.Eventually(t, m.Advance, 5*time.Second, time.Millisecond)

	assert.Equal(t, texture.StateUnloaded, tex.State(), "the stale result must not load")
	assert.False(t, tex.IsLoaded())

	// A fresh load picks up the artifact the discarded conversion wrote.
	assert.True(t, tex.TryLoad())
	assert.Equal(t, 8, tex.Width())
}
