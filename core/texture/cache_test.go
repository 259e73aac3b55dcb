package texture_test

import (
	"path"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"texture-manager/core/convert"
	"texture-manager/core/texture"
	"texture-manager/core/vfs"
)

func TestArchiveCachePath(t *testing.T) {
	assert.Equal(t, "textures/stone.png.tex", texture.ArchiveCachePath("textures/stone.png"))
}

func TestCanUseArchiveCache(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		setup func(fs *vfs.MemFS)
		want  bool
	}{
		{
			name:  "no artifact",
			setup: func(fs *vfs.MemFS) { fs.Put("a.png", []byte("src")) },
			want:  false,
		},
		{
			name:  "artifact without source",
			setup: func(fs *vfs.MemFS) { fs.Put("a.png.tex", []byte("art")) },
			want:  true,
		},
		{
			name: "artifact and matching source",
			setup: func(fs *vfs.MemFS) {
				fs.Put("a.png", []byte("src"))
				fs.Put("a.png.tex", []byte("art"))
			},
			want: true,
		},
		{
			name: "artifact mounted below the source",
			setup: func(fs *vfs.MemFS) {
				fs.Put("a.png", []byte("src"))
				fs.Put("a.png.tex", []byte("art"))
				fs.SetPriority("a.png", 2)
				fs.SetPriority("a.png.tex", 1)
			},
			want: false,
		},
		{
			name: "artifact mounted above the source",
			setup: func(fs *vfs.MemFS) {
				fs.Put("a.png", []byte("src"))
				fs.Put("a.png.tex", []byte("art"))
				fs.SetPriority("a.png", 1)
				fs.SetPriority("a.png.tex", 2)
			},
			want: true,
		},
		{
			name: "source newer within tolerance",
			setup: func(fs *vfs.MemFS) {
				fs.Put("a.png", []byte("src"))
				fs.Put("a.png.tex", []byte("art"))
				fs.SetModTime("a.png.tex", base)
				fs.SetModTime("a.png", base.Add(2*time.Second))
			},
			want: true,
		},
		{
			name: "source newer beyond tolerance",
			setup: func(fs *vfs.MemFS) {
				fs.Put("a.png", []byte("src"))
				fs.Put("a.png.tex", []byte("art"))
				fs.SetModTime("a.png.tex", base)
				fs.SetModTime("a.png", base.Add(3*time.Second))
			},
			want: false,
		},
		{
			name: "artifact newer than source",
			setup: func(fs *vfs.MemFS) {
				fs.Put("a.png", []byte("src"))
				fs.Put("a.png.tex", []byte("art"))
				fs.SetModTime("a.png", base)
				fs.SetModTime("a.png.tex", base.Add(time.Hour))
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := vfs.NewMem()
			tt.setup(fs)
			got := texture.CanUseArchiveCache(fs, "a.png", "a.png.tex")
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLooseCachePathShape(t *testing.T) {
	fs := vfs.NewMem()
	fs.Put("textures/terrain/grass.png", []byte("src"))

	p, err := texture.LooseCachePath(fs, "textures/terrain/grass.png", convert.DefaultSettings())
	require.NoError(t, err)

	dir, file := path.Split(p)
	assert.Equal(t, vfs.CacheMount+"/textures/terrain/", dir)
	require.True(t, strings.HasPrefix(file, "grass.png."))
	require.True(t, strings.HasSuffix(file, ".tex"))

	fingerprint := strings.TrimSuffix(strings.TrimPrefix(file, "grass.png."), ".tex")
	assert.Regexp(t, "^[0-9a-f]{16}$", fingerprint)
}

func TestLooseCachePathMissingSource(t *testing.T) {
	fs := vfs.NewMem()
	_, err := texture.LooseCachePath(fs, "textures/missing.png", convert.DefaultSettings())
	assert.Error(t, err)
}

func TestLooseCachePathSensitivity(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) // even unix timestamp

	paths := func(mutate func(fs *vfs.MemFS), s convert.Settings) string {
		fs := vfs.NewMem()
		fs.Put("a.png", []byte("source-data"))
		fs.SetModTime("a.png", base)
		if mutate != nil {
			mutate(fs)
		}
		p, err := texture.LooseCachePath(fs, "a.png", s)
		require.NoError(t, err)
		return p
	}

	ref := paths(nil, convert.DefaultSettings())

	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, ref, paths(nil, convert.DefaultSettings()))
	})

	t.Run("sub-second precision ignored", func(t *testing.T) {
		got := paths(func(fs *vfs.MemFS) {
			fs.SetModTime("a.png", base.Add(time.Second))
		}, convert.DefaultSettings())
		assert.Equal(t, ref, got, "the lowest timestamp bit is masked off")
	})

	t.Run("mtime changes the path", func(t *testing.T) {
		got := paths(func(fs *vfs.MemFS) {
			fs.SetModTime("a.png", base.Add(2*time.Second))
		}, convert.DefaultSettings())
		assert.NotEqual(t, ref, got)
	})

	t.Run("size changes the path", func(t *testing.T) {
		got := paths(func(fs *vfs.MemFS) {
			fs.Put("a.png", []byte("source-data-longer"))
			fs.SetModTime("a.png", base)
		}, convert.DefaultSettings())
		assert.NotEqual(t, ref, got)
	})

	t.Run("settings change the path", func(t *testing.T) {
		s := convert.DefaultSettings()
		s.MaxSize = 256
		assert.NotEqual(t, ref, paths(nil, s))

		s = convert.DefaultSettings()
		s.Mipmaps = false
		assert.NotEqual(t, ref, paths(nil, s))
	})
}
