package codec

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"path"
	"strings"

	"github.com/ftrvxmtrx/tga"

	"texture-manager/core/vfs"
)

// Codec loads texture files through a filesystem and uploads them. It is
// stateless apart from its collaborators and safe for concurrent use.
type Codec struct {
	fs vfs.FS
	up Uploader
}

// New returns a Codec reading from fs and uploading through up.
func New(fs vfs.FS, up Uploader) *Codec {
	return &Codec{fs: fs, up: up}
}

// Load reads the file at p, decodes it and uploads it with the given
// sampler. Artifact containers keep their mip chain; ordinary image files
// upload as a single level. When the data has no mip chain the sampler
// filter is downgraded to its non-mipmap equivalent.
func (c *Codec) Load(p string, s Sampler) (*Handle, error) {
	data, err := c.fs.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("codec: load %s: %w", p, err)
	}

	if strings.HasSuffix(p, ArtifactExt) {
		art, err := DecodeArtifact(data)
		if err != nil {
			return nil, fmt.Errorf("codec: load %s: %w", p, err)
		}
		return c.upload(art.Levels, art.HasAlpha, s)
	}

	img, err := DecodeImage(data, p)
	if err != nil {
		return nil, fmt.Errorf("codec: load %s: %w", p, err)
	}
	return c.upload([]*image.NRGBA{img}, HasTranslucency(img), s)
}

// Wrap uploads an in-memory image as a single-level texture. Placeholder
// textures are built this way without touching the filesystem.
func (c *Codec) Wrap(img image.Image, s Sampler) (*Handle, error) {
	n := ToNRGBA(img)
	return c.upload([]*image.NRGBA{n}, HasTranslucency(n), s)
}

func (c *Codec) upload(levels []*image.NRGBA, hasAlpha bool, s Sampler) (*Handle, error) {
	if len(levels) == 1 && s.Filter.Mipmapped() {
		s.Filter = s.Filter.WithoutMipmaps()
	}
	avg := AverageColor(levels[len(levels)-1])
	id, err := c.up.Upload(levels, s)
	if err != nil {
		return nil, fmt.Errorf("codec: upload: %w", err)
	}
	return newHandle(c.up, id, levels, hasAlpha, avg), nil
}

// CanDecode reports whether the path names a source image format the codec
// understands. Artifact containers are not sources.
func CanDecode(p string) bool {
	switch strings.ToLower(path.Ext(p)) {
	case ".png", ".jpg", ".jpeg", ".tga", ".webp":
		return true
	default:
		return false
	}
}

// DecodeImage decodes an ordinary image file into NRGBA. TGA is routed by
// extension since the format has no magic bytes; everything else goes
// through the standard image registry.
func DecodeImage(data []byte, name string) (*image.NRGBA, error) {
	if strings.EqualFold(path.Ext(name), ".tga") {
		img, err := tga.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("codec: decode tga: %w", err)
		}
		return ToNRGBA(img), nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("codec: decode: %w", err)
	}
	return ToNRGBA(img), nil
}
