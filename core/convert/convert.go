package convert

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"texture-manager/core/codec"
	"texture-manager/core/vfs"
)

// ConvertFile turns one source image into an artifact container at dst.
// The write is atomic and happens only after the whole chain encoded, so a
// failed conversion leaves no artifact behind.
func ConvertFile(fs vfs.FS, src, dst string, s Settings) error {
	data, err := fs.ReadFile(src)
	if err != nil {
		return fmt.Errorf("convert: %s: %w", src, err)
	}
	img, err := codec.DecodeImage(data, src)
	if err != nil {
		return fmt.Errorf("convert: %s: %w", src, err)
	}

	filter := imaging.Lanczos
	if s.NormalMap {
		filter = imaging.Linear
	}

	b := img.Bounds()
	if s.MaxSize > 0 && (b.Dx() > s.MaxSize || b.Dy() > s.MaxSize) {
		img = imaging.Fit(img, s.MaxSize, s.MaxSize, filter)
		b = img.Bounds()
	}

	levels := []*image.NRGBA{img}
	if s.Mipmaps {
		w, h := b.Dx(), b.Dy()
		for w > 1 || h > 1 {
			w, h = halve(w), halve(h)
			levels = append(levels, imaging.Resize(img, w, h, filter))
		}
	}

	hasAlpha := false
	if s.StripAlpha {
		for _, l := range levels {
			forceOpaque(l)
		}
	} else {
		hasAlpha = codec.HasTranslucency(img)
	}

	out, err := codec.EncodeArtifact(levels, hasAlpha)
	if err != nil {
		return fmt.Errorf("convert: %s: %w", src, err)
	}
	if err := fs.WriteFile(dst, out); err != nil {
		return fmt.Errorf("convert: %s: %w", src, err)
	}
	return nil
}

func halve(d int) int {
	if d <= 1 {
		return 1
	}
	return d / 2
}

func forceOpaque(img *image.NRGBA) {
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
}
