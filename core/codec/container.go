package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/draw"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/webp"
)

// ArtifactExt is the file extension of converted texture containers.
const ArtifactExt = ".tex"

// containerMagic identifies an artifact container.
var containerMagic = [4]byte{'T', 'X', 'C', '1'}

// ContainerVersion is the artifact format version. It participates in
// loose-cache fingerprints, so bumping it retires all converted artifacts.
const ContainerVersion = 1

const (
	containerHeaderSize = 16
	flagAlpha           = 1 << 0
)

// Artifact container errors.
var (
	// ErrBadMagic is returned when data does not start with the container magic.
	ErrBadMagic = errors.New("codec: not a texture container")

	// ErrBadVersion is returned for containers written by a different format version.
	ErrBadVersion = errors.New("codec: unsupported container version")

	// ErrTruncated is returned when a container ends mid-header or mid-payload.
	ErrTruncated = errors.New("codec: truncated container")
)

// Artifact is a decoded texture container: the full mip chain of a
// converted texture, largest level first.
type Artifact struct {
	Width    int
	Height   int
	HasAlpha bool
	Levels   []*image.NRGBA
}

// Mipmapped reports whether the artifact carries more than one level.
func (a *Artifact) Mipmapped() bool { return len(a.Levels) > 1 }

// EncodeArtifact serializes a mip chain into the container format. Levels
// must be ordered largest first, each one half the previous (rounded down,
// clamped to 1). Payloads are lossless WebP.
func EncodeArtifact(levels []*image.NRGBA, hasAlpha bool) ([]byte, error) {
	if len(levels) == 0 || len(levels) > 255 {
		return nil, fmt.Errorf("codec: %d levels out of range", len(levels))
	}
	top := levels[0].Bounds()
	w, h := top.Dx(), top.Dy()
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("codec: empty top level %dx%d", w, h)
	}
	for i, l := range levels {
		if got, want := l.Bounds(), image.Rect(0, 0, mipDim(w, i), mipDim(h, i)); got.Dx() != want.Dx() || got.Dy() != want.Dy() {
			return nil, fmt.Errorf("codec: level %d is %dx%d, want %dx%d", i, got.Dx(), got.Dy(), want.Dx(), want.Dy())
		}
	}

	var buf bytes.Buffer
	buf.Write(containerMagic[:])
	flags := byte(0)
	if hasAlpha {
		flags |= flagAlpha
	}
	buf.WriteByte(ContainerVersion)
	buf.WriteByte(flags)
	buf.WriteByte(byte(len(levels)))
	buf.WriteByte(0)

	var dims [8]byte
	binary.LittleEndian.PutUint32(dims[0:4], uint32(w))
	binary.LittleEndian.PutUint32(dims[4:8], uint32(h))
	buf.Write(dims[:])

	var payload bytes.Buffer
	for i, l := range levels {
		payload.Reset()
		if err := nativewebp.Encode(&payload, l, nil); err != nil {
			return nil, fmt.Errorf("codec: encode level %d: %w", i, err)
		}
		var size [4]byte
		binary.LittleEndian.PutUint32(size[:], uint32(payload.Len()))
		buf.Write(size[:])
		buf.Write(payload.Bytes())
	}
	return buf.Bytes(), nil
}

// DecodeArtifact parses a container produced by EncodeArtifact.
func DecodeArtifact(data []byte) (*Artifact, error) {
	if len(data) < containerHeaderSize {
		return nil, ErrTruncated
	}
	if !bytes.Equal(data[0:4], containerMagic[:]) {
		return nil, ErrBadMagic
	}
	if data[4] != ContainerVersion {
		return nil, fmt.Errorf("%w: %d", ErrBadVersion, data[4])
	}
	flags := data[5]
	count := int(data[6])
	if count == 0 {
		return nil, fmt.Errorf("codec: container has no levels")
	}
	w := int(binary.LittleEndian.Uint32(data[8:12]))
	h := int(binary.LittleEndian.Uint32(data[12:16]))

	art := &Artifact{
		Width:    w,
		Height:   h,
		HasAlpha: flags&flagAlpha != 0,
		Levels:   make([]*image.NRGBA, 0, count),
	}

	rest := data[containerHeaderSize:]
	for i := 0; i < count; i++ {
		if len(rest) < 4 {
			return nil, ErrTruncated
		}
		size := int(binary.LittleEndian.Uint32(rest[:4]))
		rest = rest[4:]
		if len(rest) < size {
			return nil, ErrTruncated
		}
		img, err := webp.Decode(bytes.NewReader(rest[:size]))
		if err != nil {
			return nil, fmt.Errorf("codec: decode level %d: %w", i, err)
		}
		level := ToNRGBA(img)
		if got := level.Bounds(); got.Dx() != mipDim(w, i) || got.Dy() != mipDim(h, i) {
			return nil, fmt.Errorf("codec: level %d is %dx%d, want %dx%d", i, got.Dx(), got.Dy(), mipDim(w, i), mipDim(h, i))
		}
		art.Levels = append(art.Levels, level)
		rest = rest[size:]
	}
	return art, nil
}

// mipDim returns the size of dimension d at mip level i.
func mipDim(d, i int) int {
	d >>= i
	if d < 1 {
		return 1
	}
	return d
}

// ToNRGBA returns the image as NRGBA with bounds at the origin, copying
// only when the representation differs.
func ToNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok && n.Bounds().Min == (image.Point{}) {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// HasTranslucency reports whether any pixel is not fully opaque.
func HasTranslucency(img *image.NRGBA) bool {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):img.PixOffset(b.Max.X, y)]
		for i := 3; i < len(row); i += 4 {
			if row[i] != 0xff {
				return true
			}
		}
	}
	return false
}
