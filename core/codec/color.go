package codec

import (
	"image"
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Color is a non-premultiplied sRGB color with components in [0,1].
type Color struct {
	R, G, B, A float64
}

// RGBA8 returns 8-bit components.
func (c Color) RGBA8() (r, g, b, a uint8) {
	cc := colorful.Color{R: c.R, G: c.G, B: c.B}.Clamped()
	r, g, b = cc.RGB255()
	a = uint8(clamp01(c.A)*255 + 0.5)
	return r, g, b, a
}

// Hex returns the color as "#rrggbb", dropping alpha.
func (c Color) Hex() string {
	return colorful.Color{R: c.R, G: c.G, B: c.B}.Clamped().Hex()
}

// NRGBA returns the color as a standard library color value.
func (c Color) NRGBA() color.NRGBA {
	r, g, b, a := c.RGBA8()
	return color.NRGBA{R: r, G: g, B: b, A: a}
}

// AverageColor computes the alpha-weighted mean color of an image. The mean
// is taken in linear light so bright texels are not over-counted, then
// converted back to sRGB. A fully transparent image averages to zero.
func AverageColor(img image.Image) Color {
	b := img.Bounds()
	n := b.Dx() * b.Dy()
	if n == 0 {
		return Color{}
	}

	var sumR, sumG, sumB, sumA float64
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			pr, pg, pb, pa := img.At(x, y).RGBA()
			if pa == 0 {
				continue
			}
			// RGBA is alpha-premultiplied 16-bit; recover the sRGB value.
			src := colorful.Color{
				R: float64(pr) / float64(pa),
				G: float64(pg) / float64(pa),
				B: float64(pb) / float64(pa),
			}
			lr, lg, lb := src.LinearRgb()
			af := float64(pa) / 0xffff
			sumR += lr * af
			sumG += lg * af
			sumB += lb * af
			sumA += af
		}
	}
	if sumA == 0 {
		return Color{}
	}

	mean := colorful.LinearRgb(sumR/sumA, sumG/sumA, sumB/sumA).Clamped()
	return Color{R: mean.R, G: mean.G, B: mean.B, A: sumA / float64(n)}
}

// SolidImage returns a 1x1 image of the given color, the building block of
// placeholder textures.
func SolidImage(c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.SetNRGBA(0, 0, c)
	return img
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
