package codec

// FilterMode selects the minification/magnification filter of a sampler.
type FilterMode uint8

const (
	FilterNearest FilterMode = iota
	FilterLinear
	FilterNearestMipmapNearest
	FilterLinearMipmapNearest
	FilterNearestMipmapLinear
	FilterLinearMipmapLinear
)

// Mipmapped reports whether the filter samples from a mip chain.
func (f FilterMode) Mipmapped() bool {
	return f >= FilterNearestMipmapNearest
}

// WithoutMipmaps returns the closest filter that does not require a mip
// chain. Non-mipmap filters are returned unchanged.
func (f FilterMode) WithoutMipmaps() FilterMode {
	switch f {
	case FilterNearestMipmapNearest, FilterNearestMipmapLinear:
		return FilterNearest
	case FilterLinearMipmapNearest, FilterLinearMipmapLinear:
		return FilterLinear
	default:
		return f
	}
}

func (f FilterMode) String() string {
	switch f {
	case FilterNearest:
		return "nearest"
	case FilterLinear:
		return "linear"
	case FilterNearestMipmapNearest:
		return "nearest-mipmap-nearest"
	case FilterLinearMipmapNearest:
		return "linear-mipmap-nearest"
	case FilterNearestMipmapLinear:
		return "nearest-mipmap-linear"
	case FilterLinearMipmapLinear:
		return "linear-mipmap-linear"
	default:
		return "unknown"
	}
}

// WrapMode selects how texture coordinates outside [0,1] are resolved.
type WrapMode uint8

const (
	WrapRepeat WrapMode = iota
	WrapClampToEdge
	WrapMirroredRepeat
)

func (w WrapMode) String() string {
	switch w {
	case WrapRepeat:
		return "repeat"
	case WrapClampToEdge:
		return "clamp-to-edge"
	case WrapMirroredRepeat:
		return "mirrored-repeat"
	default:
		return "unknown"
	}
}

// Sampler is the GPU sampling state requested for a texture. It is
// comparable, so two requests for the same path with equal samplers can
// share one handle.
type Sampler struct {
	Filter     FilterMode
	Wrap       WrapMode
	Anisotropy int
}

// DefaultSampler returns trilinear filtering with repeat wrapping, the
// state almost every world texture wants.
func DefaultSampler() Sampler {
	return Sampler{Filter: FilterLinearMipmapLinear, Wrap: WrapRepeat, Anisotropy: 1}
}
