package texture

import "texture-manager/core/codec"

// Properties identify one texture entity: the source path plus the
// requested sampling state. The struct is comparable and serves as the
// deduplication key, so the same image loaded with different samplers
// yields distinct entities and distinct uploads.
type Properties struct {
	Path    string
	Sampler codec.Sampler
}

// NewProperties returns Properties for a path with the default sampler.
func NewProperties(path string) Properties {
	return Properties{Path: path, Sampler: codec.DefaultSampler()}
}
