// Package codec turns image files into uploaded texture handles.
//
// The package understands two kinds of input: ordinary image files
// (PNG, JPEG, TGA, WebP) decoded through the standard image registry,
// and the engine's own multi-level artifact container produced by the
// conversion pipeline. Both paths end in an Uploader, the seam between
// CPU-side decoding and whatever owns the actual texture storage.
//
// # Handles
//
// Load and Wrap return reference-counted Handles. A Handle keeps its
// uploader allocation alive until the last Release; sharing a texture
// between consumers is a Retain, not a second upload.
//
// # Artifact container
//
// Converted textures are stored as a small binary container: a header
// with dimensions and flags followed by one WebP payload per mip level.
// EncodeArtifact and DecodeArtifact implement the format; the cache and
// inspection tooling use them directly.
//
// # Usage
//
//	c := codec.New(fs, codec.NewHeadless())
//	h, err := c.Load("textures/stone.png", codec.DefaultSampler())
//	if err != nil {
//	    return err
//	}
//	defer h.Release()
package codec
