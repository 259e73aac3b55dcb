// Package convert implements the offline half of the texture pipeline:
// resolving per-directory conversion settings, turning source images into
// mip-mapped artifact containers, and scheduling that work off the main
// loop.
//
// # Settings
//
// Conversion parameters come from "textures.hujson" descriptor files.
// Every directory from the filesystem root down to a source file may carry
// one; rules are merged root to leaf, so deeper directories refine their
// ancestors. A Resolver caches descriptors (including the knowledge that a
// directory has none) and reports every probed descriptor path to an
// interest callback so hotloading can watch them.
//
// # Scheduling
//
// Converter runs a single worker with a single job slot. Submit rejects
// work while a job is outstanding and Poll never blocks, which keeps the
// caller's frame loop in control of pacing. Results carry an opaque owner
// value so the caller can route completions without the scheduler knowing
// about textures.
//
// # Usage
//
//	conv := convert.NewConverter[string]()
//	defer conv.Close()
//
//	_, err := conv.Submit(src, func() error {
//	    return convert.ConvertFile(fs, src, dst, settings)
//	})
//	if errors.Is(err, convert.ErrBusy) {
//	    // try again next frame
//	}
package convert
