// Package vfs provides the layered virtual filesystem the texture pipeline
// reads sources and settings from and writes cache artifacts to.
//
// A virtual path is a slash-separated relative path such as
// "art/walls/brick.png". Every mount maps a virtual prefix (the mount point)
// onto an OS directory and carries a numeric priority. Resolution picks the
// candidate from the highest-priority mount; among mounts of equal priority
// the one mounted later wins. Higher-priority mounts are how user overlays
// shadow packaged assets, and the priority of the winning mount is exposed to
// callers because cache validity decisions depend on it.
//
// # Implementations
//
//   - Layered: production use, backed by OS directories. Writes go to the
//     writable mount and are atomic (temp file + rename).
//   - MemFS: in-memory use for tests, with settable modification times and
//     per-file priorities.
//
// # Usage
//
//	fs, err := vfs.New(cfg)
//	info, err := fs.Stat("art/walls/brick.png")
//	prio, ok := fs.Priority("art/walls/brick.png")
package vfs
