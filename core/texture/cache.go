package texture

import (
	"crypto/md5"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"path"
	"time"

	"texture-manager/core/codec"
	"texture-manager/core/convert"
	"texture-manager/core/vfs"
)

// archiveMTimeTolerance absorbs the coarse timestamp resolution of FAT
// filesystems and zip archives when comparing a source against its archive
// artifact.
const archiveMTimeTolerance = 2 * time.Second

// ArchiveCachePath returns the archive artifact path for a source file:
// the artifact sits next to the source, typically inside a mod archive
// built ahead of time.
func ArchiveCachePath(src string) string {
	return src + codec.ArtifactExt
}

// CanUseArchiveCache decides between an archive artifact and re-converting
// the source. The archive is preferred whenever possible; it loses only
// when the source file was overridden by a higher-priority layer or edited
// more recently than the artifact was built.
func CanUseArchiveCache(fs vfs.FS, src, archive string) bool {
	srcPrio, srcExists := fs.Priority(src)
	archPrio, archExists := fs.Priority(archive)

	if !archExists {
		return false
	}
	if !srcExists {
		return true
	}
	if archPrio < srcPrio {
		return false
	}

	srcInfo, srcErr := fs.Stat(src)
	archInfo, archErr := fs.Stat(archive)
	if srcErr == nil && archErr == nil &&
		srcInfo.ModTime.Sub(archInfo.ModTime) > archiveMTimeTolerance {
		return false
	}
	return true
}

// LooseCachePath returns the artifact path for a source file under the
// cache mount. The name embeds a fingerprint of the source's size, its
// modification time, a format version and the conversion settings, so any
// change to those produces a fresh path and old artifacts simply stop
// being referenced. The source file must exist.
func LooseCachePath(fs vfs.FS, src string, s convert.Settings) (string, error) {
	info, err := fs.Stat(src)
	if err != nil {
		return "", fmt.Errorf("texture: cache path for %s: %w", src, err)
	}

	// Zip archives and FAT don't preserve the lowest mtime bit.
	mtime := uint64(info.ModTime.Unix()) &^ 1
	size := uint64(info.Size)

	h := md5.New()
	var buf [20]byte
	binary.LittleEndian.PutUint64(buf[0:8], mtime)
	binary.LittleEndian.PutUint64(buf[8:16], size)
	binary.LittleEndian.PutUint32(buf[16:20], codec.ContainerVersion)
	h.Write(buf[:])
	s.Hash(h)

	// A short prefix of the digest is plenty; collision resistance is
	// not a goal for local cache names.
	fingerprint := hex.EncodeToString(h.Sum(nil)[:8])

	dir, name := path.Split(src)
	return path.Join(vfs.CacheMount, dir, name+"."+fingerprint+codec.ArtifactExt), nil
}
