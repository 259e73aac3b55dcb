package codec

import (
	"image"
	"sync"
	"sync/atomic"
)

// TextureID identifies one uploaded texture within an Uploader.
type TextureID uint64

// Uploader owns texture storage. The production implementation talks to a
// graphics device; Headless backs tests and the offline tooling.
type Uploader interface {
	// Upload allocates a texture from a mip chain, largest level first.
	Upload(levels []*image.NRGBA, sampler Sampler) (TextureID, error)
	// Free releases the allocation. Freeing an unknown ID is a no-op.
	Free(id TextureID)
}

// Handle is a reference-counted texture allocation. The count starts at
// one; Release drops it and frees the upload when it reaches zero.
type Handle struct {
	refs     atomic.Int32
	id       TextureID
	uploader Uploader

	width    int
	height   int
	levels   int
	hasAlpha bool
	average  Color
}

func newHandle(up Uploader, id TextureID, levels []*image.NRGBA, hasAlpha bool, avg Color) *Handle {
	top := levels[0].Bounds()
	h := &Handle{
		id:       id,
		uploader: up,
		width:    top.Dx(),
		height:   top.Dy(),
		levels:   len(levels),
		hasAlpha: hasAlpha,
		average:  avg,
	}
	h.refs.Store(1)
	return h
}

// Retain adds a reference and returns the handle for chaining.
func (h *Handle) Retain() *Handle {
	h.refs.Add(1)
	return h
}

// Release drops a reference. The underlying upload is freed when the last
// reference goes away; the handle must not be used afterwards.
func (h *Handle) Release() {
	if h == nil {
		return
	}
	if h.refs.Add(-1) == 0 {
		h.uploader.Free(h.id)
	}
}

// ID returns the uploader-scoped texture identifier.
func (h *Handle) ID() TextureID { return h.id }

// Width returns the width of the top level in pixels.
func (h *Handle) Width() int { return h.width }

// Height returns the height of the top level in pixels.
func (h *Handle) Height() int { return h.height }

// Levels returns the number of uploaded mip levels.
func (h *Handle) Levels() int { return h.levels }

// Mipmapped reports whether the upload carries more than one level.
func (h *Handle) Mipmapped() bool { return h.levels > 1 }

// HasAlpha reports whether any source pixel was not fully opaque.
func (h *Handle) HasAlpha() bool { return h.hasAlpha }

// AverageColor returns the mean color of the texture, useful as a stand-in
// at extreme distances or on minimaps.
func (h *Handle) AverageColor() Color { return h.average }

// Headless is an Uploader that only does bookkeeping. It stands in for a
// graphics device in tests and in the offline conversion tooling.
type Headless struct {
	mu     sync.Mutex
	next   TextureID
	live   map[TextureID]int64
	bytes  int64
	frees  int64
	allocs int64
}

// NewHeadless returns an empty headless uploader.
func NewHeadless() *Headless {
	return &Headless{live: make(map[TextureID]int64)}
}

// Upload records the allocation and returns a fresh ID.
func (u *Headless) Upload(levels []*image.NRGBA, sampler Sampler) (TextureID, error) {
	var size int64
	for _, l := range levels {
		size += int64(len(l.Pix))
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.next++
	u.live[u.next] = size
	u.bytes += size
	u.allocs++
	return u.next, nil
}

// Free forgets the allocation.
func (u *Headless) Free(id TextureID) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if size, ok := u.live[id]; ok {
		u.bytes -= size
		delete(u.live, id)
		u.frees++
	}
}

// Live returns the number of allocations not yet freed.
func (u *Headless) Live() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.live)
}

// BytesInUse returns the pixel bytes held by live allocations.
func (u *Headless) BytesInUse() int64 {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.bytes
}

// Allocs returns the total number of uploads performed.
func (u *Headless) Allocs() int64 {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.allocs
}
