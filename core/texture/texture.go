package texture

import "texture-manager/core/codec"

// Texture is one entity in the manager's registry. All state is guarded by
// the owning manager, so entities are safe to use from any goroutine.
//
// A Texture always has a usable handle: the default placeholder before
// loading, the real upload once loaded, or the error placeholder when
// loading failed. Callers can therefore render unconditionally.
type Texture struct {
	m      *Manager
	props  Properties
	state  State
	handle *codec.Handle
}

// Properties returns the identity of this entity.
func (t *Texture) Properties() Properties { return t.props }

// TryLoad loads the texture now if possible. If a cached artifact is
// usable it is loaded synchronously; otherwise conversion is requested at
// high priority and the placeholder stays up. A prefetch that already
// established the cache is missing skips straight to the conversion
// request. Reports whether the texture is loaded on return.
func (t *Texture) TryLoad() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	return t.m.tryLoadLocked(t)
}

// Prefetch marks an unloaded entity for background loading by Advance.
// Entities in any other state are left alone.
func (t *Texture) Prefetch() {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if t.state == StateUnloaded {
		t.state = StatePrefetchNeedsLoading
	}
}

// IsLoaded reports whether the entity shows its real content rather than a
// placeholder that is still waiting.
func (t *Texture) IsLoaded() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	return t.state == StateLoaded
}

// State returns the current loading state.
func (t *Texture) State() State {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	return t.state
}

// Handle returns the current handle. The entity keeps its own reference;
// callers that stash the handle beyond the next state change must Retain
// it.
func (t *Texture) Handle() *codec.Handle {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	return t.handle
}

// Width returns the pixel width of the current handle.
func (t *Texture) Width() int {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if t.handle == nil {
		return 0
	}
	return t.handle.Width()
}

// Height returns the pixel height of the current handle.
func (t *Texture) Height() int {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if t.handle == nil {
		return 0
	}
	return t.handle.Height()
}

// HasAlpha reports whether the current handle carries translucency.
func (t *Texture) HasAlpha() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if t.handle == nil {
		return false
	}
	return t.handle.HasAlpha()
}

// BaseColor returns the average color of the current handle, a cheap
// stand-in for the texture at extreme distances.
func (t *Texture) BaseColor() codec.Color {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if t.handle == nil {
		return codec.Color{}
	}
	return t.handle.AverageColor()
}

// setHandleLocked swaps the entity's handle. Without takeOwnership the new
// handle is retained, since placeholders are shared between entities.
// Swapping a handle for itself is a no-op either way.
func (t *Texture) setHandleLocked(h *codec.Handle, takeOwnership bool) {
	if h == t.handle {
		return
	}
	if h != nil && !takeOwnership {
		h.Retain()
	}
	if t.handle != nil {
		t.handle.Release()
	}
	t.handle = h
}
