package texture

import "go.uber.org/zap"

// OnFileChanged invalidates everything that depends on a changed file.
// When the path is a settings descriptor its parsed form is evicted; every
// entity tracking the path drops back to the default placeholder in the
// unloaded state and must be re-requested. A conversion already in flight
// for such an entity is left to finish and its result is discarded.
//
// Paths nothing depends on are ignored, so the method can be wired
// directly to a filesystem watcher.
func (m *Manager) OnFileChanged(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.resolver.Invalidate(path)

	set, ok := m.tracked[path]
	if !ok {
		return
	}

	reset := 0
	for key := range set {
		t, ok := m.registry[key]
		if !ok {
			// Interest outlived the entity; drop the stale key.
			delete(set, key)
			continue
		}
		t.state = StateUnloaded
		t.setHandleLocked(m.defaultHandle, false)
		reset++
	}

	if reset > 0 {
		m.log.Info("textures invalidated",
			zap.String("path", path),
			zap.Int("count", reset))
	}
}
