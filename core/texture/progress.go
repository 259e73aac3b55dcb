package texture

import (
	"go.uber.org/zap"

	"texture-manager/core/convert"
)

// Advance performs one unit of pipeline work and reports whether anything
// was done. Call it repeatedly (typically once or more per frame) until it
// returns false.
//
// Work is strictly prioritized: a finished conversion is applied first,
// then a high-priority conversion is started, then one prefetched entity
// is probed against its caches, and only then is a prefetch conversion
// started. Cache probes proceed even while the converter is busy.
func (m *Manager) Advance() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.advanceLocked()
}

func (m *Manager) advanceLocked() bool {
	if m.closed {
		return false
	}

	if res, ok := m.converter.Poll(); ok {
		m.finishConversionLocked(res)
		return true
	}

	busy := m.converter.Busy()

	if !busy {
		for _, t := range m.order {
			if t.state == StateHighNeedsConverting {
				m.startConversionLocked(t, StateHighIsConverting)
				return true
			}
		}
	}

	for _, t := range m.order {
		if t.state == StatePrefetchNeedsLoading {
			if m.tryLoadCachedLocked(t) {
				t.state = StateLoaded
			} else {
				t.state = StatePrefetchNeedsConverting
			}
			return true
		}
	}

	if !busy {
		for _, t := range m.order {
			if t.state == StatePrefetchNeedsConverting {
				m.startConversionLocked(t, StatePrefetchIsConverting)
				return true
			}
		}
	}

	return false
}

// tryLoadLocked implements TryLoad: load from cache synchronously when
// possible, otherwise escalate to a high-priority conversion request. A
// prefetch that already found the cache missing skips the repeated probe.
func (m *Manager) tryLoadLocked(t *Texture) bool {
	switch t.state {
	case StateUnloaded, StatePrefetchNeedsLoading, StatePrefetchNeedsConverting:
		if t.state != StatePrefetchNeedsConverting && m.tryLoadCachedLocked(t) {
			t.state = StateLoaded
		} else {
			t.state = StateHighNeedsConverting
		}
	}
	return t.state == StateLoaded
}

// tryLoadCachedLocked loads an entity from the best available cache.
// Returning true means the entity is settled, loaded or showing the error
// placeholder; false means no cache exists and conversion is needed.
func (m *Manager) tryLoadCachedLocked(t *Texture) bool {
	src := t.props.Path
	archive := ArchiveCachePath(src)

	if CanUseArchiveCache(m.fs, src, archive) {
		m.loadLocked(t, archive)
		return true
	}

	if !m.fs.Exists(src) {
		m.log.Error("texture source file missing", zap.String("path", src))
		t.setHandleLocked(m.errorHandle, false)
		return true
	}

	loose, err := LooseCachePath(m.fs, src, m.settingsLocked(t))
	if err != nil {
		m.log.Error("texture cache path failed", zap.String("path", src), zap.Error(err))
		t.setHandleLocked(m.errorHandle, false)
		return true
	}
	if m.fs.Exists(loose) {
		m.loadLocked(t, loose)
		return true
	}

	return false
}

// loadLocked loads an artifact or image file into the entity, substituting
// the error placeholder on failure. The caller settles the state.
func (m *Manager) loadLocked(t *Texture, file string) {
	h, err := m.codec.Load(file, t.props.Sampler)
	if err != nil {
		m.log.Error("texture failed to load",
			zap.String("path", t.props.Path),
			zap.String("file", file),
			zap.Error(err))
		t.setHandleLocked(m.errorHandle, false)
		return
	}
	t.setHandleLocked(h, true)
}

// startConversionLocked resolves settings, derives the artifact path and
// hands the job to the converter.
func (m *Manager) startConversionLocked(t *Texture, next State) {
	src := t.props.Path
	settings := m.settingsLocked(t)

	dest, err := LooseCachePath(m.fs, src, settings)
	if err != nil {
		// The source vanished between the cache probe and now.
		m.log.Error("texture conversion aborted", zap.String("path", src), zap.Error(err))
		t.setHandleLocked(m.errorHandle, false)
		t.state = StateLoaded
		return
	}

	t.state = next
	fs := m.fs
	_, err = m.converter.Submit(conversionJob{tex: t, dest: dest}, func() error {
		return convert.ConvertFile(fs, src, dest, settings)
	})
	if err != nil {
		m.log.Warn("converter rejected job", zap.String("path", src), zap.Error(err))
		if next == StateHighIsConverting {
			t.state = StateHighNeedsConverting
		} else {
			t.state = StatePrefetchNeedsConverting
		}
		return
	}

	m.log.Debug("texture conversion started",
		zap.String("path", src),
		zap.String("artifact", dest),
		zap.Stringer("state", next))
}

// finishConversionLocked applies a converter result. A result whose entity
// was hotloaded mid-flight is stale: the entity already shows the
// placeholder again and will re-request with fresh settings, so the result
// is dropped.
func (m *Manager) finishConversionLocked(res convert.Result[conversionJob]) {
	t := res.Owner.tex
	if t.state != StateHighIsConverting && t.state != StatePrefetchIsConverting {
		m.log.Debug("discarding stale conversion result", zap.String("path", t.props.Path))
		return
	}

	if res.Err != nil {
		m.log.Error("texture failed to convert",
			zap.String("path", t.props.Path),
			zap.Error(res.Err))
		t.setHandleLocked(m.errorHandle, false)
	} else {
		m.loadLocked(t, res.Owner.dest)
	}
	t.state = StateLoaded
}
