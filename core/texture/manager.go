package texture

import (
	"fmt"
	"image/color"
	"sync"

	"go.uber.org/zap"

	"texture-manager/core/codec"
	"texture-manager/core/convert"
	"texture-manager/core/vfs"
)

// errorTexturePath is the reserved path of the persistent error entity.
const errorTexturePath = "(error texture)"

// Manager owns the texture registry and the conversion pipeline. All
// methods are safe for concurrent use; the conversion worker itself never
// touches manager state, it only reports results that Advance applies.
type Manager struct {
	mu    sync.Mutex
	fs    vfs.FS
	codec *codec.Codec
	log   *zap.Logger

	resolver  *convert.Resolver
	converter *convert.Converter[conversionJob]

	registry map[Properties]*Texture
	order    []*Texture
	tracked  map[string]map[Properties]struct{}

	defaultHandle *codec.Handle
	errorHandle   *codec.Handle
	errorTexture  *Texture
	closed        bool
}

// conversionJob ties a converter result back to its entity.
type conversionJob struct {
	tex  *Texture
	dest string
}

// Stats is a snapshot of the manager for monitoring.
type Stats struct {
	Textures      int            `json:"textures"`
	States        map[string]int `json:"states"`
	TrackedPaths  int            `json:"trackedPaths"`
	ConverterBusy bool           `json:"converterBusy"`
}

// NewManager builds a Manager with its placeholder textures uploaded and
// the conversion worker running. log may be nil.
func NewManager(fs vfs.FS, c *codec.Codec, log *zap.Logger) (*Manager, error) {
	if log == nil {
		log = zap.NewNop()
	}

	placeholder := codec.Sampler{Filter: codec.FilterLinear, Wrap: codec.WrapRepeat, Anisotropy: 1}

	defaultHandle, err := c.Wrap(codec.SolidImage(color.NRGBA{R: 64, G: 64, B: 64, A: 255}), placeholder)
	if err != nil {
		return nil, fmt.Errorf("texture: default placeholder: %w", err)
	}
	errorHandle, err := c.Wrap(codec.SolidImage(color.NRGBA{R: 255, G: 0, B: 255, A: 255}), placeholder)
	if err != nil {
		defaultHandle.Release()
		return nil, fmt.Errorf("texture: error placeholder: %w", err)
	}

	m := &Manager{
		fs:            fs,
		codec:         c,
		log:           log,
		resolver:      convert.NewResolver(fs, log),
		converter:     convert.NewConverter[conversionJob](),
		registry:      make(map[Properties]*Texture),
		tracked:       make(map[string]map[Properties]struct{}),
		defaultHandle: defaultHandle,
		errorHandle:   errorHandle,
	}

	// The error entity lives outside the registry so looking up a real
	// path can never collide with it.
	m.errorTexture = &Texture{
		m:      m,
		props:  Properties{Path: errorTexturePath, Sampler: codec.DefaultSampler()},
		state:  StateLoaded,
		handle: errorHandle.Retain(),
	}

	return m, nil
}

// GetOrCreate returns the entity for the given properties, creating it in
// the unloaded state on first request. The entity's source path is
// registered for hotloading immediately.
func (m *Manager) GetOrCreate(props Properties) *Texture {
	m.mu.Lock()
	defer m.mu.Unlock()

	if t, ok := m.registry[props]; ok {
		return t
	}

	t := &Texture{
		m:      m,
		props:  props,
		state:  StateUnloaded,
		handle: m.defaultHandle.Retain(),
	}
	m.registry[props] = t
	m.order = append(m.order, t)
	m.trackLocked(props.Path, props)

	m.log.Debug("texture registered",
		zap.String("path", props.Path),
		zap.Stringer("filter", props.Sampler.Filter))
	return t
}

// ErrorTexture returns the persistent loaded entity showing the error
// placeholder, for callers that need an obviously wrong texture.
func (m *Manager) ErrorTexture() *Texture {
	return m.errorTexture
}

// Range calls fn for each registered entity in creation order until fn
// returns false. The registry is snapshotted first, so fn may call back
// into the manager.
func (m *Manager) Range(fn func(*Texture) bool) {
	m.mu.Lock()
	snapshot := make([]*Texture, len(m.order))
	copy(snapshot, m.order)
	m.mu.Unlock()

	for _, t := range snapshot {
		if !fn(t) {
			return
		}
	}
}

// Stats returns a snapshot of registry and pipeline state.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Stats{
		Textures:      len(m.order),
		States:        make(map[string]int),
		TrackedPaths:  len(m.tracked),
		ConverterBusy: m.converter.Busy(),
	}
	for _, t := range m.order {
		s.States[t.state.String()]++
	}
	return s
}

// Close waits for any in-flight conversion and releases every handle.
// Entities obtained from this manager must not be used afterwards.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.mu.Unlock()

	m.converter.Close()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Drop the result of a conversion that finished during shutdown.
	m.converter.Poll()

	for _, t := range m.order {
		t.setHandleLocked(nil, true)
		t.state = StateUnloaded
	}
	m.errorTexture.setHandleLocked(nil, true)
	m.defaultHandle.Release()
	m.errorHandle.Release()
}

// trackLocked records that the entity identified by key depends on path.
func (m *Manager) trackLocked(path string, key Properties) {
	set := m.tracked[path]
	if set == nil {
		set = make(map[Properties]struct{})
		m.tracked[path] = set
	}
	set[key] = struct{}{}
}

// settingsLocked resolves conversion settings for an entity, registering
// every consulted descriptor path for hotloading along the way.
func (m *Manager) settingsLocked(t *Texture) convert.Settings {
	return m.resolver.Settings(t.props.Path, func(descriptorPath string) {
		m.trackLocked(descriptorPath, t.props)
	})
}
