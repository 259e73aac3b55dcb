package convert

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash"
	"path"

	"github.com/tailscale/hujson"
)

// SettingsFileName is the per-directory conversion descriptor file.
const SettingsFileName = "textures.hujson"

// Settings are the effective conversion parameters for one source file.
type Settings struct {
	// Mipmaps generates a full mip chain down to 1x1.
	Mipmaps bool
	// MaxSize caps the longest edge in pixels. Zero means unlimited.
	MaxSize int
	// StripAlpha forces the artifact fully opaque.
	StripAlpha bool
	// NormalMap switches resampling to a filter that does not overshoot,
	// since ringing artifacts corrupt encoded normals.
	NormalMap bool
}

// DefaultSettings returns the parameters used when no descriptor matches.
func DefaultSettings() Settings {
	return Settings{Mipmaps: true}
}

// Hash feeds the settings into h in a fixed byte order, so equal settings
// always produce equal digests.
func (s Settings) Hash(h hash.Hash) {
	var buf [7]byte
	buf[0] = b2i(s.Mipmaps)
	binary.LittleEndian.PutUint32(buf[1:5], uint32(s.MaxSize))
	buf[5] = b2i(s.StripAlpha)
	buf[6] = b2i(s.NormalMap)
	h.Write(buf[:])
}

func b2i(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// Partial is one descriptor rule's contribution: only the fields present
// in the file override the merged value.
type Partial struct {
	Mipmaps    *bool `json:"mipmaps"`
	MaxSize    *int  `json:"maxSize"`
	StripAlpha *bool `json:"stripAlpha"`
	NormalMap  *bool `json:"normalMap"`
}

func (p Partial) apply(s *Settings) {
	if p.Mipmaps != nil {
		s.Mipmaps = *p.Mipmaps
	}
	if p.MaxSize != nil {
		s.MaxSize = *p.MaxSize
	}
	if p.StripAlpha != nil {
		s.StripAlpha = *p.StripAlpha
	}
	if p.NormalMap != nil {
		s.NormalMap = *p.NormalMap
	}
}

// Rule pairs a filename glob with the settings it contributes.
type Rule struct {
	Match string `json:"match"`
	Partial
}

// SettingsFile is one parsed descriptor.
type SettingsFile struct {
	Rules []Rule `json:"rules"`
}

// ParseSettingsFile parses a descriptor. Descriptors are JSONC, so
// hand-edited files may carry comments and trailing commas.
func ParseSettingsFile(data []byte) (*SettingsFile, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("convert: invalid descriptor: %w", err)
	}
	var f SettingsFile
	if err := json.Unmarshal(standardized, &f); err != nil {
		return nil, fmt.Errorf("convert: invalid descriptor: %w", err)
	}
	for i, r := range f.Rules {
		if _, err := path.Match(r.Match, "probe"); err != nil {
			return nil, fmt.Errorf("convert: rule %d pattern %q: %w", i, r.Match, err)
		}
	}
	return &f, nil
}

// ComputeSettings merges descriptors into the effective settings for a
// file. Files are applied in order, root first, so later (deeper)
// descriptors override earlier ones; within a file, rules apply top to
// bottom. Patterns match the bare filename.
func ComputeSettings(name string, files []*SettingsFile) Settings {
	s := DefaultSettings()
	for _, f := range files {
		if f == nil {
			continue
		}
		for _, r := range f.Rules {
			if ok, _ := path.Match(r.Match, name); ok {
				r.apply(&s)
			}
		}
	}
	return s
}
