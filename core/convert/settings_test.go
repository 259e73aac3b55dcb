package convert_test

import (
	"crypto/md5"
	"encoding/hex"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"texture-manager/core/convert"
)

func TestParseSettingsFile(t *testing.T) {
	data := []byte(`{
		// Terrain textures get the full treatment.
		"rules": [
			{"match": "*_norm.png", "normalMap": true},
			{"match": "*.png", "maxSize": 512}, // trailing comma below is fine
		],
	}`)

	f, err := convert.ParseSettingsFile(data)
	require.NoError(t, err)
	require.Len(t, f.Rules, 2)

	assert.Equal(t, "*_norm.png", f.Rules[0].Match)
	require.NotNil(t, f.Rules[0].NormalMap)
	assert.True(t, *f.Rules[0].NormalMap)
	assert.Nil(t, f.Rules[0].MaxSize)

	require.NotNil(t, f.Rules[1].MaxSize)
	assert.Equal(t, 512, *f.Rules[1].MaxSize)
}

func TestParseSettingsFileErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "broken jsonc", data: `{"rules": [`},
		{name: "wrong shape", data: `{"rules": "nope"}`},
		{name: "bad pattern", data: `{"rules": [{"match": "[unclosed"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := convert.ParseSettingsFile([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestComputeSettingsMergesRootToLeaf(t *testing.T) {
	root, err := convert.ParseSettingsFile([]byte(`{
		"rules": [
			{"match": "*", "maxSize": 1024},
			{"match": "*.png", "stripAlpha": true},
		],
	}`))
	require.NoError(t, err)

	leaf, err := convert.ParseSettingsFile([]byte(`{
		"rules": [
			{"match": "grass*", "maxSize": 256, "stripAlpha": false},
		],
	}`))
	require.NoError(t, err)

	tests := []struct {
		name string
		file string
		want convert.Settings
	}{
		{
			name: "leaf overrides root",
			file: "grass_01.png",
			want: convert.Settings{Mipmaps: true, MaxSize: 256, StripAlpha: false},
		},
		{
			name: "root only",
			file: "stone.png",
			want: convert.Settings{Mipmaps: true, MaxSize: 1024, StripAlpha: true},
		},
		{
			name: "non-matching rules skipped",
			file: "ui.tga",
			want: convert.Settings{Mipmaps: true, MaxSize: 1024},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := convert.ComputeSettings(tt.file, []*convert.SettingsFile{root, leaf})
			diff := cmp.Diff(tt.want, got)
			assert.Empty(t, diff, "settings mismatch")
		})
	}
}

func TestComputeSettingsSkipsNilFiles(t *testing.T) {
	got := convert.ComputeSettings("a.png", []*convert.SettingsFile{nil, nil})
	diff := cmp.Diff(convert.DefaultSettings(), got)
	assert.Empty(t, diff)
}

func settingsDigest(s convert.Settings) string {
	h := md5.New()
	s.Hash(h)
	return hex.EncodeToString(h.Sum(nil))
}

func TestSettingsHash(t *testing.T) {
	base := convert.Settings{Mipmaps: true, MaxSize: 512}

	assert.Equal(t, settingsDigest(base), settingsDigest(base), "equal settings must hash equally")

	variants := []convert.Settings{
		{Mipmaps: false, MaxSize: 512},
		{Mipmaps: true, MaxSize: 256},
		{Mipmaps: true, MaxSize: 512, StripAlpha: true},
		{Mipmaps: true, MaxSize: 512, NormalMap: true},
	}
	seen := map[string]bool{settingsDigest(base): true}
	for _, v := range variants {
		d := settingsDigest(v)
		assert.False(t, seen[d], "settings %+v collided with a previous digest", v)
		seen[d] = true
	}
}
