package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hexview/renderer"
	"hexview/scene"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	pp, err := cfg.Renderer()
	require.NoError(t, err)
	assert.Equal(t, renderer.DefaultPostProcessConfig(), pp)
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewer.yaml")
	doc := `
window:
  width: 1920
  height: 1080
postprocess:
  blur_passes: 4
  tone_mapper: exposure
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1920, cfg.Window.Width)
	assert.Equal(t, "hexview", cfg.Window.Title, "unset keys keep their default")
	assert.True(t, cfg.Window.VSync)
	assert.Equal(t, "debug", cfg.Log.Level)

	pp, err := cfg.Renderer()
	require.NoError(t, err)
	assert.Equal(t, 4, pp.BlurPasses)
	assert.Equal(t, renderer.ToneMapExposure, pp.ToneMapper)
	assert.Equal(t, float32(2.2), pp.Gamma)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	cfg := Default()
	err := Decode(strings.NewReader("windoww:\n  width: 3\n"), &cfg)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"window", func(c *Config) { c.Window.Height = 0 }},
		{"shader root", func(c *Config) { c.Shaders.Root = "" }},
		{"log level", func(c *Config) { c.Log.Level = "loud" }},
		{"odd blur passes", func(c *Config) { c.PostProcess.BlurPasses = 7 }},
		{"tone mapper", func(c *Config) { c.PostProcess.ToneMapper = "aces" }},
		{"texture size", func(c *Config) { c.Textures.MaxSize = -1 }},
		{"instances", func(c *Config) { c.Instances.Rows = -2 }},
		{"too many lights", func(c *Config) { c.Lights.Points = renderer.MaxPointLights + 1 }},
		{"negative day length", func(c *Config) { c.Lights.DayLength = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestLoadInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("lights:\n  points: 99\n"), 0o644))
	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestShippedConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "viewer.yaml"))
	require.NoError(t, err)
	assert.Equal(t, float32(120), cfg.Lights.DayLength)
	assert.True(t, cfg.Log.Development)

	pp, err := cfg.Renderer()
	require.NoError(t, err)
	assert.Equal(t, renderer.DefaultPostProcessConfig(), pp)
}

func TestDefaultTexturesShipped(t *testing.T) {
	tex := Default().Textures
	for path, channels := range map[string]int{tex.Diffuse: 3, tex.Normal: 3, tex.Height: 1} {
		img, err := scene.LoadImage(filepath.Join("..", "..", path), true)
		require.NoError(t, err, path)
		assert.Equal(t, channels, img.Channels, path)
		assert.LessOrEqual(t, img.Width, tex.MaxSize, path)
	}
}
