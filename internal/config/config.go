// Package config loads the viewer configuration from a YAML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"hexview/renderer"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Window      WindowConfig      `yaml:"window"`
	Shaders     ShaderConfig      `yaml:"shaders"`
	Log         LogConfig         `yaml:"log"`
	PostProcess PostProcessConfig `yaml:"postprocess"`
	Textures    TextureConfig     `yaml:"textures"`
	Model       ModelConfig       `yaml:"model"`
	Instances   InstanceConfig    `yaml:"instances"`
	Lights      LightConfig       `yaml:"lights"`
	// StatePath is the program-state file restored at startup and written
	// on exit.
	StatePath string `yaml:"state_path"`
}

type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
	VSync  bool   `yaml:"vsync"`
}

type ShaderConfig struct {
	Root      string `yaml:"root"`
	HotReload bool   `yaml:"hot_reload"`
}

type LogConfig struct {
	// Level is a zap level name: debug, info, warn, error.
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

type PostProcessConfig struct {
	BlurPasses     int     `yaml:"blur_passes"`
	Exposure       float32 `yaml:"exposure"`
	ToneMapper     string  `yaml:"tone_mapper"`
	HDR            bool    `yaml:"hdr"`
	Bloom          bool    `yaml:"bloom"`
	BloomThreshold float32 `yaml:"bloom_threshold"`
	Gamma          float32 `yaml:"gamma"`
}

type TextureConfig struct {
	Diffuse string `yaml:"diffuse"`
	Normal  string `yaml:"normal"`
	Height  string `yaml:"height"`
	// MaxSize downscales larger images; 0 keeps them as they are.
	MaxSize int `yaml:"max_size"`
}

type ModelConfig struct {
	// Path is an optional glTF file drawn next to the hexagons.
	Path  string  `yaml:"path"`
	Scale float32 `yaml:"scale"`
}

type InstanceConfig struct {
	Rows    int     `yaml:"rows"`
	Columns int     `yaml:"columns"`
	Spacing float32 `yaml:"spacing"`
}

type LightConfig struct {
	Points      int     `yaml:"points"`
	OrbitRadius float32 `yaml:"orbit_radius"`
	OrbitSpeed  float32 `yaml:"orbit_speed"`
	// DayLength is the seconds per day/night cycle of the directional
	// light; 0 keeps it fixed.
	DayLength float32 `yaml:"day_length"`
}

func Default() Config {
	pp := renderer.DefaultPostProcessConfig()
	return Config{
		Window: WindowConfig{Width: 1280, Height: 720, Title: "hexview", VSync: true},
		Shaders: ShaderConfig{
			Root:      "resources/shaders",
			HotReload: true,
		},
		Log: LogConfig{Level: "info"},
		PostProcess: PostProcessConfig{
			BlurPasses:     pp.BlurPasses,
			Exposure:       pp.Exposure,
			ToneMapper:     pp.ToneMapper.String(),
			HDR:            pp.HDR,
			Bloom:          pp.Bloom,
			BloomThreshold: pp.BloomThreshold,
			Gamma:          pp.Gamma,
		},
		Textures: TextureConfig{
			Diffuse: "resources/textures/bricks.png",
			Normal:  "resources/textures/bricks_normal.png",
			Height:  "resources/textures/bricks_disp.png",
			MaxSize: 2048,
		},
		Model:     ModelConfig{Scale: 1},
		Instances: InstanceConfig{Rows: 10, Columns: 10, Spacing: 1.1},
		Lights:    LightConfig{Points: 4, OrbitRadius: 3, OrbitSpeed: 0.5},
		StatePath: "hexview.state",
	}
}

// Load reads the YAML file at path over Default. Keys that are absent keep
// their default, unknown keys are an error. A missing file yields the
// defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := Decode(bytes.NewReader(data), &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Decode merges the YAML document in r into cfg.
func Decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	}
	if c.Shaders.Root == "" {
		return fmt.Errorf("%w: empty shader root", ErrInvalid)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if _, err := c.Renderer(); err != nil {
		return fmt.Errorf("%w: postprocess: %w", ErrInvalid, err)
	}
	if c.Textures.MaxSize < 0 {
		return fmt.Errorf("%w: negative texture max size", ErrInvalid)
	}
	if c.Instances.Rows < 0 || c.Instances.Columns < 0 {
		return fmt.Errorf("%w: instance grid %dx%d", ErrInvalid, c.Instances.Rows, c.Instances.Columns)
	}
	if c.Lights.Points < 0 || c.Lights.Points > renderer.MaxPointLights {
		return fmt.Errorf("%w: %d point lights, at most %d", ErrInvalid, c.Lights.Points, renderer.MaxPointLights)
	}
	if c.Lights.DayLength < 0 {
		return fmt.Errorf("%w: negative day length", ErrInvalid)
	}
	return nil
}

// Renderer converts the postprocess section.
func (c Config) Renderer() (renderer.PostProcessConfig, error) {
	tm, err := renderer.ParseToneMapper(c.PostProcess.ToneMapper)
	if err != nil {
		return renderer.PostProcessConfig{}, err
	}
	pp := renderer.PostProcessConfig{
		BlurPasses:     c.PostProcess.BlurPasses,
		Exposure:       c.PostProcess.Exposure,
		ToneMapper:     tm,
		HDR:            c.PostProcess.HDR,
		Bloom:          c.PostProcess.Bloom,
		BloomThreshold: c.PostProcess.BloomThreshold,
		Gamma:          c.PostProcess.Gamma,
	}
	return pp, pp.Validate()
}

// TextureOptions converts the texture section.
func (c Config) TextureOptions() renderer.TextureOptions {
	return renderer.TextureOptions{FlipVertically: true, MaxSize: c.Textures.MaxSize}
}
