package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/screenfx/engine/core"
	"github.com/spaghettifunk/screenfx/engine/features"
	"github.com/spaghettifunk/screenfx/engine/math"
	"github.com/spaghettifunk/screenfx/engine/renderer/metadata"
)

const (
	MaxPoolSize       = 1024
	MaxTargetSize     = 8192
	MaxWorkers        = 256
	DefaultPoolSize   = 16
	DefaultShaderSize = 64
)

/** @brief The settings file of the engine and the testbed. */
type Config struct {
	Logging   LoggingConfig   `toml:"logging"`
	Resources ResourcesConfig `toml:"resources"`
	Testbed   TestbedConfig   `toml:"testbed"`
	Features  FeaturesConfig  `toml:"features"`
}

type LoggingConfig struct {
	/** @brief debug, info, warn or error. */
	Level        string `toml:"level"`
	ReportCaller bool   `toml:"report_caller"`
}

type ResourcesConfig struct {
	/** @brief Number of distinct descriptors whose free buffers are kept for reuse. */
	PoolSize       int `toml:"pool_size"`
	MaxShaderCount int `toml:"max_shader_count"`
	/** @brief Workers of the software backend, 0 means one per CPU. */
	Workers int `toml:"workers"`
}

type TestbedConfig struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Frames int    `toml:"frames"`
	Output string `toml:"output"`
}

type FeaturesConfig struct {
	Blur  BlurConfig  `toml:"blur"`
	Depth DepthConfig `toml:"depth"`
}

type BlurConfig struct {
	Enabled      bool                     `toml:"enabled"`
	Event        metadata.RenderPassEvent `toml:"event"`
	Downsample   int                      `toml:"downsample"`
	BlurStrength int                      `toml:"blur_strength"`
	FilterMode   metadata.FilterMode      `toml:"filter_mode"`
	Shader       string                   `toml:"shader"`
}

type DepthConfig struct {
	Enabled    bool                     `toml:"enabled"`
	Event      metadata.RenderPassEvent `toml:"event"`
	FilterMode metadata.FilterMode      `toml:"filter_mode"`
	Shader     string                   `toml:"shader"`
}

// Default returns the settings used when no file is given.
func Default() *Config {
	blur := features.DefaultBlurSettings()
	depth := features.DefaultDepthSettings()
	return &Config{
		Logging: LoggingConfig{
			Level: "info",
		},
		Resources: ResourcesConfig{
			PoolSize:       DefaultPoolSize,
			MaxShaderCount: DefaultShaderSize,
		},
		Testbed: TestbedConfig{
			Width:  320,
			Height: 180,
			Frames: 3,
			Output: "screenfx.png",
		},
		Features: FeaturesConfig{
			Blur: BlurConfig{
				Enabled:      true,
				Event:        blur.Event,
				Downsample:   blur.Downsample,
				BlurStrength: blur.BlurStrength,
				FilterMode:   blur.FilterMode,
				Shader:       blur.Shader,
			},
			Depth: DepthConfig{
				Enabled:    true,
				Event:      depth.Event,
				FilterMode: depth.FilterMode,
				Shader:     depth.Shader,
			},
		},
	}
}

// Load reads the settings file at path on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings '%s': %w", path, err)
	}
	cfg, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("settings '%s': %w", path, err)
	}
	return cfg, nil
}

// Parse decodes settings from r. Keys that are missing keep their default,
// unknown keys and unknown enum names are errors, out of range integers are
// clamped.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(r).DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("%w: %s", core.ErrInvalidSettings, strict.String())
		}
		return nil, fmt.Errorf("%w: %s", core.ErrInvalidSettings, err)
	}
	cfg.Sanitize()
	return cfg, nil
}

// Sanitize clamps every integer setting into its range.
func (c *Config) Sanitize() {
	c.Resources.PoolSize = clampSetting("resources.pool_size", c.Resources.PoolSize, 1, MaxPoolSize)
	c.Resources.MaxShaderCount = clampSetting("resources.max_shader_count", c.Resources.MaxShaderCount, 1, 1<<16-1)
	c.Resources.Workers = clampSetting("resources.workers", c.Resources.Workers, 0, MaxWorkers)
	c.Testbed.Width = clampSetting("testbed.width", c.Testbed.Width, 1, MaxTargetSize)
	c.Testbed.Height = clampSetting("testbed.height", c.Testbed.Height, 1, MaxTargetSize)
	c.Testbed.Frames = clampSetting("testbed.frames", c.Testbed.Frames, 1, 1<<20)

	blur := c.BlurSettings()
	c.Features.Blur.Downsample = blur.Downsample
	c.Features.Blur.BlurStrength = blur.BlurStrength
	c.Features.Blur.Shader = blur.Shader
	c.Features.Depth.Shader = c.DepthSettings().Shader
}

func (c *Config) BlurSettings() features.BlurSettings {
	return features.BlurSettings{
		Event:        c.Features.Blur.Event,
		Downsample:   c.Features.Blur.Downsample,
		BlurStrength: c.Features.Blur.BlurStrength,
		FilterMode:   c.Features.Blur.FilterMode,
		Shader:       c.Features.Blur.Shader,
	}.Sanitize()
}

func (c *Config) DepthSettings() features.DepthSettings {
	return features.DepthSettings{
		Event:      c.Features.Depth.Event,
		FilterMode: c.Features.Depth.FilterMode,
		Shader:     c.Features.Depth.Shader,
	}.Sanitize()
}

func (c *Config) LogConfig() core.LogConfig {
	return core.LogConfig{
		Level:        c.Logging.Level,
		ReportCaller: c.Logging.ReportCaller,
	}
}

func clampSetting(name string, v, low, high int) int {
	clamped := math.Clamp(v, low, high)
	if clamped != v {
		core.LogWarn("setting %s=%d out of range [%d, %d], using %d", name, v, low, high, clamped)
	}
	return clamped
}
