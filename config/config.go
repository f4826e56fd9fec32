// Package config handles loading and saving of the exporter configuration.
package config

import (
	"fmt"

	"github.com/achilleasa/nori-export/log"
)

// Config holds all tool settings.
type Config struct {
	Export  ExportConfig  `yaml:"export"`
	Render  RenderConfig  `yaml:"render"`
	Harness HarnessConfig `yaml:"harness"`
	Logging LoggingConfig `yaml:"logging"`
}

// ExportConfig holds the default scene export settings.
type ExportConfig struct {
	Light            bool   `yaml:"light"`
	Samples          int    `yaml:"samples"`
	Output           string `yaml:"output"`
	SkipInvalidFaces bool   `yaml:"skip_invalid_faces"`
}

// RenderConfig overrides the frame size of exported scenes. Zero values keep
// the settings defined by the scene.
type RenderConfig struct {
	ResolutionX int `yaml:"resolution_x"`
	ResolutionY int `yaml:"resolution_y"`
	Percentage  int `yaml:"percentage"`
}

// HarnessConfig holds the renderer test suite settings.
type HarnessConfig struct {
	BuildDir  string `yaml:"build_dir"` // Detected automatically if empty
	ScenesDir string `yaml:"scenes_dir"`
	Renderer  string `yaml:"renderer"`
	WarpTest  string `yaml:"warptest"`

	// Scene files relative to ScenesDir. Empty selects the default suite.
	Scenes []string `yaml:"scenes"`

	// Warp test invocations as shell-style strings, e.g. "beckmann 0.05".
	// Empty selects the default suite.
	Warps []string `yaml:"warps"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Default returns a Config with the default values.
func Default() *Config {
	return &Config{
		Export: ExportConfig{
			Light:   true,
			Samples: 32,
			Output:  "scene.xml",
		},
		Harness: HarnessConfig{
			ScenesDir: "scenes",
			Renderer:  "nori",
			WarpTest:  "warptest",
		},
		Logging: LoggingConfig{
			Level: "notice",
		},
	}
}

// Validate the configuration values.
func (c *Config) Validate() error {
	if c.Export.Samples <= 0 {
		return fmt.Errorf("config: export.samples must be positive; got %d", c.Export.Samples)
	}
	if c.Render.ResolutionX < 0 || c.Render.ResolutionY < 0 || c.Render.Percentage < 0 {
		return fmt.Errorf("config: render settings must not be negative")
	}
	if c.Harness.Renderer == "" || c.Harness.WarpTest == "" {
		return fmt.Errorf("config: harness.renderer and harness.warptest must be set")
	}
	if _, err := log.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
