// Package config loads stitching presets from YAML files.
//
// A preset holds the layout options and export settings that would otherwise
// be passed as flags. Flags given on the command line override preset values.
//
// Example preset:
//
//	layout:
//	  direction: horizontal
//	  reference_edge: min
//	  spacing: 8
//	  background: "#202020"
//	export:
//	  dir: ./out
//	  format: jpg
//	  start_index: 1
//	  auto_reset: false
//	  quality: 90
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/image-stitch/internal/imaging"
)

// EnvLogLevel names the environment variable that selects debug logging.
const EnvLogLevel = "IMAGE_STITCH_LOG_LEVEL"

// Config represents a stitching preset
type Config struct {
	Layout LayoutConfig `yaml:"layout"`
	Export ExportConfig `yaml:"export"`
}

// LayoutConfig mirrors imaging.LayoutConfig with YAML-friendly field types.
type LayoutConfig struct {
	Direction        string `yaml:"direction"`
	ReferenceEdge    string `yaml:"reference_edge"`
	Spacing          int    `yaml:"spacing"`
	Background       string `yaml:"background"`
	KeepOriginalSize bool   `yaml:"keep_original_size"`
}

// ExportConfig controls where and how compositions are written.
type ExportConfig struct {
	// Dir enables auto-increment export (1.png, 2.png, ...) into this directory.
	Dir        string `yaml:"dir"`
	Format     string `yaml:"format"`
	StartIndex int    `yaml:"start_index"`
	// AutoReset returns the index to 1 after every successful export.
	AutoReset bool `yaml:"auto_reset"`
	Quality   int  `yaml:"quality"`
}

// Default returns the settings used when no preset is given.
func Default() *Config {
	return &Config{
		Layout: LayoutConfig{
			Direction:     imaging.Vertical.String(),
			ReferenceEdge: imaging.EdgeMax.String(),
			Background:    "#FFFFFF",
		},
		Export: ExportConfig{
			Format:     imaging.PNG.String(),
			StartIndex: 1,
			Quality:    imaging.DefaultQuality,
		},
	}
}

// Load reads a preset file and overlays it on Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks every field that has a restricted set of values.
func (c *Config) Validate() error {
	var errs []error
	if _, err := c.Layout.Compile(); err != nil {
		errs = append(errs, err)
	}
	if _, err := imaging.ParseFormat(c.Export.Format); err != nil {
		errs = append(errs, fmt.Errorf("export.format: %w", err))
	}
	if c.Export.StartIndex < 1 {
		errs = append(errs, fmt.Errorf("export.start_index must be >= 1, got %d", c.Export.StartIndex))
	}
	if c.Export.Quality < 0 || c.Export.Quality > 100 {
		errs = append(errs, fmt.Errorf("export.quality must be 0-100, got %d", c.Export.Quality))
	}
	return errors.Join(errs...)
}

// Compile converts the preset into the compositor's configuration.
func (l LayoutConfig) Compile() (imaging.LayoutConfig, error) {
	dir, err := imaging.ParseDirection(l.Direction)
	if err != nil {
		return imaging.LayoutConfig{}, fmt.Errorf("layout.direction: %w", err)
	}
	edge, err := imaging.ParseReferenceEdge(l.ReferenceEdge)
	if err != nil {
		return imaging.LayoutConfig{}, fmt.Errorf("layout.reference_edge: %w", err)
	}
	bg, err := imaging.ParseColor(l.Background)
	if err != nil {
		return imaging.LayoutConfig{}, fmt.Errorf("layout.background: %w", err)
	}

	out := imaging.LayoutConfig{
		Direction:        dir,
		ReferenceEdge:    edge,
		Spacing:          l.Spacing,
		Background:       bg,
		KeepOriginalSize: l.KeepOriginalSize,
	}
	if err := out.Validate(); err != nil {
		return imaging.LayoutConfig{}, fmt.Errorf("layout: %w", err)
	}
	return out, nil
}

// Debug reports whether the environment asks for debug logging.
func Debug() bool {
	return os.Getenv(EnvLogLevel) == "debug"
}
