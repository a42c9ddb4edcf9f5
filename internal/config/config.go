// Package config loads chart defaults from a TOML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/lumipallolabs/nanovis/internal/chart"
	"github.com/lumipallolabs/nanovis/internal/graph"
)

// Color modes
const (
	ColorSpectrum = "spectrum" // hue by position in the tree
	ColorFormat   = "format"   // esbuild module format, metafiles only
	ColorDiff     = "diff"     // change since the last snapshot
	ColorNode     = "node"     // colors stored on the nodes
)

// Config holds the chart defaults
type Config struct {
	Chart  string  `toml:"chart"`
	Width  int     `toml:"width"`
	Height int     `toml:"height"`
	Ratio  float64 `toml:"ratio"`

	Animate              bool    `toml:"animate"`
	AnimateDurationMS    int     `toml:"animate_duration_ms"`
	SelectedPaddingRatio float64 `toml:"selected_padding_ratio"`

	ColorMode  string  `toml:"color_mode"`
	Saturation float64 `toml:"saturation"`
	Lightness  float64 `toml:"lightness"`

	Dark    bool          `toml:"dark"`
	Palette graph.Palette `toml:"palette"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Chart:                string(chart.Treemap),
		Width:                1200,
		Height:               800,
		Ratio:                1,
		Animate:              true,
		AnimateDurationMS:    int(graph.DefaultAnimateDuration / time.Millisecond),
		SelectedPaddingRatio: graph.DefaultSelectedPaddingRatio,
		ColorMode:            ColorSpectrum,
		Saturation:           1,
		Lightness:            1,
	}
}

// DefaultPath returns the default config file location
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "nanovis.toml"
	}
	return filepath.Join(dir, "nanovis", "config.toml")
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, fmt.Errorf("load config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the enumerated and ranged fields
func (c Config) Validate() error {
	if _, err := chart.ParseKind(c.Chart); err != nil {
		return err
	}
	switch c.ColorMode {
	case ColorSpectrum, ColorFormat, ColorDiff, ColorNode:
	default:
		return fmt.Errorf("unknown color_mode %q", c.ColorMode)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("width and height must be positive, got %dx%d", c.Width, c.Height)
	}
	if c.Ratio <= 0 {
		return fmt.Errorf("ratio must be positive, got %g", c.Ratio)
	}
	if c.SelectedPaddingRatio < 0 || c.SelectedPaddingRatio >= 1 {
		return fmt.Errorf("selected_padding_ratio must be in [0, 1), got %g", c.SelectedPaddingRatio)
	}
	return nil
}

// Kind returns the configured chart type
func (c Config) Kind() chart.Kind {
	k, err := chart.ParseKind(c.Chart)
	if err != nil {
		return chart.Treemap
	}
	return k
}

// Options converts the config to chart options. Colors and callbacks are
// left for the caller.
func (c Config) Options() graph.Options {
	opts := graph.DefaultOptions()
	opts.Animate = c.Animate
	if c.AnimateDurationMS > 0 {
		opts.AnimateDuration = time.Duration(c.AnimateDurationMS) * time.Millisecond
	}
	opts.SelectedPaddingRatio = c.SelectedPaddingRatio

	base := graph.DefaultPalette()
	if c.Dark {
		base = graph.DarkPalette()
		opts.SchemePalette = graph.DarkPalette
	}
	opts.Palette = c.Palette.Merge(base)
	return opts
}
