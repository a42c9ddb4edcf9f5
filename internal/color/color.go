// Package color assigns colors to tree nodes and turns color values into
// canvas fills and CSS backgrounds.
package color

import (
	"fmt"
	"math"
	"strconv"

	"github.com/lumipallolabs/nanovis/internal/model"
)

// Fallback is the color for nodes without an assignment
const Fallback = "#CCC"

// Getter maps a node to its color. A zero result means the palette
// fallback should be used.
type Getter func(*model.Node) model.Color

// HueAngleToColor maps an angle in radians to an hsl() color
func HueAngleToColor(angle float64) string {
	return HueAngleToColorScaled(angle, 1, 1)
}

// HueAngleToColorScaled is HueAngleToColor with saturation and lightness
// multipliers.
func HueAngleToColorScaled(angle, saturation, lightness float64) string {
	s := (0.6 + 0.4*math.Max(0, math.Cos(angle))) * saturation
	l := (0.5 + 0.2*math.Max(0, math.Cos(angle+math.Pi*2/3))) * lightness
	deg := strconv.FormatFloat(angle*180/math.Pi, 'f', -1, 64)
	return fmt.Sprintf("hsl(%sdeg, %d%%, %d%%)", deg, percent(s), percent(l))
}

func percent(v float64) int {
	return int(math.Floor(100*v + 0.5))
}

// FromMap returns a getter reading colors by node ID, falling back to the
// node's own color.
func FromMap(colors map[string]model.Color) Getter {
	return func(n *model.Node) model.Color {
		if n.ID != "" {
			if c, ok := colors[n.ID]; ok && !c.IsZero() {
				return c
			}
		}
		return n.Color
	}
}

type spectrumConfig struct {
	saturation float64
	lightness  float64
}

// SpectrumOption tunes Spectrum
type SpectrumOption func(*spectrumConfig)

// WithSaturation multiplies the saturation of every assigned color
func WithSaturation(m float64) SpectrumOption {
	return func(c *spectrumConfig) { c.saturation = m }
}

// WithLightness multiplies the lightness of every assigned color
func WithLightness(m float64) SpectrumOption {
	return func(c *spectrumConfig) { c.lightness = m }
}

// Spectrum colors a tree by angular subdivision. The root owns the whole
// circle; each child takes a share of its parent's sweep proportional to
// its size, and every node gets the hue at the middle of its sweep.
func Spectrum(tree *model.Tree, opts ...SpectrumOption) Getter {
	cfg := spectrumConfig{saturation: 1, lightness: 1}
	for _, opt := range opts {
		opt(&cfg)
	}
	colors := make(map[string]model.Color)
	if tree != nil && tree.Root != nil {
		assignByDirectory(colors, tree.Root, 0, 2*math.Pi, cfg)
	}
	return FromMap(colors)
}

func assignByDirectory(colors map[string]model.Color, n *model.Node, start, sweep float64, cfg spectrumConfig) {
	colors[n.ID] = model.Solid(HueAngleToColorScaled(start+sweep/2, cfg.saturation, cfg.lightness))

	total := float64(n.Size)
	if total <= 0 {
		total = 1
	}
	for _, child := range n.Children {
		childSweep := float64(child.Size) / total * sweep
		assignByDirectory(colors, child, start, childSweep, cfg)
		start += childSweep
	}
}
