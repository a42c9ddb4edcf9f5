package graph

import (
	"time"

	"github.com/lumipallolabs/nanovis/internal/color"
	"github.com/lumipallolabs/nanovis/internal/model"
)

// Default animation settings
const (
	DefaultAnimateDuration      = 350 * time.Millisecond
	DefaultSelectedPaddingRatio = 0.2
)

// Palette holds the CSS colors a chart paints with
type Palette struct {
	Fallback string `toml:"fallback"`
	Stroke   string `toml:"stroke"`
	Hover    string `toml:"hover"`
	Shadow   string `toml:"shadow"`
	Text     string `toml:"text"`
	Fg       string `toml:"fg"`
	Bg       string `toml:"bg"`
}

// DefaultPalette returns the light palette
func DefaultPalette() Palette {
	return Palette{
		Fallback: color.Fallback,
		Stroke:   "#222",
		Hover:    "rgba(255, 255, 255, 0.3)",
		Shadow:   "rgba(0, 0, 0, 0.5)",
		Text:     "#000",
		Fg:       "#222",
		Bg:       "#fff",
	}
}

// DarkPalette returns a palette for dark backgrounds
func DarkPalette() Palette {
	return Palette{
		Fallback: color.Fallback,
		Stroke:   "#222",
		Hover:    "rgba(255, 255, 255, 0.3)",
		Shadow:   "rgba(0, 0, 0, 0.5)",
		Text:     "#000",
		Fg:       "#ddd",
		Bg:       "#191919",
	}
}

// Merge fills the empty fields of p from def
func (p Palette) Merge(def Palette) Palette {
	fill := func(v *string, d string) {
		if *v == "" {
			*v = d
		}
	}
	fill(&p.Fallback, def.Fallback)
	fill(&p.Stroke, def.Stroke)
	fill(&p.Hover, def.Hover)
	fill(&p.Shadow, def.Shadow)
	fill(&p.Text, def.Text)
	fill(&p.Fg, def.Fg)
	fill(&p.Bg, def.Bg)
	return p
}

// Options configures a chart. Start from DefaultOptions; a zero duration
// and a padding ratio outside [0, 1) are replaced by the defaults. A zero
// padding ratio focuses nodes onto the whole canvas.
type Options struct {
	// GetColor defaults to spectrum coloring of the tree
	GetColor color.Getter
	// GetText and GetSubtext default to the node's Text and Subtext
	GetText    func(*model.Node) string
	GetSubtext func(*model.Node) string

	Palette Palette
	// SchemePalette, when set, is consulted on color scheme changes
	SchemePalette func() Palette

	Animate              bool
	AnimateDuration      time.Duration
	SelectedPaddingRatio float64

	OnHover  func(node *model.Node, p *Pointer)
	OnClick  func(node *model.Node, p *Pointer)
	OnLeave  func(p *Pointer)
	OnSelect func(node *model.Node)
}

// DefaultOptions returns animated options with the default palette
func DefaultOptions() Options {
	return Options{
		Palette:              DefaultPalette(),
		Animate:              true,
		AnimateDuration:      DefaultAnimateDuration,
		SelectedPaddingRatio: DefaultSelectedPaddingRatio,
	}
}

func (o Options) withDefaults(tree *model.Tree) Options {
	if o.GetColor == nil {
		o.GetColor = color.Spectrum(tree)
	}
	if o.GetText == nil {
		o.GetText = func(n *model.Node) string { return n.Text }
	}
	if o.GetSubtext == nil {
		o.GetSubtext = func(n *model.Node) string { return n.Subtext }
	}
	if o.AnimateDuration <= 0 {
		o.AnimateDuration = DefaultAnimateDuration
	}
	if !(o.SelectedPaddingRatio >= 0 && o.SelectedPaddingRatio < 1) {
		o.SelectedPaddingRatio = DefaultSelectedPaddingRatio
	}
	o.Palette = o.Palette.Merge(DefaultPalette())
	return o
}
