package color

import (
	"strings"

	"github.com/lumipallolabs/nanovis/internal/model"
)

// Format is a bitmask of module formats found in a subtree
type Format uint8

const (
	CJS Format = 1 << iota
	ESM
)

// ParseFormat reads an esbuild format string. Unknown values yield 0.
func ParseFormat(s string) Format {
	switch strings.ToLower(s) {
	case "cjs":
		return CJS
	case "esm":
		return ESM
	}
	return 0
}

var (
	colorCJS  = model.Solid(HueAngleToColor(3.5))
	colorESM  = model.Solid(HueAngleToColor(1))
	colorBoth = model.Stripes(colorCJS.Primary, colorESM.Primary)
	colorNone = model.Solid(Fallback)
)

// ForFormats returns the color used for a format mask
func ForFormats(f Format) model.Color {
	switch f {
	case 0:
		return colorNone
	case CJS:
		return colorCJS
	case ESM:
		return colorESM
	}
	return colorBoth
}

// Formats colors a tree by module format. Leaves take their format from
// lookup; parents combine the formats of their children.
func Formats(tree *model.Tree, lookup func(*model.Node) Format) Getter {
	colors := make(map[string]model.Color)
	if tree != nil && tree.Root != nil {
		assignByFormat(colors, tree.Root, lookup)
	}
	return FromMap(colors)
}

func assignByFormat(colors map[string]model.Color, n *model.Node, lookup func(*model.Node) Format) Format {
	var formats Format
	for _, child := range n.Children {
		formats |= assignByFormat(colors, child, lookup)
	}
	if n.IsLeaf() {
		formats = lookup(n) & (CJS | ESM)
	}
	colors[n.ID] = ForFormats(formats)
	return formats
}

// ModuleTypeLabel describes the formats a color stands for, e.g.
// "ESM & CJS". Colors not produced by Formats yield "".
func ModuleTypeLabel(c model.Color, prefix string) string {
	switch c {
	case model.Color{}, colorNone:
		return ""
	case colorESM:
		return prefix + "ESM"
	case colorCJS:
		return prefix + "CJS"
	case colorBoth:
		return prefix + "ESM & CJS"
	}
	return ""
}
