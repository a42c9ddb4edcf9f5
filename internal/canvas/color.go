package canvas

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

var namedColors = map[string]string{
	"black": "#000000",
	"white": "#ffffff",
	"red":   "#ff0000",
	"green": "#008000",
	"blue":  "#0000ff",
	"gray":  "#808080",
	"grey":  "#808080",
}

// ParseColor converts a CSS color string (hex, rgb(), rgba(), hsl(), hsla()
// or a few names) into a color with straight alpha.
func ParseColor(css string) (color.NRGBA, error) {
	s := strings.ToLower(strings.TrimSpace(css))
	if s == "transparent" {
		return color.NRGBA{}, nil
	}
	if hex, ok := namedColors[s]; ok {
		s = hex
	}

	switch {
	case strings.HasPrefix(s, "#"):
		return parseHex(s)
	case strings.HasPrefix(s, "rgb"):
		args, err := funcArgs(s, "rgba", "rgb")
		if err != nil {
			return color.NRGBA{}, err
		}
		if len(args) != 3 && len(args) != 4 {
			return color.NRGBA{}, fmt.Errorf("invalid color %q", css)
		}
		var rgb [3]float64
		for i := 0; i < 3; i++ {
			v, err := parseNumber(args[i], 255)
			if err != nil {
				return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", css, err)
			}
			rgb[i] = v / 255
		}
		alpha, err := parseAlpha(args, 3)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", css, err)
		}
		return toNRGBA(colorful.Color{R: rgb[0], G: rgb[1], B: rgb[2]}, alpha), nil
	case strings.HasPrefix(s, "hsl"):
		args, err := funcArgs(s, "hsla", "hsl")
		if err != nil {
			return color.NRGBA{}, err
		}
		if len(args) != 3 && len(args) != 4 {
			return color.NRGBA{}, fmt.Errorf("invalid color %q", css)
		}
		h, err := strconv.ParseFloat(strings.TrimSuffix(args[0], "deg"), 64)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid hue in %q: %w", css, err)
		}
		sat, err := parseNumber(args[1], 1)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid saturation in %q: %w", css, err)
		}
		light, err := parseNumber(args[2], 1)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid lightness in %q: %w", css, err)
		}
		alpha, err := parseAlpha(args, 3)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", css, err)
		}
		h = math.Mod(h, 360)
		if h < 0 {
			h += 360
		}
		return toNRGBA(colorful.Hsl(h, clamp01(sat), clamp01(light)), alpha), nil
	}
	return color.NRGBA{}, fmt.Errorf("unsupported color %q", css)
}

// MustParseColor is ParseColor for trusted constants; bad input yields
// opaque magenta so the mistake is visible.
func MustParseColor(css string) color.NRGBA {
	c, err := ParseColor(css)
	if err != nil {
		return color.NRGBA{R: 255, B: 255, A: 255}
	}
	return c
}

// Blend mixes two CSS colors in RGB space and returns a hex string
func Blend(a, b string, t float64) string {
	ca, cb := MustParseColor(a), MustParseColor(b)
	fa, _ := colorful.MakeColor(opaque(ca))
	fb, _ := colorful.MakeColor(opaque(cb))
	return fa.BlendRgb(fb, t).Clamped().Hex()
}

func opaque(c color.NRGBA) color.NRGBA {
	c.A = 255
	return c
}

func parseHex(s string) (color.NRGBA, error) {
	digits := s[1:]
	alpha := 1.0
	switch len(digits) {
	case 3, 4:
		var b strings.Builder
		b.WriteByte('#')
		for _, r := range digits[:3] {
			b.WriteRune(r)
			b.WriteRune(r)
		}
		if len(digits) == 4 {
			v, err := strconv.ParseUint(strings.Repeat(digits[3:], 2), 16, 8)
			if err != nil {
				return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
			}
			alpha = float64(v) / 255
		}
		s = b.String()
	case 6:
	case 8:
		v, err := strconv.ParseUint(digits[6:], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
		}
		alpha = float64(v) / 255
		s = s[:7]
	default:
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, err
	}
	return toNRGBA(c, alpha), nil
}

func funcArgs(s string, names ...string) ([]string, error) {
	for _, name := range names {
		if strings.HasPrefix(s, name+"(") && strings.HasSuffix(s, ")") {
			inner := s[len(name)+1 : len(s)-1]
			inner = strings.ReplaceAll(inner, "/", ",")
			return strings.FieldsFunc(inner, func(r rune) bool { return r == ',' || r == ' ' }), nil
		}
	}
	return nil, fmt.Errorf("unsupported color %q", s)
}

// parseNumber reads "42" relative to max, or "42%" relative to 100
func parseNumber(s string, max float64) (float64, error) {
	if strings.HasSuffix(s, "%") {
		v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		return v / 100 * max, err
	}
	return strconv.ParseFloat(s, 64)
}

func parseAlpha(args []string, i int) (float64, error) {
	if len(args) <= i {
		return 1, nil
	}
	a, err := parseNumber(args[i], 1)
	return clamp01(a), err
}

func toNRGBA(c colorful.Color, alpha float64) color.NRGBA {
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(math.Round(clamp01(alpha) * 255))}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// withAlpha scales the alpha channel of c by a
func withAlpha(c color.NRGBA, a float64) color.NRGBA {
	c.A = uint8(math.Round(float64(c.A) * clamp01(a)))
	return c
}

func formatPx(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
