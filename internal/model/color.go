package model

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Color is a node color: a single CSS color, or two colors painted as a
// diagonal two-tone stripe pattern. The zero value means "no color".
type Color struct {
	Primary   string
	Secondary string
}

// Solid returns a single-color value
func Solid(css string) Color {
	return Color{Primary: css}
}

// Stripes returns a two-tone pattern value
func Stripes(a, b string) Color {
	return Color{Primary: a, Secondary: b}
}

// IsZero reports whether no color is set
func (c Color) IsZero() bool {
	return c.Primary == ""
}

// IsPattern reports whether the color is a stripe pair
func (c Color) IsPattern() bool {
	return c.Primary != "" && c.Secondary != ""
}

// Or returns c, or fallback when c is unset
func (c Color) Or(fallback Color) Color {
	if c.IsZero() {
		return fallback
	}
	return c
}

func (c Color) String() string {
	if c.IsPattern() {
		return "[" + c.Primary + ", " + c.Secondary + "]"
	}
	return c.Primary
}

// UnmarshalYAML accepts either a string or a two-element list
func (c *Color) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*c = Solid(value.Value)
		return nil
	case yaml.SequenceNode:
		var pair []string
		if err := value.Decode(&pair); err != nil {
			return err
		}
		switch len(pair) {
		case 1:
			*c = Solid(pair[0])
		case 2:
			*c = Stripes(pair[0], pair[1])
		default:
			return fmt.Errorf("line %d: color list must have 1 or 2 entries, got %d", value.Line, len(pair))
		}
		return nil
	}
	return fmt.Errorf("line %d: color must be a string or a list of two strings", value.Line)
}

// MarshalYAML writes a string or a two-element list
func (c Color) MarshalYAML() (any, error) {
	if c.IsPattern() {
		return []string{c.Primary, c.Secondary}, nil
	}
	return c.Primary, nil
}
