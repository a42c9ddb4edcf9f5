package graph

import "github.com/lumipallolabs/nanovis/internal/canvas"

// SetFont switches the canvas font and the width cache that goes with it
func (c *Context) SetFont(f canvas.Font) {
	c.font = f
	c.Canvas.SetFont(f)
	key := fontKey{font: f.Key(), scale: c.Canvas.Scale()}
	widths, ok := c.fontWidths[key]
	if !ok {
		widths = make(map[rune]float64)
		c.fontWidths[key] = widths
	}
	c.widths = widths
	c.ellipsisWidth = 3 * c.RuneWidth('.')
}

// Font returns the active font
func (c *Context) Font() canvas.Font {
	return c.font
}

// RuneWidth measures r in the active font, caching the result
func (c *Context) RuneWidth(r rune) float64 {
	if w, ok := c.widths[r]; ok {
		return w
	}
	w := c.Canvas.MeasureText(string(r))
	c.widths[r] = w
	return w
}

// EllipsisWidth is the width of "..." in the active font
func (c *Context) EllipsisWidth() float64 {
	return c.ellipsisWidth
}

// TextOverflowEllipsis shortens text to fit in width, ending it with
// "..." when cut. It returns the text and its measured width.
func (c *Context) TextOverflowEllipsis(text string, width float64) (string, float64) {
	if width < c.ellipsisWidth {
		return "", 0
	}
	textWidth := 0.0
	for i, r := range text {
		w := c.RuneWidth(r)
		if width < textWidth+c.ellipsisWidth+w {
			return text[:i] + "...", textWidth + c.ellipsisWidth
		}
		textWidth += w
	}
	return text, textWidth
}
