// Package canvas defines the 2D drawing surface the charts paint on and
// the backends implementing it.
//
// The surface follows the immediate-mode model of an HTML canvas: a current
// fill paint, stroke color, global alpha, font and path, a save/restore
// stack, and a device scale applied to all logical coordinates.
package canvas

// Align is the horizontal text anchor
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
)

// Font selects a face. Fonts with the same Key share measurements.
type Font struct {
	Size float64
	Bold bool
}

// Normal is the default chart font
var Normal = Font{Size: 14}

// Bold is the default emphasized font
var Bold = Font{Size: 14, Bold: true}

// Key returns the CSS-like font string
func (f Font) Key() string {
	s := formatPx(f.Size) + "px sans-serif"
	if f.Bold {
		return "bold " + s
	}
	return s
}

// Pattern is a repeating texture usable as a fill
type Pattern interface {
	// SetTransform maps pattern space to logical canvas space using the
	// matrix [a b c d e f] (x' = a*x + c*y + e, y' = b*x + d*y + f).
	SetTransform(a, b, c, d, e, f float64)
}

// Paint is a fill: a CSS color or, when Pattern is set, a texture
type Paint struct {
	Color   string
	Pattern Pattern
}

// Shadow describes a drop shadow for subsequent fills
type Shadow struct {
	Color   string
	Blur    float64
	OffsetX float64
	OffsetY float64
}

// Canvas is a 2D drawing surface.
type Canvas interface {
	// Reset resizes the backing store to round(w*ratio) x round(h*ratio)
	// device pixels, clears it and installs a ratio scale.
	Reset(width, height, ratio float64)
	// Scale returns the current logical to device scale factor.
	Scale() float64
	// Size returns the backing store size in device pixels.
	Size() (width, height int)

	ClearRect(x, y, w, h float64)
	SetFill(p Paint)
	SetStroke(color string)
	SetLineWidth(w float64)
	SetAlpha(a float64)
	SetShadow(s Shadow)
	FillRect(x, y, w, h float64)
	StrokeRect(x, y, w, h float64)

	BeginPath()
	MoveTo(x, y float64)
	LineTo(x, y float64)
	// Arc adds a circular arc from angle a0 to a1, sweeping through the
	// angles in between in whichever direction a0 -> a1 goes.
	Arc(cx, cy, r, a0, a1 float64)
	Fill()
	Stroke()

	SetFont(f Font)
	SetTextAlign(a Align)
	MeasureText(s string) float64
	// FillText draws s with its vertical middle at y.
	FillText(s string, x, y float64)

	Save()
	Restore()

	// NewOffscreen returns a blank surface of the same kind, sized in device
	// pixels, with an identity scale.
	NewOffscreen(width, height int) Canvas
	// CreatePattern captures src as a repeating texture for this canvas.
	CreatePattern(src Canvas) Pattern
	// DrawCanvas copies src onto this canvas at device pixel offset 0,0.
	DrawCanvas(src Canvas)
}
