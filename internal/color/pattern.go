package color

import (
	"math"

	"github.com/lumipallolabs/nanovis/internal/canvas"
	"github.com/lumipallolabs/nanovis/internal/model"
)

// patternSize is the logical edge length of the stripe texture
const patternSize = 64

// PatternCache turns color values into canvas fills. Stripe pairs are
// baked into a repeating texture that is rebuilt only when the target
// canvas, pixel ratio, zoom scale or colors change.
type PatternCache struct {
	target  canvas.Canvas
	ratio   float64
	scale   float64
	colors  model.Color
	pattern canvas.Pattern

	// texture to logical scale, including the texture's own pixel density
	patternScale float64
}

// Fill returns the paint for value. Solid colors pass through. For stripe
// pairs, originX and originY anchor the texture and scale is the current
// zoom factor of the content being painted.
func (pc *PatternCache) Fill(value model.Color, c canvas.Canvas, ratio, originX, originY, scale float64) canvas.Paint {
	if !value.IsPattern() {
		return canvas.Paint{Color: value.Primary}
	}
	if ratio <= 0 {
		ratio = 1
	}
	if pc.pattern == nil || pc.target != c || pc.ratio != ratio || pc.scale != scale || pc.colors != value {
		pc.build(value, c, ratio, scale)
	}

	// the texture tiles on both axes, so the translation can be kept
	// within one period where the texture lookup stays precise
	period := patternSize * pc.patternScale * ratio
	originX = wrapPeriod(originX, period)
	originY = wrapPeriod(originY, period)

	pc.pattern.SetTransform(pc.patternScale, 0, 0, pc.patternScale, originX, originY)
	return canvas.Paint{Pattern: pc.pattern}
}

func wrapPeriod(v, period float64) float64 {
	if !(period > 0) {
		return v
	}
	return v - math.Floor(v/period)*period
}

func (pc *PatternCache) build(value model.Color, c canvas.Canvas, ratio, scale float64) {
	s := math.Round(patternSize*ratio) / patternSize
	if s <= 0 {
		s = 1.0 / patternSize
	}

	// stripe density follows the fractional octave of the zoom so that
	// doubling the zoom lands on the same texture
	octave := 0.0
	if scale > 0 {
		octave = math.Log2(scale)
		octave -= math.Floor(octave)
	}
	t1 := octave
	t8 := math.Min(1, 8*t1)
	ps := math.Pow(2, octave)
	lineWidth := 8 * math.Sqrt2 / ps

	tex := c.NewOffscreen(1, 1)
	tex.Reset(patternSize, patternSize, s)

	tex.SetFill(canvas.Paint{Color: value.Primary})
	tex.FillRect(0, 0, patternSize, patternSize)
	// blend the two colors so the stripes read at 25% and 75%
	tex.SetAlpha(0.25)
	tex.SetFill(canvas.Paint{Color: value.Secondary})
	tex.FillRect(0, 0, patternSize, patternSize)
	tex.SetAlpha(0.67)
	tex.SetStroke(value.Secondary)

	tex.BeginPath()
	for i := 0.0; i <= patternSize; i += 16 {
		tex.MoveTo(i-32, i+32)
		tex.LineTo(i+32, i-32)
	}
	tex.SetLineWidth(lineWidth * (1 - (t8-t1)/2))
	tex.Stroke()

	if t8+t1 > 0 {
		tex.BeginPath()
		for i := 8.0; i < patternSize; i += 16 {
			tex.MoveTo(i-32, i+32)
			tex.LineTo(i+32, i-32)
		}
		tex.SetLineWidth(lineWidth * (t8 + t1) / 2)
		tex.Stroke()
	}

	pc.target = c
	pc.ratio = ratio
	pc.scale = scale
	pc.colors = value
	pc.pattern = c.CreatePattern(tex)
	pc.patternScale = ps / s
}

// Reset drops the cached texture
func (pc *PatternCache) Reset() {
	*pc = PatternCache{}
}
