package canvas

import (
	"image/color"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/mattn/go-runewidth"
)

// Terminal paints into a raster at one device pixel per half character
// cell and renders the result with upper half block glyphs. Text is kept
// on a separate cell grid so it stays legible at that resolution.
//
// With a ratio of 1/8 one cell covers 8x16 logical pixels.
type Terminal struct {
	*Raster

	// Background is composited under transparent pixels
	Background string

	cols, rows int
	text       map[int]textCell
}

type textCell struct {
	r     rune
	color string
	alpha float64
	wide  bool
}

// NewTerminal returns an empty terminal canvas
func NewTerminal() *Terminal {
	return &Terminal{
		Raster:     NewRaster(1, 1),
		Background: "#1F1F23",
		text:       make(map[int]textCell),
	}
}

func (t *Terminal) Reset(width, height, ratio float64) {
	t.Raster.Reset(width, height, ratio)
	w, h := t.Raster.Size()
	t.cols = w
	t.rows = (h + 1) / 2
	t.text = make(map[int]textCell)
}

// Cells returns the grid size in character cells
func (t *Terminal) Cells() (cols, rows int) {
	return t.cols, t.rows
}

func (t *Terminal) ClearRect(x, y, w, h float64) {
	t.Raster.ClearRect(x, y, w, h)
	s := t.scale
	c0, c1 := int(math.Floor(x*s)), int(math.Ceil((x+w)*s))
	r0, r1 := int(math.Floor(y*s/2)), int(math.Ceil((y+h)*s/2))
	for key := range t.text {
		col, row := key%t.cols, key/t.cols
		if col >= c0 && col < c1 && row >= r0 && row < r1 {
			delete(t.text, key)
		}
	}
}

func (t *Terminal) MeasureText(s string) float64 {
	return float64(runewidth.StringWidth(s)) / t.scale
}

func (t *Terminal) FillText(s string, x, y float64) {
	if s == "" || t.cols == 0 {
		return
	}
	if t.state.align == AlignCenter {
		x -= t.MeasureText(s) / 2
	}
	col := int(math.Round(x * t.scale))
	row := int(math.Floor(y * t.scale / 2))
	if row < 0 || row >= t.rows {
		return
	}
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if col >= 0 && col+w <= t.cols {
			t.text[row*t.cols+col] = textCell{
				r:     r,
				color: t.state.fill.Color,
				alpha: t.state.alpha,
				wide:  w > 1,
			}
			if w > 1 {
				delete(t.text, row*t.cols+col+1)
			}
		}
		col += w
	}
}

func (t *Terminal) pixel(x, y int, bg colorful.Color) colorful.Color {
	img := t.rgba()
	if img == nil || !inBounds(img.Bounds().Dx(), img.Bounds().Dy(), x, y) {
		return bg
	}
	c := img.RGBAAt(x, y)
	a := float64(c.A) / 255
	return colorful.Color{
		R: float64(c.R)/255 + bg.R*(1-a),
		G: float64(c.G)/255 + bg.G*(1-a),
		B: float64(c.B)/255 + bg.B*(1-a),
	}
}

func inBounds(w, h, x, y int) bool {
	return x >= 0 && y >= 0 && x < w && y < h
}

func toColorful(c color.NRGBA) colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// Render returns the canvas as styled terminal lines
func (t *Terminal) Render() string {
	bg := toColorful(MustParseColor(t.Background))
	var out strings.Builder

	for row := 0; row < t.rows; row++ {
		if row > 0 {
			out.WriteByte('\n')
		}
		var run strings.Builder
		var runStyle lipgloss.Style
		runKey := ""
		flush := func() {
			if run.Len() > 0 {
				out.WriteString(runStyle.Render(run.String()))
				run.Reset()
			}
		}

		for col := 0; col < t.cols; col++ {
			top := t.pixel(col, 2*row, bg)
			bottom := t.pixel(col, 2*row+1, bg)

			var fg, back colorful.Color
			glyph := "▀"
			if cell, ok := t.text[row*t.cols+col]; ok {
				back = top.BlendRgb(bottom, 0.5)
				fg = back.BlendRgb(toColorful(MustParseColor(cell.color)), cell.alpha)
				glyph = string(cell.r)
				if cell.wide {
					col++
				}
			} else {
				fg, back = top, bottom
			}

			key := fg.Clamped().Hex() + back.Clamped().Hex()
			if key != runKey {
				flush()
				runKey = key
				runStyle = lipgloss.NewStyle().
					Foreground(lipgloss.Color(fg.Clamped().Hex())).
					Background(lipgloss.Color(back.Clamped().Hex()))
			}
			run.WriteString(glyph)
		}
		flush()
	}
	return out.String()
}

var _ Canvas = (*Terminal)(nil)
