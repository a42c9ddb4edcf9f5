package canvas

import (
	"math"
	"unicode/utf8"
)

// Op is one recorded drawing call
type Op struct {
	Name  string    // "fillRect", "strokeRect", "fillText", "fill", "stroke", "clearRect", "arc", "moveTo", "lineTo", "drawCanvas"
	Args  []float64 // geometry in logical units
	Text  string    // fillText only
	Fill  Paint     // paint active for fills and text
	Color string    // stroke or shadow color
	Alpha float64
	Font  Font
}

// Recorder is a Canvas that logs every drawing call instead of painting.
// Text measurement uses a fixed advance per rune so results are exact.
type Recorder struct {
	Ops []Op

	width, height int
	scale         float64
	state         recorderState
	stack         []recorderState
	patterns      int
}

type recorderState struct {
	fill      Paint
	stroke    string
	lineWidth float64
	alpha     float64
	shadow    Shadow
	font      Font
	align     Align
}

// Advance widths used by MeasureText
const (
	RecorderCharWidth     = 7
	RecorderBoldCharWidth = 8
)

// NewRecorder returns an empty recorder with an identity scale
func NewRecorder() *Recorder {
	r := &Recorder{scale: 1}
	r.state = recorderState{lineWidth: 1, alpha: 1, font: Normal}
	return r
}

func (r *Recorder) Reset(width, height, ratio float64) {
	if ratio <= 0 {
		ratio = 1
	}
	r.width = int(math.Round(width * ratio))
	r.height = int(math.Round(height * ratio))
	r.scale = ratio
	r.state = recorderState{lineWidth: 1, alpha: 1, font: Normal}
	r.stack = nil
	r.Ops = nil
}

func (r *Recorder) Scale() float64 { return r.scale }
func (r *Recorder) Size() (int, int) { return r.width, r.height }
func (r *Recorder) SetFill(p Paint) { r.state.fill = p }
func (r *Recorder) SetStroke(c string) { r.state.stroke = c }
func (r *Recorder) SetLineWidth(w float64) { r.state.lineWidth = w }
func (r *Recorder) SetAlpha(a float64) { r.state.alpha = a }
func (r *Recorder) SetShadow(s Shadow) { r.state.shadow = s }
func (r *Recorder) SetFont(f Font) { r.state.font = f }
func (r *Recorder) SetTextAlign(a Align) { r.state.align = a }

func (r *Recorder) Save() { r.stack = append(r.stack, r.state) }

func (r *Recorder) Restore() {
	if n := len(r.stack); n > 0 {
		r.state = r.stack[n-1]
		r.stack = r.stack[:n-1]
	}
}

func (r *Recorder) record(name string, args ...float64) {
	r.Ops = append(r.Ops, Op{
		Name:  name,
		Args:  args,
		Fill:  r.state.fill,
		Color: r.state.stroke,
		Alpha: r.state.alpha,
		Font:  r.state.font,
	})
}

func (r *Recorder) ClearRect(x, y, w, h float64) { r.record("clearRect", x, y, w, h) }

func (r *Recorder) FillRect(x, y, w, h float64) {
	if r.state.shadow.Color != "" {
		s := r.state.shadow
		r.Ops = append(r.Ops, Op{
			Name:  "shadow",
			Args:  []float64{x, y, w, h, s.Blur, s.OffsetX, s.OffsetY},
			Color: s.Color,
			Alpha: r.state.alpha,
		})
	}
	r.record("fillRect", x, y, w, h)
}

func (r *Recorder) StrokeRect(x, y, w, h float64) { r.record("strokeRect", x, y, w, h) }
func (r *Recorder) BeginPath() { r.record("beginPath") }
func (r *Recorder) MoveTo(x, y float64) { r.record("moveTo", x, y) }
func (r *Recorder) LineTo(x, y float64) { r.record("lineTo", x, y) }

func (r *Recorder) Arc(cx, cy, radius, a0, a1 float64) {
	r.record("arc", cx, cy, radius, a0, a1)
}

func (r *Recorder) Fill() { r.record("fill") }
func (r *Recorder) Stroke() { r.record("stroke") }

func (r *Recorder) MeasureText(s string) float64 {
	w := RecorderCharWidth
	if r.state.font.Bold {
		w = RecorderBoldCharWidth
	}
	return float64(w * utf8.RuneCountInString(s))
}

func (r *Recorder) FillText(s string, x, y float64) {
	if r.state.align == AlignCenter {
		x -= r.MeasureText(s) / 2
	}
	r.record("fillText", x, y)
	r.Ops[len(r.Ops)-1].Text = s
}

func (r *Recorder) NewOffscreen(width, height int) Canvas {
	o := NewRecorder()
	o.width, o.height = width, height
	return o
}

func (r *Recorder) CreatePattern(src Canvas) Pattern {
	r.patterns++
	return &RecordedPattern{Source: src, ID: r.patterns}
}

func (r *Recorder) DrawCanvas(src Canvas) {
	r.record("drawCanvas")
}

// PatternsCreated counts CreatePattern calls
func (r *Recorder) PatternsCreated() int { return r.patterns }

// Named returns the recorded ops with the given name
func (r *Recorder) Named(name string) []Op {
	var out []Op
	for _, op := range r.Ops {
		if op.Name == name {
			out = append(out, op)
		}
	}
	return out
}

// Texts returns the strings passed to FillText, in order
func (r *Recorder) Texts() []string {
	var out []string
	for _, op := range r.Ops {
		if op.Name == "fillText" {
			out = append(out, op.Text)
		}
	}
	return out
}

// RecordedPattern is the Pattern produced by a Recorder
type RecordedPattern struct {
	Source    Canvas
	ID        int
	Transform [6]float64
}

func (p *RecordedPattern) SetTransform(a, b, c, d, e, f float64) {
	p.Transform = [6]float64{a, b, c, d, e, f}
}

var _ Canvas = (*Recorder)(nil)
