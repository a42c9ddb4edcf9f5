package canvas

import (
	"image"
	"image/color"
	"io"
	"math"
	"sync"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

var (
	fontsOnce   sync.Once
	regularFont *opentype.Font
	boldFont    *opentype.Font
	fontsErr    error
)

func loadFonts() error {
	fontsOnce.Do(func() {
		regularFont, fontsErr = opentype.Parse(goregular.TTF)
		if fontsErr != nil {
			return
		}
		boldFont, fontsErr = opentype.Parse(gobold.TTF)
	})
	return fontsErr
}

type pathOp struct {
	kind byte // M, L or A
	x, y float64
	r    float64
	a0   float64
	a1   float64
}

type rasterState struct {
	fill      Paint
	stroke    string
	lineWidth float64
	alpha     float64
	shadow    Shadow
	font      Font
	align     Align
}

func defaultRasterState() rasterState {
	return rasterState{
		fill:      Paint{Color: "#000"},
		stroke:    "#000",
		lineWidth: 1,
		alpha:     1,
		font:      Normal,
	}
}

// Raster is a Canvas backed by an in-memory RGBA image drawn with gg.
type Raster struct {
	dc    *gg.Context
	scale float64
	state rasterState
	stack []rasterState
	path  []pathOp
	faces map[faceKey]font.Face
}

type faceKey struct {
	bold bool
	size float64
}

// NewRaster returns a raster canvas of the given device size with an
// identity scale.
func NewRaster(width, height int) *Raster {
	r := &Raster{faces: make(map[faceKey]font.Face)}
	r.reset(width, height, 1)
	return r
}

func (r *Raster) reset(width, height int, scale float64) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	r.dc = gg.NewContext(width, height)
	r.dc.Scale(scale, scale)
	r.scale = scale
	r.state = defaultRasterState()
	r.stack = r.stack[:0]
	r.path = r.path[:0]
}

func (r *Raster) Reset(width, height, ratio float64) {
	if ratio <= 0 {
		ratio = 1
	}
	r.reset(int(math.Round(width*ratio)), int(math.Round(height*ratio)), ratio)
}

func (r *Raster) Scale() float64 { return r.scale }

func (r *Raster) Size() (int, int) {
	return r.dc.Width(), r.dc.Height()
}

// Image returns the backing image
func (r *Raster) Image() image.Image {
	return r.dc.Image()
}

// EncodePNG writes the canvas as a PNG image
func (r *Raster) EncodePNG(w io.Writer) error {
	return r.dc.EncodePNG(w)
}

// SavePNG writes the canvas to a PNG file
func (r *Raster) SavePNG(path string) error {
	return r.dc.SavePNG(path)
}

func (r *Raster) rgba() *image.RGBA {
	img, _ := r.dc.Image().(*image.RGBA)
	return img
}

func (r *Raster) deviceRect(x, y, w, h float64) image.Rectangle {
	s := r.scale
	return image.Rect(
		int(math.Floor(x*s)), int(math.Floor(y*s)),
		int(math.Ceil((x+w)*s)), int(math.Ceil((y+h)*s)),
	)
}

func (r *Raster) ClearRect(x, y, w, h float64) {
	img := r.rgba()
	if img == nil {
		return
	}
	rect := r.deviceRect(x, y, w, h).Intersect(img.Bounds())
	draw.Draw(img, rect, image.Transparent, image.Point{}, draw.Src)
}

func (r *Raster) SetFill(p Paint) { r.state.fill = p }
func (r *Raster) SetStroke(c string) { r.state.stroke = c }
func (r *Raster) SetLineWidth(w float64) { r.state.lineWidth = w }
func (r *Raster) SetAlpha(a float64) { r.state.alpha = clamp01(a) }
func (r *Raster) SetShadow(s Shadow) { r.state.shadow = s }
func (r *Raster) SetFont(f Font) { r.state.font = f }
func (r *Raster) SetTextAlign(a Align) { r.state.align = a }
func (r *Raster) Save() { r.stack = append(r.stack, r.state) }

func (r *Raster) Restore() {
	if n := len(r.stack); n > 0 {
		r.state = r.stack[n-1]
		r.stack = r.stack[:n-1]
	}
}

func (r *Raster) fillPattern() gg.Pattern {
	if p, ok := r.state.fill.Pattern.(*rasterPattern); ok && p != nil {
		return &alphaPattern{src: p, alpha: r.state.alpha}
	}
	c := withAlpha(MustParseColor(r.state.fill.Color), r.state.alpha)
	return gg.NewSolidPattern(c)
}

func (r *Raster) hasShadow() bool {
	s := r.state.shadow
	if s.Color == "" {
		return false
	}
	return s.Blur > 0 || s.OffsetX != 0 || s.OffsetY != 0
}

// drawShadow paints a blurred copy of the shape under it. Shadow offsets
// and blur are in device pixels; blur is approximated with stacked,
// expanding translucent copies.
func (r *Raster) drawShadow(shape func(dx, dy, grow float64)) {
	s := r.state.shadow
	base := withAlpha(MustParseColor(s.Color), r.state.alpha)
	dx, dy := s.OffsetX/r.scale, s.OffsetY/r.scale
	steps := int(math.Ceil(s.Blur / 4))
	if steps < 1 {
		shape(dx, dy, 0)
		r.dc.SetFillStyle(gg.NewSolidPattern(base))
		r.dc.Fill()
		return
	}
	layer := withAlpha(base, 1/float64(steps+1))
	for i := steps; i >= 0; i-- {
		grow := s.Blur / r.scale * float64(i) / float64(steps) / 2
		shape(dx, dy, grow)
		r.dc.SetFillStyle(gg.NewSolidPattern(layer))
		r.dc.Fill()
	}
}

func (r *Raster) FillRect(x, y, w, h float64) {
	if w <= 0 || h <= 0 {
		return
	}
	if r.hasShadow() {
		r.drawShadow(func(dx, dy, grow float64) {
			r.dc.ClearPath()
			r.dc.DrawRectangle(x+dx-grow, y+dy-grow, w+2*grow, h+2*grow)
		})
	}
	r.dc.ClearPath()
	r.dc.DrawRectangle(x, y, w, h)
	r.dc.SetFillStyle(r.fillPattern())
	r.dc.Fill()
}

func (r *Raster) strokeStyle() {
	c := withAlpha(MustParseColor(r.state.stroke), r.state.alpha)
	r.dc.SetStrokeStyle(gg.NewSolidPattern(c))
	r.dc.SetLineWidth(r.state.lineWidth * r.scale)
}

func (r *Raster) StrokeRect(x, y, w, h float64) {
	r.dc.ClearPath()
	r.dc.DrawRectangle(x, y, w, h)
	r.strokeStyle()
	r.dc.Stroke()
}

func (r *Raster) BeginPath() {
	r.path = r.path[:0]
}

func (r *Raster) MoveTo(x, y float64) {
	r.path = append(r.path, pathOp{kind: 'M', x: x, y: y})
}

func (r *Raster) LineTo(x, y float64) {
	r.path = append(r.path, pathOp{kind: 'L', x: x, y: y})
}

func (r *Raster) Arc(cx, cy, radius, a0, a1 float64) {
	r.path = append(r.path, pathOp{kind: 'A', x: cx, y: cy, r: radius, a0: a0, a1: a1})
}

// replay rebuilds the recorded path in gg, offset by dx, dy.
func (r *Raster) replay(dx, dy float64) {
	r.dc.ClearPath()
	for _, op := range r.path {
		switch op.kind {
		case 'M':
			r.dc.MoveTo(op.x+dx, op.y+dy)
		case 'L':
			r.dc.LineTo(op.x+dx, op.y+dy)
		case 'A':
			if op.r <= 0 {
				r.dc.LineTo(op.x+dx, op.y+dy)
				continue
			}
			r.dc.DrawArc(op.x+dx, op.y+dy, op.r, op.a0, op.a1)
		}
	}
}

func (r *Raster) Fill() {
	if len(r.path) == 0 {
		return
	}
	if r.hasShadow() {
		r.drawShadow(func(dx, dy, _ float64) { r.replay(dx, dy) })
	}
	r.replay(0, 0)
	r.dc.SetFillStyle(r.fillPattern())
	r.dc.Fill()
}

func (r *Raster) Stroke() {
	if len(r.path) == 0 {
		return
	}
	r.replay(0, 0)
	r.strokeStyle()
	r.dc.Stroke()
}

func (r *Raster) face(f Font, size float64) font.Face {
	key := faceKey{bold: f.Bold, size: size}
	if face, ok := r.faces[key]; ok {
		return face
	}
	if err := loadFonts(); err != nil {
		return nil
	}
	src := regularFont
	if f.Bold {
		src = boldFont
	}
	face, err := opentype.NewFace(src, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil
	}
	r.faces[key] = face
	return face
}

func (r *Raster) MeasureText(s string) float64 {
	face := r.face(r.state.font, r.state.font.Size)
	if face == nil {
		return 0
	}
	return float64(font.MeasureString(face, s)) / 64
}

func (r *Raster) FillText(s string, x, y float64) {
	if s == "" {
		return
	}
	if r.state.align == AlignCenter {
		x -= r.MeasureText(s) / 2
	}
	face := r.face(r.state.font, r.state.font.Size*r.scale)
	if face == nil {
		return
	}
	m := face.Metrics()
	ascent := float64(m.Ascent) / 64
	descent := float64(m.Descent) / 64

	c := withAlpha(MustParseColor(r.state.fill.Color), r.state.alpha)
	r.dc.Push()
	r.dc.Identity()
	r.dc.SetFontFace(face)
	r.dc.SetColor(c)
	r.dc.DrawString(s, x*r.scale, y*r.scale+(ascent-descent)/2)
	r.dc.Pop()
}

func (r *Raster) NewOffscreen(width, height int) Canvas {
	return NewRaster(width, height)
}

func (r *Raster) CreatePattern(src Canvas) Pattern {
	p := &rasterPattern{a: 1, d: 1, scale: r.scale}
	if s, ok := src.(*Raster); ok {
		img := s.rgba()
		p.img = image.NewRGBA(img.Bounds())
		draw.Draw(p.img, img.Bounds(), img, img.Bounds().Min, draw.Src)
	}
	return p
}

func (r *Raster) DrawCanvas(src Canvas) {
	s, ok := src.(*Raster)
	if !ok {
		return
	}
	dst := r.rgba()
	if dst == nil {
		return
	}
	img := s.rgba()
	draw.Draw(dst, img.Bounds(), img, image.Point{}, draw.Over)
}

// rasterPattern repeats a captured image under an affine transform.
type rasterPattern struct {
	img              *image.RGBA
	a, b, c, d, e, f float64
	scale            float64
}

func (p *rasterPattern) SetTransform(a, b, c, d, e, f float64) {
	p.a, p.b, p.c, p.d, p.e, p.f = a, b, c, d, e, f
}

func (p *rasterPattern) ColorAt(x, y int) color.Color {
	if p.img == nil {
		return color.Transparent
	}
	// device pixel center -> logical -> pattern space
	lx := (float64(x) + 0.5) / p.scale
	ly := (float64(y) + 0.5) / p.scale
	det := p.a*p.d - p.b*p.c
	if det == 0 {
		return color.Transparent
	}
	lx -= p.e
	ly -= p.f
	u := (p.d*lx - p.c*ly) / det
	v := (-p.b*lx + p.a*ly) / det

	b := p.img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return color.Transparent
	}
	px := int(math.Floor(u)) % w
	py := int(math.Floor(v)) % h
	if px < 0 {
		px += w
	}
	if py < 0 {
		py += h
	}
	return p.img.RGBAAt(b.Min.X+px, b.Min.Y+py)
}

type alphaPattern struct {
	src   *rasterPattern
	alpha float64
}

func (p *alphaPattern) ColorAt(x, y int) color.Color {
	c := p.src.ColorAt(x, y)
	if p.alpha >= 1 {
		return c
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return withAlpha(n, p.alpha)
}

var _ Canvas = (*Raster)(nil)
