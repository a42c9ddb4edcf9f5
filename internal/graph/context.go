// Package graph holds the rendering context shared by the chart engines:
// host and canvas ownership, frame scheduling, text measurement, events,
// options and animation timing.
package graph

import (
	"math"
	"time"

	"github.com/lumipallolabs/nanovis/internal/canvas"
	"github.com/lumipallolabs/nanovis/internal/color"
	"github.com/lumipallolabs/nanovis/internal/model"
)

// Context is embedded by every chart engine
type Context struct {
	Host    Host
	Canvas  canvas.Canvas
	Tree    *model.Tree
	Options Options
	Palette Palette

	// Width and Height are the logical canvas size
	Width, Height float64

	GetColor   color.Getter
	GetText    func(*model.Node) string
	GetSubtext func(*model.Node) string

	// Patterns caches the stripe texture for pattern fills
	Patterns color.PatternCache

	events      events
	disposables []func()
	tick        func()
	cancelFrame func()
	disposed    bool

	font          canvas.Font
	fontWidths    map[fontKey]map[rune]float64
	widths        map[rune]float64
	ellipsisWidth float64
}

type fontKey struct {
	font  string
	scale float64
}

// NewContext creates a context drawing tree onto c inside host. The
// option callbacks are subscribed before anything else.
func NewContext(tree *model.Tree, host Host, c canvas.Canvas, opts Options) *Context {
	opts = opts.withDefaults(tree)
	ctx := &Context{
		Host:       host,
		Canvas:     c,
		Tree:       tree,
		Options:    opts,
		Palette:    opts.Palette,
		GetColor:   opts.GetColor,
		GetText:    opts.GetText,
		GetSubtext: opts.GetSubtext,
		fontWidths: make(map[fontKey]map[rune]float64),
	}

	if opts.OnClick != nil {
		ctx.OnClick(opts.OnClick)
	}
	if opts.OnHover != nil {
		ctx.OnHover(opts.OnHover)
	}
	if opts.OnLeave != nil {
		ctx.OnLeave(opts.OnLeave)
	}
	if opts.OnSelect != nil {
		ctx.OnSelect(opts.OnSelect)
	}

	ctx.AddDisposable(host.OnSchemeChange(func() {
		if opts.SchemePalette != nil {
			ctx.Palette = opts.SchemePalette().Merge(opts.Palette)
		}
		ctx.Invalidate()
	}))
	ctx.SetFont(canvas.Normal)
	return ctx
}

// SetTick installs the per-frame hook run by Invalidate
func (c *Context) SetTick(fn func()) {
	c.tick = fn
}

// Now returns the host's current time
func (c *Context) Now() time.Time {
	return c.Host.Now()
}

// Invalidate requests a frame. Calls made before the frame runs share it.
func (c *Context) Invalidate() {
	if c.disposed || c.cancelFrame != nil {
		return
	}
	c.cancelFrame = c.Host.RequestFrame(func() {
		c.cancelFrame = nil
		if c.tick != nil {
			c.tick()
		}
	})
}

// FramePending reports whether a frame has been requested and not yet run
func (c *Context) FramePending() bool {
	return c.cancelFrame != nil
}

// ReadSize copies the host's client size into Width and Height and
// reports whether it changed. Negative sizes read as zero.
func (c *Context) ReadSize() bool {
	w, h := c.Host.ClientSize()
	w, h = math.Max(0, w), math.Max(0, h)
	changed := w != c.Width || h != c.Height
	c.Width, c.Height = w, h
	return changed
}

// ResetCanvas sizes the canvas to width x height logical pixels at the
// host's pixel ratio and restores the active font.
func (c *Context) ResetCanvas(width, height float64) {
	ratio := c.Host.PixelRatio()
	if ratio <= 0 {
		ratio = 1
	}
	c.Canvas.Reset(math.Max(0, width), math.Max(0, height), ratio)
	c.SetFont(c.font)
}

// AddDisposable registers fn to run on Dispose
func (c *Context) AddDisposable(fn func()) {
	if fn != nil {
		c.disposables = append(c.disposables, fn)
	}
}

// Dispose removes every listener the chart registered, cancels a pending
// frame and detaches from the host. Later calls do nothing.
func (c *Context) Dispose() {
	if c.disposed {
		return
	}
	c.disposed = true
	for _, fn := range c.disposables {
		fn()
	}
	c.disposables = nil
	if c.cancelFrame != nil {
		c.cancelFrame()
		c.cancelFrame = nil
	}
	c.Host.Detach()
}

// Disposed reports whether Dispose has run
func (c *Context) Disposed() bool {
	return c.disposed
}

// ColorOf returns the fill for a node, falling back to the palette
func (c *Context) ColorOf(n *model.Node) model.Color {
	return c.GetColor(n).Or(model.Solid(c.Palette.Fallback))
}

// Round rounds half up like a browser's Math.round
func Round(x float64) float64 {
	return math.Floor(x + 0.5)
}
