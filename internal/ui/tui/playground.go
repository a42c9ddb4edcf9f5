package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lumipallolabs/nanovis/internal/canvas"
	"github.com/lumipallolabs/nanovis/internal/chart"
	"github.com/lumipallolabs/nanovis/internal/color"
	"github.com/lumipallolabs/nanovis/internal/graph"
	"github.com/lumipallolabs/nanovis/internal/logging"
	"github.com/lumipallolabs/nanovis/internal/model"
)

// CellRatio is the pixel ratio of the terminal canvas: one character cell
// covers 4x8 logical pixels.
const CellRatio = 1.0 / 4

// cell size in logical pixels
const (
	cellWidth  = 1 / CellRatio
	cellHeight = 2 / CellRatio
)

// wheelStep is the scroll delta of one wheel notch
const wheelStep = 40

// Playground hosts one chart engine on a terminal canvas. It is driven by
// the bubbletea program but holds no tea state of its own.
type Playground struct {
	tree *model.Tree
	kind chart.Kind
	opts graph.Options
	dark bool

	light, darkPalette graph.Palette

	// Clock replaces the wall clock, for tests
	Clock func() time.Time

	cols, rows int
	loop       *graph.Loop
	canvas     *canvas.Terminal
	engine     chart.Engine

	hovered  *model.Node
	selected *model.Node
	inside   bool
	pressed  int // button held down, -1 when none
}

// NewPlayground creates a playground showing tree as kind in a grid of
// cols x rows cells. The hover and select callbacks of opts are kept and
// chained.
func NewPlayground(tree *model.Tree, kind chart.Kind, opts graph.Options, cols, rows int) (*Playground, error) {
	p := &Playground{
		tree:    tree,
		kind:    kind,
		opts:    opts,
		Clock:   time.Now,
		cols:    cols,
		rows:    rows,
		pressed: -1,
	}
	p.light, p.darkPalette = opts.Palette.Merge(graph.DefaultPalette()), graph.DarkPalette()
	if opts.Palette.Bg == graph.DarkPalette().Bg {
		p.dark = true
		p.light, p.darkPalette = graph.DefaultPalette(), opts.Palette.Merge(graph.DarkPalette())
	}
	if err := p.start(); err != nil {
		return nil, err
	}
	return p, nil
}

// options wraps the caller's callbacks to track hover and selection
func (p *Playground) options() graph.Options {
	opts := p.opts
	onHover, onSelect := opts.OnHover, opts.OnSelect
	opts.OnHover = func(n *model.Node, ptr *graph.Pointer) {
		p.hovered = n
		if onHover != nil {
			onHover(n, ptr)
		}
	}
	opts.OnSelect = func(n *model.Node) {
		p.selected = n
		if onSelect != nil {
			onSelect(n)
		}
	}
	opts.Palette = p.palette()
	opts.SchemePalette = p.palette
	return opts
}

func (p *Playground) palette() graph.Palette {
	if p.dark {
		return p.darkPalette
	}
	return p.light
}

// start creates the engine for the current kind on a fresh host
func (p *Playground) start() error {
	p.loop = graph.NewLoop(float64(p.cols)*cellWidth, float64(p.rows)*cellHeight, CellRatio)
	p.loop.Clock = func() time.Time { return p.Clock() }
	p.canvas = canvas.NewTerminal()
	p.canvas.Background = p.palette().Bg

	e, err := chart.New(p.kind, p.tree, p.loop, p.canvas, p.options())
	if err != nil {
		return err
	}
	p.engine = e
	if p.selected != nil {
		e.Select(p.selected, false)
	}
	p.loop.RunFrame()
	logging.Engine.Debug("playground start", "chart", p.kind, "cols", p.cols, "rows", p.rows)
	return nil
}

// Kind returns the chart type shown
func (p *Playground) Kind() chart.Kind { return p.kind }

// Engine returns the running chart
func (p *Playground) Engine() chart.Engine { return p.engine }

// Hovered returns the node under the pointer, or nil
func (p *Playground) Hovered() *model.Node { return p.hovered }

// Selected returns the focused node, or nil
func (p *Playground) Selected() *model.Node { return p.selected }

// Dark reports whether the dark palette is active
func (p *Playground) Dark() bool { return p.dark }

// SetKind switches to another chart type, keeping the selection
func (p *Playground) SetKind(kind chart.Kind) error {
	if kind == p.kind {
		return nil
	}
	p.engine.Dispose()
	p.kind = kind
	p.hovered = nil
	return p.start()
}

// SetTree swaps in a reloaded tree. The focus and hover are carried over
// by node ID. A nil getColor keeps the current coloring.
func (p *Playground) SetTree(tree *model.Tree, getColor color.Getter) error {
	if p.selected != nil {
		p.selected = model.Find(tree.Root, p.selected.ID)
	}
	if p.hovered != nil {
		p.hovered = model.Find(tree.Root, p.hovered.ID)
	}
	p.engine.Dispose()
	p.tree = tree
	if getColor != nil {
		p.opts.GetColor = getColor
	}
	return p.start()
}

// SetCells resizes the chart area
func (p *Playground) SetCells(cols, rows int) {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	if cols == p.cols && rows == p.rows {
		return
	}
	p.cols, p.rows = cols, rows
	p.loop.SetSize(float64(cols)*cellWidth, float64(rows)*cellHeight)
}

// ToggleDark switches between the light and dark palettes
func (p *Playground) ToggleDark() {
	p.dark = !p.dark
	p.canvas.Background = p.palette().Bg
	p.loop.ChangeScheme()
}

// Select focuses node, or unfocuses for nil
func (p *Playground) Select(node *model.Node) {
	p.engine.Select(node)
}

// Back focuses the parent of the selected node
func (p *Playground) Back() {
	if p.selected == nil {
		return
	}
	p.engine.Select(p.selected.Parent)
}

// pointer converts a cell position to the middle of that cell
func (p *Playground) pointer(m tea.MouseMsg) *graph.Pointer {
	return &graph.Pointer{
		X:     (float64(m.X) + 0.5) * cellWidth,
		Y:     (float64(m.Y) + 0.5) * cellHeight,
		Shift: m.Shift,
		Ctrl:  m.Ctrl,
		Meta:  m.Alt,
	}
}

func buttonIndex(b tea.MouseButton) int {
	switch b {
	case tea.MouseButtonMiddle:
		return 1
	case tea.MouseButtonRight:
		return 2
	}
	return 0
}

// Mouse feeds a mouse event whose position is relative to the chart area
func (p *Playground) Mouse(m tea.MouseMsg) {
	ptr := p.pointer(m)
	if m.X < 0 || m.Y < 0 || m.X >= p.cols || m.Y >= p.rows {
		if p.inside {
			p.inside = false
			p.engine.PointerOut(ptr)
			p.engine.PointerLeave(ptr)
		}
		return
	}
	p.inside = true

	if tea.MouseEvent(m).IsWheel() {
		w := &graph.Wheel{Pointer: *ptr}
		switch m.Button {
		case tea.MouseButtonWheelUp:
			w.DeltaY = -wheelStep
		case tea.MouseButtonWheelDown:
			w.DeltaY = wheelStep
		case tea.MouseButtonWheelLeft:
			w.DeltaX = -wheelStep
		case tea.MouseButtonWheelRight:
			w.DeltaX = wheelStep
		}
		if m.Shift {
			w.DeltaX, w.DeltaY = w.DeltaY, 0
		}
		p.loop.DispatchWheel(w)
		return
	}

	switch m.Action {
	case tea.MouseActionPress:
		ptr.Button = buttonIndex(m.Button)
		p.pressed = ptr.Button
		if d, ok := p.engine.(chart.Dragger); ok {
			d.PointerDown(ptr)
		}
	case tea.MouseActionRelease:
		ptr.Button = p.pressed
		if d, ok := p.engine.(chart.Dragger); ok {
			d.PointerUp(ptr)
		}
		if p.pressed == 0 {
			p.engine.Click(ptr)
		}
		p.pressed = -1
	case tea.MouseActionMotion:
		p.engine.PointerMove(ptr)
	}
}

// Frame runs the pending frame and reports whether another one is due
func (p *Playground) Frame() bool {
	p.loop.RunFrame()
	return p.loop.Pending()
}

// Pending reports whether the chart wants a frame
func (p *Playground) Pending() bool {
	return p.loop.Pending()
}

// View renders the chart area
func (p *Playground) View() string {
	return p.canvas.Render()
}

// Close disposes the engine
func (p *Playground) Close() {
	p.engine.Dispose()
}
