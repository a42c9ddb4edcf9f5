// Package flamegraph draws a tree as rows of bars whose widths follow the
// node sizes, with a pannable and zoomable byte axis.
package flamegraph

import (
	"math"
	"time"

	"github.com/tanema/gween/ease"

	"github.com/lumipallolabs/nanovis/internal/canvas"
	"github.com/lumipallolabs/nanovis/internal/graph"
	"github.com/lumipallolabs/nanovis/internal/logging"
	"github.com/lumipallolabs/nanovis/internal/model"
)

// wheel events closer than this keep the zoom or pan of the gesture
const zoomLock = 50 * time.Millisecond

// Flamegraph is the flamegraph chart. Pointer coordinates are relative to
// the canvas, which spans the host's client width.
type Flamegraph struct {
	*graph.Context

	total    float64
	viewport Viewport

	// layout space includes Margin on both sides of the canvas
	layoutWidth       float64
	zoomedOutMin      float64
	zoomedOutWidth    float64
	stripeScaleAdjust float64

	prevWheelTime    time.Time
	prevWheelWasZoom bool

	hovered  *model.Node
	selected *model.Node

	dragging bool
	didDrag  bool
	dragX    float64

	tween    graph.Tween
	animFrom Viewport
	animTo   Viewport
}

// New creates a flamegraph of tree painted on c and attaches it to host
func New(tree *model.Tree, host graph.Host, c canvas.Canvas, opts graph.Options) *Flamegraph {
	f := &Flamegraph{
		Context: graph.NewContext(tree, host, c, opts),
		total:   float64(tree.Root.Size),
	}
	f.viewport = Viewport{Max: f.total}
	f.SetTick(f.tick)

	f.AddDisposable(host.OnResize(f.Resize))
	f.AddDisposable(host.OnWheel(f.Wheel))

	f.Resize()
	host.Defer(f.Resize)
	return f
}

// Viewport returns the visible byte window
func (f *Flamegraph) Viewport() (min, max float64) {
	return f.viewport.Min, f.viewport.Max
}

// Hovered returns the node under the pointer, or nil
func (f *Flamegraph) Hovered() *model.Node { return f.hovered }

// Selected returns the node last passed to Select
func (f *Flamegraph) Selected() *model.Node { return f.selected }

// Animating reports whether a viewport animation is running
func (f *Flamegraph) Animating() bool {
	_, done := f.tween.Progress(f.Now())
	return !done
}

// Rows is the number of bar rows below the root
func (f *Flamegraph) Rows() int {
	return max(f.Tree.MaxDepth-1, 0)
}

// Resize reads the host width and redraws. The height follows the tree
// depth.
func (f *Flamegraph) Resize() {
	if f.Disposed() {
		return
	}
	f.ReadSize()
	f.Height = float64(f.Rows())*RowHeight + 1

	f.layoutWidth = f.Width + 2*Margin
	f.zoomedOutMin = math.Floor((f.layoutWidth - ZoomedOutWidth) / 2)
	right := f.zoomedOutMin + ZoomedOutWidth
	if f.zoomedOutMin < 0 {
		f.zoomedOutMin = 0
	}
	if right > f.layoutWidth {
		right = f.layoutWidth
	}
	f.zoomedOutWidth = right - f.zoomedOutMin

	f.stripeScaleAdjust = 1
	if f.zoomedOutWidth > 0 {
		f.stripeScaleAdjust = f.total / f.zoomedOutWidth
	}

	f.ResetCanvas(f.Width, f.Height)
	logging.Engine.Debug("flamegraph resize", "width", f.Width, "rows", f.Rows(), "zoomedOutWidth", f.zoomedOutWidth)
	f.Draw()
}

// scale is pixels per byte at the current viewport
func (f *Flamegraph) scale() float64 {
	return f.zoomedOutWidth / f.viewport.Span()
}

// BytesAt maps a canvas x coordinate to a byte offset
func (f *Flamegraph) BytesAt(x float64) float64 {
	w := f.zoomedOutWidth
	if w <= 0 {
		w = 1
	}
	return f.viewport.Min + f.viewport.Span()/w*(x+Margin-f.zoomedOutMin)
}

// ModifyViewport pans the window by deltaX pixels, or with zoom set
// scales it by 1.01^deltaY around the byte under canvas x pivotX.
func (f *Flamegraph) ModifyViewport(deltaX, deltaY float64, zoom bool, pivotX float64) {
	f.tween = graph.Tween{}
	var v Viewport
	if zoom {
		v = f.viewport.Zoom(f.BytesAt(pivotX), deltaY, f.total)
	} else {
		v = f.viewport.Pan(deltaX, f.zoomedOutWidth, f.total)
	}
	if v != f.viewport {
		f.viewport = v
		f.Invalidate()
	}
}

// Wheel pans or zooms. Ctrl or meta zooms, and wheel events within the
// zoom lock window keep the kind of the gesture they continue.
func (f *Flamegraph) Wheel(w *graph.Wheel) {
	now := f.Now()
	isZoom := w.Ctrl || w.Meta
	if !f.prevWheelTime.IsZero() && now.Sub(f.prevWheelTime) < zoomLock {
		isZoom = f.prevWheelWasZoom
	}
	f.prevWheelTime = now
	f.prevWheelWasZoom = isZoom

	if isZoom || math.Abs(w.DeltaX) >= math.Abs(w.DeltaY) {
		w.Prevented = true
	}

	f.ModifyViewport(w.DeltaX, w.DeltaY, isZoom, w.X)
	f.updateHover(&w.Pointer)
}

// HitTest returns the node drawn at the canvas point, matching the logical
// byte range so bars hidden by overlap suppression still resolve.
func (f *Flamegraph) HitTest(x, y float64) *model.Node {
	bytes := f.BytesAt(x)

	var visit func(n *model.Node, top, start float64) *model.Node
	visit = func(n *model.Node, top, start float64) *model.Node {
		if bytes < start || bytes >= start+float64(n.Size) {
			return nil
		}
		if y >= top && y < top+RowHeight {
			return n
		}
		if y >= top+RowHeight {
			for _, child := range n.Children {
				if hit := visit(child, top+RowHeight, start); hit != nil {
					return hit
				}
				start += float64(child.Size)
			}
		}
		return nil
	}

	start := 0.0
	for _, child := range f.Tree.Root.Children {
		if hit := visit(child, 0, start); hit != nil {
			return hit
		}
		start += float64(child.Size)
	}
	return nil
}

func (f *Flamegraph) changeHovered(node *model.Node, p *graph.Pointer) {
	if f.hovered != node {
		f.hovered = node
		if node == nil {
			f.EmitHover(nil, p)
		}
		f.Invalidate()
	}
}

func (f *Flamegraph) updateHover(p *graph.Pointer) {
	node := f.HitTest(p.X, p.Y)
	f.changeHovered(node, p)
	f.EmitHover(node, p)
}

// PointerDown starts a drag unless the secondary button is pressed
func (f *Flamegraph) PointerDown(p *graph.Pointer) {
	f.didDrag = false
	if p.Button != 2 {
		f.dragging = true
		f.dragX = p.X
	}
}

// PointerMove drags the viewport while a button is held and updates the
// hovered node.
func (f *Flamegraph) PointerMove(p *graph.Pointer) {
	if f.dragging {
		delta := p.X - f.dragX
		if f.didDrag || math.Abs(delta) >= dragThreshold {
			f.didDrag = true
			f.ModifyViewport(-delta, 0, false, 0)
			f.dragX = p.X
		}
	}
	f.updateHover(p)
}

// PointerUp ends a drag
func (f *Flamegraph) PointerUp(p *graph.Pointer) {
	f.dragging = false
}

// PointerOut clears the hovered node
func (f *Flamegraph) PointerOut(p *graph.Pointer) {
	f.changeHovered(nil, p)
}

// Click reports clicks on leaves. The click ending a drag is ignored.
func (f *Flamegraph) Click(p *graph.Pointer) {
	if f.didDrag {
		return
	}
	node := f.HitTest(p.X, p.Y)
	f.changeHovered(node, p)
	if node != nil && node.IsLeaf() {
		f.EmitClick(node, p)
	}
}

// Select brings node's byte range into view with some padding, or zooms
// all the way out for nil. animate defaults to the Animate option.
func (f *Flamegraph) Select(node *model.Node, animate ...bool) {
	anim := f.Options.Animate
	if len(animate) > 0 {
		anim = animate[0]
	}
	if node == f.selected {
		return
	}

	target := Viewport{Max: f.total}
	if node != nil {
		start, _, ok := ByteRange(f.Tree.Root, node)
		if !ok {
			logging.Engine.Debug("flamegraph select: node not in tree, keeping selection", "id", node.ID)
			return
		}
		size := float64(node.Size)
		pad := size * f.Options.SelectedPaddingRatio / 2
		target = Viewport{Min: start - pad, Max: start + size + pad}.Clamp(f.total)
	}

	f.selected = node
	f.EmitSelect(node)

	if anim {
		f.animFrom = f.viewport
		f.animTo = target
		f.tween = graph.NewTween(f.Now(), f.Options.AnimateDuration, ease.InOutCubic)
	} else {
		f.tween = graph.Tween{}
		f.viewport = target
	}
	f.Invalidate()
}

func (f *Flamegraph) tick() {
	if f.tween.Duration > 0 {
		v, done := f.tween.Progress(f.Now())
		if done {
			f.viewport = f.animTo
			f.tween = graph.Tween{}
		} else {
			f.viewport = f.animFrom.Lerp(f.animTo, v)
			f.Invalidate()
		}
	}
	f.Draw()
}
