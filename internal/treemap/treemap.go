// Package treemap draws a tree as nested squarified rectangles and lets
// the user drill into a node with an animated zoom.
package treemap

import (
	"math"

	"github.com/tanema/gween/ease"

	"github.com/lumipallolabs/nanovis/internal/canvas"
	"github.com/lumipallolabs/nanovis/internal/graph"
	"github.com/lumipallolabs/nanovis/internal/logging"
	"github.com/lumipallolabs/nanovis/internal/model"
)

type drawFlags int

const (
	containsHover drawFlags = 1 << iota
	containsTarget
)

type culling int

const (
	cullingDisabled culling = iota
	cullingEnabled
	culled
)

// Treemap is the treemap chart
type Treemap struct {
	*graph.Context

	layoutNodes []*NodeLayout
	hovered     *model.Node

	// focus state
	currentNode    *NodeLayout
	currentLayout  *NodeLayout
	previousLayout *NodeLayout
	currentOriginX float64
	currentOriginY float64

	// animation state
	tween  graph.Tween
	blend  float64
	source *NodeLayout
	target *NodeLayout

	// stripe origin for the backgrounds being painted
	bgOriginX, bgOriginY float64

	// cached unfocused backgrounds
	background      canvas.Canvas
	backgroundValid bool
}

// New creates a treemap of tree painted on c and attaches it to host
func New(tree *model.Tree, host graph.Host, c canvas.Canvas, opts graph.Options) *Treemap {
	t := &Treemap{
		Context: graph.NewContext(tree, host, c, opts),
		blend:   1,
	}
	t.SetTick(t.tick)

	t.AddDisposable(host.OnResize(t.Resize))
	t.AddDisposable(host.OnWheel(func(w *graph.Wheel) {
		t.updateHover(&w.Pointer)
	}))
	t.AddDisposable(host.OnSchemeChange(func() {
		t.backgroundValid = false
	}))

	t.Resize()
	// size again once the host has placed the chart
	host.Defer(t.Resize)
	return t
}

// Layouts returns the unfocused layout
func (t *Treemap) Layouts() []*NodeLayout { return t.layoutNodes }

// CurrentLayout returns the focused layout, or nil
func (t *Treemap) CurrentLayout() *NodeLayout { return t.currentLayout }

// Current returns the focused node, or nil
func (t *Treemap) Current() *model.Node {
	if t.currentNode == nil {
		return nil
	}
	return t.currentNode.Node
}

// Hovered returns the node under the pointer, or nil
func (t *Treemap) Hovered() *model.Node { return t.hovered }

// Animating reports whether a focus transition is running
func (t *Treemap) Animating() bool {
	_, done := t.tween.Progress(t.Now())
	return !done
}

// Resize reads the host size, lays the tree out again when the size
// changed, and redraws.
func (t *Treemap) Resize() {
	if t.Disposed() {
		return
	}
	changed := t.ReadSize()
	t.ResetCanvas(t.Width, t.Height)
	t.backgroundValid = false

	if changed || t.layoutNodes == nil {
		t.layoutNodes = Layout(t.Tree.Root.Children, 0, 0, t.Width-1, t.Height-1)
		t.relink()
		t.updateCurrentLayout()
		logging.Engine.Debug("treemap layout", "width", t.Width, "height", t.Height, "nodes", len(t.layoutNodes))
	}
	t.Draw()
}

// relink points the focus state at the new layout objects
func (t *Treemap) relink() {
	find := func(l *NodeLayout) *NodeLayout {
		if l == nil {
			return nil
		}
		if found := Search(t.layoutNodes, l.Node); found != nil {
			return found
		}
		return l
	}
	t.currentNode = find(t.currentNode)
	t.source = find(t.source)
	t.target = find(t.target)
}

func (t *Treemap) updateCurrentLayout() {
	if t.currentNode == nil {
		t.currentLayout = nil
		t.currentOriginX = 0
		t.currentOriginY = 0
		return
	}

	b := t.currentNode.Box
	ox1, oy1 := b.X, b.Y
	ox2, oy2 := ox1+b.W, oy1+b.H

	pad := t.Options.SelectedPaddingRatio / 2
	nx1 := graph.Round(t.Width * pad)
	ny1 := graph.Round(t.Height * pad)
	nx2 := t.Width - nx1 - 1
	ny2 := t.Height - ny1 - 1

	k := 1 - t.blend
	if t.target != nil {
		k = t.blend
	}
	x1 := graph.Round(ox1 + (nx1-ox1)*k)
	y1 := graph.Round(oy1 + (ny1-oy1)*k)
	x2 := graph.Round(ox2 + (nx2-ox2)*k)
	y2 := graph.Round(oy2 + (ny2-oy2)*k)

	t.currentLayout = Layout([]*model.Node{t.currentNode.Node}, x1, y1, x2-x1, y2-y1)[0]
	// stripes travel with the zoomed node
	t.currentOriginX = wrap64(-(ox1+ox2)/2)*(1-k) + (x1+x2)/2
	t.currentOriginY = wrap64(-(oy1+oy2)/2)*(1-k) + (y1+y2)/2
}

func wrap64(x float64) float64 {
	return x - math.Floor(x/64-0.5)*64
}

func (t *Treemap) tick() {
	oldBlend := t.blend
	oldCurrent := t.currentNode

	if v, done := t.tween.Progress(t.Now()); done {
		t.currentNode = t.target
		t.blend = 1
	} else {
		t.blend = v
		t.Invalidate()
	}

	if t.blend != oldBlend || t.currentNode != oldCurrent {
		t.updateCurrentLayout()
	}
	t.Draw()
}

// Select focuses node, or clears the focus when node is nil. animate
// defaults to the Animate option.
func (t *Treemap) Select(node *model.Node, animate ...bool) {
	anim := t.Options.Animate
	if len(animate) > 0 {
		anim = animate[0]
	}
	if node == nil {
		if t.target != nil {
			t.changeCurrentNode(nil, anim)
		}
		return
	}
	if t.target != nil && t.target.Node == node {
		return
	}
	l := Search(t.layoutNodes, node)
	if l == nil {
		logging.Engine.Debug("treemap select: node not in layout, keeping selection", "id", node.ID)
		return
	}
	t.changeCurrentNode(l, anim)
}

func (t *Treemap) changeCurrentNode(l *NodeLayout, animate bool) {
	if t.currentNode == l {
		return
	}
	if l != nil {
		t.EmitSelect(l.Node)
		t.previousLayout = t.currentLayout
	} else {
		t.EmitSelect(nil)
		t.previousLayout = nil
	}

	if animate {
		t.blend = 0
		t.tween = graph.NewTween(t.Now(), t.Options.AnimateDuration, ease.OutCubic)
		t.source = t.currentNode
	} else {
		t.tween = graph.Tween{}
	}
	t.target = l

	if l != nil {
		t.currentNode = l
	} else if t.currentNode != nil {
		// shrink back from where the node sits in the full layout
		if found := Search(t.layoutNodes, t.currentNode.Node); found != nil {
			t.currentNode = found
		}
	}
	t.updateCurrentLayout()
	t.Invalidate()
}

// HitTest returns the layout under the point
func (t *Treemap) HitTest(x, y float64) *NodeLayout {
	if t.currentLayout != nil {
		return HitTest([]*NodeLayout{t.currentLayout}, x, y, false)
	}
	return HitTest(t.layoutNodes, x, y, true)
}

func (t *Treemap) updateHover(p *graph.Pointer) {
	var node *model.Node
	if l := t.HitTest(p.X, p.Y); l != nil {
		node = l.Node
	}
	t.changeHovered(node)
	t.EmitHover(node, p)
}

func (t *Treemap) changeHovered(node *model.Node) {
	if t.hovered != node {
		t.hovered = node
		t.Invalidate()
	}
}

// PointerMove updates the hovered node
func (t *Treemap) PointerMove(p *graph.Pointer) {
	t.updateHover(p)
}

// PointerOut clears the hovered node
func (t *Treemap) PointerOut(p *graph.Pointer) {
	t.changeHovered(nil)
	t.EmitHover(nil, p)
}

// Click handles a click: leaves are reported, parents are focused, and a
// click outside the focused node clears the focus.
func (t *Treemap) Click(p *graph.Pointer) {
	l := t.HitTest(p.X, p.Y)
	switch {
	case l != nil:
		t.EmitClick(l.Node, p)
		if l.Node.IsLeaf() || l == t.currentLayout {
			t.updateHover(p)
			return
		}
		t.changeCurrentNode(l, t.Options.Animate)
		t.changeHovered(nil)
	case t.currentNode != nil:
		t.changeCurrentNode(nil, t.Options.Animate)
		t.updateHover(p)
	}
}
