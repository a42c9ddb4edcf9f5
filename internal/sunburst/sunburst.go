// Package sunburst draws a tree as concentric rings around the focused
// node and animates drilling in and out of it.
package sunburst

import (
	"math"

	"github.com/tanema/gween/ease"

	"github.com/lumipallolabs/nanovis/internal/canvas"
	"github.com/lumipallolabs/nanovis/internal/graph"
	"github.com/lumipallolabs/nanovis/internal/logging"
	"github.com/lumipallolabs/nanovis/internal/model"
)

// Sunburst is the sunburst chart
type Sunburst struct {
	*graph.Context

	// root skips any chain of single children at the top of the tree
	root     *model.Node
	maxDepth int

	centerX, centerY float64

	current *model.Node
	hovered *model.Node
	history []*model.Node

	tween        graph.Tween
	source       Slice
	target       Slice
	animated     Slice
	animatedNode *model.Node
	targetNode   *model.Node
}

// New creates a sunburst of tree painted on c and attaches it to host
func New(tree *model.Tree, host graph.Host, c canvas.Canvas, opts graph.Options) *Sunburst {
	root, depth := tree.Root, tree.MaxDepth
	for len(root.Children) == 1 {
		root = root.Children[0]
		depth--
	}

	s := &Sunburst{
		Context:      graph.NewContext(tree, host, c, opts),
		root:         root,
		maxDepth:     depth,
		current:      root,
		source:       FullCircle(),
		target:       FullCircle(),
		animated:     FullCircle(),
		animatedNode: root,
		targetNode:   root,
	}
	s.SetTick(s.tick)

	s.AddDisposable(host.OnResize(s.Resize))
	s.AddDisposable(host.OnWheel(func(w *graph.Wheel) {
		s.PointerMove(&w.Pointer)
	}))

	s.Resize()
	host.Defer(s.Resize)
	return s
}

// Root returns the node the chart is rooted at
func (s *Sunburst) Root() *model.Node { return s.root }

// Current returns the focused node
func (s *Sunburst) Current() *model.Node { return s.current }

// Hovered returns the node under the pointer, or nil
func (s *Sunburst) Hovered() *model.Node { return s.hovered }

// History returns the nodes the center click goes back through, oldest
// first.
func (s *Sunburst) History() []*model.Node { return s.history }

// Animated returns the node being drawn at the center and its slice
func (s *Sunburst) Animated() (*model.Node, Slice) {
	return s.animatedNode, s.animated
}

// Center returns the chart center in canvas coordinates
func (s *Sunburst) Center() (x, y float64) {
	return s.centerX, s.centerY
}

// Animating reports whether a drill animation is running
func (s *Sunburst) Animating() bool {
	_, done := s.tween.Progress(s.Now())
	return !done
}

// Resize fits the chart into the host as a square no larger than the
// tree's outermost ring needs, and redraws.
func (s *Sunburst) Resize() {
	if s.Disposed() {
		return
	}
	s.ReadSize()
	size := math.Min(s.Width, s.Height)
	size = math.Min(size, 2*math.Ceil(Radius(float64(s.maxDepth))))
	s.Width, s.Height = size, size
	s.centerX = math.Floor(size / 2)
	s.centerY = s.centerX

	s.ResetCanvas(size, size)
	logging.Engine.Debug("sunburst resize", "size", size, "depth", s.maxDepth)
	s.Draw()
}

func (s *Sunburst) tick() {
	v, done := s.tween.Progress(s.Now())
	if done {
		s.animatedNode = s.targetNode
		s.target = FullCircle()
		v = 1
	} else {
		s.Invalidate()
	}
	s.animated = s.source.Lerp(s.target, v)
	s.Draw()
}

// Select focuses node, or the chart root for nil. animate defaults to the
// Animate option.
func (s *Sunburst) Select(node *model.Node, animate ...bool) {
	anim := s.Options.Animate
	if len(animate) > 0 {
		anim = animate[0]
	}
	if node == nil || model.IsAncestor(node, s.root) {
		node = s.root
	}
	if !model.IsAncestor(s.root, node) {
		logging.Engine.Debug("sunburst select: node not in chart, keeping selection", "id", node.ID)
		return
	}
	s.changeCurrentNode(node, anim)
}

func (s *Sunburst) changeCurrentNode(node *model.Node, animate bool) {
	if s.targetNode == node {
		return
	}
	s.current = node
	s.history = nil
	if node == s.root {
		s.EmitSelect(nil)
	} else {
		s.EmitSelect(node)
	}

	switch {
	case !animate:
		s.animatedNode = node
		s.animated = FullCircle()
		s.target = FullCircle()
		s.tween = graph.Tween{}

	// drill in: the node grows from its slot to the full circle
	case model.IsAncestor(s.animatedNode, node):
		s.animated = NarrowSlice(s.animatedNode, node, s.animated)
		s.target = FullCircle()
		s.animatedNode = node

	// back out: the drawn node shrinks into its slot in the new root
	case model.IsAncestor(node, s.animatedNode):
		s.target = NarrowSlice(node, s.animatedNode, FullCircle())

	// sideways: grow from where node sits relative to the drawn node
	default:
		a := commonAncestor(s.animatedNode, node)
		frame := WidenSlice(a, s.animatedNode, s.animated)
		s.animated = NarrowSlice(a, node, frame)
		s.animated.Depth = math.Max(0, s.animated.Depth)
		s.target = FullCircle()
		s.animatedNode = node
	}

	s.source = s.animated
	s.targetNode = node
	if animate {
		s.tween = graph.NewTween(s.Now(), s.Options.AnimateDuration, ease.InOutCubic)
	}
	s.Invalidate()
}

// HitTest returns the node under the point. The center disc stands for
// the parent of the node drawn there, nil at the chart root.
func (s *Sunburst) HitTest(x, y float64) *model.Node {
	dx, dy := x-s.centerX, y-s.centerY
	radius := math.Hypot(dx, dy)
	angle := math.Atan2(dy, dx)

	for _, p := range LayoutSlices(s.animatedNode, s.animated, s.centerY) {
		if radius < p.Inner || radius >= p.Outer {
			continue
		}
		delta := (angle - p.StartAngle) / (2 * math.Pi)
		delta -= math.Floor(delta)
		delta *= 2 * math.Pi
		if delta < p.SweepAngle {
			if p.Node == s.animatedNode {
				if p.Node == s.root {
					return nil
				}
				return p.Node.Parent
			}
			return p.Node
		}
	}
	return nil
}

func (s *Sunburst) changeHovered(node *model.Node) {
	if s.hovered != node {
		s.hovered = node
		s.Invalidate()
	}
}

// PointerMove updates the hovered node. The center reports no hover.
func (s *Sunburst) PointerMove(p *graph.Pointer) {
	node := s.HitTest(p.X, p.Y)
	s.changeHovered(node)
	if node != nil && node != s.animatedNode.Parent {
		s.EmitHover(node, p)
	} else {
		s.EmitHover(nil, p)
	}
}

// PointerOut clears the hovered node
func (s *Sunburst) PointerOut(p *graph.Pointer) {
	s.changeHovered(nil)
	s.EmitHover(nil, p)
}

// Click drills into a clicked ring with children. Clicking the center goes
// back to the previously focused node, or up one level when there is no
// history.
func (s *Sunburst) Click(p *graph.Pointer) {
	node := s.HitTest(p.X, p.Y)
	if node == nil {
		return
	}
	s.EmitClick(node, p)

	var stack []*model.Node
	if node != s.animatedNode.Parent {
		stack = append(append(stack, s.history...), s.current)
	} else if n := len(s.history); n > 0 {
		node = s.history[n-1]
		stack = append(stack, s.history[:n-1]...)
	}

	if len(node.Children) > 0 {
		s.changeCurrentNode(node, s.Options.Animate)
		s.history = stack
	}
}
