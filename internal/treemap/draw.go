package treemap

import (
	"github.com/lumipallolabs/nanovis/internal/canvas"
	"github.com/lumipallolabs/nanovis/internal/graph"
)

// Draw paints the chart at the current animation state
func (t *Treemap) Draw() {
	c := t.Canvas
	c.ClearRect(0, 0, t.Width, t.Height)
	c.SetTextAlign(canvas.AlignLeft)
	t.SetFont(canvas.Normal)

	transition := 0.0
	if t.currentLayout != nil {
		switch {
		case t.source == nil:
			transition = t.blend
		case t.target == nil:
			transition = 1 - t.blend
		default:
			transition = 1
		}
	}

	// full tree first
	var containingTarget *NodeLayout
	t.bgOriginX, t.bgOriginY = 0, 0
	if t.currentLayout == nil {
		t.drawCachedBackground()
	} else {
		for _, l := range t.layoutNodes {
			flags := t.drawNodeBackground(c, l, cullingEnabled)
			if flags&containsTarget != 0 {
				containingTarget = l
			}
		}
	}

	for _, l := range t.layoutNodes {
		t.drawNodeForeground(l, false)

		// fade what is not being focused
		if t.currentLayout != nil {
			alpha := transition
			if t.source == nil && containingTarget != nil && l != containingTarget {
				alpha = 1
			}
			c.SetAlpha(0.6 * alpha)
			c.SetFill(canvas.Paint{Color: t.Palette.Bg})
			c.FillRect(l.Box.X, l.Box.Y, l.Box.W, l.Box.H)
			c.SetAlpha(1)
		}
	}

	if t.previousLayout != nil {
		t.drawNodeBackground(c, t.previousLayout, cullingDisabled)
		t.drawNodeForeground(t.previousLayout, true)
	}

	if t.currentLayout != nil {
		b := t.currentLayout.Box
		scale := c.Scale()

		// the rect itself is off canvas, only its shadow lands under the node
		c.Save()
		c.SetShadow(canvas.Shadow{
			Color:   t.Palette.Shadow,
			Blur:    scale * 30 * transition,
			OffsetX: scale * 2 * t.Width,
			OffsetY: scale * (2*t.Height + 15*transition),
		})
		c.SetFill(canvas.Paint{Color: t.Palette.Shadow})
		c.FillRect(b.X-2*t.Width, b.Y-2*t.Height, b.W, b.H)
		c.Restore()

		t.bgOriginX = t.currentOriginX
		t.bgOriginY = t.currentOriginY
		t.drawNodeBackground(c, t.currentLayout, cullingDisabled)
		t.drawNodeForeground(t.currentLayout, true)
	}
}

// drawCachedBackground blits the unfocused backgrounds, painting them
// into an offscreen canvas first when needed.
func (t *Treemap) drawCachedBackground() {
	c := t.Canvas
	if !t.backgroundValid || t.background == nil {
		w, h := c.Size()
		bg := c.NewOffscreen(w, h)
		bg.Reset(t.Width, t.Height, c.Scale())
		for _, l := range t.layoutNodes {
			t.drawNodeBackground(bg, l, cullingDisabled)
		}
		t.background = bg
		t.backgroundValid = true
	}
	c.DrawCanvas(t.background)
}

func (t *Treemap) drawNodeBackground(c canvas.Canvas, l *NodeLayout, cull culling) drawFlags {
	node := l.Node
	b := l.Box
	var flags drawFlags
	if node == t.hovered {
		flags |= containsHover
	}
	if l == t.target {
		flags |= containsTarget
	}

	// nodes under the focused node are painted over anyway
	if cull == cullingEnabled && t.currentLayout != nil && b.Inside(t.currentLayout.Box) {
		cull = culled
	}

	for _, child := range l.Children {
		flags |= t.drawNodeBackground(c, child, cull)
	}

	if cull != culled {
		c.SetFill(t.Patterns.Fill(t.ColorOf(node), c, t.Host.PixelRatio(), t.bgOriginX, t.bgOriginY, 1))
		if len(l.Children) > 0 {
			// header and border strips only, the children cover the rest
			c.FillRect(b.X, b.Y, b.W, HeaderHeight)
			c.FillRect(b.X, b.Y+b.H-Padding, b.W, Padding)
			c.FillRect(b.X, b.Y+HeaderHeight, Padding, b.H-InsetY)
			c.FillRect(b.X+b.W-Padding, b.Y+HeaderHeight, Padding, b.H-InsetY)
		} else {
			c.FillRect(b.X, b.Y, b.W, b.H)
		}
	}
	return flags
}

func (t *Treemap) drawNodeForeground(l *NodeLayout, inCurrentNode bool) {
	c := t.Canvas
	node := l.Node
	b := l.Box

	if t.hovered == node && (t.currentNode == nil || inCurrentNode) {
		c.SetFill(canvas.Paint{Color: t.Palette.Hover})
		c.FillRect(b.X, b.Y, b.W, b.H)
	}

	c.SetStroke(t.Palette.Stroke)
	c.StrokeRect(b.X+0.5, b.Y+0.5, b.W, b.H)

	if b.H < HeaderHeight {
		return
	}

	c.SetFill(canvas.Paint{Color: t.Palette.Text})
	t.SetFont(canvas.Normal)

	maxWidth := b.W - InsetX
	textY := b.Y + graph.Round(InsetY/2)
	name := t.GetText(node)
	nameText, nameWidth := t.TextOverflowEllipsis(name, maxWidth)
	textX := b.X + graph.Round((b.W-nameWidth)/2)

	// parents show their subtext after the name when it fits
	if nameText == name && !node.IsLeaf() {
		detail := t.GetSubtext(node)
		if detail != "" {
			detail = " - " + detail
		}
		sizeText, sizeWidth := t.TextOverflowEllipsis(detail, maxWidth-nameWidth)
		textX = b.X + graph.Round((b.W-nameWidth-sizeWidth)/2)
		c.SetAlpha(0.5)
		c.FillText(sizeText, textX+nameWidth, textY)
		c.SetAlpha(1)
	}

	c.FillText(nameText, textX, textY)

	// leaves show their subtext below the name
	if b.H > InsetY+16 && node.IsLeaf() {
		sizeText, sizeWidth := t.TextOverflowEllipsis(t.GetSubtext(node), maxWidth)
		c.SetAlpha(0.5)
		c.FillText(sizeText, b.X+graph.Round((b.W-sizeWidth)/2), b.Y+HeaderHeight+graph.Round(b.H-InsetY)/2)
		c.SetAlpha(1)
	}

	for _, child := range l.Children {
		t.drawNodeForeground(child, inCurrentNode)
	}
}
