package flamegraph

import (
	"math"

	"github.com/lumipallolabs/nanovis/internal/canvas"
	"github.com/lumipallolabs/nanovis/internal/model"
)

type drawFlags int

const (
	// flagOutput marks the top row, drawn as bold labels without a bar
	flagOutput drawFlags = 1 << iota
	flagHover
)

// Draw paints every visible row
func (f *Flamegraph) Draw() {
	c := f.Canvas
	c.ClearRect(0, 0, f.Width, f.Height)
	c.SetTextAlign(canvas.AlignLeft)
	f.SetFont(canvas.Normal)

	start := 0.0
	rightEdge := math.Inf(-1)
	for _, child := range f.Tree.Root.Children {
		rightEdge = f.drawNode(child, 0, start, rightEdge, flagOutput)
		start += float64(child.Size)
	}
}

// drawNode paints node and its descendants and returns the right edge to
// compare the next sibling against. A node ending less than 1.5px past
// the previous edge is skipped, and bars are at least 2px wide.
func (f *Flamegraph) drawNode(node *model.Node, y, startBytes, prevRightEdge float64, flags drawFlags) float64 {
	c := f.Canvas
	scale := f.scale()
	x := f.zoomedOutMin + (startBytes-f.viewport.Min)*scale
	w := float64(node.Size) * scale
	rightEdge := x + w
	if rightEdge < prevRightEdge+overlapDistance {
		return prevRightEdge
	}
	if x+w < 0 || x > f.layoutWidth {
		return rightEdge
	}

	rectWidth := math.Max(w, minRectWidth)
	textX := math.Max(x, Margin) + TextIndent
	textY := y + RowHeight/2
	typesetW := w + x - textX
	typesetX := 0.0

	// shift from layout space to the canvas
	cx := x - Margin
	ctextX := textX - Margin

	textColor := f.Palette.Text
	if flags&flagOutput != 0 {
		textColor = f.Palette.Fg
		f.SetFont(canvas.Bold)
	} else {
		originX := f.zoomedOutMin - f.viewport.Min*scale - Margin
		c.SetFill(f.Patterns.Fill(f.ColorOf(node), c, f.Host.PixelRatio(), originX, RowHeight, scale*f.stripeScaleAdjust))
		c.FillRect(cx, y, rectWidth, RowHeight)

		if flags&flagHover != 0 || node == f.hovered {
			c.SetFill(canvas.Paint{Color: f.Palette.Hover})
			c.FillRect(cx, y, rectWidth, RowHeight)
			flags |= flagHover
		}
	}

	if f.EllipsisWidth() < typesetW {
		name := f.GetText(node)
		if measured := c.MeasureText(name); measured <= typesetW {
			typesetX += measured
		} else {
			name, _ = f.TextOverflowEllipsis(name, typesetW)
			typesetX = typesetW
		}
		c.SetFill(canvas.Paint{Color: textColor})
		c.FillText(name, ctextX, textY)
	}

	if flags&flagOutput != 0 {
		f.SetFont(canvas.Normal)
	}

	if typesetX+f.EllipsisWidth() < typesetW {
		sizeText := f.GetSubtext(node)
		if sizeText != "" {
			sizeText = " - " + sizeText
		}
		if measured := c.MeasureText(sizeText); typesetX+measured > typesetW {
			sizeText, _ = f.TextOverflowEllipsis(sizeText, typesetW-typesetX)
		}
		c.SetFill(canvas.Paint{Color: textColor})
		c.SetAlpha(0.5)
		c.FillText(sizeText, ctextX+typesetX, textY)
		c.SetAlpha(1)
	}

	childRightEdge := math.Inf(-1)
	for _, child := range node.Children {
		childRightEdge = f.drawNode(child, y+RowHeight, startBytes, childRightEdge, flags&^flagOutput)
		startBytes += float64(child.Size)
	}

	// the stroke overlaps the right and bottom edges
	if flags&flagOutput == 0 {
		c.SetStroke(f.Palette.Stroke)
		c.StrokeRect(cx+0.5, y+0.5, rectWidth, RowHeight)
	}
	return rightEdge
}
