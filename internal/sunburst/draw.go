package sunburst

import (
	"math"

	"github.com/lumipallolabs/nanovis/internal/canvas"
	"github.com/lumipallolabs/nanovis/internal/model"
)

type drawFlags int

const (
	flagRoot drawFlags = 1 << iota
	flagFill
	flagChain
	flagHover
)

// centerFont labels the focused node in the middle of the chart
var centerFont = canvas.Font{Size: 16, Bold: true}

// Draw paints the fills, then the outlines in one path, then the label of
// the focused node once it has settled in the center.
func (s *Sunburst) Draw() {
	c := s.Canvas
	c.ClearRect(0, 0, s.Width, s.Height)

	a := s.animated
	s.drawNode(s.animatedNode, a.Depth, Radius(a.Depth), a.StartAngle, a.SweepAngle, flagRoot|flagFill, math.Inf(-1))

	c.SetStroke(s.Palette.Stroke)
	c.BeginPath()
	s.drawNode(s.animatedNode, a.Depth, Radius(a.Depth), a.StartAngle, a.SweepAngle, flagRoot, math.Inf(-1))
	c.Stroke()

	if a.Depth == 0 {
		label := s.GetSubtext(s.targetNode)
		if label == "" {
			label = model.FormatBytes(s.targetNode.Size)
		}
		c.SetFill(canvas.Paint{Color: s.Palette.Fg})
		s.SetFont(centerFont)
		c.SetTextAlign(canvas.AlignCenter)
		c.FillText(label, s.centerX, s.centerY)
		c.SetTextAlign(canvas.AlignLeft)
		s.SetFont(canvas.Normal)
	}
}

// drawNode paints one ring segment and its descendants, returning the
// trailing edge the next sibling is compared against. Segments ending
// within 1.5px of the previous one are skipped, and thin segments are
// widened to 2px, both measured along the ring's middle.
func (s *Sunburst) drawNode(node *model.Node, depth, innerRadius, startAngle, sweepAngle float64, flags drawFlags, prevTailEdge float64) float64 {
	c := s.Canvas
	cx, cy := s.centerX, s.centerY
	outerRadius := Radius(depth + 1)
	if outerRadius > cy {
		return prevTailEdge
	}

	if node == s.hovered {
		flags |= flagHover
	}

	middleRadius := (innerRadius + outerRadius) / 2
	tailEdge := startAngle + sweepAngle
	if tailEdge-prevTailEdge < 1.5/middleRadius {
		return prevTailEdge
	}
	clampedSweep := math.Max(sweepAngle, 2/middleRadius)
	endAngle := startAngle + clampedSweep

	if flags&flagFill != 0 {
		c.SetFill(s.Patterns.Fill(s.ColorOf(node), c, s.Host.PixelRatio(), cx, cy, 1))
		c.BeginPath()
		c.Arc(cx, cy, innerRadius, startAngle, endAngle)
		c.Arc(cx, cy, outerRadius, endAngle, startAngle)
		c.Fill()
		if s.hovered != nil && (flags&flagHover != 0 || node.Parent == s.hovered) {
			c.SetFill(canvas.Paint{Color: s.Palette.Hover})
			c.Fill()
		}
	} else {
		fullCircle := clampedSweep == 2*math.Pi
		moveToRadius := innerRadius
		if flags&flagChain != 0 || fullCircle {
			moveToRadius = outerRadius
		}
		if flags&flagRoot != 0 && innerRadius > 0 {
			c.Arc(cx, cy, innerRadius, endAngle, startAngle)
		}
		c.MoveTo(cx+moveToRadius*math.Cos(startAngle), cy+moveToRadius*math.Sin(startAngle))
		c.Arc(cx, cy, outerRadius, startAngle, endAngle)
		if !fullCircle {
			c.LineTo(cx+innerRadius*math.Cos(endAngle), cy+innerRadius*math.Sin(endAngle))
		}
	}

	total := float64(node.Size)
	if total == 0 {
		total = 1
	}
	childFlags := flags & (flagFill | flagHover)
	bytesSoFar := 0.0
	childTailEdge := math.Inf(-1)
	for _, child := range node.Children {
		childTailEdge = s.drawNode(child, depth+1, outerRadius,
			startAngle+sweepAngle*bytesSoFar/total, float64(child.Size)/total*sweepAngle,
			childFlags, childTailEdge)
		bytesSoFar += float64(child.Size)
		childFlags |= flagChain
	}
	return tailEdge
}
