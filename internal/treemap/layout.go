package treemap

import (
	"math"

	"github.com/lumipallolabs/nanovis/internal/graph"
	"github.com/lumipallolabs/nanovis/internal/model"
)

// Layout constants in logical pixels
const (
	Padding      = 4
	HeaderHeight = 20
	InsetX       = 2 * Padding
	InsetY       = HeaderHeight + Padding
)

// Box is a rectangle in logical pixels
type Box struct {
	X, Y, W, H float64
}

// Contains reports whether the point lies inside b. The right and bottom
// edges are exclusive.
func (b Box) Contains(x, y float64) bool {
	return x >= b.X && y >= b.Y && x < b.X+b.W && y < b.Y+b.H
}

// Inside reports whether b lies entirely within o
func (b Box) Inside(o Box) bool {
	return b.X >= o.X && b.Y >= o.Y && b.X+b.W <= o.X+o.W && b.Y+b.H <= o.Y+o.H
}

// NodeLayout places a node and its laid out children
type NodeLayout struct {
	Node     *model.Node
	Box      Box
	Children []*NodeLayout
}

// Layout packs children, which must be sorted by descending size, into
// the rectangle using the squarified treemap algorithm. Children with
// room for a header and padding get their own children laid out inside.
func Layout(children []*model.Node, x, y, w, h float64) []*NodeLayout {
	out := make([]*NodeLayout, 0, len(children))

	worst := func(start, end int, shortestSide, totalArea, bytesToArea float64) float64 {
		maxArea := float64(children[start].Size) * bytesToArea
		minArea := float64(children[end].Size) * bytesToArea
		return math.Max(
			shortestSide*shortestSide*maxArea/(totalArea*totalArea),
			totalArea*totalArea/(shortestSide*shortestSide*minArea),
		)
	}

	start := 0
	for start < len(children) {
		var totalBytes float64
		for _, c := range children[start:] {
			totalBytes += float64(c.Size)
		}

		// nothing left to share: the rest collapse to empty boxes
		if totalBytes <= 0 || w <= 0 || h <= 0 {
			for _, c := range children[start:] {
				out = append(out, &NodeLayout{Node: c, Box: Box{X: x, Y: y}})
			}
			break
		}

		shortestSide := math.Min(w, h)
		bytesToArea := w * h / totalBytes
		end := start
		areaInRun := 0.0
		oldWorst := 0.0

		// grow the run while it does not get worse
		for end < len(children) {
			area := float64(children[end].Size) * bytesToArea
			newWorst := worst(start, end, shortestSide, areaInRun+area, bytesToArea)
			if end > start && oldWorst < newWorst {
				break
			}
			areaInRun += area
			oldWorst = newWorst
			end++
		}

		split := graph.Round(areaInRun / shortestSide)
		areaInLayout := 0.0
		for _, child := range children[start:end] {
			area := float64(child.Size) * bytesToArea
			lower := graph.Round(shortestSide * areaInLayout / areaInRun)
			upper := graph.Round(shortestSide * (areaInLayout + area) / areaInRun)

			var box Box
			if w >= h {
				box = Box{X: x, Y: y + lower, W: split, H: upper - lower}
			} else {
				box = Box{X: x + lower, Y: y, W: upper - lower, H: split}
			}

			l := &NodeLayout{Node: child, Box: box}
			if box.W > InsetX && box.H > InsetY {
				l.Children = Layout(child.Children, box.X+Padding, box.Y+HeaderHeight, box.W-InsetX, box.H-InsetY)
			}
			out = append(out, l)
			areaInLayout += area
		}

		start = end
		if w >= h {
			x += split
			w -= split
		} else {
			y += split
			h -= split
		}
	}
	return out
}

// HitTest returns the deepest layout containing the point. When topLevel
// is set, the layouts are the chart's outermost row: a top-level node
// with children is never returned itself, only its descendants are.
func HitTest(layouts []*NodeLayout, x, y float64, topLevel bool) *NodeLayout {
	for _, l := range layouts {
		if !l.Box.Contains(x, y) {
			continue
		}
		if hit := HitTest(l.Children, x, y, false); hit != nil {
			return hit
		}
		if topLevel && !l.Node.IsLeaf() {
			return nil
		}
		return l
	}
	return nil
}

// Search finds the layout of node, comparing by identity
func Search(layouts []*NodeLayout, node *model.Node) *NodeLayout {
	for _, l := range layouts {
		if l.Node == node {
			return l
		}
		if found := Search(l.Children, node); found != nil {
			return found
		}
	}
	return nil
}
