package sunburst

import (
	"math"

	"github.com/lumipallolabs/nanovis/internal/model"
)

// StartAngle points at twelve o'clock
const StartAngle = -math.Pi / 2

// Slice positions a node's ring segment: the ring index and the angular
// extent in radians.
type Slice struct {
	Depth      float64
	StartAngle float64
	SweepAngle float64
}

// FullCircle is the slice of the node at the center of the chart
func FullCircle() Slice {
	return Slice{Depth: 0, StartAngle: StartAngle, SweepAngle: 2 * math.Pi}
}

// Lerp blends from s to o by k
func (s Slice) Lerp(o Slice, k float64) Slice {
	return Slice{
		Depth:      s.Depth + (o.Depth-s.Depth)*k,
		StartAngle: s.StartAngle + (o.StartAngle-s.StartAngle)*k,
		SweepAngle: s.SweepAngle + (o.SweepAngle-s.SweepAngle)*k,
	}
}

// Radius is the inner radius of the ring at depth. Rings get thinner
// further out so deep trees stay legible.
func Radius(depth float64) float64 {
	return 50 * 8 * math.Log(1+math.Log(1+depth/8))
}

// NarrowSlice returns the slice of node, a descendant of root, when root
// occupies s.
func NarrowSlice(root, node *model.Node, s Slice) Slice {
	if root == node || node == nil || node.Parent == nil {
		return s
	}
	parent := node.Parent
	s = NarrowSlice(root, parent, s)

	total := float64(parent.Size)
	if total == 0 {
		total = 1
	}
	bytesSoFar := 0.0
	for _, child := range parent.Children {
		if child == node {
			s.StartAngle += s.SweepAngle * bytesSoFar / total
			s.SweepAngle = float64(child.Size) / total * s.SweepAngle
			break
		}
		bytesSoFar += float64(child.Size)
	}
	s.Depth++
	return s
}

// WidenSlice is the inverse of NarrowSlice: given that node occupies s, it
// returns the slice root occupies. A zero sized node keeps the sweep.
func WidenSlice(root, node *model.Node, s Slice) Slice {
	unit := NarrowSlice(root, node, Slice{SweepAngle: 1})
	sweep := s.SweepAngle
	if unit.SweepAngle > 0 {
		sweep = s.SweepAngle / unit.SweepAngle
	}
	return Slice{
		Depth:      s.Depth - unit.Depth,
		StartAngle: s.StartAngle - sweep*unit.StartAngle,
		SweepAngle: sweep,
	}
}

// Placed is a node's ring segment with its radii
type Placed struct {
	Node *model.Node
	Slice
	Inner, Outer float64
}

// LayoutSlices places node at s and its descendants around it, parents
// before children. Rings reaching past maxRadius are left out along with
// everything outside them.
func LayoutSlices(node *model.Node, s Slice, maxRadius float64) []Placed {
	var out []Placed
	var visit func(n *model.Node, depth, inner, start, sweep float64)
	visit = func(n *model.Node, depth, inner, start, sweep float64) {
		outer := Radius(depth + 1)
		if outer > maxRadius {
			return
		}
		out = append(out, Placed{
			Node:  n,
			Slice: Slice{Depth: depth, StartAngle: start, SweepAngle: sweep},
			Inner: inner,
			Outer: outer,
		})

		total := float64(n.Size)
		if total == 0 {
			total = 1
		}
		bytesSoFar := 0.0
		for _, child := range n.Children {
			visit(child, depth+1, outer, start+sweep*bytesSoFar/total, float64(child.Size)/total*sweep)
			bytesSoFar += float64(child.Size)
		}
	}
	visit(node, s.Depth, Radius(s.Depth), s.StartAngle, s.SweepAngle)
	return out
}

// commonAncestor returns the deepest node that is an ancestor of both
func commonAncestor(a, b *model.Node) *model.Node {
	for n := a; n != nil; n = n.Parent {
		if model.IsAncestor(n, b) {
			return n
		}
	}
	return nil
}
