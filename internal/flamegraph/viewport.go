package flamegraph

import (
	"math"

	"github.com/lumipallolabs/nanovis/internal/model"
)

// Layout constants in logical pixels
const (
	// Margin is the off-canvas slack on each side of the chart
	Margin          = 50
	RowHeight       = 24
	TextIndent      = 5
	ZoomedOutWidth  = 1000
	minRectWidth    = 2
	overlapDistance = 1.5
	dragThreshold   = 3
)

// zoomBase is the zoom factor per unit of wheel delta
const zoomBase = 1.01

// Viewport is the visible window of the byte axis
type Viewport struct {
	Min, Max float64
}

// Span is the width of the window, never less than 1
func (v Viewport) Span() float64 {
	if s := v.Max - v.Min; s > 0 {
		return s
	}
	return 1
}

// minSpan is the narrowest window in bytes
const minSpan = 1

// Clamp keeps the window inside [0, total] with Min <= Max. An inverted
// window is reordered, a window sticking out on one side is shifted back
// before it is cut, and a window narrower than one byte is widened around
// its middle. A window that is not a finite range resets to the whole axis.
func (v Viewport) Clamp(total float64) Viewport {
	if !(total > 0) || math.IsInf(total, 0) {
		return Viewport{}
	}
	if v.Min > v.Max {
		v.Min, v.Max = v.Max, v.Min
	}
	span := v.Max - v.Min
	if math.IsNaN(span) || span >= total {
		return Viewport{Max: total}
	}
	if narrowest := math.Min(minSpan, total); span < narrowest {
		mid := v.Min + span/2
		v.Min, v.Max = mid-narrowest/2, mid+narrowest/2
	}

	translate := 0.0
	if v.Min < 0 {
		translate = -v.Min
	} else if v.Max > total {
		translate = total - v.Max
	}
	v.Min = math.Max(0, math.Min(total, v.Min+translate))
	v.Max = math.Max(v.Min, math.Min(total, v.Max+translate))
	return v
}

// Pan moves the window by deltaX pixels of a view zoomedOutWidth wide
func (v Viewport) Pan(deltaX, zoomedOutWidth, total float64) Viewport {
	if zoomedOutWidth <= 0 {
		zoomedOutWidth = 1
	}
	t := deltaX * (v.Max - v.Min) / zoomedOutWidth
	return Viewport{Min: v.Min + t, Max: v.Max + t}.Clamp(total)
}

// Zoom scales the window by 1.01^deltaY around the byte offset pivot. A
// scale that under- or overflows leaves the window at its narrowest or
// widest.
func (v Viewport) Zoom(pivot, deltaY, total float64) Viewport {
	scale := math.Pow(zoomBase, deltaY)
	switch {
	case math.IsNaN(scale) || math.IsNaN(pivot):
		return v.Clamp(total)
	case math.IsInf(scale, 1):
		return Viewport{Max: total}.Clamp(total)
	}
	return Viewport{
		Min: pivot + (v.Min-pivot)*scale,
		Max: pivot + (v.Max-pivot)*scale,
	}.Clamp(total)
}

// Lerp blends from v to o by k
func (v Viewport) Lerp(o Viewport, k float64) Viewport {
	return Viewport{
		Min: v.Min + (o.Min-v.Min)*k,
		Max: v.Max + (o.Max-v.Max)*k,
	}
}

// ByteRange returns the offset where node starts on the byte axis of the
// chart rooted at root, and its depth below root. ok is false when node
// is not part of that tree.
func ByteRange(root, node *model.Node) (start float64, depth int, ok bool) {
	if node == nil {
		return 0, 0, false
	}
	n := node
	for ; n.Parent != nil; n = n.Parent {
		for _, sib := range n.Parent.Children {
			if sib == n {
				break
			}
			start += float64(sib.Size)
		}
		depth++
	}
	if n != root {
		return 0, 0, false
	}
	return start, depth, true
}
