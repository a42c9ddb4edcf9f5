package cache

import (
	"github.com/lumipallolabs/nanovis/internal/color"
	"github.com/lumipallolabs/nanovis/internal/model"
)

// Change is how a node differs from the previous snapshot
type Change struct {
	IsNew     bool
	PrevSize  int64
	HasGrew   bool // the node or a descendant grew or appeared
	HasShrunk bool // the node or a descendant shrank or lost a child
}

// Delta is the node's size change
func (c Change) Delta(size int64) int64 {
	if c.IsNew {
		return size
	}
	return size - c.PrevSize
}

// Diff colors
var (
	ColorNew    = "#39FF14"
	ColorGrew   = "#FF5555"
	ColorShrunk = "#5EEAD4"
)

// Diff compares current against previous by node id. A nil previous marks
// everything new.
func Diff(current, previous *model.Node) map[string]Change {
	changes := make(map[string]Change)
	prevMap := make(map[string]*model.Node)
	if previous != nil {
		buildIDMap(previous, prevMap)
	}
	diffRecursive(current, prevMap, changes)
	return changes
}

func buildIDMap(node *model.Node, m map[string]*model.Node) {
	m[node.ID] = node
	for _, child := range node.Children {
		buildIDMap(child, m)
	}
}

// diffRecursive fills changes for node and its subtree and returns
// (hasGrew, hasShrunk).
func diffRecursive(node *model.Node, prevMap map[string]*model.Node, changes map[string]Change) (bool, bool) {
	var c Change
	prev, exists := prevMap[node.ID]
	if exists {
		c.PrevSize = prev.Size
	} else {
		c.IsNew = true
	}

	delta := c.Delta(node.Size)
	c.HasGrew = c.IsNew || delta > 0
	c.HasShrunk = delta < 0

	for _, child := range node.Children {
		g, s := diffRecursive(child, prevMap, changes)
		c.HasGrew = c.HasGrew || g
		c.HasShrunk = c.HasShrunk || s
	}

	// children that disappeared count as shrinking
	if exists && !c.HasShrunk && len(prev.Children) > 0 {
		kept := make(map[string]bool, len(node.Children))
		for _, child := range node.Children {
			kept[child.ID] = true
		}
		for _, pc := range prev.Children {
			if !kept[pc.ID] {
				c.HasShrunk = true
				break
			}
		}
	}

	changes[node.ID] = c
	return c.HasGrew, c.HasShrunk
}

// DiffColors returns a getter painting new nodes green, grown nodes red and
// shrunk nodes teal. Subtrees with both kinds of change get stripes and
// unchanged nodes use the palette fallback.
func DiffColors(changes map[string]Change) color.Getter {
	colors := make(map[string]model.Color, len(changes))
	for id, c := range changes {
		switch {
		case c.IsNew:
			colors[id] = model.Solid(ColorNew)
		case c.HasGrew && c.HasShrunk:
			colors[id] = model.Stripes(ColorGrew, ColorShrunk)
		case c.HasGrew:
			colors[id] = model.Solid(ColorGrew)
		case c.HasShrunk:
			colors[id] = model.Solid(ColorShrunk)
		default:
			colors[id] = model.Solid(color.Fallback)
		}
	}
	return color.FromMap(colors)
}
