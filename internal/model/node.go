package model

import (
	"fmt"

	"github.com/google/uuid"
)

// Node is one entry of a size-weighted tree.
//
// Nodes may be built with partial fields (or decoded from YAML/JSON) and are
// completed by Normalize. A normalized tree is treated as immutable.
type Node struct {
	ID       string  `yaml:"id,omitempty"`
	Text     string  `yaml:"text,omitempty"`
	Subtext  string  `yaml:"subtext,omitempty"`
	Size     int64   `yaml:"size,omitempty"`     // total including descendants
	SizeSelf int64   `yaml:"sizeSelf,omitempty"` // weight of this node alone
	Color    Color   `yaml:"color,omitempty"`
	Children []*Node `yaml:"children,omitempty"`
	Meta     any     `yaml:"meta,omitempty"`

	Parent *Node `yaml:"-"`

	normalized bool
}

// IsLeaf reports whether the node has no children
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Normalized reports whether the node came out of Normalize
func (n *Node) Normalized() bool {
	return n.normalized
}

// CyclicTreeError is returned when a node is reachable from itself.
type CyclicTreeError struct {
	ID   string
	Text string
}

func (e *CyclicTreeError) Error() string {
	name := e.ID
	if name == "" {
		name = e.Text
	}
	return fmt.Sprintf("cyclic tree: node %q is its own ancestor", name)
}

// Normalize returns a normalized copy of n: ids assigned, parents linked,
// sizes aggregated bottom-up and children sorted by descending size.
// Normalizing an already normalized node returns it unchanged.
func Normalize(n *Node) (*Node, error) {
	return NormalizeUnder(n, nil)
}

// NormalizeUnder is Normalize with an explicit parent for the result.
func NormalizeUnder(n *Node, parent *Node) (*Node, error) {
	return normalize(n, parent, make(map[*Node]bool))
}

func normalize(n *Node, parent *Node, onPath map[*Node]bool) (*Node, error) {
	if n.normalized {
		return n, nil
	}
	if onPath[n] {
		return nil, &CyclicTreeError{ID: n.ID, Text: n.Text}
	}
	onPath[n] = true
	defer delete(onPath, n)

	out := &Node{
		ID:         n.ID,
		Text:       n.Text,
		Subtext:    n.Subtext,
		Size:       n.Size,
		SizeSelf:   n.SizeSelf,
		Color:      n.Color,
		Meta:       n.Meta,
		Parent:     parent,
		normalized: true,
	}
	if out.ID == "" {
		out.ID = uuid.NewString()
	}

	if len(n.Children) > 0 {
		out.Children = make([]*Node, 0, len(n.Children))
		var total int64
		for _, child := range n.Children {
			if child == nil {
				continue
			}
			c, err := normalize(child, out, onPath)
			if err != nil {
				return nil, err
			}
			if c.Parent != out {
				// Already normalized elsewhere; relink under this parent.
				c = c.reparented(out)
			}
			out.Children = append(out.Children, c)
			total += c.Size
		}
		out.Size = out.SizeSelf + total
		SortBySize(out.Children)
	}

	if len(out.Children) == 0 {
		if out.SizeSelf == 0 {
			out.SizeSelf = out.Size
		}
		out.Size = out.SizeSelf
	}

	return out, nil
}

// reparented returns a shallow copy of a normalized node linked to parent.
func (n *Node) reparented(parent *Node) *Node {
	c := *n
	c.Parent = parent
	c.Children = make([]*Node, len(n.Children))
	for i, child := range n.Children {
		c.Children[i] = child.reparented(&c)
	}
	return &c
}

// MaxDepth returns the number of levels in the subtree rooted at n.
// A leaf has depth 1.
func MaxDepth(n *Node) int {
	if len(n.Children) == 0 {
		return 1
	}
	depth := 0
	for _, child := range n.Children {
		if d := MaxDepth(child); d > depth {
			depth = d
		}
	}
	return depth + 1
}

// IsAncestor reports whether parent is child or one of its ancestors
func IsAncestor(parent, child *Node) bool {
	for ; child != nil; child = child.Parent {
		if child == parent {
			return true
		}
	}
	return false
}

// Walk visits n and its descendants depth-first, parents before children.
// Returning false from fn skips the node's children.
func Walk(n *Node, fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, child := range n.Children {
		Walk(child, fn)
	}
}

// Find returns the node with the given id under n, or nil
func Find(n *Node, id string) *Node {
	var found *Node
	Walk(n, func(c *Node) bool {
		if found != nil {
			return false
		}
		if c.ID == id {
			found = c
			return false
		}
		return true
	})
	return found
}
