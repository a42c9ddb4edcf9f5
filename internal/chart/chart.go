// Package chart creates any of the three chart engines behind one
// interface.
package chart

import (
	"fmt"
	"strings"

	"github.com/lumipallolabs/nanovis/internal/canvas"
	"github.com/lumipallolabs/nanovis/internal/flamegraph"
	"github.com/lumipallolabs/nanovis/internal/graph"
	"github.com/lumipallolabs/nanovis/internal/model"
	"github.com/lumipallolabs/nanovis/internal/sunburst"
	"github.com/lumipallolabs/nanovis/internal/treemap"
)

// Kind names a chart type
type Kind string

const (
	Treemap    Kind = "treemap"
	Flamegraph Kind = "flamegraph"
	Sunburst   Kind = "sunburst"
)

// Kinds lists the chart types in cycling order
var Kinds = []Kind{Treemap, Flamegraph, Sunburst}

// ParseKind accepts a chart name, case-insensitively
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown chart %q (want treemap, flamegraph or sunburst)", s)
}

// Next returns the chart type after k
func (k Kind) Next() Kind {
	for i, known := range Kinds {
		if known == k {
			return Kinds[(i+1)%len(Kinds)]
		}
	}
	return Kinds[0]
}

// Engine is what every chart supports
type Engine interface {
	Draw()
	Resize()
	Select(node *model.Node, animate ...bool)
	PointerMove(p *graph.Pointer)
	PointerOut(p *graph.Pointer)
	PointerLeave(p *graph.Pointer)
	Click(p *graph.Pointer)
	Hovered() *model.Node
	Animating() bool
	Dispose()
}

// Dragger is implemented by charts that pan with the pointer held down
type Dragger interface {
	PointerDown(p *graph.Pointer)
	PointerUp(p *graph.Pointer)
}

// New creates a chart of kind painting tree on c
func New(kind Kind, tree *model.Tree, host graph.Host, c canvas.Canvas, opts graph.Options) (Engine, error) {
	if tree == nil || tree.Root == nil {
		return nil, fmt.Errorf("chart: empty tree")
	}
	switch kind {
	case Treemap:
		return treemap.New(tree, host, c, opts), nil
	case Flamegraph:
		return flamegraph.New(tree, host, c, opts), nil
	case Sunburst:
		return sunburst.New(tree, host, c, opts), nil
	}
	return nil, fmt.Errorf("chart: unknown kind %q", kind)
}

var (
	_ Engine  = (*treemap.Treemap)(nil)
	_ Engine  = (*flamegraph.Flamegraph)(nil)
	_ Engine  = (*sunburst.Sunburst)(nil)
	_ Dragger = (*flamegraph.Flamegraph)(nil)
)
