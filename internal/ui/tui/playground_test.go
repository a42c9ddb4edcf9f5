package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lumipallolabs/nanovis/internal/chart"
	"github.com/lumipallolabs/nanovis/internal/flamegraph"
	"github.com/lumipallolabs/nanovis/internal/graph"
	"github.com/lumipallolabs/nanovis/internal/model"
)

// testTree is one output holding a directory and a file:
//
//	out -> A(300) -> a1(200), a2(100)
//	    -> B(100)
func testTree(t *testing.T) *model.Tree {
	t.Helper()
	tree, err := model.NewTree(&model.Node{
		ID: "root",
		Children: []*model.Node{
			{ID: "out", Text: "out", Children: []*model.Node{
				{ID: "A", Text: "A", Children: []*model.Node{
					{ID: "a1", Text: "a1", Size: 200},
					{ID: "a2", Text: "a2", Size: 100},
				}},
				{ID: "B", Text: "B", Subtext: "100 bytes", Size: 100},
			}},
		},
	})
	if err != nil {
		t.Fatalf("NewTree failed: %v", err)
	}
	return tree
}

func newTestPlayground(t *testing.T, kind chart.Kind) *Playground {
	t.Helper()
	opts := graph.DefaultOptions()
	opts.Animate = false
	pg, err := NewPlayground(testTree(t), kind, opts, 80, 20)
	if err != nil {
		t.Fatalf("NewPlayground failed: %v", err)
	}
	now := time.Unix(0, 0)
	pg.Clock = func() time.Time { return now }
	t.Cleanup(pg.Close)
	return pg
}

// header of A in an 80x20 treemap
func clickA(pg *Playground) {
	pg.Mouse(tea.MouseMsg{X: 10, Y: 3, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	pg.Mouse(tea.MouseMsg{X: 10, Y: 3, Action: tea.MouseActionRelease})
}

func TestPlaygroundView(t *testing.T) {
	pg := newTestPlayground(t, chart.Treemap)

	lines := strings.Split(strings.TrimSuffix(pg.View(), "\n"), "\n")
	if len(lines) != 20 {
		t.Errorf("expected 20 rows, got %d", len(lines))
	}
	if pg.Pending() {
		t.Error("no frame should be pending after start")
	}
}

func TestPlaygroundClickFocuses(t *testing.T) {
	pg := newTestPlayground(t, chart.Treemap)

	clickA(pg)
	if pg.Selected() == nil || pg.Selected().ID != "A" {
		t.Fatalf("expected A focused, got %v", pg.Selected())
	}

	pg.Back()
	if pg.Selected() == nil || pg.Selected().ID != "out" {
		t.Errorf("back should focus out, got %v", pg.Selected())
	}

	pg.Select(nil)
	if pg.Selected() != nil {
		t.Errorf("expected no focus, got %v", pg.Selected())
	}
}

func TestPlaygroundHoverAndLeave(t *testing.T) {
	pg := newTestPlayground(t, chart.Treemap)

	pg.Mouse(tea.MouseMsg{X: 10, Y: 3, Action: tea.MouseActionMotion})
	if pg.Hovered() == nil || pg.Hovered().ID != "A" {
		t.Fatalf("expected A hovered, got %v", pg.Hovered())
	}

	pg.Mouse(tea.MouseMsg{X: 10, Y: 25, Action: tea.MouseActionMotion})
	if pg.Hovered() != nil {
		t.Errorf("leaving the chart should clear the hover, got %v", pg.Hovered())
	}
}

func TestPlaygroundWheelZoomsFlamegraph(t *testing.T) {
	pg := newTestPlayground(t, chart.Flamegraph)
	f, ok := pg.Engine().(*flamegraph.Flamegraph)
	if !ok {
		t.Fatalf("expected a flamegraph, got %T", pg.Engine())
	}

	min0, max0 := f.Viewport()
	pg.Mouse(tea.MouseMsg{X: 40, Y: 1, Ctrl: true, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp})
	min1, max1 := f.Viewport()
	if !(max1-min1 < max0-min0) {
		t.Errorf("viewport did not narrow: [%v, %v] -> [%v, %v]", min0, max0, min1, max1)
	}
	if !pg.Pending() {
		t.Error("zooming should request a frame")
	}
	pg.Frame()
}

func TestPlaygroundSetKindKeepsSelection(t *testing.T) {
	pg := newTestPlayground(t, chart.Treemap)
	clickA(pg)

	if err := pg.SetKind(chart.Sunburst); err != nil {
		t.Fatalf("SetKind failed: %v", err)
	}
	if pg.Kind() != chart.Sunburst {
		t.Errorf("expected sunburst, got %s", pg.Kind())
	}
	if pg.Selected() == nil || pg.Selected().ID != "A" {
		t.Errorf("selection lost on switch: %v", pg.Selected())
	}
	if pg.Hovered() != nil {
		t.Errorf("hover should reset on switch, got %v", pg.Hovered())
	}
}

func TestPlaygroundToggleDark(t *testing.T) {
	pg := newTestPlayground(t, chart.Treemap)
	if pg.Dark() {
		t.Fatal("default palette should be light")
	}

	pg.ToggleDark()
	if !pg.Dark() {
		t.Error("expected dark after toggle")
	}
	if !pg.Pending() {
		t.Error("scheme change should request a redraw")
	}
	pg.Frame()

	// the palette survives a chart switch
	if err := pg.SetKind(chart.Flamegraph); err != nil {
		t.Fatalf("SetKind failed: %v", err)
	}
	if !pg.Dark() || pg.canvas.Background != graph.DarkPalette().Bg {
		t.Errorf("dark background lost, got %q", pg.canvas.Background)
	}
}

func TestBreadcrumb(t *testing.T) {
	tree := testTree(t)
	a1 := model.Find(tree.Root, "a1")
	got := Breadcrumb(a1)
	if got != "out › A › a1" {
		t.Errorf("unexpected breadcrumb %q", got)
	}
}
