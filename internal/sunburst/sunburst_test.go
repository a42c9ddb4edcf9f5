package sunburst

import (
	"math"
	"testing"
	"time"

	"github.com/lumipallolabs/nanovis/internal/canvas"
	"github.com/lumipallolabs/nanovis/internal/graph"
	"github.com/lumipallolabs/nanovis/internal/model"
)

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func sliceEqual(a, b Slice) bool {
	return approxEqual(a.Depth, b.Depth, 1e-9) &&
		approxEqual(a.StartAngle, b.StartAngle, 1e-9) &&
		approxEqual(a.SweepAngle, b.SweepAngle, 1e-9)
}

func mustTree(t *testing.T, root *model.Node) *model.Tree {
	t.Helper()
	tree, err := model.NewTree(root)
	if err != nil {
		t.Fatalf("NewTree failed: %v", err)
	}
	return tree
}

// sampleTree:
//
//	root -> a(600) -> a1(400) -> x(300), y(100)
//	               -> a2(200)
//	     -> b(400)
func sampleTree(t *testing.T) *model.Tree {
	return mustTree(t, &model.Node{
		ID: "root",
		Children: []*model.Node{
			{ID: "a", Children: []*model.Node{
				{ID: "a1", Children: []*model.Node{
					{ID: "x", Size: 300},
					{ID: "y", Size: 100},
				}},
				{ID: "a2", Size: 200},
			}},
			{ID: "b", Subtext: "b bytes", Size: 400},
		},
	})
}

type recorded struct {
	selects []*model.Node
	clicks  []*model.Node
	hovers  []*model.Node
}

func newTestSunburst(t *testing.T, tree *model.Tree) (*Sunburst, *graph.Loop, *canvas.Recorder, *recorded) {
	t.Helper()
	ev := &recorded{}
	opts := graph.DefaultOptions()
	opts.OnSelect = func(n *model.Node) { ev.selects = append(ev.selects, n) }
	opts.OnClick = func(n *model.Node, p *graph.Pointer) { ev.clicks = append(ev.clicks, n) }
	opts.OnHover = func(n *model.Node, p *graph.Pointer) { ev.hovers = append(ev.hovers, n) }

	loop := graph.NewLoop(400, 300, 1)
	rec := canvas.NewRecorder()
	s := New(tree, loop, rec, opts)
	loop.RunFrame()
	return s, loop, rec, ev
}

func finish(loop *graph.Loop) {
	loop.RunFrame()
	loop.Advance(time.Second)
	loop.Drain(10)
}

// pointIn returns the canvas point in the middle of node's segment
func pointIn(t *testing.T, s *Sunburst, id string) *graph.Pointer {
	t.Helper()
	node, slice := s.Animated()
	cx, cy := s.Center()
	for _, p := range LayoutSlices(node, slice, cy) {
		if p.Node.ID != id {
			continue
		}
		r := (p.Inner + p.Outer) / 2
		a := p.StartAngle + p.SweepAngle/2
		return &graph.Pointer{X: cx + r*math.Cos(a), Y: cy + r*math.Sin(a)}
	}
	t.Fatalf("%s is not on screen", id)
	return nil
}

func center(s *Sunburst) *graph.Pointer {
	x, y := s.Center()
	return &graph.Pointer{X: x, Y: y}
}

func TestRadius(t *testing.T) {
	if Radius(0) != 0 {
		t.Errorf("Radius(0) = %v", Radius(0))
	}
	prev := 0.0
	for d := 1.0; d <= 20; d++ {
		r := Radius(d)
		if r <= prev {
			t.Errorf("Radius(%v) = %v not above %v", d, r, prev)
		}
		if Radius(2*d) >= 2*r {
			t.Errorf("Radius should grow sub-linearly at %v", d)
		}
		prev = r
	}
}

func TestNarrowAndWidenSlice(t *testing.T) {
	tree := sampleTree(t)
	root := tree.Root
	a1 := model.Find(root, "a1")
	y := model.Find(root, "y")

	got := NarrowSlice(root, a1, FullCircle())
	want := Slice{Depth: 2, StartAngle: StartAngle, SweepAngle: 2 * math.Pi * 0.4}
	if !sliceEqual(got, want) {
		t.Errorf("a1 slice = %+v, want %+v", got, want)
	}

	got = NarrowSlice(root, y, FullCircle())
	want = Slice{Depth: 3, StartAngle: StartAngle + 2*math.Pi*0.3, SweepAngle: 2 * math.Pi * 0.1}
	if !sliceEqual(got, want) {
		t.Errorf("y slice = %+v, want %+v", got, want)
	}

	if back := WidenSlice(root, y, got); !sliceEqual(back, FullCircle()) {
		t.Errorf("widen(narrow(full)) = %+v", back)
	}

	frame := Slice{Depth: 1.5, StartAngle: 0.3, SweepAngle: 1.7}
	a := model.Find(root, "a")
	if back := WidenSlice(a, y, NarrowSlice(a, y, frame)); !sliceEqual(back, frame) {
		t.Errorf("widen is not the inverse of narrow: %+v", back)
	}

	if same := NarrowSlice(root, root, frame); same != frame {
		t.Errorf("narrowing to the root itself changed the slice: %+v", same)
	}
}

func TestLayoutSlicesMatchNarrowSlice(t *testing.T) {
	tree := sampleTree(t)
	placed := LayoutSlices(tree.Root, FullCircle(), math.Inf(1))
	if len(placed) != 7 {
		t.Fatalf("expected 7 slices, got %d", len(placed))
	}
	for _, p := range placed {
		if want := NarrowSlice(tree.Root, p.Node, FullCircle()); !sliceEqual(p.Slice, want) {
			t.Errorf("%s: layout %+v, narrow %+v", p.Node.ID, p.Slice, want)
		}
		if !approxEqual(p.Inner, Radius(p.Depth), 1e-9) || !approxEqual(p.Outer, Radius(p.Depth+1), 1e-9) {
			t.Errorf("%s: radii %v..%v", p.Node.ID, p.Inner, p.Outer)
		}
	}

	// the outermost ring does not fit under radius(3)
	clipped := LayoutSlices(tree.Root, FullCircle(), Radius(3))
	for _, p := range clipped {
		if p.Depth >= 3 {
			t.Errorf("%s should be clipped", p.Node.ID)
		}
	}
}

func TestResize(t *testing.T) {
	s, loop, _, _ := newTestSunburst(t, sampleTree(t))
	// 2 * ceil(radius(4)) is 274
	if s.Width != 274 || s.Height != 274 {
		t.Errorf("size = %vx%v", s.Width, s.Height)
	}
	if x, y := s.Center(); x != 137 || y != 137 {
		t.Errorf("center = %v,%v", x, y)
	}

	loop.SetSize(100, 200)
	if s.Width != 100 {
		t.Errorf("narrow host: size %v", s.Width)
	}
}

func TestDrillDownConvergence(t *testing.T) {
	s, loop, _, ev := newTestSunburst(t, sampleTree(t))
	root := s.Root()
	a1 := model.Find(root, "a1")
	_, cy := s.Center()

	var fromRoot Placed
	for _, p := range LayoutSlices(root, FullCircle(), cy) {
		if p.Node == a1 {
			fromRoot = p
		}
	}

	s.Select(a1)
	if len(ev.selects) != 1 || ev.selects[0] != a1 {
		t.Fatalf("expected select(a1), got %v", ev.selects)
	}

	// the animation starts where a1 sits in the root view
	loop.RunFrame()
	node, slice := s.Animated()
	if node != a1 || !sliceEqual(slice, fromRoot.Slice) {
		t.Errorf("start: %s %+v, want %+v", node.ID, slice, fromRoot.Slice)
	}

	loop.Advance(175 * time.Millisecond)
	loop.RunFrame()
	if _, mid := s.Animated(); !approxEqual(mid.Depth, 1, 1e-6) {
		t.Errorf("halfway depth = %v", mid.Depth)
	}

	loop.Advance(time.Second)
	loop.Drain(10)
	node, slice = s.Animated()
	if node != a1 || !sliceEqual(slice, FullCircle()) {
		t.Fatalf("end: %s %+v", node.ID, slice)
	}

	animated := LayoutSlices(node, slice, cy)
	direct := LayoutSlices(a1, FullCircle(), cy)
	if len(animated) != len(direct) {
		t.Fatalf("layout sizes differ: %d vs %d", len(animated), len(direct))
	}
	for i := range direct {
		if animated[i].Node != direct[i].Node || !sliceEqual(animated[i].Slice, direct[i].Slice) {
			t.Errorf("slice %d: %+v vs %+v", i, animated[i], direct[i])
		}
	}
}

func TestZoomOutShrinksIntoSlot(t *testing.T) {
	s, loop, _, ev := newTestSunburst(t, sampleTree(t))
	a1 := model.Find(s.Root(), "a1")
	s.Select(a1, false)
	loop.Drain(10)

	s.Select(nil)
	if ev.selects[len(ev.selects)-1] != nil {
		t.Errorf("returning to the root should select nil, got %v", ev.selects)
	}
	loop.RunFrame()
	loop.Advance(175 * time.Millisecond)
	loop.RunFrame()
	node, mid := s.Animated()
	if node != a1 {
		t.Errorf("the focused node shrinks away, got %s", node.ID)
	}
	if !(mid.SweepAngle < 2*math.Pi && mid.Depth > 0) {
		t.Errorf("mid slice %+v", mid)
	}

	loop.Advance(time.Second)
	loop.Drain(10)
	node, end := s.Animated()
	if node != s.Root() || !sliceEqual(end, FullCircle()) {
		t.Errorf("end: %s %+v", node.ID, end)
	}
}

func TestSidewaysSelect(t *testing.T) {
	s, loop, _, _ := newTestSunburst(t, sampleTree(t))
	a1 := model.Find(s.Root(), "a1")
	b := model.Find(s.Root(), "b")
	s.Select(a1, false)
	loop.Drain(10)

	s.Select(b)
	loop.RunFrame()
	node, start := s.Animated()
	if node != b || start.Depth < 0 {
		t.Errorf("start: %s %+v", node.ID, start)
	}
	finish(loop)
	if node, end := s.Animated(); node != b || !sliceEqual(end, FullCircle()) {
		t.Errorf("end: %s %+v", node.ID, end)
	}
}

func TestSelectUnknownKeepsSelection(t *testing.T) {
	s, _, _, ev := newTestSunburst(t, sampleTree(t))
	a := model.Find(s.Root(), "a")
	s.Select(a, false)
	s.Select(&model.Node{ID: "stranger"})
	if s.Current() != a || len(ev.selects) != 1 {
		t.Errorf("current=%v selects=%v", s.Current(), ev.selects)
	}
	s.Select(a)
	if len(ev.selects) != 1 {
		t.Error("re-selecting should do nothing")
	}
}

func TestRootUnwrap(t *testing.T) {
	tree := mustTree(t, &model.Node{
		ID: "top",
		Children: []*model.Node{
			{ID: "only", Children: []*model.Node{
				{ID: "a", Size: 1},
				{ID: "b", Size: 1},
			}},
		},
	})
	s, _, _, _ := newTestSunburst(t, tree)
	if s.Root().ID != "only" {
		t.Fatalf("root = %s", s.Root().ID)
	}
	if s.HitTest(center(s).X, center(s).Y) != nil {
		t.Error("the root's center should hit nothing")
	}
	s.Select(tree.Root, false)
	if s.Current() != s.Root() {
		t.Errorf("selecting above the root focuses the root, got %s", s.Current().ID)
	}
}

func TestClickHistory(t *testing.T) {
	s, loop, _, ev := newTestSunburst(t, sampleTree(t))
	root := s.Root()
	a := model.Find(root, "a")
	a1 := model.Find(root, "a1")

	s.Click(center(s))
	if len(ev.clicks) != 0 {
		t.Fatalf("center of the root is empty, got %v", ev.clicks)
	}

	// leaves are reported but not focused
	s.Click(pointIn(t, s, "b"))
	if len(ev.clicks) != 1 || ev.clicks[0].ID != "b" || s.Current() != root {
		t.Fatalf("leaf click: clicks=%v current=%s", ev.clicks, s.Current().ID)
	}

	s.Click(pointIn(t, s, "a"))
	finish(loop)
	if s.Current() != a || len(s.History()) != 1 || s.History()[0] != root {
		t.Fatalf("after a: current=%s history=%v", s.Current().ID, s.History())
	}

	s.Click(pointIn(t, s, "a1"))
	finish(loop)
	if s.Current() != a1 || len(s.History()) != 2 {
		t.Fatalf("after a1: current=%s history=%v", s.Current().ID, s.History())
	}

	// the center walks the history back
	s.Click(center(s))
	finish(loop)
	if s.Current() != a || len(s.History()) != 1 {
		t.Fatalf("first back: current=%s history=%v", s.Current().ID, s.History())
	}
	s.Click(center(s))
	finish(loop)
	if s.Current() != root || len(s.History()) != 0 {
		t.Fatalf("second back: current=%s history=%v", s.Current().ID, s.History())
	}

	// without history the center goes up one level
	s.Click(pointIn(t, s, "a"))
	finish(loop)
	s.Select(a1)
	finish(loop)
	if len(s.History()) != 0 {
		t.Fatalf("Select should clear the history, got %v", s.History())
	}
	s.Click(center(s))
	finish(loop)
	if s.Current() != a {
		t.Errorf("center without history: current=%s", s.Current().ID)
	}
}

func TestHover(t *testing.T) {
	s, loop, _, ev := newTestSunburst(t, sampleTree(t))

	s.PointerMove(pointIn(t, s, "b"))
	if s.Hovered() == nil || s.Hovered().ID != "b" || ev.hovers[len(ev.hovers)-1].ID != "b" {
		t.Fatalf("hovered=%v events=%v", s.Hovered(), ev.hovers)
	}

	s.Select(model.Find(s.Root(), "a"), false)
	loop.Drain(10)
	s.PointerMove(center(s))
	if s.Hovered() != s.Root() {
		t.Errorf("center stands for the parent, hovered=%v", s.Hovered())
	}
	if ev.hovers[len(ev.hovers)-1] != nil {
		t.Error("the center reports no hover")
	}

	loop.DispatchWheel(&graph.Wheel{Pointer: *pointIn(t, s, "a2")})
	if s.Hovered() == nil || s.Hovered().ID != "a2" {
		t.Errorf("wheel should refresh the hover, got %v", s.Hovered())
	}

	s.PointerOut(&graph.Pointer{})
	if s.Hovered() != nil || ev.hovers[len(ev.hovers)-1] != nil {
		t.Error("pointer out should clear the hover")
	}
}

func TestDrawSuppressesThinSlices(t *testing.T) {
	children := []*model.Node{{ID: "big", Size: 10000}}
	for _, id := range []string{"t1", "t2", "t3", "t4", "t5"} {
		children = append(children, &model.Node{ID: id, Size: 1})
	}
	s, _, rec, _ := newTestSunburst(t, mustTree(t, &model.Node{ID: "root", Children: children}))

	rec.Ops = nil
	s.Draw()
	// the center disc and big; the tiny slices end too close to big
	if n := len(rec.Named("fill")); n != 2 {
		t.Errorf("expected 2 fills, got %d", n)
	}
	if hit := s.HitTest(pointIn(t, s, "t3").X, pointIn(t, s, "t3").Y); hit == nil || hit.ID != "t3" {
		t.Errorf("hidden slice should still hit-test, got %v", hit)
	}
}

func TestCenterLabel(t *testing.T) {
	s, loop, rec, _ := newTestSunburst(t, sampleTree(t))
	rec.Ops = nil
	s.Draw()
	texts := rec.Texts()
	if len(texts) != 1 || texts[0] != model.FormatBytes(1000) {
		t.Errorf("root label = %v", texts)
	}

	s.Select(model.Find(s.Root(), "b"), false)
	loop.Drain(10)
	rec.Ops = nil
	s.Draw()
	if texts := rec.Texts(); len(texts) != 1 || texts[0] != "b bytes" {
		t.Errorf("b label = %v", texts)
	}
}

func TestDispose(t *testing.T) {
	s, loop, _, _ := newTestSunburst(t, sampleTree(t))
	s.Dispose()
	if loop.Listeners() != 0 {
		t.Errorf("listeners left: %d", loop.Listeners())
	}
}
