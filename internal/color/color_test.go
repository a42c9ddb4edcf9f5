package color

import (
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/lumipallolabs/nanovis/internal/canvas"
	"github.com/lumipallolabs/nanovis/internal/model"
)

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func buildTree(t *testing.T, root *model.Node) *model.Tree {
	t.Helper()
	tree, err := model.NewTree(root)
	if err != nil {
		t.Fatalf("NewTree failed: %v", err)
	}
	return tree
}

// hueOf extracts the degrees from an hsl() color
func hueOf(t *testing.T, c model.Color) float64 {
	t.Helper()
	s := strings.TrimPrefix(c.Primary, "hsl(")
	deg, _, ok := strings.Cut(s, "deg")
	if !ok {
		t.Fatalf("not an hsl color: %q", c.Primary)
	}
	v, err := strconv.ParseFloat(deg, 64)
	if err != nil {
		t.Fatalf("bad hue in %q: %v", c.Primary, err)
	}
	return v
}

func sampleTree(t *testing.T) *model.Tree {
	return buildTree(t, &model.Node{
		ID: "root",
		Children: []*model.Node{
			{ID: "a", Children: []*model.Node{
				{ID: "a1", Size: 30},
				{ID: "a2", Size: 30},
			}},
			{ID: "b", Size: 30},
			{ID: "c", Size: 10},
		},
	})
}

func TestHueAngleToColor(t *testing.T) {
	if got := HueAngleToColor(0); got != "hsl(0deg, 100%, 50%)" {
		t.Errorf("HueAngleToColor(0) = %q", got)
	}
	if got := HueAngleToColorScaled(0, 0.5, 0.5); got != "hsl(0deg, 50%, 25%)" {
		t.Errorf("HueAngleToColorScaled(0, .5, .5) = %q", got)
	}
}

func TestSpectrumDeterministic(t *testing.T) {
	tree := sampleTree(t)
	g1 := Spectrum(tree)
	g2 := Spectrum(tree)

	model.Walk(tree.Root, func(n *model.Node) bool {
		if g1(n) != g2(n) {
			t.Errorf("node %s: %v != %v", n.ID, g1(n), g2(n))
		}
		if g1(n).IsZero() {
			t.Errorf("node %s has no color", n.ID)
		}
		return true
	})
}

func TestSpectrumHueContinuity(t *testing.T) {
	tree := sampleTree(t)
	get := Spectrum(tree)

	// the root sweeps the whole circle
	if h := hueOf(t, get(tree.Root)); !approxEqual(h, 180, 1e-9) {
		t.Errorf("root hue = %v, want 180", h)
	}

	var check func(n *model.Node)
	check = func(n *model.Node) {
		for i := 1; i < len(n.Children); i++ {
			prev, cur := n.Children[i-1], n.Children[i]
			// adjacent midpoints are half of both sweeps apart
			sweepPrev := float64(prev.Size) / float64(tree.Root.Size) * 360
			sweepCur := float64(cur.Size) / float64(tree.Root.Size) * 360
			diff := hueOf(t, get(cur)) - hueOf(t, get(prev))
			if !approxEqual(diff, (sweepPrev+sweepCur)/2, 1e-6) {
				t.Errorf("%s -> %s: hue step %v, want %v", prev.ID, cur.ID, diff, (sweepPrev+sweepCur)/2)
			}
		}
		for _, c := range n.Children {
			check(c)
		}
	}
	check(tree.Root)
}

func TestSpectrumOptions(t *testing.T) {
	tree := sampleTree(t)
	plain := Spectrum(tree)
	dim := Spectrum(tree, WithSaturation(0.5), WithLightness(0.5))
	if plain(tree.Root) == dim(tree.Root) {
		t.Error("multipliers should change the color")
	}
	if !approxEqual(hueOf(t, plain(tree.Root)), hueOf(t, dim(tree.Root)), 1e-9) {
		t.Error("multipliers should not change the hue")
	}
}

func TestSpectrumZeroSize(t *testing.T) {
	tree := buildTree(t, &model.Node{
		ID:       "root",
		Children: []*model.Node{{ID: "x"}, {ID: "y"}},
	})
	get := Spectrum(tree)
	for _, c := range tree.Root.Children {
		if strings.Contains(get(c).Primary, "NaN") {
			t.Errorf("node %s got %q", c.ID, get(c).Primary)
		}
	}
}

func TestFromMap(t *testing.T) {
	get := FromMap(map[string]model.Color{"a": model.Solid("red")})
	if c := get(&model.Node{ID: "a", Color: model.Solid("blue")}); c.Primary != "red" {
		t.Errorf("expected map entry, got %v", c)
	}
	if c := get(&model.Node{ID: "b", Color: model.Solid("blue")}); c.Primary != "blue" {
		t.Errorf("expected node color, got %v", c)
	}
	if c := get(&model.Node{ID: "c"}); !c.IsZero() {
		t.Errorf("expected no color, got %v", c)
	}
}

func TestFormats(t *testing.T) {
	tree := buildTree(t, &model.Node{
		ID: "root",
		Children: []*model.Node{
			{ID: "mixed", Children: []*model.Node{
				{ID: "mixed/a.mjs", Size: 10},
				{ID: "mixed/b.cjs", Size: 20},
			}},
			{ID: "pure", Children: []*model.Node{
				{ID: "pure/c.mjs", Size: 5},
				{ID: "pure/d.mjs", Size: 5},
			}},
			{ID: "plain.txt", Size: 1},
		},
	})
	formats := map[string]string{
		"mixed/a.mjs": "esm",
		"mixed/b.cjs": "cjs",
		"pure/c.mjs":  "esm",
		"pure/d.mjs":  "esm",
	}
	get := Formats(tree, func(n *model.Node) Format {
		return ParseFormat(formats[n.ID])
	})

	find := func(id string) *model.Node {
		n := model.Find(tree.Root, id)
		if n == nil {
			t.Fatalf("node %s not found", id)
		}
		return n
	}

	mixed := get(find("mixed"))
	if !mixed.IsPattern() {
		t.Fatalf("mixed directory should be striped, got %v", mixed)
	}
	if mixed.Primary != HueAngleToColor(3.5) || mixed.Secondary != HueAngleToColor(1) {
		t.Errorf("mixed should be [CJS, ESM], got %v", mixed)
	}
	if c := get(find("pure")); c != model.Solid(HueAngleToColor(1)) {
		t.Errorf("pure esm subtree = %v", c)
	}
	if c := get(find("mixed/b.cjs")); c != model.Solid(HueAngleToColor(3.5)) {
		t.Errorf("cjs leaf = %v", c)
	}
	if c := get(find("plain.txt")); c.Primary != Fallback {
		t.Errorf("untagged leaf = %v", c)
	}
	if !get(tree.Root).IsPattern() {
		t.Error("root contains both formats")
	}

	tests := map[string]string{
		"mixed":       " (ESM & CJS)",
		"pure":        " (ESM)",
		"mixed/b.cjs": " (CJS)",
		"plain.txt":   "",
	}
	for id, want := range tests {
		label := ModuleTypeLabel(get(find(id)), " (")
		if want != "" {
			label += ")"
		}
		if label != want {
			t.Errorf("label for %s = %q, want %q", id, label, want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if ParseFormat("esm") != ESM || ParseFormat("CJS") != CJS || ParseFormat("iife") != 0 {
		t.Error("unexpected ParseFormat result")
	}
}

func TestPatternCache(t *testing.T) {
	rec := canvas.NewRecorder()
	rec.Reset(100, 100, 1)
	var pc PatternCache

	solid := pc.Fill(model.Solid("#abc"), rec, 1, 0, 0, 1)
	if solid.Color != "#abc" || solid.Pattern != nil {
		t.Errorf("solid color should pass through, got %+v", solid)
	}
	if rec.PatternsCreated() != 0 {
		t.Fatalf("solid fill built a pattern")
	}

	stripes := model.Stripes("#111", "#eee")
	p1 := pc.Fill(stripes, rec, 1, 0, 0, 1)
	p2 := pc.Fill(stripes, rec, 1, 10, 10, 1)
	if p1.Pattern == nil || p1.Pattern != p2.Pattern {
		t.Fatal("expected the same cached pattern")
	}
	if n := rec.PatternsCreated(); n != 1 {
		t.Errorf("expected 1 pattern, got %d", n)
	}

	pc.Fill(stripes, rec, 1, 0, 0, 1.5)
	if n := rec.PatternsCreated(); n != 2 {
		t.Errorf("scale change should rebuild, got %d patterns", n)
	}
	pc.Fill(model.Stripes("#222", "#ddd"), rec, 1, 0, 0, 1.5)
	if n := rec.PatternsCreated(); n != 3 {
		t.Errorf("color change should rebuild, got %d patterns", n)
	}

	other := canvas.NewRecorder()
	other.Reset(100, 100, 1)
	pc.Fill(stripes, other, 1, 0, 0, 1.5)
	if other.PatternsCreated() != 1 {
		t.Error("canvas change should rebuild")
	}
}

func TestPatternOriginWrap(t *testing.T) {
	rec := canvas.NewRecorder()
	rec.Reset(100, 100, 1)
	var pc PatternCache

	paint := pc.Fill(model.Stripes("#111", "#eee"), rec, 1, 1000, -57, 1)
	p, ok := paint.Pattern.(*canvas.RecordedPattern)
	if !ok {
		t.Fatalf("unexpected pattern type %T", paint.Pattern)
	}
	// the texture repeats every 64 logical pixels at scale 1
	if !approxEqual(p.Transform[4], 1000-15*64, 1e-9) {
		t.Errorf("origin x = %v, want %v", p.Transform[4], 1000-15*64)
	}
	if !approxEqual(p.Transform[5], 7, 1e-9) {
		t.Errorf("origin y = %v, want 7", p.Transform[5])
	}
	if p.Transform[0] != 1 || p.Transform[3] != 1 {
		t.Errorf("unexpected pattern scale %v", p.Transform)
	}
}

func TestCSSBackground(t *testing.T) {
	if got := CSSBackground(model.Solid("red")); got != "red" {
		t.Errorf("solid = %q", got)
	}
	got := CSSBackground(model.Stripes("#111", "#eee"))
	if !strings.HasPrefix(got, "url('data:image/svg+xml,<svg") || !strings.HasSuffix(got, "</svg>')") {
		t.Errorf("unexpected css %q", got)
	}
	if !strings.Contains(got, `fill="#111"`) || !strings.Contains(got, `stroke="#eee"`) {
		t.Errorf("colors missing from %q", got)
	}
}
