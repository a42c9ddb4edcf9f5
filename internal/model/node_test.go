package model

import (
	"errors"
	"testing"
)

func sampleTree() *Node {
	return &Node{
		ID:   "root",
		Text: "root",
		Children: []*Node{
			{ID: "small", Size: 100},
			{ID: "dir", Children: []*Node{
				{ID: "dir/a", Size: 50},
				{ID: "dir/b", Size: 700},
				{ID: "dir/c", Size: 50},
			}},
			{ID: "medium", Size: 500},
		},
	}
}

func checkInvariants(t *testing.T, n *Node) {
	t.Helper()
	var sum int64
	for i, child := range n.Children {
		if child.Parent != n {
			t.Errorf("%s: child %s has wrong parent", n.ID, child.ID)
		}
		if i > 0 && n.Children[i-1].Size < child.Size {
			t.Errorf("%s: children not sorted at %d (%d < %d)", n.ID, i, n.Children[i-1].Size, child.Size)
		}
		sum += child.Size
		checkInvariants(t, child)
	}
	if n.Size != n.SizeSelf+sum {
		t.Errorf("%s: size %d != sizeSelf %d + children %d", n.ID, n.Size, n.SizeSelf, sum)
	}
}

func TestNormalizeAggregatesAndSorts(t *testing.T) {
	root, err := Normalize(sampleTree())
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}

	checkInvariants(t, root)

	if root.Size != 1400 {
		t.Errorf("expected root size 1400, got %d", root.Size)
	}
	if root.SizeSelf != 0 {
		t.Errorf("expected root sizeSelf 0, got %d", root.SizeSelf)
	}
	if root.Children[0].ID != "dir" {
		t.Errorf("expected 'dir' first, got %s", root.Children[0].ID)
	}
	if root.Children[2].ID != "small" {
		t.Errorf("expected 'small' last, got %s", root.Children[2].ID)
	}

	dir := root.Children[0]
	if dir.Children[1].ID != "dir/a" || dir.Children[2].ID != "dir/c" {
		t.Errorf("expected equal sizes ordered by id, got %s, %s", dir.Children[1].ID, dir.Children[2].ID)
	}
	leaf := dir.Children[0]
	if leaf.SizeSelf != 700 {
		t.Errorf("expected leaf sizeSelf 700, got %d", leaf.SizeSelf)
	}
}

func TestNormalizeOverridesDeclaredSize(t *testing.T) {
	root, err := Normalize(&Node{
		ID:   "root",
		Size: 9999,
		Children: []*Node{
			{ID: "a", Size: 10},
			{ID: "b", Size: 20},
		},
	})
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if root.Size != 30 {
		t.Errorf("expected recomputed size 30, got %d", root.Size)
	}
}

func TestNormalizeKeepsSizeSelfOnParents(t *testing.T) {
	root, err := Normalize(&Node{
		ID:       "root",
		SizeSelf: 5,
		Children: []*Node{{ID: "a", Size: 10}},
	})
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if root.Size != 15 {
		t.Errorf("expected 15, got %d", root.Size)
	}
	checkInvariants(t, root)
}

func TestNormalizeAssignsIDs(t *testing.T) {
	root, err := Normalize(&Node{Children: []*Node{{Size: 1}, {Size: 2}}})
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	seen := map[string]bool{}
	Walk(root, func(n *Node) bool {
		if n.ID == "" {
			t.Error("node without id")
		}
		if seen[n.ID] {
			t.Errorf("duplicate id %s", n.ID)
		}
		seen[n.ID] = true
		return true
	})
	if len(seen) != 3 {
		t.Errorf("expected 3 ids, got %d", len(seen))
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	once, err := Normalize(sampleTree())
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	twice, err := Normalize(once)
	if err != nil {
		t.Fatalf("second normalize failed: %v", err)
	}
	if twice != once {
		t.Error("expected normalizing a normalized node to return it unchanged")
	}
	if !once.Normalized() {
		t.Error("expected normalized flag")
	}
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	in := sampleTree()
	if _, err := Normalize(in); err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if in.Size != 0 || in.Children[0].ID != "small" {
		t.Error("input tree was modified")
	}
}

func TestNormalizeDetectsCycle(t *testing.T) {
	a := &Node{ID: "a"}
	b := &Node{ID: "b", Children: []*Node{a}}
	a.Children = []*Node{b}

	_, err := Normalize(&Node{ID: "root", Children: []*Node{a}})
	if err == nil {
		t.Fatal("expected error for cyclic tree")
	}
	var cyc *CyclicTreeError
	if !errors.As(err, &cyc) {
		t.Fatalf("expected CyclicTreeError, got %T", err)
	}
	if cyc.ID != "a" {
		t.Errorf("expected cycle reported at 'a', got %q", cyc.ID)
	}
}

func TestNormalizeSharedSubtreeIsNotACycle(t *testing.T) {
	shared := &Node{ID: "shared", Size: 3}
	root, err := Normalize(&Node{ID: "root", Children: []*Node{
		{ID: "x", Children: []*Node{shared}},
		{ID: "y", Children: []*Node{shared}},
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if root.Size != 6 {
		t.Errorf("expected 6, got %d", root.Size)
	}
}

func TestMaxDepth(t *testing.T) {
	root, _ := Normalize(sampleTree())
	if d := MaxDepth(root); d != 3 {
		t.Errorf("expected depth 3, got %d", d)
	}
	if d := MaxDepth(&Node{}); d != 1 {
		t.Errorf("expected leaf depth 1, got %d", d)
	}
}

func TestNewTree(t *testing.T) {
	tree, err := NewTree(sampleTree())
	if err != nil {
		t.Fatalf("NewTree failed: %v", err)
	}
	if tree.MaxDepth != 3 {
		t.Errorf("expected depth 3, got %d", tree.MaxDepth)
	}
	if _, err := NewTree(nil); err == nil {
		t.Error("expected error for nil root")
	}
}

func TestIsAncestorAndFind(t *testing.T) {
	root, _ := Normalize(sampleTree())
	b := Find(root, "dir/b")
	if b == nil {
		t.Fatal("dir/b not found")
	}
	if !IsAncestor(root, b) || !IsAncestor(b, b) {
		t.Error("expected root and self to be ancestors")
	}
	if IsAncestor(b, root) {
		t.Error("leaf is not an ancestor of root")
	}
	if Find(root, "missing") != nil {
		t.Error("expected nil for missing id")
	}
}

func TestCacheNodeRoundTrip(t *testing.T) {
	root, _ := Normalize(&Node{ID: "r", Children: []*Node{
		{ID: "a", Size: 2, Color: Stripes("red", "blue")},
	}})
	cn := root.ToCacheNode()
	back := cn.ToNode(nil)
	if back.Children[0].Parent != back {
		t.Error("expected parent link restored")
	}
	if back.Children[0].Color != Stripes("red", "blue") {
		t.Errorf("expected stripes, got %v", back.Children[0].Color)
	}
}

func TestFormatBytes(t *testing.T) {
	cases := map[int64]string{
		0:                  "0 bytes",
		1:                  "1 byte",
		999:                "999 bytes",
		1536:               "1.5 kb",
		5 * 1024 * 1024:    "5.0 mb",
		2048 * 1024 * 1024: "2.0 gb",
	}
	for in, want := range cases {
		if got := FormatBytes(in); got != want {
			t.Errorf("FormatBytes(%d) = %q, want %q", in, got, want)
		}
	}
}
