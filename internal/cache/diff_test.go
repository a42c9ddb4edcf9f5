package cache

import (
	"testing"

	"github.com/lumipallolabs/nanovis/internal/color"
	"github.com/lumipallolabs/nanovis/internal/model"
)

func mustNormalize(t *testing.T, n *model.Node) *model.Node {
	t.Helper()
	tree, err := model.NewTree(n)
	if err != nil {
		t.Fatal(err)
	}
	return tree.Root
}

func TestDiff(t *testing.T) {
	prev := mustNormalize(t, &model.Node{
		ID: "./",
		Children: []*model.Node{
			{ID: "old", Size: 100},
			{ID: "same", Size: 200},
			{ID: "dir/", Children: []*model.Node{
				{ID: "dir/gone", Size: 10},
				{ID: "dir/kept", Size: 20},
			}},
		},
	})

	curr := mustNormalize(t, &model.Node{
		ID: "./",
		Children: []*model.Node{
			{ID: "same", Size: 250}, // grew
			{ID: "new", Size: 300},
			{ID: "dir/", Children: []*model.Node{
				{ID: "dir/kept", Size: 20},
			}},
		},
	})

	changes := Diff(curr, prev)

	same := changes["same"]
	if same.IsNew || same.PrevSize != 200 || same.Delta(250) != 50 {
		t.Errorf("same: unexpected %+v", same)
	}
	if !same.HasGrew || same.HasShrunk {
		t.Errorf("same: expected grew only, got %+v", same)
	}

	if n := changes["new"]; !n.IsNew || !n.HasGrew || n.Delta(300) != 300 {
		t.Errorf("new: unexpected %+v", n)
	}

	dir := changes["dir/"]
	if !dir.HasShrunk || dir.HasGrew {
		t.Errorf("dir/: expected shrunk only, got %+v", dir)
	}
	if kept := changes["dir/kept"]; kept.HasGrew || kept.HasShrunk {
		t.Errorf("dir/kept: expected unchanged, got %+v", kept)
	}

	root := changes["./"]
	if !root.HasGrew || !root.HasShrunk {
		t.Errorf("root should carry both flags, got %+v", root)
	}
	if _, ok := changes["old"]; ok {
		t.Error("deleted nodes are not part of the current tree")
	}
}

func TestDiffWithoutPrevious(t *testing.T) {
	curr := mustNormalize(t, &model.Node{ID: "./", Children: []*model.Node{{ID: "a", Size: 1}}})
	for id, c := range Diff(curr, nil) {
		if !c.IsNew {
			t.Errorf("%s: expected new", id)
		}
	}
}

func TestDiffColors(t *testing.T) {
	changes := map[string]Change{
		"new":   {IsNew: true, HasGrew: true},
		"grew":  {PrevSize: 1, HasGrew: true},
		"both":  {PrevSize: 1, HasGrew: true, HasShrunk: true},
		"shrnk": {PrevSize: 1, HasShrunk: true},
		"same":  {PrevSize: 1},
	}
	get := DiffColors(changes)

	tests := map[string]model.Color{
		"new":   model.Solid(ColorNew),
		"grew":  model.Solid(ColorGrew),
		"both":  model.Stripes(ColorGrew, ColorShrunk),
		"shrnk": model.Solid(ColorShrunk),
		"same":  model.Solid(color.Fallback),
	}
	for id, want := range tests {
		if got := get(&model.Node{ID: id}); got != want {
			t.Errorf("%s: expected %v, got %v", id, want, got)
		}
	}
}
