package scanner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lumipallolabs/nanovis/internal/model"
)

func makeFixture(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	if err := os.MkdirAll(filepath.Join(tmp, "subdir", "deep"), 0755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		"file1.txt":                 "hello",
		"subdir/file2.txt":          "world!",
		"subdir/deep/page.html":     "<!DOCTYPE html><html><body>hi</body></html>",
		"subdir/deep/empty.bin.txt": "",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(tmp, filepath.FromSlash(name)), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return tmp
}

func TestWalkerScan(t *testing.T) {
	tmp := makeFixture(t)

	w := NewWalker(4)
	root, err := w.Scan(context.Background(), tmp)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	tree, err := model.NewTree(root)
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}

	// On Windows: logical size
	// On Unix: actual disk blocks
	if tree.Root.Size == 0 {
		t.Error("expected non-zero total size")
	}
	t.Logf("total size: %d bytes", tree.Root.Size)

	if len(tree.Root.Children) != 2 {
		t.Errorf("expected 2 children, got %d", len(tree.Root.Children))
	}
	if tree.MaxDepth != 4 {
		t.Errorf("expected depth 4, got %d", tree.MaxDepth)
	}

	subdir := model.Find(tree.Root, "subdir/")
	if subdir == nil || subdir.Text != "subdir/" {
		t.Fatalf("missing subdir/ node: %+v", subdir)
	}
	if page := model.Find(tree.Root, "subdir/deep/page.html"); page == nil || page.Parent.ID != "subdir/deep/" {
		t.Errorf("page.html not linked under subdir/deep/: %+v", page)
	}

	p := w.Progress()
	if p.FilesScanned != 4 || p.DirsScanned != 2 {
		t.Errorf("expected 4 files and 2 dirs, got %+v", p)
	}
}

func TestWalkerDetectTypes(t *testing.T) {
	tmp := makeFixture(t)

	w := NewWalker(2)
	w.DetectTypes = true
	root, err := w.Scan(context.Background(), tmp)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	page := model.Find(root, "subdir/deep/page.html")
	if page == nil {
		t.Fatal("missing page.html")
	}
	if !strings.HasPrefix(page.Subtext, "text/html") {
		t.Errorf("expected html subtext, got %q", page.Subtext)
	}
	meta, ok := page.Meta.(map[string]string)
	if !ok || !strings.HasPrefix(meta["contentType"], "text/html") {
		t.Errorf("expected content type in meta, got %#v", page.Meta)
	}
}

func TestWalkerCanceled(t *testing.T) {
	tmp := makeFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewWalker(2).Scan(ctx, tmp)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestBuildTree(t *testing.T) {
	entries := []nodeEntry{
		{rel: "a", name: "a", isDir: true},
		{rel: "a/x.go", name: "x.go", size: 10},
		{rel: "b.txt", name: "b.txt", size: 1, contentType: "text/plain"},
		{rel: "orphan/y", name: "y", size: 5},
	}

	root := buildTree("proj", entries)
	if root.ID != "./" || root.Text != "proj/" {
		t.Errorf("unexpected root %q %q", root.ID, root.Text)
	}
	if len(root.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(root.Children))
	}

	a := model.Find(root, "a/")
	if a == nil || len(a.Children) != 1 || a.Children[0].Subtext != "10 bytes" {
		t.Errorf("unexpected a/: %+v", a)
	}
	b := model.Find(root, "b.txt")
	if b.Subtext != "text/plain, 1 byte" {
		t.Errorf("unexpected subtext %q", b.Subtext)
	}
	if model.Find(root, "orphan/y") != nil {
		t.Error("entry without a parent directory should be dropped")
	}
}
