package cli

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lumipallolabs/nanovis/internal/loader"
)

const treeYAML = `
id: root
text: root
children:
  - id: src
    text: src/
    children:
      - id: src/a.js
        text: a.js
        size: 300
      - id: src/b.js
        text: b.js
        size: 100
  - id: README.md
    text: README.md
    size: 50
`

const metafileJSON = `{
  "inputs": {
    "src/a.js": {"bytes": 300, "format": "esm"},
    "src/b.js": {"bytes": 100, "format": "cjs"}
  },
  "outputs": {
    "out.js": {"bytes": 420, "inputs": {
      "src/a.js": {"bytesInOutput": 280},
      "src/b.js": {"bytesInOutput": 90}
    }}
  }
}`

type testEnv struct {
	dir      string
	cacheDir string
	out      *bytes.Buffer
	log      *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return &testEnv{
		dir:      t.TempDir(),
		cacheDir: t.TempDir(),
		out:      &bytes.Buffer{},
		log:      &bytes.Buffer{},
	}
}

func (e *testEnv) write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(e.dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func (e *testEnv) run(args ...string) error {
	c := New(e.out, e.log)
	root := c.RootCommand()
	root.SetArgs(append([]string{
		"--config", filepath.Join(e.dir, "missing.toml"),
		"--cache-dir", e.cacheDir,
	}, args...))
	root.SetOut(e.out)
	root.SetErr(e.log)
	return root.ExecuteContext(context.Background())
}

func pngSize(t *testing.T, path string) (int, int) {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return cfg.Width, cfg.Height
}

func TestRenderTree(t *testing.T) {
	env := newTestEnv(t)
	input := env.write(t, "tree.yaml", treeYAML)

	tests := []struct {
		name   string
		args   []string
		square bool
	}{
		{"treemap", []string{"--chart", "treemap"}, false},
		{"sunburst", []string{"--chart", "sunburst", "--dark"}, true},
		{"focused", []string{"--select", "src"}, false},
		{"node colors", []string{"--color", "node"}, false},
		{"hidpi", []string{"--ratio", "2"}, false},
		{"hidpi sunburst", []string{"--chart", "sunburst", "--ratio", "2"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(env.dir, strings.ReplaceAll(tt.name, " ", "-")+".png")
			args := append([]string{"render", input, "-o", out, "--width", "200", "--height", "100"}, tt.args...)
			if err := env.run(args...); err != nil {
				t.Fatalf("render failed: %v", err)
			}
			w, h := pngSize(t, out)
			scale := 1
			if strings.HasPrefix(tt.name, "hidpi") {
				scale = 2
			}
			if tt.square {
				// the sunburst is a square bounded by the shorter side
				if w != h || w < 1 || w > 100*scale {
					t.Errorf("expected a square of at most %d px, got %dx%d", 100*scale, w, h)
				}
				return
			}
			if w != 200*scale || h != 100*scale {
				t.Errorf("expected %dx%d image, got %dx%d", 200*scale, 100*scale, w, h)
			}
		})
	}
}

func TestRenderFlamegraph(t *testing.T) {
	env := newTestEnv(t)
	input := env.write(t, "tree.yaml", treeYAML)
	out := filepath.Join(env.dir, "flame.png")

	if err := env.run("render", input, "-o", out, "--chart", "flamegraph", "--width", "300"); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if w, _ := pngSize(t, out); w != 300 {
		t.Errorf("expected width 300, got %d", w)
	}
}

func TestRenderErrors(t *testing.T) {
	env := newTestEnv(t)
	tree := env.write(t, "tree.yaml", treeYAML)
	junk := env.write(t, "junk.yaml", "- 1\n- 2\n")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown node", []string{"render", tree, "--select", "nope"}, "no node"},
		{"format without metafile", []string{"render", tree, "--color", "format"}, "metafile"},
		{"bad chart", []string{"render", tree, "--chart", "pie"}, "unknown chart"},
		{"bad input", []string{"render", junk}, "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append(tt.args, "-o", filepath.Join(env.dir, "x.png"))
			err := env.run(args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestRenderMetafile(t *testing.T) {
	env := newTestEnv(t)
	input := env.write(t, "meta.json", metafileJSON)

	for _, args := range [][]string{
		{"--color", "format"},
		{"--outputs", "--chart", "flamegraph"},
	} {
		out := filepath.Join(env.dir, "meta.png")
		if err := env.run(append([]string{"render", input, "-o", out}, args...)...); err != nil {
			t.Fatalf("render %v failed: %v", args, err)
		}
		pngSize(t, out)
	}
}

func TestScanAndCache(t *testing.T) {
	env := newTestEnv(t)
	project := filepath.Join(env.dir, "project")
	if err := os.MkdirAll(filepath.Join(project, "lib"), 0755); err != nil {
		t.Fatal(err)
	}
	for name, content := range map[string]string{
		"main.go":    "package main\n",
		"lib/lib.go": "package lib\n\nfunc F() {}\n",
	} {
		if err := os.WriteFile(filepath.Join(project, filepath.FromSlash(name)), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	out := filepath.Join(env.dir, "scan.yaml")
	if err := env.run("scan", project, "-o", out, "--save"); err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	in, err := loader.Load(out)
	if err != nil {
		t.Fatalf("scan output does not load: %v", err)
	}
	if in.Tree.MaxDepth != 3 {
		t.Errorf("expected depth 3, got %d", in.Tree.MaxDepth)
	}

	env.out.Reset()
	if err := env.run("cache", "list", "--sizes"); err != nil {
		t.Fatalf("cache list failed: %v", err)
	}
	if !strings.HasPrefix(env.out.String(), "project\t") {
		t.Errorf("expected the project snapshot, got %q", env.out.String())
	}

	// diff against the saved snapshot
	png := filepath.Join(env.dir, "diff.png")
	if err := env.run("render", project, "--color", "diff", "-o", png); err != nil {
		t.Fatalf("diff render failed: %v", err)
	}
	pngSize(t, png)

	if err := env.run("scan", filepath.Join(project, "main.go")); err == nil {
		t.Error("scanning a file should fail")
	}
}

func TestCacheSaveAndPath(t *testing.T) {
	env := newTestEnv(t)
	input := env.write(t, "tree.yaml", treeYAML)

	if err := env.run("cache", "save", input, "--name", "demo"); err != nil {
		t.Fatalf("cache save failed: %v", err)
	}
	saved := strings.TrimSpace(env.out.String())
	if !strings.HasPrefix(filepath.Base(saved), "demo_") {
		t.Errorf("unexpected snapshot path %q", saved)
	}

	// snapshots load like any other input
	out := filepath.Join(env.dir, "snap.png")
	if err := env.run("render", saved, "-o", out, "--color", "diff"); err != nil {
		t.Fatalf("render snapshot failed: %v", err)
	}

	env.out.Reset()
	if err := env.run("cache", "path"); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(env.out.String()) != env.cacheDir {
		t.Errorf("expected %s, got %q", env.cacheDir, env.out.String())
	}
}
