package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lumipallolabs/nanovis/internal/cache"
	"github.com/lumipallolabs/nanovis/internal/color"
	"github.com/lumipallolabs/nanovis/internal/config"
	"github.com/lumipallolabs/nanovis/internal/loader"
	"github.com/lumipallolabs/nanovis/internal/model"
	"github.com/lumipallolabs/nanovis/internal/scanner"
)

// input is a loaded tree and where it came from
type input struct {
	tree     *model.Tree
	name     string // snapshot name and header label
	dir      string // scanned directory, node IDs are relative to it
	metafile *loader.Metafile
}

// inputOpts controls how an input path is read
type inputOpts struct {
	outputs bool // metafiles: show outputs instead of inputs
	types   bool // directories: detect content types
	workers int
}

// isDir reports whether path is an existing directory
func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// loadInput reads a tree file, a snapshot or a directory
func (c *CLI) loadInput(ctx context.Context, path string, opts inputOpts) (*input, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	switch {
	case isDir(abs):
		root, err := c.scan(ctx, abs, opts)
		if err != nil {
			return nil, err
		}
		tree, err := model.NewTree(root)
		if err != nil {
			return nil, fmt.Errorf("normalize scan: %w", err)
		}
		return &input{tree: tree, name: filepath.Base(abs), dir: abs}, nil

	case strings.HasSuffix(abs, ".gob.gz"):
		root, err := cache.Load(abs)
		if err != nil {
			return nil, fmt.Errorf("load snapshot %s: %w", path, err)
		}
		tree, err := model.NewTree(root)
		if err != nil {
			return nil, fmt.Errorf("normalize snapshot: %w", err)
		}
		name, _, _ := strings.Cut(filepath.Base(abs), "_")
		return &input{tree: tree, name: name}, nil
	}

	in, err := loader.Load(abs)
	if err != nil {
		return nil, err
	}
	res := &input{tree: in.Tree, name: filepath.Base(abs), metafile: in.Metafile}
	if in.Kind == loader.KindMetafile && opts.outputs {
		res.tree, err = in.Metafile.OutputTree()
		if err != nil {
			return nil, fmt.Errorf("output tree: %w", err)
		}
	}
	c.Logger.Debug("input loaded", "path", path, "kind", in.Kind, "size", res.tree.Root.Size, "depth", res.tree.MaxDepth)
	return res, nil
}

// scan walks dir and logs the totals
func (c *CLI) scan(ctx context.Context, dir string, opts inputOpts) (*model.Node, error) {
	w := scanner.NewWalker(opts.workers)
	w.DetectTypes = opts.types

	start := time.Now()
	c.Logger.Info("scanning", "dir", dir)
	root, err := w.Scan(ctx, dir)
	if err != nil {
		return nil, err
	}
	p := w.Progress()
	c.Logger.Info("scan complete",
		"files", p.FilesScanned,
		"dirs", p.DirsScanned,
		"size", model.FormatBytes(p.BytesFound),
		"elapsed", time.Since(start).Round(time.Millisecond))
	return root, nil
}

// colors builds the color getter for mode
func (c *CLI) colors(in *input, mode string) (color.Getter, error) {
	switch mode {
	case config.ColorSpectrum:
		return color.Spectrum(in.tree,
			color.WithSaturation(c.Config.Saturation),
			color.WithLightness(c.Config.Lightness)), nil

	case config.ColorFormat:
		if in.metafile == nil {
			return nil, fmt.Errorf("color mode %q needs an esbuild metafile", mode)
		}
		return color.Formats(in.tree, in.metafile.Format), nil

	case config.ColorDiff:
		prev, err := c.Cache.LoadLatest(in.name)
		if err != nil && !errors.Is(err, cache.ErrNoSnapshot) {
			return nil, err
		}
		if prev == nil {
			c.Logger.Warn("no snapshot to compare with, everything is new", "name", in.name)
		}
		return cache.DiffColors(cache.Diff(in.tree.Root, prev)), nil

	case config.ColorNode:
		return color.FromMap(nil), nil
	}
	return nil, fmt.Errorf("unknown color mode %q", mode)
}
