package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"
	"github.com/gabriel-vasile/mimetype"

	"github.com/lumipallolabs/nanovis/internal/logging"
	"github.com/lumipallolabs/nanovis/internal/model"
)

// Walker implements parallel filesystem scanning
type Walker struct {
	workers int

	// DetectTypes sniffs each file's content type into its subtext
	DetectTypes bool

	files atomic.Int64
	dirs  atomic.Int64
	bytes atomic.Int64
}

// NewWalker creates a new parallel filesystem walker
func NewWalker(workers int) *Walker {
	if workers < 1 {
		workers = 8
	}
	return &Walker{workers: workers}
}

// Progress returns the counters so far. Safe to call while scanning.
func (w *Walker) Progress() Progress {
	return Progress{
		FilesScanned: w.files.Load(),
		DirsScanned:  w.dirs.Load(),
		BytesFound:   w.bytes.Load(),
	}
}

// nodeEntry is a temporary structure for building the tree
type nodeEntry struct {
	rel         string
	name        string
	size        int64
	isDir       bool
	contentType string
}

// Scan scans the filesystem starting at root using fastwalk
func (w *Walker) Scan(ctx context.Context, root string) (*model.Node, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	vol := volumeOf(absRoot)

	entryChan := make(chan nodeEntry, 4096)
	var entries []nodeEntry
	var entriesWg sync.WaitGroup

	// Collect entries in background without blocking the workers
	entriesWg.Add(1)
	go func() {
		defer entriesWg.Done()
		for e := range entryChan {
			entries = append(entries, e)
		}
	}()

	// inodes already counted
	var seen sync.Map

	conf := &fastwalk.Config{
		Follow:     false,
		NumWorkers: w.workers,
	}

	walkErr := fastwalk.Walk(conf, absRoot, func(p string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			logging.Scanner.Debug("skip unreadable entry", "path", p, "err", err)
			return nil
		}
		if p == absRoot {
			return nil
		}

		if d.IsDir() && vol.skipDir(d, &seen) {
			return fs.SkipDir
		}

		rel, err := filepath.Rel(absRoot, p)
		if err != nil {
			return nil
		}
		e := nodeEntry{
			rel:   filepath.ToSlash(rel),
			name:  d.Name(),
			isDir: d.IsDir(),
		}

		if e.isDir {
			w.dirs.Add(1)
		} else {
			info, err := d.Info()
			if err != nil {
				return nil
			}

			e.size = diskUsage(info, &seen)
			if e.size < 0 {
				return nil
			}
			if w.DetectTypes && d.Type().IsRegular() {
				if mt, err := mimetype.DetectFile(p); err == nil {
					e.contentType = mt.String()
				}
			}

			w.files.Add(1)
			w.bytes.Add(e.size)
		}

		entryChan <- e
		return nil
	})

	close(entryChan)
	entriesWg.Wait()

	if walkErr != nil {
		return nil, fmt.Errorf("walk %s: %w", absRoot, walkErr)
	}

	rootNode := buildTree(filepath.Base(absRoot), entries)
	p := w.Progress()
	logging.Scanner.Debug("scan done", "root", absRoot, "files", p.FilesScanned, "dirs", p.DirsScanned, "bytes", p.BytesFound)
	return rootNode, nil
}

// dirID is the id of a directory node
func dirID(rel string) string {
	return rel + "/"
}

// buildTree constructs the tree structure from flat entries
func buildTree(rootName string, entries []nodeEntry) *model.Node {
	dirs := make(map[string]*model.Node, len(entries)/8+1)
	childCounts := make(map[string]int, len(entries)/8+1)

	rootNode := &model.Node{
		ID:   "./",
		Text: rootName + "/",
	}
	dirs["."] = rootNode

	// First pass: create directory nodes and count children per parent
	for i := range entries {
		e := &entries[i]
		childCounts[path.Dir(e.rel)]++
		if e.isDir {
			dirs[e.rel] = &model.Node{ID: dirID(e.rel), Text: e.name + "/"}
		}
	}

	// Pre-allocate Children slices
	for rel, count := range childCounts {
		if node, ok := dirs[rel]; ok {
			node.Children = make([]*model.Node, 0, count)
		}
	}

	// Second pass: link parent/child relationships
	for i := range entries {
		e := &entries[i]
		var node *model.Node
		if e.isDir {
			node = dirs[e.rel]
		} else {
			subtext := model.FormatBytes(e.size)
			if e.contentType != "" {
				subtext = e.contentType + ", " + subtext
			}
			node = &model.Node{
				ID:      e.rel,
				Text:    e.name,
				Subtext: subtext,
				Size:    e.size,
			}
			if e.contentType != "" {
				node.Meta = map[string]string{"contentType": e.contentType}
			}
		}
		if parent, ok := dirs[path.Dir(e.rel)]; ok {
			parent.Children = append(parent.Children, node)
		}
	}

	return rootNode
}

// Ensure Walker implements Scanner
var _ Scanner = (*Walker)(nil)
