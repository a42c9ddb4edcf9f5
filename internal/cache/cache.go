// Package cache stores normalized trees as gzip compressed gob snapshots so
// large inputs can be reopened without rescanning.
package cache

import (
	"compress/gzip"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/lumipallolabs/nanovis/internal/model"
)

// ErrNoSnapshot is returned when a name has no saved snapshots
var ErrNoSnapshot = errors.New("no snapshot found")

const (
	timeLayout = "2006-01-02_150405"
	extension  = ".gob.gz"
)

// Cache handles saving and loading snapshots
type Cache struct {
	dir string
	now func() time.Time
}

// New creates a new cache in the given directory
func New(dir string) *Cache {
	return &Cache{dir: dir, now: time.Now}
}

// Dir returns the directory snapshots are kept in
func (c *Cache) Dir() string {
	return c.dir
}

// DefaultDir returns the default cache directory
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".nanovis"
	}
	return filepath.Join(home, ".nanovis", "cache")
}

// Snapshot describes one saved file
type Snapshot struct {
	Name string
	Time time.Time
	Path string
}

// SanitizeName makes name usable as a file name prefix. Underscores are
// reserved for separating the timestamp.
func SanitizeName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', '_', ' ':
			return '-'
		}
		return r
	}, name)
	name = strings.Trim(name, "-.")
	if name == "" {
		return "tree"
	}
	return name
}

// Save writes root as a new snapshot under name and returns its path
func (c *Cache) Save(name string, root *model.Node) (string, error) {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return "", fmt.Errorf("create cache dir: %w", err)
	}

	filename := SanitizeName(name) + "_" + c.now().Format(timeLayout) + extension
	path := filepath.Join(c.dir, filename)

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer file.Close()

	gzWriter := gzip.NewWriter(file)

	// CacheNode drops parent links, which gob cannot encode
	cacheNode := root.ToCacheNode()

	if err := gob.NewEncoder(gzWriter).Encode(cacheNode); err != nil {
		gzWriter.Close()
		return "", fmt.Errorf("encode: %w", err)
	}
	if err := gzWriter.Close(); err != nil {
		return "", fmt.Errorf("flush: %w", err)
	}
	return path, nil
}

// List returns the snapshots saved under name, oldest first. An empty name
// lists every snapshot.
func (c *Cache) List(name string) ([]Snapshot, error) {
	prefix := "*"
	if name != "" {
		prefix = SanitizeName(name)
	}
	files, err := filepath.Glob(filepath.Join(c.dir, prefix+"_*"+extension))
	if err != nil {
		return nil, fmt.Errorf("glob: %w", err)
	}

	snapshots := make([]Snapshot, 0, len(files))
	for _, f := range files {
		s, err := parseFilename(f)
		if err != nil {
			continue
		}
		snapshots = append(snapshots, s)
	}
	sort.Slice(snapshots, func(i, j int) bool {
		if !snapshots[i].Time.Equal(snapshots[j].Time) {
			return snapshots[i].Time.Before(snapshots[j].Time)
		}
		return snapshots[i].Name < snapshots[j].Name
	})
	return snapshots, nil
}

func parseFilename(path string) (Snapshot, error) {
	base := strings.TrimSuffix(filepath.Base(path), extension)
	name, stamp, ok := strings.Cut(base, "_")
	if !ok {
		return Snapshot{}, fmt.Errorf("invalid filename %q", path)
	}
	t, err := time.ParseInLocation(timeLayout, stamp, time.Local)
	if err != nil {
		return Snapshot{}, fmt.Errorf("invalid timestamp in %q: %w", path, err)
	}
	return Snapshot{Name: name, Time: t, Path: path}, nil
}

func (c *Cache) latest(name string) (Snapshot, error) {
	snapshots, err := c.List(name)
	if err != nil {
		return Snapshot{}, err
	}
	if len(snapshots) == 0 {
		return Snapshot{}, fmt.Errorf("%w for %q", ErrNoSnapshot, name)
	}
	return snapshots[len(snapshots)-1], nil
}

// LoadLatest loads the most recent snapshot saved under name
func (c *Cache) LoadLatest(name string) (*model.Node, error) {
	s, err := c.latest(name)
	if err != nil {
		return nil, err
	}
	return Load(s.Path)
}

// Load reads one snapshot file. The returned tree still needs normalizing.
func Load(path string) (*model.Node, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer file.Close()

	gzReader, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("gzip reader: %w", err)
	}
	defer gzReader.Close()

	var cacheNode model.CacheNode
	if err := gob.NewDecoder(gzReader).Decode(&cacheNode); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	// Convert back to Node (this also sets Parent links)
	return cacheNode.ToNode(nil), nil
}

// Timestamp returns the time of the latest snapshot saved under name
func (c *Cache) Timestamp(name string) (time.Time, error) {
	s, err := c.latest(name)
	if err != nil {
		return time.Time{}, err
	}
	return s.Time, nil
}
