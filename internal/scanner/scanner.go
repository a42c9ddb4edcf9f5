// Package scanner turns a directory on disk into a size-weighted tree.
package scanner

import (
	"context"

	"github.com/lumipallolabs/nanovis/internal/model"
)

// Progress reports scanning progress
type Progress struct {
	FilesScanned int64
	DirsScanned  int64
	BytesFound   int64
}

// Scanner builds a tree from a filesystem root
type Scanner interface {
	// Scan walks root and returns an unnormalized tree. Node ids are slash
	// separated paths relative to root; directories end in "/".
	Scan(ctx context.Context, root string) (*model.Node, error)

	// Progress returns the counters so far
	Progress() Progress
}
