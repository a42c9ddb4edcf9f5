//go:build windows

package scanner

import (
	"io/fs"
	"sync"
)

// volume is unused on Windows: every drive is its own root and fastwalk
// does not follow junctions
type volume struct{}

func volumeOf(string) volume { return volume{} }

func (volume) skipDir(fs.DirEntry, *sync.Map) bool { return false }

// diskUsage is the logical file size
func diskUsage(info fs.FileInfo, _ *sync.Map) int64 {
	return info.Size()
}
