//go:build !windows

package scanner

import (
	"io/fs"
	"sync"
	"syscall"
)

// fileKey identifies a file across hard links and firmlinks
type fileKey struct {
	dev, ino uint64
}

// volume is the filesystem the scan started on
type volume struct {
	dev uint64
}

func volumeOf(path string) volume {
	var st syscall.Stat_t
	if err := syscall.Stat(path, &st); err != nil {
		return volume{}
	}
	return volume{dev: uint64(st.Dev)}
}

// skipDir reports directories on another filesystem and directories
// already reached through another path
func (v volume) skipDir(d fs.DirEntry, seen *sync.Map) bool {
	info, err := d.Info()
	if err != nil {
		return false
	}
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return false
	}
	if uint64(st.Dev) != v.dev {
		return true
	}
	_, dup := seen.LoadOrStore(fileKey{uint64(st.Dev), uint64(st.Ino)}, struct{}{})
	return dup
}

// diskUsage is the space allocated to a file in bytes, or -1 for a hard
// link whose inode was already counted
func diskUsage(info fs.FileInfo, seen *sync.Map) int64 {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return info.Size()
	}
	if st.Nlink > 1 {
		if _, dup := seen.LoadOrStore(fileKey{uint64(st.Dev), uint64(st.Ino)}, struct{}{}); dup {
			return -1
		}
	}
	// 512 byte blocks, so sparse files count what they occupy
	return int64(st.Blocks) * 512
}
