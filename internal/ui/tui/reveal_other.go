//go:build !windows && !darwin

package tui

import (
	"os"
	"os/exec"
	"path/filepath"
)

// revealCommand opens the directory holding path. xdg-open cannot select
// an item, so a file reveals its parent.
func revealCommand(path string) *exec.Cmd {
	dir := path
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		dir = filepath.Dir(path)
	}
	return exec.Command("xdg-open", dir)
}

func previewCommand(path string) *exec.Cmd {
	return exec.Command("xdg-open", path)
}
