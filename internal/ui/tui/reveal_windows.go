//go:build windows

package tui

import "os/exec"

// revealCommand selects path in an Explorer window
func revealCommand(path string) *exec.Cmd {
	return exec.Command("explorer", "/select,"+path)
}

// previewCommand opens path with its associated program. The empty
// argument is the window title start expects before a quoted path.
func previewCommand(path string) *exec.Cmd {
	return exec.Command("cmd", "/c", "start", "", path)
}
