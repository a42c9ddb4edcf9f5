//go:build darwin

package tui

import "os/exec"

// revealCommand selects path in a Finder window
func revealCommand(path string) *exec.Cmd {
	return exec.Command("open", "-R", path)
}

// previewCommand shows path in Quick Look
func previewCommand(path string) *exec.Cmd {
	return exec.Command("qlmanage", "-p", path)
}
