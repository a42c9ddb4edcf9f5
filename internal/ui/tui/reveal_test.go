package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRevealCommands(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(file, []byte("a"), 0644); err != nil {
		t.Fatal(err)
	}

	cmd := revealCommand(dir)
	if last := cmd.Args[len(cmd.Args)-1]; !strings.Contains(last, dir) {
		t.Errorf("reveal should target %s, args %v", dir, cmd.Args)
	}
	cmd = previewCommand(file)
	if last := cmd.Args[len(cmd.Args)-1]; last != file {
		t.Errorf("preview should open %s, args %v", file, cmd.Args)
	}
	if cmd.Process != nil {
		t.Error("building a command must not start it")
	}
}
