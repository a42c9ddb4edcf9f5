// Package watcher reports changes to an input file so the viewer can
// reload it, e.g. a metafile rewritten by a bundler in watch mode.
package watcher

import (
	"path/filepath"
	"time"
)

// Event reports that the watched file was written, created or replaced
type Event struct {
	Path string
	Time time.Time
}

// Latency is how long events are coalesced before one is reported
const Latency = 200 * time.Millisecond

// matches reports whether an event path names the watched file
func matches(target, path string) bool {
	return filepath.Clean(target) == filepath.Clean(path)
}

// send delivers ev unless the channel is full. A pending event already
// means "reload", so dropping is harmless.
func send(ch chan Event, ev Event) {
	select {
	case ch <- ev:
	default:
	}
}
