//go:build !darwin && !windows

package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/lumipallolabs/nanovis/internal/logging"
)

// Watcher polls one file for size and modification time changes
type Watcher struct {
	// Interval is the polling period, Latency by default
	Interval time.Duration

	path    string
	last    fileStamp
	eventCh chan Event
	done    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	closed  bool
}

type fileStamp struct {
	size    int64
	modTime time.Time
	exists  bool
}

func (s fileStamp) equal(o fileStamp) bool {
	return s.size == o.size && s.exists == o.exists && s.modTime.Equal(o.modTime)
}

func stamp(path string) fileStamp {
	info, err := os.Stat(path)
	if err != nil {
		return fileStamp{}
	}
	return fileStamp{size: info.Size(), modTime: info.ModTime(), exists: true}
}

// New creates a watcher for the file at path
func New(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return &Watcher{
		Interval: Latency,
		path:     abs,
		eventCh:  make(chan Event, 1),
		done:     make(chan struct{}),
	}, nil
}

// Events returns the channel changes are reported on
func (w *Watcher) Events() <-chan Event {
	return w.eventCh
}

// Start begins polling
func (w *Watcher) Start() {
	w.last = stamp(w.path)
	w.wg.Add(1)
	go w.run()
}

func (w *Watcher) run() {
	defer w.wg.Done()
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			s := stamp(w.path)
			if s.equal(w.last) {
				continue
			}
			w.last = s
			// a file being replaced is briefly missing
			if !s.exists {
				continue
			}
			logging.Engine.Debug("input changed", "path", w.path, "size", s.size)
			send(w.eventCh, Event{Path: w.path, Time: time.Now()})
		}
	}
}

// Stop stops polling and closes the event channel
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	close(w.done)
	w.wg.Wait()
	close(w.eventCh)
	return nil
}
