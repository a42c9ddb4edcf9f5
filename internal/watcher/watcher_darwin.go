//go:build darwin

package watcher

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsevents"

	"github.com/lumipallolabs/nanovis/internal/logging"
)

// changeFlags are the FSEvents flags that mean the file has new content.
// Editors and bundlers often write a temp file and rename it over.
const changeFlags = fsevents.ItemModified | fsevents.ItemCreated | fsevents.ItemRenamed

// Watcher watches one file using macOS FSEvents on its directory
type Watcher struct {
	path    string
	stream  *fsevents.EventStream
	eventCh chan Event
	done    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	closed  bool
}

// New creates a watcher for the file at path
func New(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	// FSEvents reports resolved paths
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	dir := filepath.Dir(abs)
	dev, err := fsevents.DeviceForPath(dir)
	if err != nil {
		return nil, err
	}
	return &Watcher{
		path: abs,
		stream: &fsevents.EventStream{
			Paths:   []string{dir},
			Latency: Latency,
			Device:  dev,
			Flags:   fsevents.FileEvents | fsevents.WatchRoot,
		},
		eventCh: make(chan Event, 1),
		done:    make(chan struct{}),
	}, nil
}

// Events returns the channel changes are reported on
func (w *Watcher) Events() <-chan Event {
	return w.eventCh
}

// Start begins watching
func (w *Watcher) Start() {
	w.stream.Start()
	w.wg.Add(1)
	go w.run()
}

func (w *Watcher) run() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return
		case events, ok := <-w.stream.Events:
			if !ok {
				return
			}
			for _, event := range events {
				w.handleEvent(event)
			}
		}
	}
}

func (w *Watcher) handleEvent(event fsevents.Event) {
	if event.Flags&changeFlags == 0 {
		return
	}

	path := event.Path
	if len(path) > 0 && path[0] != '/' {
		path = "/" + path
	}
	if !matches(w.path, path) {
		return
	}
	logging.Engine.Debug("input changed", "path", path, "flags", event.Flags)
	send(w.eventCh, Event{Path: w.path, Time: time.Now()})
}

// Stop stops watching and closes the event channel
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	close(w.done)
	w.stream.Stop()
	w.wg.Wait()
	close(w.eventCh)
	return nil
}
