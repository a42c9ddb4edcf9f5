//go:build windows

package watcher

import (
	"path/filepath"
	"sync"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/lumipallolabs/nanovis/internal/logging"
)

// Watcher watches one file using ReadDirectoryChangesW on its directory
type Watcher struct {
	path    string
	dir     string
	handle  windows.Handle
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
	dir := filepath.Dir(abs)

	pathPtr, err := windows.UTF16PtrFromString(dir)
	if err != nil {
		return nil, err
	}

	handle, err := windows.CreateFile(
		pathPtr,
		windows.FILE_LIST_DIRECTORY,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE|windows.FILE_SHARE_DELETE,
		nil,
		windows.OPEN_EXISTING,
		windows.FILE_FLAG_BACKUP_SEMANTICS,
		0,
	)
	if err != nil {
		return nil, err
	}

	return &Watcher{
		path:    abs,
		dir:     dir,
		handle:  handle,
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
	w.wg.Add(1)
	go w.run()
}

const notifyFilter = windows.FILE_NOTIFY_CHANGE_FILE_NAME | windows.FILE_NOTIFY_CHANGE_LAST_WRITE | windows.FILE_NOTIFY_CHANGE_SIZE

func (w *Watcher) run() {
	defer w.wg.Done()
	buf := make([]byte, 64*1024)

	for {
		select {
		case <-w.done:
			return
		default:
		}

		var bytesReturned uint32
		err := windows.ReadDirectoryChanges(
			w.handle,
			&buf[0],
			uint32(len(buf)),
			false, // the file's directory only
			notifyFilter,
			&bytesReturned,
			nil,
			0,
		)
		if err != nil {
			return
		}

		if bytesReturned > 0 && w.processEvents(buf[:bytesReturned]) {
			send(w.eventCh, Event{Path: w.path, Time: time.Now()})
		}
	}
}

const (
	fileActionAdded          = 1
	fileActionModified       = 3
	fileActionRenamedNewName = 5
)

// processEvents reports whether any record names the watched file
func (w *Watcher) processEvents(buf []byte) bool {
	changed := false
	for len(buf) >= 12 {
		nextOffset := *(*uint32)(unsafe.Pointer(&buf[0]))
		action := *(*uint32)(unsafe.Pointer(&buf[4]))
		nameLen := *(*uint32)(unsafe.Pointer(&buf[8]))

		if len(buf) >= 12+int(nameLen) {
			switch action {
			case fileActionAdded, fileActionModified, fileActionRenamedNewName:
				name := windows.UTF16ToString((*[1 << 15]uint16)(unsafe.Pointer(&buf[12]))[:nameLen/2])
				if matches(w.path, filepath.Join(w.dir, name)) {
					logging.Engine.Debug("input changed", "path", w.path, "action", action)
					changed = true
				}
			}
		}

		if nextOffset == 0 {
			break
		}
		buf = buf[nextOffset:]
	}
	return changed
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
	// cancel the blocked ReadDirectoryChanges call
	windows.CancelIoEx(w.handle, nil)
	windows.CloseHandle(w.handle)
	w.wg.Wait()
	close(w.eventCh)
	return nil
}
