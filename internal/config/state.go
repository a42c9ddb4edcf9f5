package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
)

// saveDelay coalesces bursts of state changes into one write
const saveDelay = 2 * time.Second

// State is what the viewer remembers between runs
type State struct {
	LastChart string `toml:"last_chart,omitempty"`
	LastInput string `toml:"last_input,omitempty"`
}

// StateManager keeps State in memory and writes it back to a TOML file a
// short while after the last change. Close flushes a pending write.
type StateManager struct {
	path string

	mu      sync.Mutex
	state   State
	pending *time.Timer
}

// NewStateManager creates a manager for the state file at path, or at
// ~/.nanovis/state.toml when path is empty.
func NewStateManager(path string) *StateManager {
	if path == "" {
		path = DefaultStatePath()
	}
	return &StateManager{path: path}
}

// DefaultStatePath returns the default state file location
func DefaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".nanovis-state.toml"
	}
	return filepath.Join(home, ".nanovis", "state.toml")
}

// Load reads the state file. A missing file leaves the state empty.
func (m *StateManager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var s State
	if _, err := toml.DecodeFile(m.path, &s); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load state %s: %w", m.path, err)
	}
	m.state = s
	return nil
}

// State returns a copy of the current state
func (m *StateManager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// SetLastChart records the chart type in use
func (m *StateManager) SetLastChart(kind string) {
	m.set(func(s *State) *string { return &s.LastChart }, kind)
}

// SetLastInput records the input in use
func (m *StateManager) SetLastInput(path string) {
	m.set(func(s *State) *string { return &s.LastInput }, path)
}

func (m *StateManager) set(field func(*State) *string, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f := field(&m.state)
	if *f == value {
		return
	}
	*f = value

	if m.pending != nil {
		m.pending.Stop()
	}
	m.pending = time.AfterFunc(saveDelay, m.flush)
}

// flush runs on the timer goroutine. Write errors surface on Close.
func (m *StateManager) flush() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending == nil {
		return
	}
	if err := m.write(); err == nil {
		m.pending = nil
	}
}

// write replaces the state file through a temporary file in the same
// directory. m.mu must be held.
func (m *StateManager) write() error {
	dir := filepath.Dir(m.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".state-*.toml")
	if err != nil {
		return fmt.Errorf("create state file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := toml.NewEncoder(tmp).Encode(m.state); err != nil {
		tmp.Close()
		return fmt.Errorf("encode state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return os.Rename(tmp.Name(), m.path)
}

// Close stops the save timer and writes any unsaved change
func (m *StateManager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending == nil {
		return nil
	}
	m.pending.Stop()
	m.pending = nil
	return m.write()
}
