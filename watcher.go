package main

import (
	"path/filepath"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 200 * time.Millisecond

// FileChangeMsg is sent when the backing file changes on disk
type FileChangeMsg struct {
	Path    string
	Deleted bool
}

// DebouncedReloadMsg signals that enough time has passed to reload the list
type DebouncedReloadMsg struct{}

// Watcher wraps fsnotify to watch the backing file. The parent directory
// is watched because saves replace the file by rename.
type Watcher struct {
	watcher *fsnotify.Watcher
	path    string
}

// NewWatcher creates a file watcher for the given task file
func NewWatcher(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, err
	}

	return &Watcher{watcher: w, path: abs}, nil
}

// WatchCmd returns a BubbleTea command that waits for the next change to the file
func (w *Watcher) WatchCmd() tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case event, ok := <-w.watcher.Events:
				if !ok {
					return nil
				}

				if filepath.Clean(event.Name) != w.path {
					continue
				}

				deleted := event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
				return FileChangeMsg{Path: event.Name, Deleted: deleted}

			case _, ok := <-w.watcher.Errors:
				if !ok {
					return nil
				}
				continue
			}
		}
	}
}

// Close stops the watcher
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// Debouncer coalesces rapid file change events into a single reload
type Debouncer struct {
	mu       sync.Mutex
	timer    *time.Timer
	duration time.Duration
	send     func(tea.Msg)
}

// NewDebouncer creates a new debouncer with the given delay duration
func NewDebouncer(d time.Duration) *Debouncer {
	return &Debouncer{duration: d}
}

// SetProgram sets the BubbleTea program to send messages to
func (d *Debouncer) SetProgram(p *tea.Program) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.send = p.Send
}

// Trigger starts or resets the debounce timer
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.duration, func() {
		d.mu.Lock()
		send := d.send
		d.mu.Unlock()

		if send != nil {
			send(DebouncedReloadMsg{})
		}
	})
}
