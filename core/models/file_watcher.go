package models

import (
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

type FileWatcher struct {
	Watcher       *fsnotify.Watcher
	RootDir       string
	Extension     string
	ExcludePaths  []string
	Debounce      time.Duration
	DebounceTimer *time.Timer
	Mutex         sync.Mutex
	OnStart       func() error
	OnChange      func(changed []string) error
	OnClose       func() error

	pending map[string]struct{}
}

func NewFileWatcher(rootDir, ext string, excludePaths []string, debounce time.Duration) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &FileWatcher{
		Watcher:      watcher,
		RootDir:      rootDir,
		Extension:    ext,
		ExcludePaths: excludePaths,
		Debounce:     debounce,
		OnStart:      func() error { return nil },
		OnChange:     func([]string) error { return fmt.Errorf("OnChange not set") },
		OnClose:      func() error { return nil },
		pending:      make(map[string]struct{}),
	}, nil
}

func (fw *FileWatcher) AddOnStartFunc(onStart func() error) {
	fw.OnStart = onStart
}

func (fw *FileWatcher) AddOnChangeFunc(onChange func(changed []string) error) {
	fw.OnChange = onChange
}

func (fw *FileWatcher) AddOnCloseFunc(onClose func() error) {
	fw.OnClose = onClose
}

// MarkChanged queues path for the next OnChange call. Caller holds Mutex.
func (fw *FileWatcher) MarkChanged(path string) {
	fw.pending[path] = struct{}{}
}

// DrainChanged returns and clears the queued paths. Caller holds Mutex.
func (fw *FileWatcher) DrainChanged() []string {
	changed := make([]string, 0, len(fw.pending))
	for path := range fw.pending {
		changed = append(changed, path)
	}
	fw.pending = make(map[string]struct{})
	return changed
}
