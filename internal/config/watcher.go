package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/marco/movieFinder/internal/debounce"
)

// ReloadHandler is called with the freshly loaded configuration after the
// watched file changes and parses successfully.
type ReloadHandler func(cfg *Config)

// Watcher reloads the configuration file when it changes on disk.
type Watcher struct {
	path      string
	handler   ReloadHandler
	watcher   *fsnotify.Watcher
	debouncer *debounce.Debouncer[string]
	stopChan  chan struct{}
	doneChan  chan struct{}
}

// NewWatcher creates a watcher for the config file at path. Events are
// coalesced for debounceDelay before the file is reloaded.
func NewWatcher(path string, debounceDelay time.Duration, handler ReloadHandler) (*Watcher, error) {
	absPath, err := filepath.Abs(expandHome(path))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		path:     absPath,
		handler:  handler,
		watcher:  fsWatcher,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
	w.debouncer = debounce.New(debounceDelay, w.reload)
	return w, nil
}

// Start begins watching. The parent directory is watched because editors
// often replace the file instead of writing it in place.
func (w *Watcher) Start() error {
	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch config directory: %w", err)
	}

	go w.processEvents()

	slog.Info("config watcher started", "path", w.path)
	return nil
}

// Stop stops watching and waits for the event loop to exit.
func (w *Watcher) Stop() error {
	close(w.stopChan)
	<-w.doneChan
	w.debouncer.Stop()
	return w.watcher.Close()
}

func (w *Watcher) processEvents() {
	defer close(w.doneChan)

	for {
		select {
		case <-w.stopChan:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("config watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) || event.Has(fsnotify.Rename) {
		slog.Debug("config file event detected", "event", event.Op.String())
		w.debouncer.Trigger(w.path)
	}
}

func (w *Watcher) reload(path string) {
	cfg, err := Load(path)
	if err != nil {
		slog.Error("config reload failed, keeping previous configuration", "path", path, "error", err)
		return
	}
	slog.Info("config reloaded", "path", path)
	w.handler(cfg)
}
