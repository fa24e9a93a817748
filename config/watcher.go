package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatcherConfig configures the document watcher
type WatcherConfig struct {
	// Path is the policy document to watch
	Path string

	// DebounceDelay is how long to wait for more writes before reloading
	DebounceDelay time.Duration

	// Logger for logging events
	Logger *slog.Logger
}

// ReloadFunc receives each reloaded document, or the error that prevented
// loading it.
type ReloadFunc func(cfg *Config, err error)

// Watcher reloads a policy document whenever it changes on disk.
type Watcher struct {
	config  WatcherConfig
	path    string
	watcher *fsnotify.Watcher
	logger  *slog.Logger

	pendingMu sync.Mutex
	pending   bool
}

// NewWatcher creates a watcher for config.Path. The parent directory is
// watched so that editors that replace the file on save are handled.
func NewWatcher(config WatcherConfig) (*Watcher, error) {
	path, err := filepath.Abs(config.Path)
	if err != nil {
		return nil, fmt.Errorf("resolve watch path: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if config.DebounceDelay == 0 {
		config.DebounceDelay = 100 * time.Millisecond
	}

	return &Watcher{
		config:  config,
		path:    path,
		watcher: fsw,
		logger:  logger,
	}, nil
}

// Run loads the document once, then reloads it after every change until ctx
// is cancelled. Each load is validated before being handed to fn.
func (w *Watcher) Run(ctx context.Context, fn ReloadFunc) error {
	defer w.watcher.Close()

	w.reload(fn)

	ticker := time.NewTicker(w.config.DebounceDelay)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleFSEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Watcher error", "error", err)

		case <-ticker.C:
			if w.takePending() {
				w.reload(fn)
			}
		}
	}
}

// handleFSEvent marks the document dirty when the event concerns it
func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}

	w.pendingMu.Lock()
	w.pending = true
	w.pendingMu.Unlock()

	w.logger.Debug("Policy document change detected", "path", w.path, "op", event.Op.String())
}

func (w *Watcher) takePending() bool {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()
	pending := w.pending
	w.pending = false
	return pending
}

func (w *Watcher) reload(fn ReloadFunc) {
	cfg, err := LoadFromFile(w.path)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		w.logger.Warn("Failed to reload policy document", "path", w.path, "error", err)
		fn(nil, err)
		return
	}
	w.logger.Debug("Reloaded policy document", "path", w.path, "policies", len(cfg.Policies))
	fn(cfg, nil)
}
