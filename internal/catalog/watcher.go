// Copyright 2025 The Switchboard Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"
)

// eventTypeMap maps fsnotify operations to catalog event types.
var eventTypeMap = map[fsnotify.Op]string{
	fsnotify.Create: "created",
	fsnotify.Write:  "modified",
	fsnotify.Remove: "deleted",
	fsnotify.Rename: "renamed",
}

// reloadTimeout bounds a single watcher-triggered reload.
const reloadTimeout = 30 * time.Second

// WatcherConfig configures a catalog file watcher.
type WatcherConfig struct {
	// Path is the catalog file or directory to watch.
	Path string

	// Include and Exclude filter events in directory mode using doublestar
	// patterns. Ignored when Path is a single file.
	Include []string
	Exclude []string

	// Debounce is how long to wait after the last event before reloading.
	// Zero reloads immediately on every event.
	Debounce time.Duration

	// MaxReloadsPerMinute caps watcher-triggered reloads. Zero disables
	// the cap.
	MaxReloadsPerMinute int

	// OnReload is invoked after the debounce window closes. It receives a
	// context bounded by reloadTimeout.
	OnReload func(ctx context.Context) error

	// Logger receives watcher lifecycle and event logs. nil uses
	// slog.Default.
	Logger *slog.Logger
}

// Watcher watches the catalog path and triggers reloads when files change.
//
// Single-file catalogs are watched through their parent directory so atomic
// replace-by-rename writes are observed. Rapid event bursts collapse into
// one reload per debounce window.
type Watcher struct {
	path       string
	watchDir   string
	singleFile bool
	matcher    *PatternMatcher
	debounce   time.Duration
	limiter    *rate.Limiter
	onReload   func(ctx context.Context) error
	watcher    *fsnotify.Watcher
	logger     *slog.Logger

	mu    sync.Mutex
	timer *time.Timer

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewWatcher creates a catalog watcher for cfg.Path.
func NewWatcher(cfg WatcherConfig) (*Watcher, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("watch path is required")
	}
	if cfg.OnReload == nil {
		return nil, fmt.Errorf("reload callback is required")
	}

	absPath, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	// A path that doesn't exist yet, or is a plain file, is watched through
	// its parent directory so create and rename events are seen.
	singleFile := true
	if info, err := os.Stat(absPath); err == nil && info.IsDir() {
		singleFile = false
	}

	watchDir := absPath
	if singleFile {
		watchDir = filepath.Dir(absPath)
	}

	matcher, err := NewPatternMatcher(cfg.Include, cfg.Exclude)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	w := &Watcher{
		path:       absPath,
		watchDir:   watchDir,
		singleFile: singleFile,
		matcher:    matcher,
		debounce:   cfg.Debounce,
		onReload:   cfg.OnReload,
		watcher:    fsw,
		logger:     logger.With(slog.String("component", "catalog_watcher"), slog.String("path", absPath)),
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}

	if cfg.MaxReloadsPerMinute > 0 {
		tokensPerSecond := float64(cfg.MaxReloadsPerMinute) / 60.0
		w.limiter = rate.NewLimiter(rate.Limit(tokensPerSecond), 1)
	}

	if err := fsw.Add(watchDir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch path: %w", err)
	}

	return w, nil
}

// Start begins watching for catalog changes.
func (w *Watcher) Start(ctx context.Context) error {
	go w.eventLoop(ctx)
	w.logger.Info("catalog watcher started")
	return nil
}

// Stop stops the watcher and cancels any pending reload.
func (w *Watcher) Stop() error {
	close(w.stopCh)
	<-w.doneCh

	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()

	return w.watcher.Close()
}

// eventLoop processes fsnotify events until stopped.
func (w *Watcher) eventLoop(ctx context.Context) {
	defer close(w.doneCh)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("catalog watcher stopped (context cancelled)")
			return
		case <-w.stopCh:
			w.logger.Info("catalog watcher stopped")
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				w.logger.Warn("catalog watcher event channel closed")
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				w.logger.Warn("catalog watcher error channel closed")
				return
			}
			w.logger.Error("catalog watcher error", "error", err)
		}
	}
}

// handleEvent filters one fsnotify event and schedules a reload if relevant.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	eventType, ok := eventTypeMap[event.Op]
	if !ok {
		// fsnotify.Chmod is not mapped - we ignore it
		w.logger.Debug("ignoring unmapped event", "op", event.Op, "path", event.Name)
		return
	}

	if !w.relevant(event.Name) {
		recordWatcherExcluded()
		w.logger.Debug("event excluded", "type", eventType, "path", event.Name)
		return
	}

	recordWatcherEvent(eventType)
	w.logger.Debug("catalog file event", "type", eventType, "path", event.Name)
	w.scheduleReload()
}

// relevant reports whether an event path affects the catalog.
func (w *Watcher) relevant(eventPath string) bool {
	if w.singleFile {
		// The watch is on the parent directory; only events for the
		// catalog file itself matter. Compare base names so editors that
		// rename into place still match.
		return filepath.Base(eventPath) == filepath.Base(w.path)
	}

	rel, err := filepath.Rel(w.path, eventPath)
	if err != nil {
		return false
	}
	return w.matcher.Match(rel)
}

// scheduleReload resets the debounce timer. With no debounce configured the
// reload fires inline.
func (w *Watcher) scheduleReload() {
	if w.debounce <= 0 {
		w.fireReload()
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.fireReload)
}

// fireReload runs the reload callback, honoring the rate limit.
func (w *Watcher) fireReload() {
	select {
	case <-w.stopCh:
		return
	default:
	}

	if w.limiter != nil && !w.limiter.Allow() {
		recordWatcherRateLimited()
		w.logger.Warn("reload rate limit exceeded, dropping reload")
		return
	}

	recordWatcherReload()

	ctx, cancel := context.WithTimeout(context.Background(), reloadTimeout)
	defer cancel()

	if err := w.onReload(ctx); err != nil {
		recordWatcherReloadFailure()
		w.logger.Error("catalog reload failed", "error", err)
		return
	}

	w.logger.Info("catalog reloaded after file change")
}
