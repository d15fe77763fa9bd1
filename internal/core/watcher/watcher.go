// # internal/core/watcher/watcher.go
package watcher

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"grammarcheck/internal/shared/observability"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"
)

// DefaultPatterns match the archive and sidecar files in a dist directory.
var DefaultPatterns = []string{
	"libtree-sitter-parsers-all-*.a",
	"grammars-*.json",
}

// Watcher reports debounced changes of build artifacts in a set of
// directories. Directories are watched rather than files so that artifacts
// replaced by rename are still seen.
type Watcher struct {
	fsWatcher  *fsnotify.Watcher
	debounce   time.Duration
	patterns   []glob.Glob
	onChange   func([]string)
	callbackMu sync.Mutex
	logger     *slog.Logger
	metrics    *observability.Metrics

	pending   map[string]time.Time
	pendingMu sync.Mutex
	timer     *time.Timer
	done      chan struct{}
}

func NewWatcher(debounce time.Duration, patterns []string, onChange func([]string)) (*Watcher, error) {
	if onChange == nil {
		return nil, os.ErrInvalid
	}
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}

	compiled := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, g)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		fsWatcher: fsw,
		debounce:  debounce,
		patterns:  compiled,
		onChange:  onChange,
		logger:    slog.Default(),
		pending:   make(map[string]time.Time),
		done:      make(chan struct{}),
	}, nil
}

func (w *Watcher) SetLogger(logger *slog.Logger) {
	if logger != nil {
		w.logger = logger
	}
}

func (w *Watcher) SetMetrics(m *observability.Metrics) {
	w.metrics = m
}

func (w *Watcher) SetDebounce(debounce time.Duration) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()
	w.debounce = debounce
}

// Watch starts watching dirs. It returns once the directories are registered.
func (w *Watcher) Watch(dirs []string) error {
	for _, dir := range dirs {
		if err := w.fsWatcher.Add(dir); err != nil {
			return err
		}
	}

	go w.run()
	return nil
}

// Done is closed when the event loop exits.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

func (w *Watcher) run() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if w.metrics != nil {
				w.metrics.WatchEvents.Inc()
			}

			if !w.matches(event.Name) {
				continue
			}

			if event.Op&fsnotify.Write == fsnotify.Write ||
				event.Op&fsnotify.Create == fsnotify.Create ||
				event.Op&fsnotify.Remove == fsnotify.Remove ||
				event.Op&fsnotify.Rename == fsnotify.Rename {
				w.scheduleChange(event.Name)
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) scheduleChange(path string) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	w.pending[path] = time.Now()

	if w.timer != nil {
		w.timer.Stop()
	}

	w.timer = time.AfterFunc(w.debounce, func() {
		w.flushChanges()
	})
}

func (w *Watcher) flushChanges() {
	w.pendingMu.Lock()
	paths := make([]string, 0, len(w.pending))
	for path := range w.pending {
		paths = append(paths, path)
	}
	w.pending = make(map[string]time.Time)
	w.pendingMu.Unlock()

	if len(paths) > 0 {
		sort.Strings(paths)
		w.callbackMu.Lock()
		defer w.callbackMu.Unlock()
		w.onChange(paths)
	}
}

func (w *Watcher) matches(path string) bool {
	base := filepath.Base(path)
	for _, g := range w.patterns {
		if g.Match(base) {
			return true
		}
	}
	return false
}

func (w *Watcher) Close() error {
	w.pendingMu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.pendingMu.Unlock()
	return w.fsWatcher.Close()
}
