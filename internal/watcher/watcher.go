// Package watcher watches a transcript inbox directory with fsnotify and
// reports new or rewritten files once writes have settled.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 400 * time.Millisecond

// Watcher watches one directory and calls onChange for matching files.
type Watcher struct {
	dir         string
	extensions  []string
	onChange    func(path string)
	debounce    time.Duration
	watcher     *fsnotify.Watcher
	mu          sync.Mutex
	debounceMap map[string]*pending
	done        chan struct{}
	started     bool
	stopOnce    sync.Once
	logger      *zap.Logger
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) WatcherOption {
	return func(w *Watcher) { w.logger = l }
}

// WithDebounce sets how long a file must be quiet before onChange fires.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// NewWatcher creates a watcher for dir. extensions filter which files are
// reported (empty means all). onChange runs on its own goroutine per file.
func NewWatcher(dir string, extensions []string, onChange func(path string), opts ...WatcherOption) *Watcher {
	w := &Watcher{
		dir:         filepath.Clean(dir),
		extensions:  extensions,
		onChange:    onChange,
		debounce:    defaultDebounce,
		debounceMap: make(map[string]*pending),
		done:        make(chan struct{}),
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string { return w.dir }

// Start creates the directory if needed and starts watching. It runs until
// ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return nil
	}
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(w.dir); err != nil {
		_ = watcher.Close()
		return err
	}
	w.watcher = watcher
	w.started = true
	w.logger.Debug("watcher starting", zap.String("dir", w.dir), zap.Strings("extensions", w.extensions))
	go w.run(ctx, watcher)
	return nil
}

func (w *Watcher) run(ctx context.Context, watcher *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			if err != nil {
				w.logger.Debug("watcher error", zap.Error(err))
			}
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	path := ev.Name
	if filepath.Dir(filepath.Clean(path)) != w.dir || !matchExtension(path, w.extensions) {
		return
	}
	w.logger.Debug("watcher event", zap.String("op", ev.Op.String()), zap.String("path", path))
	switch {
	case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
		if info, err := os.Stat(path); err != nil || info.IsDir() {
			return
		}
		w.schedule(path)
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		w.cancel(path)
	}
}

func matchExtension(path string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, e := range extensions {
		if strings.TrimPrefix(strings.ToLower(e), ".") == ext {
			return true
		}
	}
	return false
}

// pending is one scheduled report. Identity, not the timer, decides whether a
// firing callback is still the current one for its path.
type pending struct {
	timer *time.Timer
}

func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started {
		return
	}
	if p, ok := w.debounceMap[path]; ok {
		p.timer.Stop()
	}
	p := &pending{}
	p.timer = time.AfterFunc(w.debounce, func() { w.fire(path, p) })
	w.debounceMap[path] = p
}

// fire reports path unless p was superseded or cancelled after its timer fired.
func (w *Watcher) fire(path string, p *pending) {
	w.mu.Lock()
	if w.debounceMap[path] != p {
		w.mu.Unlock()
		return
	}
	delete(w.debounceMap, path)
	w.mu.Unlock()
	w.logger.Debug("watcher reporting file", zap.String("path", path))
	if w.onChange != nil {
		w.onChange(path)
	}
}

func (w *Watcher) cancel(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if p, ok := w.debounceMap[path]; ok {
		p.timer.Stop()
		delete(w.debounceMap, path)
	}
}

// Stop stops the watcher and drops pending events.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return
	}
	for path, p := range w.debounceMap {
		p.timer.Stop()
		delete(w.debounceMap, path)
	}
	_ = w.watcher.Close()
	w.watcher = nil
	w.started = false
	w.mu.Unlock()
	w.stopOnce.Do(func() { close(w.done) })
}
