// Package watch rebuilds the site when one of its source files changes.
package watch

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is how long a file must stay quiet before a rebuild.
const DefaultDebounce = 300 * time.Millisecond

// RebuildFunc rebuilds the site. ctx is cancelled when a newer change
// arrives before it finishes.
type RebuildFunc func(ctx context.Context) error

// Stats counts watcher activity.
type Stats struct {
	Events    int
	Rebuilds  int
	Cancelled int
	Errors    int
	LastPath  string
}

// Watcher watches a fixed set of files and runs a rebuild after a burst of
// changes settles. Only the newest rebuild runs to completion.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	files    map[string]bool
	debounce time.Duration
	rebuild  RebuildFunc
	logger   *zap.Logger

	lastEvent time.Time
	dirty     bool
	cancel    context.CancelFunc
	builds    sync.WaitGroup

	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
	stopped bool
	stats   Stats
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// New creates a watcher for files. Their directories are watched rather than
// the files themselves, so editors that save by renaming still trigger.
func New(files []string, rebuild RebuildFunc, opts ...Option) (*Watcher, error) {
	if len(files) == 0 {
		return nil, errors.New("watch: no files to watch")
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:  fw,
		files:    make(map[string]bool, len(files)),
		debounce: DefaultDebounce,
		rebuild:  rebuild,
		logger:   zap.NewNop(),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			fw.Close()
			return nil, err
		}
		w.files[abs] = true
	}
	return w, nil
}

// ErrStopped is returned by Start after Stop.
var ErrStopped = errors.New("watch: watcher stopped")

// Start begins watching. It does not block.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return ErrStopped
	}
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	dirs := make(map[string]bool)
	for f := range w.files {
		dirs[filepath.Dir(f)] = true
	}
	for dir := range dirs {
		if err := w.watcher.Add(dir); err != nil {
			w.logger.Warn("cannot watch directory", zap.String("dir", dir), zap.Error(err))
			continue
		}
		w.logger.Debug("watching directory", zap.String("dir", dir))
	}

	go w.run(ctx)
	return nil
}

// Stop stops watching, cancels any rebuild in flight and waits for it.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	wasRunning := w.running
	w.running = false
	w.mu.Unlock()

	if wasRunning {
		close(w.stopCh)
		<-w.doneCh
	}

	w.mu.Lock()
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	w.mu.Unlock()
	w.builds.Wait()

	if err := w.watcher.Close(); err != nil {
		w.logger.Warn("closing watcher", zap.Error(err))
	}
}

// Stats returns a snapshot of the counters.
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	interval := w.debounce / 3
	if interval < 10*time.Millisecond {
		interval = 10 * time.Millisecond
	}
	tick := time.NewTicker(interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
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
			w.logger.Warn("watcher error", zap.Error(err))
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()
		case <-tick.C:
			w.maybeRebuild(ctx)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil || !w.files[abs] {
		return
	}

	w.logger.Debug("source changed", zap.String("path", abs), zap.String("op", event.Op.String()))
	w.mu.Lock()
	w.stats.Events++
	w.stats.LastPath = abs
	w.lastEvent = time.Now()
	w.dirty = true
	w.mu.Unlock()
}

// maybeRebuild starts a rebuild once changes have been quiet for the debounce
// window, cancelling the previous rebuild if it is still running.
func (w *Watcher) maybeRebuild(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.dirty || time.Since(w.lastEvent) < w.debounce {
		return
	}
	w.dirty = false

	if w.cancel != nil {
		w.cancel()
	}
	buildCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.stats.Rebuilds++

	w.builds.Add(1)
	go func() {
		defer w.builds.Done()
		defer cancel()
		err := w.rebuild(buildCtx)

		w.mu.Lock()
		defer w.mu.Unlock()
		switch {
		case errors.Is(err, context.Canceled):
			w.stats.Cancelled++
			w.logger.Debug("rebuild superseded")
		case err != nil:
			w.stats.Errors++
			w.logger.Warn("rebuild failed", zap.Error(err))
		default:
			w.logger.Info("rebuilt site")
		}
	}()
}
