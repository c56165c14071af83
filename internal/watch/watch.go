// Package watch is the file-system watcher: it recursively monitors a
// repository, debounces burst events into a single changed/removed set
// per tick, and drives the caller's update callbacks with removals always
// delivered before changes (BM25 removal before any graph mutation).
package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/codelens-dev/codelens/internal/config"
	"github.com/codelens-dev/codelens/internal/langs"
)

// EventKind distinguishes the two event classes the debounced flush
// delivers, coalesced from fsnotify's write/create/remove/rename ops.
type EventKind int

const (
	EventChanged EventKind = iota
	EventRemoved
)

// Callbacks groups the update hooks the watcher drives on each debounced
// flush. OnRemoved must run for every removed path before any OnChanged
// call in the same batch touches the graph; Watcher enforces this by
// calling OnRemoved first.
type Callbacks struct {
	OnChanged func(relPath string)
	OnRemoved func(relPath string)
}

// Watcher recursively watches a repository root and debounces fsnotify
// events into batched callbacks.
type Watcher struct {
	root     string
	cfg      *config.Config
	fsw      *fsnotify.Watcher
	cb       Callbacks
	log      *slog.Logger

	mu     sync.Mutex
	events map[string]EventKind
	ticker *time.Ticker

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Watcher over cfg.Project.Root. It does not start
// watching until Start is called.
func New(cfg *config.Config, cb Callbacks, log *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		root:   cfg.Project.Root,
		cfg:    cfg,
		fsw:    fsw,
		cb:     cb,
		log:    log,
		events: make(map[string]EventKind),
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// Start adds recursive watches under the repository root and begins
// processing events. It waits InitialPollMs before the first watch is
// considered live, giving the initial index build a head start.
func (w *Watcher) Start() error {
	if !w.cfg.Watch.Enabled {
		return nil
	}
	time.Sleep(time.Duration(w.cfg.Watch.InitialPollMs) * time.Millisecond)

	if err := w.addWatches(w.root); err != nil {
		return err
	}

	w.ticker = time.NewTicker(time.Duration(w.cfg.Watch.DebounceMs) * time.Millisecond)

	w.wg.Add(1)
	go w.loop()
	return nil
}

// Stop cancels the watcher and waits for its goroutine to exit.
func (w *Watcher) Stop() error {
	w.cancel()
	err := w.fsw.Close()
	w.wg.Wait()
	if w.ticker != nil {
		w.ticker.Stop()
	}
	return err
}

func (w *Watcher) addWatches(root string) error {
	visited := make(map[string]bool)
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || !info.IsDir() {
			return nil
		}
		real, err := filepath.EvalSymlinks(path)
		if err != nil {
			return nil
		}
		if visited[real] {
			return filepath.SkipDir
		}
		visited[real] = true

		if w.shouldSkipDir(path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			w.log.Warn("watch add failed", "path", path, "err", err)
		}
		return nil
	})
}

func (w *Watcher) shouldSkipDir(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") && path != w.root
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Error("watch error", "err", err)
		case <-w.ticker.C:
			w.flush()
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	rel, err := filepath.Rel(w.root, ev.Name)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)

	info, statErr := os.Stat(ev.Name)
	if statErr != nil {
		if ev.Op&fsnotify.Remove != 0 || ev.Op&fsnotify.Rename != 0 {
			w.addEvent(rel, EventRemoved)
		}
		return
	}
	if info.IsDir() {
		if ev.Op&fsnotify.Create != 0 && !w.shouldSkipDir(ev.Name) {
			if err := w.fsw.Add(ev.Name); err != nil {
				w.log.Warn("watch add failed", "path", ev.Name, "err", err)
			}
		}
		return
	}

	switch {
	case ev.Op&fsnotify.Remove != 0:
		w.addEvent(rel, EventRemoved)
	case ev.Op&fsnotify.Write != 0, ev.Op&fsnotify.Create != 0, ev.Op&fsnotify.Rename != 0:
		// Per spec.md §4.10, the changed set is filtered to recognised
		// extensions before it ever reaches the debounced batch; the
		// removed set is not (a file may vanish without codelens ever
		// having been able to classify its language).
		if _, ok := langs.FromExtension(rel); !ok {
			return
		}
		w.addEvent(rel, EventChanged)
	}
}

func (w *Watcher) addEvent(rel string, kind EventKind) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.events[rel] = kind
}

// flush runs on every DebounceMs ticker fire and delivers one coalesced
// batch of whatever accumulated since the last tick: every removal first,
// then every change, preserving the BM25-before-graph ordering guarantee.
// Unlike a reset-on-every-event debounce, a sustained burst of writes
// still drains on the fixed period instead of being held off indefinitely.
func (w *Watcher) flush() {
	w.mu.Lock()
	events := w.events
	w.events = make(map[string]EventKind)
	w.mu.Unlock()

	if len(events) == 0 {
		return
	}

	var removed, changed []string
	for path, kind := range events {
		switch kind {
		case EventRemoved:
			removed = append(removed, path)
		case EventChanged:
			changed = append(changed, path)
		}
	}

	start := time.Now()
	for _, path := range removed {
		w.log.Debug("file removed", "path", path)
		if w.cb.OnRemoved != nil {
			w.cb.OnRemoved(path)
		}
	}
	for _, path := range changed {
		w.log.Debug("file changed", "path", path)
		if w.cb.OnChanged != nil {
			w.cb.OnChanged(path)
		}
	}
	w.log.Info("applied change batch", "removed", len(removed),
		"changed", len(changed), "elapsed", time.Since(start))
}
