// Package repo wires the whole pipeline together behind one handle: the
// repository graph, BM25 index, configuration, parser cache, walker and
// watcher. Grounded on internal/indexing's MasterIndex for the overall
// build/watch orchestration idiom, adapted to this module's
// RepositoryGraph/BM25Index types: a single RWMutex guards the "is a
// handle built yet" question, while the graph and BM25 index provide
// their own finer-grained internal locking.
package repo

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/codelens-dev/codelens/internal/bm25"
	"github.com/codelens-dev/codelens/internal/config"
	"github.com/codelens-dev/codelens/internal/errs"
	"github.com/codelens-dev/codelens/internal/graph"
	"github.com/codelens-dev/codelens/internal/parsing"
	"github.com/codelens-dev/codelens/internal/store"
	"github.com/codelens-dev/codelens/internal/types"
	"github.com/codelens-dev/codelens/internal/walker"
	"github.com/codelens-dev/codelens/internal/watch"
)

// Handle owns one fully-built repository index: graph, BM25, config and
// the parser cache it was built with.
type Handle struct {
	Config *config.Config
	Graph  *graph.Graph
	BM25   *bm25.Index
	Cache  *parsing.Cache
	Log    *slog.Logger

	watcher *watch.Watcher
}

// Repo is an RWMutex-guarded optional handle: readers (queries, RPC) take
// RLock and see either "not built yet" or a consistent handle; the single
// writer (Build/rebuild) takes Lock only for the instant of swapping the
// pointer in, never while walking or parsing.
type Repo struct {
	mu     sync.RWMutex
	handle *Handle
}

// New returns an empty Repo with no handle built yet.
func New() *Repo {
	return &Repo{}
}

// Handle returns the current handle, or nil and false if Build has not
// completed yet (the "query before index" case).
func (r *Repo) Handle() (*Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.handle, r.handle != nil
}

// Build walks root, extracts every element, builds the graph/BM25 index
// and installs the result as the current handle. Any per-file parse
// failures are logged and otherwise ignored, per spec.md §7.
func (r *Repo) Build(ctx context.Context, root string) (*Handle, error) {
	start := time.Now()
	cfg, err := config.Load(root)
	if err != nil {
		return nil, errs.NewConfigError(root, err)
	}
	log := slog.Default().With("component", "repo", "root", cfg.Project.Root)

	cache := parsing.New()
	w := walker.New(cfg)
	elements, parseErrs := w.IndexAll(ctx, cache)
	if parseErrs.HasErrors() {
		for _, e := range parseErrs.Errors {
			log.Warn("parse failure", "err", e)
		}
	}

	g := graph.New()
	g.BuildFromElements(elements, cache)

	idx := bm25.New()
	idx.Stem = cfg.Search.Stem
	for _, e := range elements {
		idx.AddDocument(e.ID, bm25Text(e))
	}

	stats := g.Stats()
	log.Info("index built", "files", stats.FileCount, "nodes", stats.NodeCount,
		"edges", stats.EdgeCount, "elapsed", time.Since(start))

	h := &Handle{Config: cfg, Graph: g, BM25: idx, Cache: cache, Log: log}

	r.mu.Lock()
	r.handle = h
	r.mu.Unlock()

	return h, nil
}

// bm25Text builds the indexed text for an element per spec.md §4.8: name
// + " " + code + " " + (docstring or "").
func bm25Text(e types.Element) string {
	return e.Name + " " + e.Code + " " + e.Docstring
}

// StartWatching starts a file-system watcher over h's repository root
// that performs incremental updates, removing BM25 entries before
// mutating the graph (spec.md §4.10), and re-adding both after each
// changed file's re-extraction.
func (r *Repo) StartWatching() error {
	h, ok := r.Handle()
	if !ok {
		return fmt.Errorf("no handle built yet")
	}

	w := walker.New(h.Config)
	cb := watch.Callbacks{
		OnRemoved: func(relPath string) {
			r.removeFile(h, relPath)
		},
		OnChanged: func(relPath string) {
			r.updateFile(h, w, relPath)
		},
	}
	watcher, err := watch.New(h.Config, cb, h.Log)
	if err != nil {
		return err
	}
	h.watcher = watcher
	return watcher.Start()
}

// StopWatching stops the running watcher, if any.
func (r *Repo) StopWatching() error {
	h, ok := r.Handle()
	if !ok || h.watcher == nil {
		return nil
	}
	return h.watcher.Stop()
}

func (r *Repo) removeFile(h *Handle, relPath string) {
	for _, id := range h.Graph.ElementIDsForFile(relPath) {
		h.BM25.RemoveDocument(id)
	}
	h.Graph.RemoveFile(relPath)
}

func (r *Repo) updateFile(h *Handle, w *walker.Walker, relPath string) {
	for _, id := range h.Graph.ElementIDsForFile(relPath) {
		h.BM25.RemoveDocument(id)
	}

	elements, err := w.IndexSingleFile(h.Cache, relPath)
	if err != nil {
		h.Log.Warn("reindex failure", "path", relPath, "err", err)
		h.Graph.RemoveFile(relPath)
		return
	}

	h.Graph.UpdateFile(relPath, elements, h.Cache)
	for _, e := range elements {
		h.BM25.AddDocument(e.ID, bm25Text(e))
	}
}

// SaveArtifacts persists the handle's elements and BM25 index as
// dir/elements.bin and dir/bm25.bin (the CLI passes the repository's
// .codelens directory as dir), per spec.md §4.9.
func (h *Handle) SaveArtifacts(dir string) error {
	elementsPath := filepath.Join(dir, "elements.bin")
	bm25Path := filepath.Join(dir, "bm25.bin")
	if err := store.SaveElements(elementsPath, h.Graph.AllElements()); err != nil {
		return err
	}
	return store.SaveBM25(bm25Path, h.BM25)
}
