// Package walker is the repository walker: it honours ignore rules
// (hidden files, .gitignore, configured excludes), fans a matched file
// set out to a worker pool for parallel extraction, and exposes a
// single-file entry point the watcher uses for incremental updates.
// Grounded on internal/indexing FileScanner/pipeline
// filtering logic, generalized to this module's Element/Cache types.
package walker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/codelens-dev/codelens/internal/config"
	"github.com/codelens-dev/codelens/internal/errs"
	"github.com/codelens-dev/codelens/internal/extract"
	"github.com/codelens-dev/codelens/internal/langs"
	"github.com/codelens-dev/codelens/internal/parsing"
	"github.com/codelens-dev/codelens/internal/types"
)

// Walker discovers files under a repository root and extracts elements
// from each in parallel.
type Walker struct {
	cfg       *config.Config
	gitignore *config.GitignoreParser
	exclude   []string
}

// New builds a Walker for cfg, loading .gitignore (if RespectGitignore)
// and augmenting cfg.Exclude with any detected build-output directories.
func New(cfg *config.Config) *Walker {
	w := &Walker{cfg: cfg, exclude: append([]string{}, cfg.Exclude...)}
	if cfg.Index.RespectGitignore {
		gi := config.NewGitignoreParser()
		_ = gi.LoadGitignore(cfg.Project.Root)
		w.gitignore = gi
	}
	w.exclude = append(w.exclude, detectBuildOutputs(cfg.Project.Root)...)
	return w
}

// Discover walks cfg.Project.Root and returns every relative file path
// that should be indexed: not hidden (no path segment starts with '.'), not
// gitignored, matching Include and not matching Exclude, within
// MaxFileSize, under a recognised language extension.
func (w *Walker) Discover() ([]string, error) {
	root := w.cfg.Project.Root
	var out []string
	count := 0
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}

		if info.IsDir() {
			if w.shouldSkipDir(rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if !w.shouldProcessFile(rel, info) {
			return nil
		}
		if count >= w.cfg.Index.MaxFileCount {
			return nil
		}
		count++
		out = append(out, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (w *Walker) shouldSkipDir(rel string) bool {
	base := filepath.Base(rel)
	if strings.HasPrefix(base, ".") && base != "." {
		return true
	}
	if w.matchesExclude(rel, true) {
		return true
	}
	if w.gitignore != nil && w.gitignore.ShouldIgnore(rel, true) {
		return true
	}
	return false
}

func (w *Walker) shouldProcessFile(rel string, info os.FileInfo) bool {
	if strings.HasPrefix(filepath.Base(rel), ".") {
		return false
	}
	if info.Size() > w.cfg.Index.MaxFileSize {
		return false
	}
	if _, ok := langs.FromExtension(rel); !ok {
		return false
	}
	if w.matchesExclude(rel, false) {
		return false
	}
	if w.gitignore != nil && w.gitignore.ShouldIgnore(rel, false) {
		return false
	}
	if len(w.cfg.Include) > 0 && !w.matchesAny(w.cfg.Include, rel) {
		return false
	}
	return true
}

func (w *Walker) matchesExclude(rel string, isDir bool) bool {
	candidate := rel
	if isDir {
		candidate = rel + "/"
	}
	return w.matchesAny(w.exclude, rel) || w.matchesAny(w.exclude, candidate)
}

func (w *Walker) matchesAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// FileResult is one file's extraction outcome.
type FileResult struct {
	RelativePath string
	Elements     []types.Element
	Err          error
}

// IndexAll discovers every file and extracts its elements in parallel,
// using ParallelWorkers goroutines (0 = runtime.NumCPU). Per-file parse
// failures are collected into a MultiError rather than aborting the walk,
// per spec.md §7.
func (w *Walker) IndexAll(ctx context.Context, cache *parsing.Cache) ([]types.Element, *errs.MultiError) {
	paths, err := w.Discover()
	merr := &errs.MultiError{}
	if err != nil {
		merr.Add(err)
		return nil, merr
	}

	workers := w.cfg.Index.ParallelWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]FileResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, rel := range paths {
		i, rel := i, rel
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			elements, err := w.IndexSingleFile(cache, rel)
			results[i] = FileResult{RelativePath: rel, Elements: elements, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	var all []types.Element
	for _, r := range results {
		if r.Err != nil {
			merr.Add(r.Err)
			continue
		}
		all = append(all, r.Elements...)
	}
	return all, merr
}

// IndexSingleFile parses one repo-relative file path and returns its
// elements. This is the watcher's per-file incremental entry point,
// matching spec.md §4.3's index_single_file.
func (w *Walker) IndexSingleFile(cache *parsing.Cache, relPath string) ([]types.Element, error) {
	absPath := filepath.Join(w.cfg.Project.Root, relPath)
	source, err := os.ReadFile(absPath)
	if err != nil {
		return nil, errs.NewParseErr(relPath, err)
	}
	lang, ok := langs.FromExtension(relPath)
	if !ok {
		return nil, errs.NewParseErr(relPath, fmt.Errorf("unrecognised extension"))
	}
	elements, err := extract.File(cache, lang, absPath, relPath, source)
	if err != nil {
		return nil, errs.NewParseErr(relPath, err)
	}
	return elements, nil
}
