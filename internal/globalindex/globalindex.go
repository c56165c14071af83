// Package globalindex is the cross-file resolution substrate: a file<->module
// path bimap and a symbol-name export multimap, grounded on the original
// implementation's global_index/mod.rs.
package globalindex

import (
	"strings"
	"sync"

	"github.com/codelens-dev/codelens/internal/types"
)

// Export is one (file, element-id) pair a symbol name resolves to.
type Export struct {
	FilePath  string
	ElementID string
}

// Index holds the file<->module bimap and the exports multimap. It is safe
// for concurrent reads; mutation is serialised by the caller (the
// repository graph's write path).
type Index struct {
	mu           sync.RWMutex
	fileToModule map[string]string
	moduleToFile map[string]string
	exports      map[string][]Export
}

// New returns an empty Index.
func New() *Index {
	return &Index{
		fileToModule: make(map[string]string),
		moduleToFile: make(map[string]string),
		exports:      make(map[string][]Export),
	}
}

// ModulePath computes a file's module path from its repo-relative path:
// strip the source extension, replace separators with '.', strip a
// trailing "__init__" segment.
func ModulePath(relPath string) string {
	p := relPath
	if idx := strings.LastIndex(p, "."); idx >= 0 {
		p = p[:idx]
	}
	p = strings.ReplaceAll(p, "/", ".")
	p = strings.TrimSuffix(p, ".__init__")
	return p
}

// Build adds every file element in elements to the bimap and every
// non-file element to the exports multimap. Safe to call repeatedly with
// disjoint element sets (used additively by incremental updates).
func (ix *Index) Build(elements []types.Element) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	for _, e := range elements {
		if e.Kind == types.KindFile {
			module := ModulePath(e.RelativePath)
			ix.fileToModule[e.RelativePath] = module
			ix.moduleToFile[module] = e.RelativePath
			continue
		}
		ix.exports[e.Name] = append(ix.exports[e.Name], Export{FilePath: e.RelativePath, ElementID: e.ID})
	}
}

// FileToModule returns the module path for a file, if known.
func (ix *Index) FileToModule(relPath string) (string, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	m, ok := ix.fileToModule[relPath]
	return m, ok
}

// ModuleToFile returns the file path for a module, if known.
func (ix *Index) ModuleToFile(module string) (string, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	f, ok := ix.moduleToFile[module]
	return f, ok
}

// Exports returns the exports for a symbol name (a copy, safe to mutate).
func (ix *Index) Exports(name string) []Export {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	src := ix.exports[name]
	out := make([]Export, len(src))
	copy(out, src)
	return out
}

// RemoveFile purges relPath from both directions of the bimap and every
// exports entry whose FilePath matches, deleting keys that become empty,
// all in O(|exports| + deg(file)).
func (ix *Index) RemoveFile(relPath string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if module, ok := ix.fileToModule[relPath]; ok {
		delete(ix.fileToModule, relPath)
		delete(ix.moduleToFile, module)
	}
	for name, exports := range ix.exports {
		filtered := exports[:0:0]
		for _, ex := range exports {
			if ex.FilePath != relPath {
				filtered = append(filtered, ex)
			}
		}
		if len(filtered) == 0 {
			delete(ix.exports, name)
		} else {
			ix.exports[name] = filtered
		}
	}
}

// Stats returns simple counts for diagnostics.
func (ix *Index) Stats() (files, symbols int) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.fileToModule), len(ix.exports)
}
