// Package resolve holds the module and symbol resolvers that turn
// unresolved import/call names into candidates, grounded on the original
// implementation's global_index/module_resolver.rs and symbol_resolver.rs.
package resolve

import (
	"strings"

	"github.com/codelens-dev/codelens/internal/globalindex"
	"github.com/codelens-dev/codelens/internal/types"
)

// ModuleResolver resolves an ImportInfo plus the importing file's relative
// path to a target file path.
type ModuleResolver struct {
	Index *globalindex.Index
}

// ResolveImport dispatches to absolute or relative resolution depending on
// whether imp names a relative import.
func (r *ModuleResolver) ResolveImport(imp types.ImportInfo, importerRelPath string) (string, bool) {
	if imp.Level == 0 {
		return r.resolveAbsolute(imp.Module)
	}
	return r.resolveRelative(imp, importerRelPath)
}

func (r *ModuleResolver) resolveAbsolute(module string) (string, bool) {
	if module == "" {
		return "", false
	}
	if f, ok := r.Index.ModuleToFile(module); ok {
		return f, true
	}
	if f, ok := r.Index.ModuleToFile(module + ".__init__"); ok {
		return f, true
	}
	if idx := strings.LastIndex(module, "."); idx > 0 {
		return r.Index.ModuleToFile(module[:idx])
	}
	return "", false
}

func (r *ModuleResolver) resolveRelative(imp types.ImportInfo, importerRelPath string) (string, bool) {
	importerModule, ok := r.Index.FileToModule(importerRelPath)
	if !ok {
		return "", false
	}
	segs := strings.Split(importerModule, ".")
	if imp.Level > len(segs) {
		// Depth overflow: per original_source's bounds check, resolution
		// is absent rather than erroring.
		return "", false
	}
	segs = segs[:len(segs)-imp.Level]
	target := strings.Join(segs, ".")
	if imp.Module != "" {
		if target == "" {
			target = imp.Module
		} else {
			target = target + "." + imp.Module
		}
	}
	return r.Index.ModuleToFile(target)
}

// SymbolResolver resolves a bare symbol name to its exporting (file, id)
// pairs, optionally narrowed by the caller's visible import context.
type SymbolResolver struct {
	Index *globalindex.Index
}

// Resolve returns every export of name, in insertion order.
func (r *SymbolResolver) Resolve(name string) []globalindex.Export {
	return r.Index.Exports(name)
}

// ResolveInContext filters Resolve(name) to exports whose file's module
// path is prefixed by one of importedModules; an empty importedModules
// list returns the unfiltered result.
func (r *SymbolResolver) ResolveInContext(name string, importedModules []string) []globalindex.Export {
	all := r.Resolve(name)
	if len(importedModules) == 0 {
		return all
	}
	var out []globalindex.Export
	for _, ex := range all {
		module, ok := r.Index.FileToModule(ex.FilePath)
		if !ok {
			continue
		}
		for _, prefix := range importedModules {
			if module == prefix || strings.HasPrefix(module, prefix+".") {
				out = append(out, ex)
				break
			}
		}
	}
	return out
}
