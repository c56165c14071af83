// Package graph implements the repository graph: a typed directed
// multigraph over code elements with O(1) lookup by id/name/file, bulk
// build, incremental per-file update, and (in queries.go) the query
// algebra. Grounded on the original implementation's graph/mod.rs, with
// edge construction generalized to a richer phase design using
// global-index-backed resolvers rather than a bare name lookup.
package graph

import (
	"sort"
	"sync"

	"github.com/codelens-dev/codelens/internal/globalindex"
	"github.com/codelens-dev/codelens/internal/parsing"
	"github.com/codelens-dev/codelens/internal/resolve"
	"github.com/codelens-dev/codelens/internal/types"
)

type edge struct {
	other string
	kind  types.EdgeKind
}

// Graph is the repository graph. Reads may proceed concurrently under mu's
// read lock; all mutation (BuildFromElements, UpdateFile, RemoveFile) must
// be called by a single writer holding no other lock: this type's mu is
// the only lock it takes, the caller in package repo provides the outer
// reader-writer lock around whole build/update sequences.
type Graph struct {
	mu          sync.RWMutex
	nodes       map[string]types.GraphNode
	elements    map[string]types.Element
	nameToIDs   map[string][]string
	fileToIDs   map[string][]string
	outEdges    map[string][]edge
	inEdges     map[string][]edge
	fileImports map[string][]string // per-file flattened module+name context for call resolution

	GlobalIndex *globalindex.Index
}

// New returns an empty graph with its own GlobalIndex.
func New() *Graph {
	return &Graph{
		nodes:       make(map[string]types.GraphNode),
		elements:    make(map[string]types.Element),
		nameToIDs:   make(map[string][]string),
		fileToIDs:   make(map[string][]string),
		outEdges:    make(map[string][]edge),
		inEdges:     make(map[string][]edge),
		fileImports: make(map[string][]string),
		GlobalIndex: globalindex.New(),
	}
}

func (g *Graph) addNode(e types.Element) {
	g.mu.Lock()
	defer g.mu.Unlock()

	kind := types.NodeKindFromElement(e.Kind)
	g.nodes[e.ID] = types.GraphNode{
		ID: e.ID, Kind: kind, Name: e.Name, FilePath: e.RelativePath,
		StartLine: e.StartLine, EndLine: e.EndLine,
	}
	g.elements[e.ID] = e
	g.nameToIDs[e.Name] = append(g.nameToIDs[e.Name], e.ID)
	g.fileToIDs[e.RelativePath] = append(g.fileToIDs[e.RelativePath], e.ID)
}

func (g *Graph) addEdge(from, to string, kind types.EdgeKind) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.outEdges[from] = append(g.outEdges[from], edge{other: to, kind: kind})
	g.inEdges[to] = append(g.inEdges[to], edge{other: from, kind: kind})
}

// BuildFromElements runs the full bulk-build pipeline over elements:
// nodes, global index, defines edges, then import/call/inheritance edges.
func (g *Graph) BuildFromElements(elements []types.Element, cache *parsing.Cache) {
	for _, e := range elements {
		g.addNode(e)
	}
	g.GlobalIndex.Build(elements)
	g.buildDefinesEdges(elements)
	g.buildImportEdges(elements, cache)
	g.buildCallEdges(elements, cache)
	g.buildInheritanceEdges(elements, cache)
}

func (g *Graph) buildDefinesEdges(elements []types.Element) {
	for _, e := range elements {
		if e.Kind == types.KindFile {
			continue
		}
		fileID := g.fileNodeID(e.RelativePath)
		if fileID == "" {
			continue
		}
		g.addEdge(fileID, e.ID, types.EdgeDefines)
	}
}

func (g *Graph) fileNodeID(relPath string) string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, id := range g.fileToIDs[relPath] {
		if n, ok := g.nodes[id]; ok && n.Kind == types.NodeFile {
			return id
		}
	}
	return ""
}

func (g *Graph) buildImportEdges(elements []types.Element, cache *parsing.Cache) {
	modResolver := &resolve.ModuleResolver{Index: g.GlobalIndex}
	symResolver := &resolve.SymbolResolver{Index: g.GlobalIndex}

	for _, e := range elements {
		if e.Kind != types.KindFile {
			continue
		}
		imports := extractImportsFor(cache, e)
		var flattened []string
		for _, imp := range imports {
			flattened = append(flattened, imp.Module)
			flattened = append(flattened, imp.Names...)

			if target, ok := modResolver.ResolveImport(imp, e.RelativePath); ok {
				targetFileID := g.fileNodeID(target)
				if targetFileID != "" {
					g.addEdge(e.ID, targetFileID, types.EdgeImports)
				}
			}
			for _, name := range imp.Names {
				if name == "*" || name == "" {
					continue
				}
				exports := symResolver.Resolve(name)
				if len(exports) > 0 {
					g.addEdge(e.ID, exports[0].ElementID, types.EdgeImports)
					continue
				}
				if id := g.firstByName(name); id != "" {
					g.addEdge(e.ID, id, types.EdgeImports)
				}
			}
		}
		g.mu.Lock()
		g.fileImports[e.RelativePath] = flattened
		g.mu.Unlock()
	}
}

func (g *Graph) buildCallEdges(elements []types.Element, cache *parsing.Cache) {
	for _, e := range elements {
		if e.Kind != types.KindFunction && e.Kind != types.KindMethod {
			continue
		}
		calls := extractCallsFor(cache, e)
		g.mu.RLock()
		imports := g.fileImports[e.RelativePath]
		g.mu.RUnlock()

		for _, call := range calls {
			candidates := g.idsByName(call.CallName)
			if len(candidates) == 0 {
				continue
			}
			target := g.resolveCallTarget(e, call.CallName, candidates, imports)
			if target == "" || target == e.ID {
				continue
			}
			g.addEdge(e.ID, target, types.EdgeCalls)
		}
	}
}

// resolveCallTarget tries four layers in order: same file, context-narrowed
// resolution against the caller's imports, an import-name/path heuristic,
// then the first remaining candidate.
func (g *Graph) resolveCallTarget(caller types.Element, callName string, candidates []string, imports []string) string {
	// 1. Same file.
	for _, c := range candidates {
		if n, ok := g.nodeByID(c); ok && n.FilePath == caller.RelativePath {
			return c
		}
	}
	// 2. Context-narrowed symbol resolve.
	symResolver := &resolve.SymbolResolver{Index: g.GlobalIndex}
	resolved := symResolver.ResolveInContext(callName, imports)
	if len(resolved) > 0 {
		for _, c := range candidates {
			for _, r := range resolved {
				if r.ElementID == c {
					return c
				}
			}
		}
		return resolved[0].ElementID
	}
	// 3. Import-name heuristic.
	for _, c := range candidates {
		n, ok := g.nodeByID(c)
		if !ok {
			continue
		}
		for _, imp := range imports {
			if imp == "" {
				continue
			}
			if containsSubstring(n.FilePath, imp) || n.Name == imp {
				return c
			}
		}
	}
	// 4. Fallback: first candidate.
	return candidates[0]
}

func containsSubstring(haystack, needle string) bool {
	return len(needle) > 0 && indexOf(haystack, needle) >= 0
}

func indexOf(haystack, needle string) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return i
		}
	}
	return -1
}

func (g *Graph) buildInheritanceEdges(elements []types.Element, cache *parsing.Cache) {
	for _, e := range elements {
		switch e.Kind {
		case types.KindClass, types.KindStruct, types.KindInterface, types.KindEnum:
		default:
			continue
		}
		bases := extractBaseTypesFor(cache, e)
		for _, base := range bases {
			if id := g.firstByName(base); id != "" {
				g.addEdge(e.ID, id, types.EdgeInherits)
			}
		}
	}
}

func (g *Graph) firstByName(name string) string {
	ids := g.idsByName(name)
	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}

func (g *Graph) idsByName(name string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	src := g.nameToIDs[name]
	out := make([]string, len(src))
	copy(out, src)
	return out
}

func (g *Graph) idsByFile(relPath string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	src := g.fileToIDs[relPath]
	out := make([]string, len(src))
	copy(out, src)
	return out
}

func (g *Graph) nodeByID(id string) (types.GraphNode, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.nodes[id]
	return n, ok
}

// RemoveFile removes every node registered under relPath, purges all
// secondary indices and incident edges, and clears its fileImports entry.
func (g *Graph) RemoveFile(relPath string) {
	ids := g.idsByFile(relPath)

	g.mu.Lock()
	for _, id := range ids {
		n := g.nodes[id]
		delete(g.nodes, id)
		delete(g.elements, id)
		g.nameToIDs[n.Name] = removeString(g.nameToIDs[n.Name], id)
		if len(g.nameToIDs[n.Name]) == 0 {
			delete(g.nameToIDs, n.Name)
		}
		for _, oe := range g.outEdges[id] {
			g.inEdges[oe.other] = removeEdgeFrom(g.inEdges[oe.other], id)
		}
		for _, ie := range g.inEdges[id] {
			g.outEdges[ie.other] = removeEdgeTo(g.outEdges[ie.other], id)
		}
		delete(g.outEdges, id)
		delete(g.inEdges, id)
	}
	delete(g.fileToIDs, relPath)
	delete(g.fileImports, relPath)
	g.mu.Unlock()

	g.GlobalIndex.RemoveFile(relPath)
}

func removeString(s []string, v string) []string {
	out := s[:0:0]
	for _, x := range s {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}

func removeEdgeFrom(edges []edge, from string) []edge {
	out := edges[:0:0]
	for _, e := range edges {
		if e.other != from {
			out = append(out, e)
		}
	}
	return out
}

func removeEdgeTo(edges []edge, to string) []edge {
	return removeEdgeFrom(edges, to)
}

// UpdateFile performs an incremental update: remove_file, add new nodes,
// additive global-index rebuild, re-run the import/call/inheritance
// phases over newElements only, re-add defines edges. Cross-file effects
// on other files' edges are intentionally not re-derived (see DESIGN.md).
func (g *Graph) UpdateFile(relPath string, newElements []types.Element, cache *parsing.Cache) {
	g.RemoveFile(relPath)
	for _, e := range newElements {
		g.addNode(e)
	}
	g.GlobalIndex.Build(newElements)
	g.buildDefinesEdges(newElements)
	g.buildImportEdges(newElements, cache)
	g.buildCallEdges(newElements, cache)
	g.buildInheritanceEdges(newElements, cache)
}

// ElementIDsForFile returns the node ids registered for relPath, used by
// the watcher to remove stale BM25 entries before mutating the graph.
func (g *Graph) ElementIDsForFile(relPath string) []string {
	return g.idsByFile(relPath)
}

// GetSource returns an element's exact source code, if present.
func (g *Graph) GetSource(id string) (string, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	e, ok := g.elements[id]
	if !ok {
		return "", false
	}
	return e.Code, true
}

// Element returns the full element for an id, if present.
func (g *Graph) Element(id string) (types.Element, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	e, ok := g.elements[id]
	return e, ok
}

// AllElements returns every element sorted by id ascending, so callers
// get deterministic output across runs.
func (g *Graph) AllElements() []types.Element {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]types.Element, 0, len(g.elements))
	for _, e := range g.elements {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// FilePaths returns every indexed file's relative path.
func (g *Graph) FilePaths() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]string, 0, len(g.fileToIDs))
	for p := range g.fileToIDs {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Stats returns node/edge/file/element counts plus an edge-kind breakdown.
func (g *Graph) Stats() types.GraphStats {
	g.mu.RLock()
	defer g.mu.RUnlock()
	stats := types.GraphStats{
		NodeCount:    len(g.nodes),
		FileCount:    len(g.fileToIDs),
		ElementCount: len(g.elements),
	}
	for _, edges := range g.outEdges {
		for _, e := range edges {
			stats.EdgeCount++
			switch e.kind {
			case types.EdgeDefines:
				stats.DefinesEdges++
			case types.EdgeImports:
				stats.ImportsEdges++
			case types.EdgeCalls:
				stats.CallsEdges++
			case types.EdgeInherits:
				stats.InheritsEdges++
			}
		}
	}
	return stats
}
