// Query algebra over the repository graph. Per spec, every query accepts
// a symbol *name* (not an id) except GetSource, which takes an id: the
// candidate nodes for a name are every node registered under it in
// name_to_nodes (or, for the two file-scoped queries, the single file
// node registered under that relative path), and results are the union
// of the per-candidate traversal in candidate iteration order.
package graph

import (
	"container/list"

	"github.com/codelens-dev/codelens/internal/types"
)

// FindCallers returns every node with a calls-edge pointing at a node
// named name, unioned across every node registered under that name.
func (g *Graph) FindCallers(name string) []types.GraphNode {
	return g.neighborsAcrossCandidates(g.idsByName(name), types.EdgeCalls, false)
}

// FindCallees returns every node a node named name has a calls-edge to.
func (g *Graph) FindCallees(name string) []types.GraphNode {
	return g.neighborsAcrossCandidates(g.idsByName(name), types.EdgeCalls, true)
}

// GetDependencies returns the files/elements the file at relPath imports.
func (g *Graph) GetDependencies(relPath string) []types.GraphNode {
	return g.neighborsAcrossCandidates(g.fileNodeIDs(relPath), types.EdgeImports, true)
}

// GetDependents returns the files that import the file at relPath.
func (g *Graph) GetDependents(relPath string) []types.GraphNode {
	return g.neighborsAcrossCandidates(g.fileNodeIDs(relPath), types.EdgeImports, false)
}

// GetSubclasses returns every node with an inherits-edge to a node named name.
func (g *Graph) GetSubclasses(name string) []types.GraphNode {
	return g.neighborsAcrossCandidates(g.idsByName(name), types.EdgeInherits, false)
}

// GetSuperclasses returns every base a node named name inherits from.
func (g *Graph) GetSuperclasses(name string) []types.GraphNode {
	return g.neighborsAcrossCandidates(g.idsByName(name), types.EdgeInherits, true)
}

// fileNodeIDs returns the single file-kind node id registered at relPath,
// as a one-element (or empty) candidate slice, matching spec.md §4.7's
// "candidate nodes whose kind is file" restriction for the two
// file-scoped queries.
func (g *Graph) fileNodeIDs(relPath string) []string {
	if id := g.fileNodeID(relPath); id != "" {
		return []string{id}
	}
	return nil
}

// neighborsAcrossCandidates unions neighborsByKind(candidate, kind,
// outgoing) over every candidate id, in candidate iteration order,
// collapsing duplicate targets across candidates.
func (g *Graph) neighborsAcrossCandidates(candidates []string, kind types.EdgeKind, outgoing bool) []types.GraphNode {
	var out []types.GraphNode
	seen := make(map[string]bool)
	for _, c := range candidates {
		for _, n := range g.neighborsByKind(c, kind, outgoing) {
			if seen[n.ID] {
				continue
			}
			seen[n.ID] = true
			out = append(out, n)
		}
	}
	return out
}

func (g *Graph) neighborsByKind(id string, kind types.EdgeKind, outgoing bool) []types.GraphNode {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var edges []edge
	if outgoing {
		edges = g.outEdges[id]
	} else {
		edges = g.inEdges[id]
	}
	var out []types.GraphNode
	seen := make(map[string]bool)
	for _, e := range edges {
		if e.kind != kind || seen[e.other] {
			continue
		}
		seen[e.other] = true
		if n, ok := g.nodes[e.other]; ok {
			out = append(out, n)
		}
	}
	return out
}

// FindPath returns a shortest path of node ids from a node named source to
// a node named target. Every (source-candidate, target-candidate) pair is
// tried in candidate order; the first match is returned. When
// preferredKinds is non-empty, edges of those kinds are tried first
// (preferred, not exclusive): if no path exists using only those kinds,
// the search falls back to considering every edge kind.
func (g *Graph) FindPath(source, target string, preferredKinds []types.EdgeKind) []string {
	srcIDs := g.idsByName(source)
	dstIDs := g.idsByName(target)
	for _, s := range srcIDs {
		for _, d := range dstIDs {
			if p := g.findPathBetween(s, d, preferredKinds); p != nil {
				return p
			}
		}
	}
	return nil
}

func (g *Graph) findPathBetween(src, dst string, preferredKinds []types.EdgeKind) []string {
	if src == dst {
		return []string{src}
	}
	if len(preferredKinds) > 0 {
		if p := g.bfsPath(src, dst, preferredKinds); p != nil {
			return p
		}
	}
	return g.bfsPath(src, dst, nil)
}

func (g *Graph) bfsPath(src, dst string, allowedKinds []types.EdgeKind) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	allowed := func(k types.EdgeKind) bool {
		if len(allowedKinds) == 0 {
			return true
		}
		for _, a := range allowedKinds {
			if a == k {
				return true
			}
		}
		return false
	}

	visited := map[string]bool{src: true}
	prev := map[string]string{}
	q := list.New()
	q.PushBack(src)
	found := false
	for q.Len() > 0 {
		front := q.Remove(q.Front()).(string)
		if front == dst {
			found = true
			break
		}
		for _, e := range g.outEdges[front] {
			if !allowed(e.kind) || visited[e.other] {
				continue
			}
			visited[e.other] = true
			prev[e.other] = front
			q.PushBack(e.other)
		}
	}
	if !found {
		return nil
	}
	var path []string
	for at := dst; ; {
		path = append([]string{at}, path...)
		if at == src {
			break
		}
		at = prev[at]
	}
	return path
}

// GetRelated returns every node within maxDepth edges (either direction)
// of any node named name, minus the seed candidates themselves, a
// bounded breadth-first traversal used for context gathering around a
// symbol.
func (g *Graph) GetRelated(name string, maxDepth int) []types.GraphNode {
	seeds := g.idsByName(name)
	if len(seeds) == 0 {
		return nil
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	visited := make(map[string]int, len(seeds))
	q := list.New()
	for _, s := range seeds {
		visited[s] = 0
		q.PushBack(s)
	}
	var out []types.GraphNode
	for q.Len() > 0 {
		front := q.Remove(q.Front()).(string)
		depth := visited[front]
		if depth >= maxDepth {
			continue
		}
		neighbors := append(append([]edge{}, g.outEdges[front]...), g.inEdges[front]...)
		for _, e := range neighbors {
			if _, ok := visited[e.other]; ok {
				continue
			}
			visited[e.other] = depth + 1
			q.PushBack(e.other)
			if n, ok := g.nodes[e.other]; ok {
				out = append(out, n)
			}
		}
	}
	return out
}
