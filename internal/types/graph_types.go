package types

// NodeKind is the kind of a graph node. It is derived from ElementKind but
// kept as its own closed enum so the graph package does not need to import
// every element kind directly.
type NodeKind string

const (
	NodeFile      NodeKind = "file"
	NodeModule    NodeKind = "module"
	NodeClass     NodeKind = "class"
	NodeFunction  NodeKind = "function"
	NodeMethod    NodeKind = "method"
	NodeVariable  NodeKind = "variable"
	NodeInterface NodeKind = "interface"
	NodeStruct    NodeKind = "struct"
	NodeEnum      NodeKind = "enum"
)

// NodeKindFromElement maps an ElementKind to its NodeKind, mirroring the
// original implementation's `impl From<ElementType> for NodeKind`. Import
// elements do not become graph nodes (they become edges); callers should
// not invoke this for KindImport.
func NodeKindFromElement(k ElementKind) NodeKind {
	switch k {
	case KindFile:
		return NodeFile
	case KindModule:
		return NodeModule
	case KindClass:
		return NodeClass
	case KindFunction:
		return NodeFunction
	case KindMethod:
		return NodeMethod
	case KindVariable:
		return NodeVariable
	case KindInterface:
		return NodeInterface
	case KindStruct:
		return NodeStruct
	case KindEnum:
		return NodeEnum
	default:
		return NodeVariable
	}
}

// EdgeKind is the kind of a graph edge.
type EdgeKind string

const (
	EdgeDefines    EdgeKind = "defines"
	EdgeImports    EdgeKind = "imports"
	EdgeCalls      EdgeKind = "calls"
	EdgeInherits   EdgeKind = "inherits"
	EdgeImplements EdgeKind = "implements"
	EdgeReferences EdgeKind = "references"
)

// GraphNode is the node payload stored in the repository graph.
type GraphNode struct {
	ID        string
	Kind      NodeKind
	Name      string
	FilePath  string
	StartLine int
	EndLine   int
}

// GraphEdge is the edge payload stored in the repository graph.
type GraphEdge struct {
	Kind EdgeKind
}

// GraphStats is the node/edge/file/element count breakdown returned by
// graph.Graph.Stats, extended with a per-edge-kind breakdown (a
// supplement drawn from the original implementation's GraphStats).
type GraphStats struct {
	NodeCount    int
	EdgeCount    int
	FileCount    int
	ElementCount int
	DefinesEdges int
	ImportsEdges int
	CallsEdges   int
	InheritsEdges int
}
