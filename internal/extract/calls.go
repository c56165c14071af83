package extract

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/codelens-dev/codelens/internal/langs"
	"github.com/codelens-dev/codelens/internal/parsing"
	"github.com/codelens-dev/codelens/internal/types"
)

// pythonBuiltins is the fixed filter list of builtin names: simple calls
// to these are discarded since they never resolve to a project symbol.
var pythonBuiltins = map[string]bool{
	"abs": true, "all": true, "any": true, "bin": true, "bool": true, "breakpoint": true,
	"bytearray": true, "bytes": true, "callable": true, "chr": true, "classmethod": true,
	"compile": true, "complex": true, "delattr": true, "dict": true, "dir": true,
	"divmod": true, "enumerate": true, "eval": true, "exec": true, "filter": true,
	"float": true, "format": true, "frozenset": true, "getattr": true, "globals": true,
	"hasattr": true, "hash": true, "help": true, "hex": true, "id": true, "input": true,
	"int": true, "isinstance": true, "issubclass": true, "iter": true, "len": true,
	"list": true, "locals": true, "map": true, "max": true, "memoryview": true, "min": true,
	"next": true, "object": true, "oct": true, "open": true, "ord": true, "pow": true,
	"print": true, "property": true, "range": true, "repr": true, "reversed": true,
	"round": true, "set": true, "setattr": true, "slice": true, "sorted": true,
	"staticmethod": true, "str": true, "sum": true, "super": true, "tuple": true,
	"type": true, "vars": true, "zip": true,
}

// Calls parses code (typically a function/method element's own source
// text) and returns every call site it contains, scope-tagged and with
// Python builtins filtered out.
func Calls(cache *parsing.Cache, lang types.Language, code string) []types.CallInfo {
	g, ok := langs.Get(lang)
	if !ok {
		return nil
	}
	source := []byte(code)
	tree := cache.Parse(source, lang)
	if tree == nil {
		return nil
	}
	defer tree.Close()

	root := tree.RootNode()
	var scopes []types.ScopeInfo
	collectScopes(root, source, &scopes)
	sortScopesByStart(scopes)

	var calls []types.CallInfo
	collectCalls(root, source, g, lang, scopes, &calls)
	return calls
}

func collectScopes(node *sitter.Node, source []byte, scopes *[]types.ScopeInfo) {
	if node == nil {
		return
	}
	switch node.Kind() {
	case "function_definition", "function_declaration", "function_item", "method_declaration",
		"method_definition":
		if n := node.ChildByFieldName("name"); n != nil {
			*scopes = append(*scopes, types.ScopeInfo{
				ScopeType: "function", Name: nodeText(n, source),
				StartByte: node.StartByte(), EndByte: node.EndByte(),
			})
		}
	case "class_definition", "class_declaration":
		if n := node.ChildByFieldName("name"); n != nil {
			*scopes = append(*scopes, types.ScopeInfo{
				ScopeType: "class", Name: nodeText(n, source),
				StartByte: node.StartByte(), EndByte: node.EndByte(),
			})
		}
	}
	count := node.ChildCount()
	for i := uint(0); i < count; i++ {
		collectScopes(node.Child(i), source, scopes)
	}
}

func sortScopesByStart(scopes []types.ScopeInfo) {
	for i := 1; i < len(scopes); i++ {
		for j := i; j > 0 && scopes[j-1].StartByte > scopes[j].StartByte; j-- {
			scopes[j-1], scopes[j] = scopes[j], scopes[j-1]
		}
	}
}

func findScope(bytePos uint, scopes []types.ScopeInfo) string {
	for i := len(scopes) - 1; i >= 0; i-- {
		s := scopes[i]
		if s.StartByte <= bytePos && bytePos < s.EndByte {
			return s.ScopeType + "::" + s.Name
		}
	}
	return ""
}

func collectCalls(node *sitter.Node, source []byte, g *langs.Grammar, lang types.Language, scopes []types.ScopeInfo, out *[]types.CallInfo) {
	if node == nil {
		return
	}
	if node.Kind() == g.CallNodeKind {
		if call, ok := processCall(node, source, lang); ok {
			call.ScopeID = findScope(node.StartByte(), scopes)
			if !shouldFilterCall(call, lang) {
				*out = append(*out, call)
			}
		}
	}
	count := node.ChildCount()
	for i := uint(0); i < count; i++ {
		collectCalls(node.Child(i), source, g, lang, scopes, out)
	}
}

func shouldFilterCall(c types.CallInfo, lang types.Language) bool {
	return lang == types.LangPython && c.CallType == types.CallSimple && pythonBuiltins[c.CallName]
}

// processCall extracts {name, base, type} from a call-like node,
// following each language's own call-expression shape.
func processCall(node *sitter.Node, source []byte, lang types.Language) (types.CallInfo, bool) {
	base := types.CallInfo{
		StartByte: node.StartByte(), EndByte: node.EndByte(),
		StartLine: int(node.StartPosition().Row) + 1,
		EndLine:   int(node.EndPosition().Row) + 1,
		NodeText:  nodeText(node, source),
	}

	if lang == types.LangJava {
		// method_invocation has no "function" field; object/name sit directly on it.
		nameNode := node.ChildByFieldName("name")
		if nameNode == nil {
			return base, false
		}
		base.CallName = nodeText(nameNode, source)
		if obj := node.ChildByFieldName("object"); obj != nil {
			base.BaseObject = nodeText(obj, source)
			base.CallType = types.CallAttribute
		} else {
			base.CallType = types.CallSimple
		}
		return base, true
	}

	fn := node.ChildByFieldName("function")
	if fn == nil {
		return base, false
	}
	switch fn.Kind() {
	case "identifier":
		base.CallName = nodeText(fn, source)
		base.CallType = types.CallSimple
		return base, true
	case "attribute": // Python
		obj := fn.ChildByFieldName("object")
		attr := fn.ChildByFieldName("attribute")
		if obj == nil || attr == nil {
			return base, false
		}
		base.BaseObject = nodeText(obj, source)
		base.CallName = nodeText(attr, source)
		base.CallType = types.CallAttribute
		return base, true
	case "member_expression": // JS/TS/TSX
		obj := fn.ChildByFieldName("object")
		prop := fn.ChildByFieldName("property")
		if obj == nil || prop == nil {
			return base, false
		}
		base.BaseObject = nodeText(obj, source)
		base.CallName = nodeText(prop, source)
		base.CallType = types.CallAttribute
		return base, true
	case "field_expression": // Rust (value, field), C/C++ (argument, field)
		var obj *sitter.Node
		if lang == types.LangRust {
			obj = fn.ChildByFieldName("value")
		} else {
			obj = fn.ChildByFieldName("argument")
		}
		field := fn.ChildByFieldName("field")
		if obj == nil || field == nil {
			return base, false
		}
		base.BaseObject = nodeText(obj, source)
		base.CallName = nodeText(field, source)
		base.CallType = types.CallAttribute
		return base, true
	case "selector_expression": // Go
		operand := fn.ChildByFieldName("operand")
		field := fn.ChildByFieldName("field")
		if operand == nil || field == nil {
			return base, false
		}
		base.BaseObject = nodeText(operand, source)
		base.CallName = nodeText(field, source)
		base.CallType = types.CallAttribute
		return base, true
	case "scoped_identifier": // Rust path::call()
		text := nodeText(fn, source)
		idx := strings.LastIndex(text, "::")
		if idx < 0 {
			base.CallName = text
			base.CallType = types.CallSimple
			return base, true
		}
		base.BaseObject = text[:idx]
		base.CallName = text[idx+2:]
		base.CallType = types.CallAttribute
		return base, true
	case "qualified_identifier": // C++ Foo::bar()
		text := nodeText(fn, source)
		idx := strings.LastIndex(text, "::")
		if idx < 0 {
			base.CallName = text
			base.CallType = types.CallSimple
			return base, true
		}
		base.BaseObject = text[:idx]
		base.CallName = text[idx+2:]
		base.CallType = types.CallAttribute
		return base, true
	}
	return base, false
}
