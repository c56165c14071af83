// Package extract implements the structural extractors: elements, calls,
// imports, base types and docstrings, dispatched per language. Grounded on
// the original implementation's indexer/walker.rs (element extraction,
// depth-aware class/method recursion, docstring rules) generalized from its
// Python-only call/import extraction to the full language table the
// registry carries.
package extract

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/codelens-dev/codelens/internal/idhash"
	"github.com/codelens-dev/codelens/internal/langs"
	"github.com/codelens-dev/codelens/internal/parsing"
	"github.com/codelens-dev/codelens/internal/types"
)

// File walks a whole file's parse tree and returns the file element plus
// every class/function/method/interface/struct/enum element it contains.
// cache is used to parse the file; lang and relPath identify it.
func File(cache *parsing.Cache, lang types.Language, absPath, relPath string, source []byte) ([]types.Element, error) {
	tree := cache.Parse(source, lang)
	if tree == nil {
		return nil, errNoTree(relPath)
	}
	defer tree.Close()

	fileElem := types.Element{
		ID:           idhash.Generate(string(types.KindFile), relPath),
		Kind:         types.KindFile,
		Name:         relPath,
		FilePath:     absPath,
		RelativePath: relPath,
		Language:     lang,
		StartLine:    1,
		EndLine:      lineCount(source),
		Code:         string(source),
	}
	if err := fileElem.Validate(); err != nil {
		return nil, err
	}

	elems := []types.Element{fileElem}
	g, _ := langs.Get(lang)
	w := &walker{g: g, lang: lang, source: source, relPath: relPath, absPath: absPath}
	w.walk(tree.RootNode(), nil, 0)
	elems = append(elems, w.out...)
	return elems, nil
}

type walker struct {
	g       *langs.Grammar
	lang    types.Language
	source  []byte
	relPath string
	absPath string
	out     []types.Element
}

// walk recurses depth-first. parentClass is non-nil while inside a
// class-like node's body, so function-like descendants become methods
// whose id includes the parent class name. Recursion continues into
// function-like nodes (nested closures/defs) and into class-like nodes
// (nested classes) so both levels are captured.
func (w *walker) walk(node *sitter.Node, parentClass *string, depth int) {
	if node == nil {
		return
	}
	kind := node.Kind()

	switch {
	case w.g.IsClassLikeKind(kind):
		name, ok := w.className(node)
		if ok {
			elemKind := w.g.ClassifyClassKind(kind)
			id := idhash.Generate(string(elemKind), w.relPath, name)
			elems := w.makeElement(node, id, elemKind, name)
			w.out = append(w.out, elems)
			w.recurseChildren(node, &name, depth+1)
			return
		}
	case w.g.IsFunctionKind(kind):
		name, ok := w.functionName(node)
		if ok {
			elemKind := types.KindFunction
			idParts := []string{w.relPath}
			if parentClass != nil {
				elemKind = types.KindMethod
				idParts = append(idParts, *parentClass)
			}
			idParts = append(idParts, name)
			id := idhash.Generate(string(elemKind), idParts...)
			elems := w.makeElement(node, id, elemKind, name)
			w.out = append(w.out, elems)
		}
	}
	w.recurseChildren(node, parentClass, depth+1)
}

func (w *walker) recurseChildren(node *sitter.Node, parentClass *string, depth int) {
	n := node.ChildCount()
	for i := uint(0); i < n; i++ {
		w.walk(node.Child(i), parentClass, depth)
	}
}

func (w *walker) makeElement(node *sitter.Node, id string, kind types.ElementKind, name string) types.Element {
	start := node.StartPosition()
	end := node.EndPosition()
	code := nodeText(node, w.source)
	e := types.Element{
		ID:           id,
		Kind:         kind,
		Name:         name,
		FilePath:     w.absPath,
		RelativePath: w.relPath,
		Language:     w.lang,
		StartLine:    int(start.Row) + 1,
		EndLine:      int(end.Row) + 1,
		Code:         code,
		Signature:    firstLine(code),
		Docstring:    docstringFor(w.lang, node, w.source),
	}
	return e
}

// className extracts the name of a class-like node. Most grammars expose a
// "name" field directly; Go wraps its declared type in a nested type_spec
// and Rust's impl_item has no name field of its own (it names the type it
// implements, via the "type" field).
func (w *walker) className(node *sitter.Node) (string, bool) {
	switch w.lang {
	case types.LangGo:
		return goTypeSpecName(node, w.source)
	case types.LangRust:
		if node.Kind() == "impl_item" {
			if t := node.ChildByFieldName("type"); t != nil {
				return nodeText(t, w.source), true
			}
			return "", false
		}
	}
	if n := node.ChildByFieldName("name"); n != nil {
		return nodeText(n, w.source), true
	}
	return "", false
}

// functionName extracts a function/method-like node's name. Go methods
// expose the receiver via a separate field but the name itself is still
// the "name" field; C/C++ require walking a declarator chain.
func (w *walker) functionName(node *sitter.Node) (string, bool) {
	switch w.lang {
	case types.LangCpp, types.LangC:
		if decl := node.ChildByFieldName("declarator"); decl != nil {
			if name := cDeclaratorName(decl, w.source); name != "" {
				return name, true
			}
		}
		return "", false
	}
	if n := node.ChildByFieldName("name"); n != nil {
		return nodeText(n, w.source), true
	}
	// Anonymous function-like nodes (arrow functions, func literals) have
	// no name field and are not emitted as standalone elements.
	return "", false
}

// goTypeSpecName finds the nested type_spec inside a Go type_declaration
// and returns its declared name. Struct and interface types are not told
// apart: the Go grammar's ClassifyClassKind maps every type declaration to
// KindStruct.
func goTypeSpecName(decl *sitter.Node, source []byte) (string, bool) {
	n := decl.ChildCount()
	for i := uint(0); i < n; i++ {
		child := decl.Child(i)
		if child.Kind() == "type_spec" {
			if name := child.ChildByFieldName("name"); name != nil {
				return nodeText(name, source), true
			}
		}
	}
	return "", false
}

// cDeclaratorName walks a C/C++ declarator chain (pointer_declarator,
// function_declarator, parenthesized_declarator, ...) down to the
// terminal identifier/field_identifier.
func cDeclaratorName(node *sitter.Node, source []byte) string {
	for node != nil {
		switch node.Kind() {
		case "identifier", "field_identifier":
			return nodeText(node, source)
		case "function_declarator", "pointer_declarator", "parenthesized_declarator",
			"array_declarator", "reference_declarator", "qualified_identifier":
			if inner := node.ChildByFieldName("declarator"); inner != nil {
				node = inner
				continue
			}
			// qualified_identifier keeps its terminal name in the "name" field.
			if inner := node.ChildByFieldName("name"); inner != nil {
				node = inner
				continue
			}
			return ""
		default:
			return ""
		}
	}
	return ""
}

func nodeText(node *sitter.Node, source []byte) string {
	start, end := node.StartByte(), node.EndByte()
	if int(end) > len(source) || start > end {
		return ""
	}
	return string(source[start:end])
}

func lineCount(source []byte) int {
	n := 1
	for _, b := range source {
		if b == '\n' {
			n++
		}
	}
	return n
}

func firstLine(code string) string {
	for i, c := range code {
		if c == '\n' {
			return code[:i]
		}
	}
	return code
}

type parseError struct{ msg string }

func (e *parseError) Error() string { return e.msg }

func errNoTree(relPath string) error {
	return &parseError{msg: "no parse tree for " + relPath}
}
