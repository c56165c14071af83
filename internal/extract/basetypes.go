package extract

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/codelens-dev/codelens/internal/parsing"
	"github.com/codelens-dev/codelens/internal/types"
)

// BaseTypes parses a class-like element's own source and returns its base
// type names (superclasses/interfaces/traits).
func BaseTypes(cache *parsing.Cache, lang types.Language, code string) []string {
	source := []byte(code)
	tree := cache.Parse(source, lang)
	if tree == nil {
		return nil
	}
	defer tree.Close()
	root := tree.RootNode()

	switch lang {
	case types.LangPython:
		return findFirstClassBases(root, source, "class_definition", pythonBases)
	case types.LangJavaScript, types.LangTypeScript, types.LangTSX:
		return findFirstClassBases(root, source, "class_declaration", jsBases)
	case types.LangJava:
		return findFirstClassBases(root, source, javaClassKinds, javaBases)
	case types.LangRust:
		return findFirstClassBases(root, source, "impl_item", rustBases)
	case types.LangCpp, types.LangC:
		return findFirstClassBases(root, source, cppClassKinds, cppBases)
	}
	return nil
}

// findFirstClassBases locates the first node of the given kind(s) at or
// below root and extracts its bases via extractor. kindOrKinds is either a
// single kind string or a func(string) bool.
func findFirstClassBases(root *sitter.Node, source []byte, kindOrKinds any, extractor func(*sitter.Node, []byte) []string) []string {
	matches := func(k string) bool {
		switch v := kindOrKinds.(type) {
		case string:
			return k == v
		case func(string) bool:
			return v(k)
		}
		return false
	}
	var found *sitter.Node
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil || found != nil {
			return
		}
		if matches(n.Kind()) {
			found = n
			return
		}
		count := n.ChildCount()
		for i := uint(0); i < count; i++ {
			walk(n.Child(i))
			if found != nil {
				return
			}
		}
	}
	walk(root)
	if found == nil {
		return nil
	}
	return extractor(found, source)
}

func javaClassKinds(k string) bool {
	switch k {
	case "class_declaration", "interface_declaration", "record_declaration":
		return true
	}
	return false
}

func cppClassKinds(k string) bool {
	return k == "class_specifier" || k == "struct_specifier"
}

func pythonBases(node *sitter.Node, source []byte) []string {
	sup := node.ChildByFieldName("superclasses")
	if sup == nil {
		return nil
	}
	var out []string
	count := sup.ChildCount()
	for i := uint(0); i < count; i++ {
		child := sup.Child(i)
		if child.Kind() == "identifier" || child.Kind() == "attribute" {
			out = append(out, nodeText(child, source))
		}
	}
	return out
}

func jsBases(node *sitter.Node, source []byte) []string {
	var out []string
	count := node.ChildCount()
	for i := uint(0); i < count; i++ {
		child := node.Child(i)
		if child.Kind() == "class_heritage" {
			out = append(out, collectHeritageIdentifiers(child, source)...)
		}
	}
	return out
}

func collectHeritageIdentifiers(node *sitter.Node, source []byte) []string {
	var out []string
	count := node.ChildCount()
	for i := uint(0); i < count; i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "identifier", "type_identifier":
			out = append(out, nodeText(child, source))
		default:
			out = append(out, collectHeritageIdentifiers(child, source)...)
		}
	}
	return out
}

func javaBases(node *sitter.Node, source []byte) []string {
	var out []string
	if sup := node.ChildByFieldName("superclass"); sup != nil {
		out = append(out, collectHeritageIdentifiers(sup, source)...)
	}
	if ifaces := node.ChildByFieldName("interfaces"); ifaces != nil {
		out = append(out, collectHeritageIdentifiers(ifaces, source)...)
	}
	return out
}

func rustBases(node *sitter.Node, source []byte) []string {
	if t := node.ChildByFieldName("trait"); t != nil {
		return []string{nodeText(t, source)}
	}
	return nil
}

func cppBases(node *sitter.Node, source []byte) []string {
	var clause *sitter.Node
	count := node.ChildCount()
	for i := uint(0); i < count; i++ {
		if c := node.Child(i); c.Kind() == "base_class_clause" {
			clause = c
			break
		}
	}
	if clause == nil {
		return nil
	}
	var out []string
	n := clause.ChildCount()
	for i := uint(0); i < n; i++ {
		child := clause.Child(i)
		switch child.Kind() {
		case "identifier", "type_identifier", "qualified_identifier":
			out = append(out, nodeText(child, source))
		}
	}
	return out
}
