package extract

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/codelens-dev/codelens/internal/parsing"
	"github.com/codelens-dev/codelens/internal/types"
)

// Imports parses a file's source and returns its import/use/include
// records, dispatched per language.
func Imports(cache *parsing.Cache, lang types.Language, code string) []types.ImportInfo {
	source := []byte(code)
	tree := cache.Parse(source, lang)
	if tree == nil {
		return nil
	}
	defer tree.Close()

	var out []types.ImportInfo
	walkImports(tree.RootNode(), source, lang, &out)
	return out
}

func walkImports(node *sitter.Node, source []byte, lang types.Language, out *[]types.ImportInfo) {
	if node == nil {
		return
	}
	switch lang {
	case types.LangPython:
		pythonImport(node, source, out)
	case types.LangJavaScript, types.LangTypeScript, types.LangTSX:
		jsImport(node, source, out)
	case types.LangRust:
		rustImport(node, source, out)
	case types.LangGo:
		goImport(node, source, out)
	case types.LangJava:
		javaImport(node, source, out)
	case types.LangCpp, types.LangC:
		cImport(node, source, out)
	}
	count := node.ChildCount()
	for i := uint(0); i < count; i++ {
		walkImports(node.Child(i), source, lang, out)
	}
}

func pythonImport(node *sitter.Node, source []byte, out *[]types.ImportInfo) {
	switch node.Kind() {
	case "import_statement":
		count := node.ChildCount()
		for i := uint(0); i < count; i++ {
			child := node.Child(i)
			switch child.Kind() {
			case "dotted_name":
				*out = append(*out, types.ImportInfo{Module: nodeText(child, source)})
			case "aliased_import":
				if name := child.ChildByFieldName("name"); name != nil {
					*out = append(*out, types.ImportInfo{Module: nodeText(name, source)})
				}
			}
		}
	case "import_from_statement":
		level := 0
		var module string
		var names []string
		count := node.ChildCount()
		for i := uint(0); i < count; i++ {
			child := node.Child(i)
			switch child.Kind() {
			case "relative_import":
				level += strings.Count(nodeText(child, source), ".")
				if prefix := child.ChildByFieldName("module_name"); prefix != nil {
					module = nodeText(prefix, source)
				}
			case "dotted_name":
				if module == "" {
					module = nodeText(child, source)
				} else {
					names = append(names, nodeText(child, source))
				}
			case "aliased_import":
				if name := child.ChildByFieldName("name"); name != nil {
					names = append(names, nodeText(name, source))
				}
			case "wildcard_import":
				names = append(names, "*")
			}
		}
		*out = append(*out, types.ImportInfo{Module: module, Names: names, Level: level})
	}
}

func jsImport(node *sitter.Node, source []byte, out *[]types.ImportInfo) {
	if node.Kind() != "import_statement" {
		if node.Kind() == "call_expression" {
			if fn := node.ChildByFieldName("function"); fn != nil && nodeText(fn, source) == "require" {
				if args := node.ChildByFieldName("arguments"); args != nil && args.ChildCount() > 0 {
					arg := args.Child(0)
					if arg.Kind() == "string" {
						*out = append(*out, types.ImportInfo{Module: stripQuotes(nodeText(arg, source))})
					}
				}
			}
		}
		return
	}
	src := node.ChildByFieldName("source")
	if src == nil {
		return
	}
	module := stripQuotes(nodeText(src, source))
	var names []string
	clause := node.ChildByFieldName("import_clause") // Go bindings for this grammar name the clause as first-class import nodes
	if clause == nil {
		// Walk children for default/namespace/named specifiers.
		count := node.ChildCount()
		for i := uint(0); i < count; i++ {
			collectJSSpecifiers(node.Child(i), source, &names)
		}
	} else {
		collectJSSpecifiers(clause, source, &names)
	}
	*out = append(*out, types.ImportInfo{Module: module, Names: names})
}

func collectJSSpecifiers(node *sitter.Node, source []byte, names *[]string) {
	if node == nil {
		return
	}
	switch node.Kind() {
	case "identifier":
		*names = append(*names, nodeText(node, source))
	case "namespace_import":
		*names = append(*names, "*")
	case "import_specifier":
		if n := node.ChildByFieldName("name"); n != nil {
			*names = append(*names, nodeText(n, source))
		}
	}
	count := node.ChildCount()
	for i := uint(0); i < count; i++ {
		collectJSSpecifiers(node.Child(i), source, names)
	}
}

func rustImport(node *sitter.Node, source []byte, out *[]types.ImportInfo) {
	switch node.Kind() {
	case "use_declaration":
		if arg := node.ChildByFieldName("argument"); arg != nil {
			module, names := flattenRustUse(arg, source)
			*out = append(*out, types.ImportInfo{Module: module, Names: names})
		}
	case "mod_item":
		if node.ChildByFieldName("body") == nil {
			if n := node.ChildByFieldName("name"); n != nil {
				*out = append(*out, types.ImportInfo{Module: nodeText(n, source)})
			}
		}
	}
}

// flattenRustUse flattens a (possibly nested) use tree into a
// double-colon-joined module path and a list of leaf names.
func flattenRustUse(node *sitter.Node, source []byte) (string, []string) {
	switch node.Kind() {
	case "identifier":
		name := nodeText(node, source)
		return name, []string{name}
	case "self", "crate", "super":
		return nodeText(node, source), nil
	case "scoped_identifier":
		path := node.ChildByFieldName("path")
		name := node.ChildByFieldName("name")
		prefix := ""
		if path != nil {
			prefix = nodeText(path, source)
		}
		leaf := ""
		if name != nil {
			leaf = nodeText(name, source)
		}
		if prefix == "" {
			return leaf, []string{leaf}
		}
		return prefix + "::" + leaf, []string{leaf}
	case "use_wildcard":
		return "", []string{"*"}
	case "use_as_clause":
		if path := node.ChildByFieldName("path"); path != nil {
			m, _ := flattenRustUse(path, source)
			return m, []string{m}
		}
	case "scoped_use_list":
		path := node.ChildByFieldName("path")
		prefix := ""
		if path != nil {
			prefix = nodeText(path, source)
		}
		list := node.ChildByFieldName("list")
		var names []string
		if list != nil {
			count := list.ChildCount()
			for i := uint(0); i < count; i++ {
				_, leafNames := flattenRustUse(list.Child(i), source)
				names = append(names, leafNames...)
			}
		}
		return prefix, names
	case "use_list":
		var names []string
		count := node.ChildCount()
		for i := uint(0); i < count; i++ {
			_, leafNames := flattenRustUse(node.Child(i), source)
			names = append(names, leafNames...)
		}
		return "", names
	}
	return nodeText(node, source), nil
}

func goImport(node *sitter.Node, source []byte, out *[]types.ImportInfo) {
	if node.Kind() != "import_spec" {
		return
	}
	pathNode := node.ChildByFieldName("path")
	if pathNode == nil {
		return
	}
	path := stripQuotes(nodeText(pathNode, source))
	segs := strings.Split(path, "/")
	name := segs[len(segs)-1]
	*out = append(*out, types.ImportInfo{Module: path, Names: []string{name}})
}

func javaImport(node *sitter.Node, source []byte, out *[]types.ImportInfo) {
	switch node.Kind() {
	case "import_declaration":
		count := node.ChildCount()
		for i := uint(0); i < count; i++ {
			child := node.Child(i)
			if child.Kind() == "scoped_identifier" || child.Kind() == "identifier" {
				path := nodeText(child, source)
				segs := strings.Split(path, ".")
				*out = append(*out, types.ImportInfo{Module: path, Names: []string{segs[len(segs)-1]}})
				return
			}
		}
	case "package_declaration":
		count := node.ChildCount()
		for i := uint(0); i < count; i++ {
			child := node.Child(i)
			if child.Kind() == "scoped_identifier" || child.Kind() == "identifier" {
				*out = append(*out, types.ImportInfo{Module: nodeText(child, source)})
				return
			}
		}
	}
}

func cImport(node *sitter.Node, source []byte, out *[]types.ImportInfo) {
	if node.Kind() != "preproc_include" {
		return
	}
	pathNode := node.ChildByFieldName("path")
	if pathNode == nil {
		return
	}
	text := nodeText(pathNode, source)
	text = strings.Trim(text, "<>\"")
	*out = append(*out, types.ImportInfo{Module: text, Names: []string{text}})
}

func stripQuotes(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') || (first == '`' && last == '`') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
