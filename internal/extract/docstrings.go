package extract

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/codelens-dev/codelens/internal/types"
)

// docstringFor dispatches docstring extraction by language: Python
// triple-quoted first body expression; Rust preceding /// or //! line
// comments; everything else scans the nearest preceding block or line
// comment.
func docstringFor(lang types.Language, node *sitter.Node, source []byte) string {
	switch lang {
	case types.LangPython:
		return pythonDocstring(node, source)
	case types.LangRust:
		return rustDocComment(node, source)
	default:
		return precedingComment(node, source)
	}
}

// pythonDocstring looks for a body block whose first statement is a bare
// string expression, returning its text with quotes stripped and
// whitespace trimmed.
func pythonDocstring(node *sitter.Node, source []byte) string {
	body := node.ChildByFieldName("body")
	if body == nil || body.ChildCount() == 0 {
		return ""
	}
	first := body.Child(0)
	if first.Kind() != "expression_statement" || first.ChildCount() == 0 {
		return ""
	}
	str := first.Child(0)
	if str.Kind() != "string" {
		return ""
	}
	text := nodeText(str, source)
	return strings.TrimSpace(stripPythonQuotes(text))
}

func stripPythonQuotes(s string) string {
	for _, q := range []string{`"""`, `'''`} {
		if strings.HasPrefix(s, q) && strings.HasSuffix(s, q) && len(s) >= 2*len(q) {
			return s[len(q) : len(s)-len(q)]
		}
	}
	for _, q := range []string{`"`, `'`} {
		if strings.HasPrefix(s, q) && strings.HasSuffix(s, q) && len(s) >= 2 {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// rustDocComment walks preceding sibling comment nodes in source order,
// collecting contiguous /// and //! lines immediately above the item.
func rustDocComment(node *sitter.Node, source []byte) string {
	var lines []string
	cur := node.PrevSibling()
	for cur != nil && cur.Kind() == "line_comment" {
		text := strings.TrimSpace(nodeText(cur, source))
		if strings.HasPrefix(text, "///") {
			lines = append([]string{strings.TrimSpace(strings.TrimPrefix(text, "///"))}, lines...)
		} else if strings.HasPrefix(text, "//!") {
			lines = append([]string{strings.TrimSpace(strings.TrimPrefix(text, "//!"))}, lines...)
		} else {
			break
		}
		cur = cur.PrevSibling()
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// precedingComment scans the nearest preceding block comment (/** ... */
// or // ...) immediately above node, stripping leading "*" decoration.
func precedingComment(node *sitter.Node, source []byte) string {
	cur := node.PrevSibling()
	if cur == nil {
		return ""
	}
	kind := cur.Kind()
	if kind != "comment" && kind != "block_comment" && kind != "line_comment" {
		return ""
	}
	text := nodeText(cur, source)
	text = strings.TrimPrefix(text, "/**")
	text = strings.TrimPrefix(text, "/*")
	text = strings.TrimSuffix(text, "*/")
	text = strings.TrimPrefix(text, "//")
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "*")
		out = append(out, strings.TrimSpace(line))
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
