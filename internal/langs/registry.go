// Package langs is the language registry: extension-to-language mapping,
// grammar handles, and the node-kind predicate tables every extractor
// dispatches through.
package langs

import (
	"path/filepath"
	"sort"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	ts_c "github.com/tree-sitter/tree-sitter-c/bindings/go"
	ts_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	ts_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	ts_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	ts_js "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	ts_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	ts_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	ts_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/codelens-dev/codelens/internal/types"
)

// Grammar bundles a language's tree-sitter grammar with the node-kind
// predicates the extractors need. One Grammar is shared read-only across
// all workers; the *sitter.Parser instances live in a parsing.Cache, which
// the walker shares across its workers.
type Grammar struct {
	Lang types.Language

	language *sitter.Language

	// IsFunctionKind reports whether a node kind denotes a function/method-like
	// definition (the extractor decides method-vs-function by nesting depth).
	IsFunctionKind func(kind string) bool
	// IsClassLikeKind reports whether a node kind denotes a class/struct/
	// interface/enum-like definition that can parent methods.
	IsClassLikeKind func(kind string) bool
	// ClassifyClassKind maps a class-like node kind to its ElementKind.
	ClassifyClassKind func(kind string) types.ElementKind
	// CallNodeKind is the node kind that denotes a call expression.
	CallNodeKind string
}

// Language returns the bound tree-sitter grammar handle.
func (g *Grammar) Language() *sitter.Language { return g.language }

var registry = map[types.Language]*Grammar{}
var extToLang = map[string]types.Language{
	".py": types.LangPython, ".pyi": types.LangPython,
	".js": types.LangJavaScript, ".mjs": types.LangJavaScript, ".cjs": types.LangJavaScript,
	".ts": types.LangTypeScript, ".mts": types.LangTypeScript, ".cts": types.LangTypeScript,
	".tsx": types.LangTSX, ".jsx": types.LangTSX,
	".rs":  types.LangRust,
	".go":  types.LangGo,
	".java": types.LangJava,
	".cpp": types.LangCpp, ".cc": types.LangCpp, ".cxx": types.LangCpp,
	".hpp": types.LangCpp, ".hxx": types.LangCpp, ".h": types.LangCpp,
	".c": types.LangC,
}

func init() {
	registry[types.LangPython] = &Grammar{
		Lang:     types.LangPython,
		language: sitter.NewLanguage(ts_python.Language()),
		IsFunctionKind: func(k string) bool { return k == "function_definition" },
		IsClassLikeKind: func(k string) bool { return k == "class_definition" },
		ClassifyClassKind: func(string) types.ElementKind { return types.KindClass },
		CallNodeKind: "call",
	}
	registry[types.LangJavaScript] = &Grammar{
		Lang:     types.LangJavaScript,
		language: sitter.NewLanguage(ts_js.Language()),
		IsFunctionKind: func(k string) bool {
			switch k {
			case "function_declaration", "generator_function_declaration", "function_expression",
				"arrow_function", "method_definition":
				return true
			}
			return false
		},
		IsClassLikeKind:   func(k string) bool { return k == "class_declaration" || k == "class" },
		ClassifyClassKind: func(string) types.ElementKind { return types.KindClass },
		CallNodeKind:      "call_expression",
	}
	registry[types.LangTypeScript] = &Grammar{
		Lang:     types.LangTypeScript,
		language: sitter.NewLanguage(ts_typescript.LanguageTypescript()),
		IsFunctionKind: func(k string) bool {
			switch k {
			case "function_declaration", "generator_function_declaration", "function_expression",
				"arrow_function", "method_definition", "method_signature":
				return true
			}
			return false
		},
		IsClassLikeKind: func(k string) bool {
			switch k {
			case "class_declaration", "interface_declaration", "enum_declaration":
				return true
			}
			return false
		},
		ClassifyClassKind: classifyTSClassKind,
		CallNodeKind:      "call_expression",
	}
	registry[types.LangTSX] = &Grammar{
		Lang:              types.LangTSX,
		language:          sitter.NewLanguage(ts_typescript.LanguageTSX()),
		IsFunctionKind:    registry[types.LangTypeScript].IsFunctionKind,
		IsClassLikeKind:   registry[types.LangTypeScript].IsClassLikeKind,
		ClassifyClassKind: classifyTSClassKind,
		CallNodeKind:      "call_expression",
	}
	registry[types.LangRust] = &Grammar{
		Lang:     types.LangRust,
		language: sitter.NewLanguage(ts_rust.Language()),
		IsFunctionKind: func(k string) bool { return k == "function_item" },
		IsClassLikeKind: func(k string) bool {
			switch k {
			case "struct_item", "enum_item", "trait_item", "impl_item":
				return true
			}
			return false
		},
		ClassifyClassKind: classifyRustClassKind,
		CallNodeKind:      "call_expression",
	}
	registry[types.LangGo] = &Grammar{
		Lang:     types.LangGo,
		language: sitter.NewLanguage(ts_go.Language()),
		IsFunctionKind: func(k string) bool {
			return k == "function_declaration" || k == "method_declaration" || k == "func_literal"
		},
		IsClassLikeKind: func(k string) bool { return k == "type_declaration" },
		ClassifyClassKind: func(string) types.ElementKind { return types.KindStruct },
		CallNodeKind:      "call_expression",
	}
	registry[types.LangJava] = &Grammar{
		Lang:     types.LangJava,
		language: sitter.NewLanguage(ts_java.Language()),
		IsFunctionKind: func(k string) bool {
			return k == "method_declaration" || k == "constructor_declaration"
		},
		IsClassLikeKind: func(k string) bool {
			switch k {
			case "class_declaration", "interface_declaration", "enum_declaration", "record_declaration":
				return true
			}
			return false
		},
		ClassifyClassKind: classifyJavaClassKind,
		CallNodeKind:      "method_invocation",
	}
	registry[types.LangCpp] = &Grammar{
		Lang:     types.LangCpp,
		language: sitter.NewLanguage(ts_cpp.Language()),
		IsFunctionKind: func(k string) bool { return k == "function_definition" },
		IsClassLikeKind: func(k string) bool {
			switch k {
			case "class_specifier", "struct_specifier", "enum_specifier":
				return true
			}
			return false
		},
		ClassifyClassKind: classifyCppClassKind,
		CallNodeKind:      "call_expression",
	}
	registry[types.LangC] = &Grammar{
		Lang:     types.LangC,
		language: sitter.NewLanguage(ts_c.Language()),
		IsFunctionKind: func(k string) bool { return k == "function_definition" },
		IsClassLikeKind: func(k string) bool {
			switch k {
			case "struct_specifier", "enum_specifier":
				return true
			}
			return false
		},
		ClassifyClassKind: classifyCppClassKind,
		CallNodeKind:      "call_expression",
	}
}

func classifyTSClassKind(k string) types.ElementKind {
	switch k {
	case "interface_declaration":
		return types.KindInterface
	case "enum_declaration":
		return types.KindEnum
	default:
		return types.KindClass
	}
}

func classifyRustClassKind(k string) types.ElementKind {
	switch k {
	case "struct_item":
		return types.KindStruct
	case "enum_item":
		return types.KindEnum
	case "trait_item":
		return types.KindInterface
	default:
		return types.KindClass
	}
}

func classifyJavaClassKind(k string) types.ElementKind {
	switch k {
	case "interface_declaration":
		return types.KindInterface
	case "enum_declaration":
		return types.KindEnum
	default:
		return types.KindClass
	}
}

func classifyCppClassKind(k string) types.ElementKind {
	switch k {
	case "struct_specifier":
		return types.KindStruct
	case "enum_specifier":
		return types.KindEnum
	default:
		return types.KindClass
	}
}

// FromExtension returns the language tag for a file path's extension, case
// insensitive, or ("", false) when the extension is not recognised.
func FromExtension(path string) (types.Language, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	lang, ok := extToLang[ext]
	return lang, ok
}

// Get returns the Grammar bound to a language tag.
func Get(lang types.Language) (*Grammar, bool) {
	g, ok := registry[lang]
	return g, ok
}

// Extensions returns every recognised extension, sorted.
func Extensions() []string {
	out := make([]string, 0, len(extToLang))
	for e := range extToLang {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}
