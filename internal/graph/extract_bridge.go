package graph

import (
	"github.com/codelens-dev/codelens/internal/extract"
	"github.com/codelens-dev/codelens/internal/parsing"
	"github.com/codelens-dev/codelens/internal/types"
)

// These three helpers are the graph package's only contact point with
// internal/extract: each re-parses one element's own stored Code, matching
// the original implementation's per-element reparse design (see DESIGN.md).

func extractImportsFor(cache *parsing.Cache, e types.Element) []types.ImportInfo {
	return extract.Imports(cache, e.Language, e.Code)
}

func extractCallsFor(cache *parsing.Cache, e types.Element) []types.CallInfo {
	return extract.Calls(cache, e.Language, e.Code)
}

func extractBaseTypesFor(cache *parsing.Cache, e types.Element) []string {
	return extract.BaseTypes(cache, e.Language, e.Code)
}
