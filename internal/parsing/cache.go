// Package parsing provides a tree-sitter parser cache, grounded on the
// teacher's internal/parser.TreeSitterParser and the original
// implementation's parser::Parser (a HashMap<Language, TsParser>).
package parsing

import (
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/codelens-dev/codelens/internal/langs"
	"github.com/codelens-dev/codelens/internal/types"
)

// Cache owns one tree-sitter parser instance per language tag, guarded by
// a mutex so a single Cache can be shared across the walker's worker
// pool: a *sitter.Parser can only run one Parse call at a time, so every
// Parse call on one Cache is serialized, whatever the language. Element
// and import extraction parse whole files; call and base-type extraction
// reparse single element snippets.
type Cache struct {
	mu      sync.Mutex
	parsers map[types.Language]*sitter.Parser
}

// New returns an empty parser cache.
func New() *Cache {
	return &Cache{parsers: make(map[types.Language]*sitter.Parser)}
}

func (c *Cache) parserFor(lang types.Language) (*sitter.Parser, bool) {
	if p, ok := c.parsers[lang]; ok {
		return p, true
	}
	g, ok := langs.Get(lang)
	if !ok {
		return nil, false
	}
	p := sitter.NewParser()
	if err := p.SetLanguage(g.Language()); err != nil {
		return nil, false
	}
	c.parsers[lang] = p
	return p, true
}

// Parse parses source code for a given language, returning nil when the
// language has no grammar bound. Safe for concurrent use.
func (c *Cache) Parse(source []byte, lang types.Language) *sitter.Tree {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.parserFor(lang)
	if !ok {
		return nil
	}
	return p.Parse(source, nil)
}

// ParseFile detects the language from path's extension and parses source.
// Returns ("", nil) when the extension is unrecognised.
func (c *Cache) ParseFile(path string, source []byte) (types.Language, *sitter.Tree) {
	lang, ok := langs.FromExtension(path)
	if !ok {
		return "", nil
	}
	return lang, c.Parse(source, lang)
}

// Close releases every cached parser.
func (c *Cache) Close() {
	for _, p := range c.parsers {
		p.Close()
	}
	c.parsers = make(map[types.Language]*sitter.Parser)
}
