// Package bm25 implements the Okapi BM25 lexical index (k1=1.5, b=0.75,
// indexed text = name + " " + code + " " + docstring). Grounded on
// internal/core's semantic search index for the lock/update discipline
// and on surgebase/porter2 for optional stemming; the scoring itself
// follows the classic Okapi formula.
package bm25

import (
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/surgebase/porter2"
)

const (
	k1 = 1.5
	b  = 0.75
)

type document struct {
	tokens []string
	freq   map[string]int
	length int
}

// Index is a mutable BM25 lexical index over named text documents, safe
// for concurrent use. Stem controls whether tokens are Porter2-stemmed
// before indexing; it defaults to false so token identity matches the
// literal source text, per the Open Question decision recorded in
// DESIGN.md.
type Index struct {
	mu   sync.RWMutex
	Stem bool

	docs      map[string]*document
	inverted  map[string]map[string]int // term -> docID -> freq within doc
	totalLen  int
}

// New returns an empty index.
func New() *Index {
	return &Index{
		docs:     make(map[string]*document),
		inverted: make(map[string]map[string]int),
	}
}

// AddDocument indexes text under id, replacing any prior document with
// that id.
func (ix *Index) AddDocument(id, text string) {
	tokens := ix.tokenize(text)
	freq := make(map[string]int, len(tokens))
	for _, t := range tokens {
		freq[t]++
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	if old, ok := ix.docs[id]; ok {
		ix.removeLocked(id, old)
	}
	doc := &document{tokens: tokens, freq: freq, length: len(tokens)}
	ix.docs[id] = doc
	ix.totalLen += doc.length
	for term, f := range freq {
		if ix.inverted[term] == nil {
			ix.inverted[term] = make(map[string]int)
		}
		ix.inverted[term][id] = f
	}
}

// AddTokenizedDocument indexes a document from already-tokenized text,
// bypassing tokenize. Used by internal/store to rebuild an Index from a
// persisted snapshot without re-tokenizing source text.
func (ix *Index) AddTokenizedDocument(id string, tokens []string) {
	freq := make(map[string]int, len(tokens))
	for _, t := range tokens {
		freq[t]++
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	if old, ok := ix.docs[id]; ok {
		ix.removeLocked(id, old)
	}
	doc := &document{tokens: tokens, freq: freq, length: len(tokens)}
	ix.docs[id] = doc
	ix.totalLen += doc.length
	for term, f := range freq {
		if ix.inverted[term] == nil {
			ix.inverted[term] = make(map[string]int)
		}
		ix.inverted[term][id] = f
	}
}

// Snapshot is a serializable copy of an Index's documents.
type Snapshot struct {
	Stem bool
	Docs map[string][]string // doc id -> tokens, in original order
}

// Snapshot returns a serializable copy of the index's documents, used by
// internal/store to persist and restore the index without depending on
// bm25's internal layout.
func (ix *Index) Snapshot() Snapshot {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	docs := make(map[string][]string, len(ix.docs))
	for id, d := range ix.docs {
		tokens := make([]string, len(d.tokens))
		copy(tokens, d.tokens)
		docs[id] = tokens
	}
	return Snapshot{Stem: ix.Stem, Docs: docs}
}

// RemoveDocument removes id's document, if present.
func (ix *Index) RemoveDocument(id string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	doc, ok := ix.docs[id]
	if !ok {
		return
	}
	ix.removeLocked(id, doc)
}

func (ix *Index) removeLocked(id string, doc *document) {
	for term := range doc.freq {
		postings := ix.inverted[term]
		delete(postings, id)
		if len(postings) == 0 {
			delete(ix.inverted, term)
		}
	}
	ix.totalLen -= doc.length
	delete(ix.docs, id)
}

// Len returns the number of indexed documents.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.docs)
}

// IsEmpty reports whether no documents are indexed.
func (ix *Index) IsEmpty() bool { return ix.Len() == 0 }

// Result is one scored document.
type Result struct {
	ID    string
	Score float64
}

// Search scores every document containing at least one query term via
// Okapi BM25 and returns the top limit results, highest score first,
// ties broken by id for determinism. limit<=0 returns every match.
func (ix *Index) Search(query string, limit int) []Result {
	terms := ix.tokenize(query)
	if len(terms) == 0 {
		return nil
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	n := len(ix.docs)
	if n == 0 {
		return nil
	}
	avgDocLen := float64(ix.totalLen) / float64(n)
	if avgDocLen == 0 {
		avgDocLen = 1
	}

	scores := make(map[string]float64)
	seen := make(map[string]bool)
	for _, term := range terms {
		if seen[term] {
			continue
		}
		seen[term] = true
		postings, ok := ix.inverted[term]
		if !ok {
			continue
		}
		docFreq := len(postings)
		idf := math.Log((float64(n-docFreq)+0.5)/(float64(docFreq)+0.5) + 1)
		for id, f := range postings {
			doc := ix.docs[id]
			norm := float64(f) * (k1 + 1)
			denom := float64(f) + k1*(1-b+b*float64(doc.length)/avgDocLen)
			scores[id] += idf * (norm / denom)
		}
	}

	out := make([]Result, 0, len(scores))
	for id, s := range scores {
		out = append(out, Result{ID: id, Score: s})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// tokenize lowercases text and splits on ASCII whitespace only, per
// spec.md §4.8 — punctuation stays glued to its token, matching the
// literal tokenizer the invariant/round-trip tests assume.
func (ix *Index) tokenize(text string) []string {
	fields := strings.FieldsFunc(text, isASCIISpace)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		tok := strings.ToLower(f)
		if ix.Stem && len(tok) >= 3 {
			tok = porter2.Stem(tok)
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

func isASCIISpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	default:
		return false
	}
}
