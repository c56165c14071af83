package walker

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codelens-dev/codelens/internal/config"
	"github.com/codelens-dev/codelens/internal/parsing"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDiscover_FiltersHiddenAndUnknownExtensions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.go", "package main\n")
	writeFile(t, dir, "README.md", "# readme\n")
	writeFile(t, dir, ".hidden/skip.go", "package skip\n")
	writeFile(t, dir, "vendor/dep.go", "package dep\n")

	cfg := config.Default(dir)
	w := New(cfg)
	paths, err := w.Discover()
	require.NoError(t, err)

	assert.Contains(t, paths, "main.go")
	assert.NotContains(t, paths, "README.md")
	assert.NotContains(t, paths, ".hidden/skip.go")
	assert.NotContains(t, paths, "vendor/dep.go")
}

func TestDiscover_RespectsGitignore(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.go", "package main\n")
	writeFile(t, dir, "generated.go", "package gen\n")
	writeFile(t, dir, ".gitignore", "generated.go\n")

	cfg := config.Default(dir)
	w := New(cfg)
	paths, err := w.Discover()
	require.NoError(t, err)

	assert.Contains(t, paths, "main.go")
	assert.NotContains(t, paths, "generated.go")
}

func TestDiscover_RespectsMaxFileSize(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "big.go", "package big\n// padding\n")

	cfg := config.Default(dir)
	cfg.Index.MaxFileSize = 5
	w := New(cfg)
	paths, err := w.Discover()
	require.NoError(t, err)
	assert.NotContains(t, paths, "big.go")
}

func TestIndexSingleFile_ExtractsElements(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.go", "package main\n\nfunc Run() {}\n")

	cfg := config.Default(dir)
	w := New(cfg)
	cache := parsing.New()
	defer cache.Close()

	elements, err := w.IndexSingleFile(cache, "main.go")
	require.NoError(t, err)

	var found bool
	for _, e := range elements {
		if e.Name == "Run" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestIndexSingleFile_UnrecognisedExtension(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.txt", "hello\n")

	cfg := config.Default(dir)
	w := New(cfg)
	cache := parsing.New()
	defer cache.Close()

	_, err := w.IndexSingleFile(cache, "notes.txt")
	assert.Error(t, err)
}

func TestIndexAll_AggregatesAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.go", "package a\n\nfunc A() {}\n")
	writeFile(t, dir, "b.go", "package b\n\nfunc B() {}\n")

	cfg := config.Default(dir)
	w := New(cfg)
	cache := parsing.New()
	defer cache.Close()

	elements, merr := w.IndexAll(context.Background(), cache)
	assert.False(t, merr.HasErrors())

	var names []string
	for _, e := range elements {
		names = append(names, e.Name)
	}
	assert.Contains(t, names, "A")
	assert.Contains(t, names, "B")
}
