package repo

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codelens-dev/codelens/internal/walker"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestBuild_PopulatesGraphAndBM25(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.go", "package main\n\nfunc Run() {}\n")

	r := New()
	_, ok := r.Handle()
	assert.False(t, ok, "no handle before Build")

	h, err := r.Build(context.Background(), dir)
	require.NoError(t, err)

	stats := h.Graph.Stats()
	assert.Equal(t, 1, stats.FileCount)
	assert.Greater(t, stats.ElementCount, 0)

	results := h.BM25.Search("Run", 10)
	assert.NotEmpty(t, results)

	h2, ok := r.Handle()
	require.True(t, ok)
	assert.Same(t, h, h2)
}

func TestSaveArtifacts_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.go", "package main\n\nfunc Run() {}\n")

	r := New()
	h, err := r.Build(context.Background(), dir)
	require.NoError(t, err)

	artifactDir := filepath.Join(dir, ".codelens")
	require.NoError(t, os.MkdirAll(artifactDir, 0o755))
	require.NoError(t, h.SaveArtifacts(artifactDir))

	assert.FileExists(t, filepath.Join(artifactDir, "elements.bin"))
	assert.FileExists(t, filepath.Join(artifactDir, "bm25.bin"))
}

func TestUpdateFile_ReindexesAndRefreshesBM25(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.go", "package main\n\nfunc Run() {}\n")

	r := New()
	h, err := r.Build(context.Background(), dir)
	require.NoError(t, err)

	writeFile(t, dir, "main.go", "package main\n\nfunc Run() {}\n\nfunc Extra() {}\n")
	w := walker.New(h.Config)
	r.updateFile(h, w, "main.go")

	results := h.BM25.Search("Extra", 10)
	assert.NotEmpty(t, results)

	id := h.Graph.AllElements()
	var foundExtra bool
	for _, e := range id {
		if e.Name == "Extra" {
			foundExtra = true
		}
	}
	assert.True(t, foundExtra)
}

func TestRemoveFile_PurgesGraphAndBM25(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.go", "package main\n\nfunc Run() {}\n")

	r := New()
	h, err := r.Build(context.Background(), dir)
	require.NoError(t, err)

	r.removeFile(h, "main.go")

	assert.Empty(t, h.Graph.AllElements())
	assert.Empty(t, h.BM25.Search("Run", 10))
}

func TestStopWatching_WithoutStartIsNoop(t *testing.T) {
	r := New()
	assert.NoError(t, r.StopWatching())
}
