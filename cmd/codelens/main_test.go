package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/codelens-dev/codelens/internal/idhash"
)

func writeFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n\nfunc Run() {}\n"), 0o644))
	return dir
}

func newApp() *cli.App {
	return &cli.App{
		Name: "codelens",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "root", Aliases: []string{"r"}, Value: "."},
		},
		Commands: []*cli.Command{
			indexCommand(),
			statsCommand(),
			searchCommand(),
			queryCommand(),
		},
	}
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	require.NoError(t, w.Close())
	os.Stdout = old

	var buf bytes.Buffer
	_, err = io.Copy(&buf, r)
	require.NoError(t, err)
	return buf.String()
}

func TestIndexCommand_BuildsArtifacts(t *testing.T) {
	dir := writeFixture(t)
	app := newApp()

	out := captureStdout(t, func() {
		err := app.Run([]string{"codelens", "--root", dir, "index"})
		require.NoError(t, err)
	})

	assert.Contains(t, out, "indexed")
	assert.FileExists(t, filepath.Join(dir, ".codelens", "elements.bin"))
	assert.FileExists(t, filepath.Join(dir, ".codelens", "bm25.bin"))
}

func TestStatsCommand_PrintsJSON(t *testing.T) {
	dir := writeFixture(t)
	app := newApp()

	out := captureStdout(t, func() {
		err := app.Run([]string{"codelens", "--root", dir, "stats"})
		require.NoError(t, err)
	})

	assert.Contains(t, out, "\"FileCount\"")
}

func TestSearchCommand_RequiresQueryArgument(t *testing.T) {
	app := newApp()
	err := app.Run([]string{"codelens", "search"})
	assert.Error(t, err)
}

func TestSearchCommand_FindsMatch(t *testing.T) {
	dir := writeFixture(t)
	app := newApp()

	out := captureStdout(t, func() {
		err := app.Run([]string{"codelens", "--root", dir, "search", "Run"})
		require.NoError(t, err)
	})

	assert.Contains(t, out, idhash.Generate("function", "main.go", "Run"))
}

func TestQueryCommand_UnknownQueryKindErrors(t *testing.T) {
	dir := writeFixture(t)
	app := newApp()
	err := app.Run([]string{"codelens", "--root", dir, "query", "bogus", "some-id"})
	assert.Error(t, err)
}

func TestQueryCommand_SourceUnknownIDErrors(t *testing.T) {
	dir := writeFixture(t)
	app := newApp()
	err := app.Run([]string{"codelens", "--root", dir, "query", "source", "does-not-exist"})
	assert.Error(t, err)
}
