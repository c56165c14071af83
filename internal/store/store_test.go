package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codelens-dev/codelens/internal/bm25"
	"github.com/codelens-dev/codelens/internal/errs"
	"github.com/codelens-dev/codelens/internal/types"
)

func TestSaveLoadElements_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "elements.bin")
	elements := []types.Element{
		{ID: "function_1", Kind: types.KindFunction, Name: "Run", RelativePath: "main.go", StartLine: 1, EndLine: 3},
	}
	require.NoError(t, SaveElements(path, elements))

	loaded, err := LoadElements(path)
	require.NoError(t, err)
	assert.Equal(t, elements, loaded)
}

func TestSaveLoadBM25_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bm25.bin")
	idx := bm25.New()
	idx.AddDocument("function_1", "connect to the database")
	require.NoError(t, SaveBM25(path, idx))

	loaded, err := LoadBM25(path)
	require.NoError(t, err)
	assert.Equal(t, idx.Search("database", 10), loaded.Search("database", 10))
}

func TestLoadElements_WrongKindIsRecoverable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bm25.bin")
	idx := bm25.New()
	require.NoError(t, SaveBM25(path, idx))

	_, err := LoadElements(path)
	require.Error(t, err)
	storeErr, ok := err.(*errs.StoreError)
	require.True(t, ok)
	assert.True(t, storeErr.Recoverable)
}

func TestLoadElements_MissingFile(t *testing.T) {
	_, err := LoadElements(filepath.Join(t.TempDir(), "missing.bin"))
	assert.Error(t, err)
}

func TestLoadElements_TruncatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "elements.bin")
	require.NoError(t, os.WriteFile(path, []byte{0x01, 0x00}, 0o644))
	_, err := LoadElements(path)
	require.Error(t, err)
	storeErr, ok := err.(*errs.StoreError)
	require.True(t, ok)
	assert.True(t, storeErr.Recoverable)
}
