package globalindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codelens-dev/codelens/internal/types"
)

func TestModulePath(t *testing.T) {
	assert.Equal(t, "pkg.foo", ModulePath("pkg/foo.py"))
	assert.Equal(t, "pkg", ModulePath("pkg/__init__.py"))
	assert.Equal(t, "main", ModulePath("main.go"))
}

func TestIndex_BuildAndLookup(t *testing.T) {
	ix := New()
	ix.Build([]types.Element{
		{Kind: types.KindFile, RelativePath: "pkg/foo.py"},
		{Kind: types.KindFunction, Name: "helper", RelativePath: "pkg/foo.py", ID: "function_1"},
	})

	module, ok := ix.FileToModule("pkg/foo.py")
	require.True(t, ok)
	assert.Equal(t, "pkg.foo", module)

	file, ok := ix.ModuleToFile("pkg.foo")
	require.True(t, ok)
	assert.Equal(t, "pkg/foo.py", file)

	exports := ix.Exports("helper")
	require.Len(t, exports, 1)
	assert.Equal(t, "function_1", exports[0].ElementID)

	files, symbols := ix.Stats()
	assert.Equal(t, 1, files)
	assert.Equal(t, 1, symbols)
}

func TestIndex_RemoveFile(t *testing.T) {
	ix := New()
	ix.Build([]types.Element{
		{Kind: types.KindFile, RelativePath: "pkg/foo.py"},
		{Kind: types.KindFunction, Name: "helper", RelativePath: "pkg/foo.py", ID: "function_1"},
	})

	ix.RemoveFile("pkg/foo.py")

	_, ok := ix.FileToModule("pkg/foo.py")
	assert.False(t, ok)
	assert.Empty(t, ix.Exports("helper"))

	files, symbols := ix.Stats()
	assert.Equal(t, 0, files)
	assert.Equal(t, 0, symbols)
}
