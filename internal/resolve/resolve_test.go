package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codelens-dev/codelens/internal/globalindex"
	"github.com/codelens-dev/codelens/internal/types"
)

func buildIndex() *globalindex.Index {
	ix := globalindex.New()
	ix.Build([]types.Element{
		{Kind: types.KindFile, RelativePath: "pkg/foo.py"},
		{Kind: types.KindFile, RelativePath: "pkg/bar.py"},
		{Kind: types.KindFunction, Name: "helper", RelativePath: "pkg/bar.py", ID: "function_1"},
	})
	return ix
}

func TestModuleResolver_AbsoluteImport(t *testing.T) {
	r := &ModuleResolver{Index: buildIndex()}
	file, ok := r.ResolveImport(types.ImportInfo{Module: "pkg.bar"}, "pkg/foo.py")
	require.True(t, ok)
	assert.Equal(t, "pkg/bar.py", file)
}

func TestModuleResolver_RelativeImport(t *testing.T) {
	r := &ModuleResolver{Index: buildIndex()}
	file, ok := r.ResolveImport(types.ImportInfo{Module: "bar", Level: 1}, "pkg/foo.py")
	require.True(t, ok)
	assert.Equal(t, "pkg/bar.py", file)
}

func TestModuleResolver_UnresolvedImport(t *testing.T) {
	r := &ModuleResolver{Index: buildIndex()}
	_, ok := r.ResolveImport(types.ImportInfo{Module: "nope.missing"}, "pkg/foo.py")
	assert.False(t, ok)
}

func TestSymbolResolver_ResolveInContext(t *testing.T) {
	r := &SymbolResolver{Index: buildIndex()}
	all := r.Resolve("helper")
	require.Len(t, all, 1)

	narrowed := r.ResolveInContext("helper", []string{"pkg.bar"})
	require.Len(t, narrowed, 1)

	empty := r.ResolveInContext("helper", []string{"other.module"})
	assert.Empty(t, empty)

	unfiltered := r.ResolveInContext("helper", nil)
	assert.Len(t, unfiltered, 1)
}
