package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codelens-dev/codelens/internal/extract"
	"github.com/codelens-dev/codelens/internal/parsing"
	"github.com/codelens-dev/codelens/internal/types"
)

const utilsSource = `def helper():
    return 1
`

const mainSource = `from a.utils import helper


class Animal:
    def speak(self):
        pass


class Dog(Animal):
    def run(self):
        helper()
        self.speak()
`

func buildFixtureGraph(t *testing.T) (*Graph, *parsing.Cache) {
	t.Helper()
	cache := parsing.New()

	utilsElems, err := extract.File(cache, types.LangPython, "/repo/a/utils.py", "a/utils.py", []byte(utilsSource))
	require.NoError(t, err)
	mainElems, err := extract.File(cache, types.LangPython, "/repo/a/main.py", "a/main.py", []byte(mainSource))
	require.NoError(t, err)

	var all []types.Element
	all = append(all, utilsElems...)
	all = append(all, mainElems...)

	g := New()
	g.BuildFromElements(all, cache)
	return g, cache
}

func findID(t *testing.T, g *Graph, name string) string {
	t.Helper()
	id := g.firstByName(name)
	require.NotEmpty(t, id, "no element named %s", name)
	return id
}

func nodeIDs(nodes []types.GraphNode) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}

func TestBuildFromElements_FileImportEdgeReachesImportingFile(t *testing.T) {
	g, _ := buildFixtureGraph(t)
	deps := g.GetDependents("a/utils.py")
	var hasImportingFile bool
	for _, n := range deps {
		if n.Kind == types.NodeFile {
			hasImportingFile = true
		}
	}
	assert.True(t, hasImportingFile, "main.py's file node should have an imports-edge to a/utils.py's file node")
}

func TestBuildFromElements_CrossFileCallEdge(t *testing.T) {
	g, _ := buildFixtureGraph(t)
	helperID := findID(t, g, "helper")
	runID := findID(t, g, "run")

	callers := g.FindCallers("helper")
	assert.Contains(t, nodeIDs(callers), runID)

	callees := g.FindCallees("run")
	assert.Contains(t, nodeIDs(callees), helperID)
}

func TestBuildFromElements_SameFileAttributeCallEdge(t *testing.T) {
	g, _ := buildFixtureGraph(t)
	runID := findID(t, g, "run")

	callers := g.FindCallers("speak")
	assert.Contains(t, nodeIDs(callers), runID)
}

func TestBuildFromElements_ImportEdge(t *testing.T) {
	g, _ := buildFixtureGraph(t)
	helperID := findID(t, g, "helper")

	deps := g.GetDependencies("a/main.py")
	assert.Contains(t, nodeIDs(deps), helperID)
}

func TestBuildFromElements_InheritanceEdge(t *testing.T) {
	g, _ := buildFixtureGraph(t)
	dogID := findID(t, g, "Dog")
	animalID := findID(t, g, "Animal")

	supers := g.GetSuperclasses("Dog")
	assert.Contains(t, nodeIDs(supers), animalID)

	subs := g.GetSubclasses("Animal")
	assert.Contains(t, nodeIDs(subs), dogID)
}

func TestRemoveFile_PurgesNodesAndEdges(t *testing.T) {
	g, _ := buildFixtureGraph(t)
	helperID := findID(t, g, "helper")

	g.RemoveFile("a/utils.py")

	_, ok := g.Element(helperID)
	assert.False(t, ok)
	assert.Empty(t, g.idsByFile("a/utils.py"))

	callees := nodeIDs(g.FindCallees("run"))
	assert.NotContains(t, callees, helperID)
	assert.Contains(t, callees, findID(t, g, "speak"))
}

func TestUpdateFile_ReplacesElements(t *testing.T) {
	g, cache := buildFixtureGraph(t)

	const updatedUtils = `def helper():
    return 2


def extra():
    return 3
`
	newElems, err := extract.File(cache, types.LangPython, "/repo/a/utils.py", "a/utils.py", []byte(updatedUtils))
	require.NoError(t, err)

	g.UpdateFile("a/utils.py", newElems, cache)

	extraID := g.firstByName("extra")
	assert.NotEmpty(t, extraID)

	// UpdateFile rebuilds only edges originating in a/utils.py; the
	// cross-file run -> helper edge dropped by RemoveFile is not re-derived.
	helperID := findID(t, g, "helper")
	assert.NotContains(t, nodeIDs(g.FindCallees("run")), helperID)
}

func TestStats_CountsNodesAndEdges(t *testing.T) {
	g, _ := buildFixtureGraph(t)
	stats := g.Stats()
	assert.Equal(t, 2, stats.FileCount)
	assert.Greater(t, stats.NodeCount, 0)
	assert.Greater(t, stats.DefinesEdges, 0)
	assert.Greater(t, stats.CallsEdges, 0)
	assert.Greater(t, stats.InheritsEdges, 0)
}

func TestAllElements_SortedByID(t *testing.T) {
	g, _ := buildFixtureGraph(t)
	all := g.AllElements()
	require.NotEmpty(t, all)
	for i := 1; i < len(all); i++ {
		assert.LessOrEqual(t, all[i-1].ID, all[i].ID)
	}
}
