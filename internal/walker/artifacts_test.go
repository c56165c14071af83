package walker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectBuildOutputs_CargoTargetDir(t *testing.T) {
	dir := t.TempDir()
	content := "[profile.release]\ntarget-dir = \"out\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Cargo.toml"), []byte(content), 0o644))

	patterns := detectBuildOutputs(dir)
	assert.Contains(t, patterns, "**/out/**")
}

func TestDetectBuildOutputs_PyprojectTargetDir(t *testing.T) {
	dir := t.TempDir()
	content := "[tool.poetry.build]\ntarget-dir = \"dist-py\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pyproject.toml"), []byte(content), 0o644))

	patterns := detectBuildOutputs(dir)
	assert.Contains(t, patterns, "**/dist-py/**")
}

func TestDetectBuildOutputs_PackageJSONOutDir(t *testing.T) {
	dir := t.TempDir()
	content := `{"build": {"outDir": "out-js"}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(content), 0o644))

	patterns := detectBuildOutputs(dir)
	assert.Contains(t, patterns, "**/out-js/**")
}

func TestDetectBuildOutputs_NoConfigFilesReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	assert.Empty(t, detectBuildOutputs(dir))
}

func TestDedupePatterns(t *testing.T) {
	out := dedupePatterns([]string{"**/a/**", "**/a/**", "**/b/**"})
	assert.Equal(t, []string{"**/a/**", "**/b/**"}, out)
}
