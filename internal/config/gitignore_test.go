package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateGitEnv points git's global config and XDG/home lookups at an
// empty directory so globalExcludesPath never picks up whatever the host
// running the tests happens to have configured.
func isolateGitEnv(t *testing.T) {
	t.Helper()
	empty := t.TempDir()
	t.Setenv("GIT_CONFIG_GLOBAL", filepath.Join(empty, "gitconfig-missing"))
	t.Setenv("HOME", empty)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(empty, "xdg-missing"))
}

func TestGitignore_SimplePatternAndNegation(t *testing.T) {
	isolateGitEnv(t)
	dir := t.TempDir()
	content := "*.log\n!keep.log\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(content), 0o644))

	gp := NewGitignoreParser()
	require.NoError(t, gp.LoadGitignore(dir))

	assert.True(t, gp.ShouldIgnore("debug.log", false))
	assert.False(t, gp.ShouldIgnore("keep.log", false))
	assert.False(t, gp.ShouldIgnore("main.go", false))
}

func TestGitignore_DirectoryPattern(t *testing.T) {
	isolateGitEnv(t)
	dir := t.TempDir()
	content := "node_modules/\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(content), 0o644))

	gp := NewGitignoreParser()
	require.NoError(t, gp.LoadGitignore(dir))

	assert.True(t, gp.ShouldIgnore("node_modules", true))
	assert.True(t, gp.ShouldIgnore("node_modules/lib.js", false))
	assert.False(t, gp.ShouldIgnore("node_modules_other", true))
}

func TestGitignore_MissingFileIsNotAnError(t *testing.T) {
	isolateGitEnv(t)
	gp := NewGitignoreParser()
	assert.NoError(t, gp.LoadGitignore(t.TempDir()))
	assert.False(t, gp.ShouldIgnore("anything", false))
}

func TestGitignore_NestedMatch(t *testing.T) {
	isolateGitEnv(t)
	dir := t.TempDir()
	content := "*.tmp\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(content), 0o644))

	gp := NewGitignoreParser()
	require.NoError(t, gp.LoadGitignore(dir))
	assert.True(t, gp.ShouldIgnore("nested/dir/file.tmp", false))
}

func TestGitignore_AbsolutePatternDoesNotMatchSubdirectory(t *testing.T) {
	isolateGitEnv(t)
	dir := t.TempDir()
	content := "/build\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(content), 0o644))

	gp := NewGitignoreParser()
	require.NoError(t, gp.LoadGitignore(dir))
	assert.True(t, gp.ShouldIgnore("build", true))
	assert.False(t, gp.ShouldIgnore("public/build", true))
}

func TestGitignore_CommentsAndBlankLinesSkipped(t *testing.T) {
	isolateGitEnv(t)
	dir := t.TempDir()
	content := "# comment\n\n*.log\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(content), 0o644))

	gp := NewGitignoreParser()
	require.NoError(t, gp.LoadGitignore(dir))
	require.Len(t, gp.patterns, 1)
	assert.True(t, gp.ShouldIgnore("debug.log", false))
}

func TestGitignore_NestedGitignoreScopedToSubtree(t *testing.T) {
	isolateGitEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", ".gitignore"), []byte("*.local\n"), 0o644))

	gp := NewGitignoreParser()
	require.NoError(t, gp.LoadGitignore(dir))

	assert.True(t, gp.ShouldIgnore("sub/settings.local", false))
	assert.False(t, gp.ShouldIgnore("settings.local", false), "pattern declared under sub/ must not apply at the root")
}

func TestGitignore_GlobalExcludeFileApplies(t *testing.T) {
	isolateGitEnv(t)
	dir := t.TempDir()

	// isolateGitEnv already pointed HOME at an empty dir and XDG_CONFIG_HOME
	// at a path under it that doesn't exist; populate the ~/.config/git/ignore
	// fallback globalExcludesPath resolves to once XDG_CONFIG_HOME is unset.
	home := os.Getenv("HOME")
	t.Setenv("XDG_CONFIG_HOME", "")
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".config", "git"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(home, ".config", "git", "ignore"), []byte("*.swp\n"), 0o644))

	gp := NewGitignoreParser()
	require.NoError(t, gp.LoadGitignore(dir))
	assert.True(t, gp.ShouldIgnore("scratch.swp", false))
}
