// Package testhelpers provides fixture builders shared across the module's
// test suites: a fluent temp-directory repo builder and a test-sized config.
package testhelpers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/codelens-dev/codelens/internal/config"
)

// RepoBuilder accumulates files under a temp directory for use as an
// indexing fixture.
type RepoBuilder struct {
	t    *testing.T
	root string
}

// NewRepoBuilder returns a builder rooted at a fresh t.TempDir().
func NewRepoBuilder(t *testing.T) *RepoBuilder {
	t.Helper()
	return &RepoBuilder{t: t, root: t.TempDir()}
}

// AddFile writes content to root/relPath, creating parent directories as
// needed, and returns the builder for chaining.
func (b *RepoBuilder) AddFile(relPath, content string) *RepoBuilder {
	b.t.Helper()
	path := filepath.Join(b.root, relPath)
	require.NoError(b.t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(b.t, os.WriteFile(path, []byte(content), 0o644))
	return b
}

// Root returns the fixture's root directory.
func (b *RepoBuilder) Root() string { return b.root }

// TestConfig returns a config.Config tuned for fast, deterministic tests:
// gitignore disabled, initial watch delay and debounce shortened; size
// limits keep their defaults.
func TestConfig(root string) *config.Config {
	cfg := config.Default(root)
	cfg.Index.RespectGitignore = false
	cfg.Watch.InitialPollMs = 1
	cfg.Watch.DebounceMs = 20
	return cfg
}

// VerifyNoLeaks fails the test if any goroutines leaked past its end,
// ignoring the background goroutines the Go runtime and test harness itself
// start (stack traces, signal handling).
func VerifyNoLeaks(t *testing.T) {
	t.Helper()
	goleak.VerifyNone(t,
		goleak.IgnoreTopFunction("os/signal.signal_recv"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}
