// Package config holds the repository configuration: project root, index
// limits, include/exclude globs, watch and search tuning, and the KDL
// config file loader.
package config

import (
	"os"
	"path/filepath"
)

// Config is the full repository configuration.
type Config struct {
	Version int
	Project Project
	Index   Index
	Watch   Watch
	Search  Search
	Include []string
	Exclude []string
}

// Project names the repository root and a display name.
type Project struct {
	Root string
	Name string
}

// Index tunes the initial walk.
type Index struct {
	MaxFileSize      int64
	MaxFileCount     int
	FollowSymlinks   bool
	RespectGitignore bool
	ParallelWorkers  int // 0 = auto-detect (runtime.NumCPU)
}

// Watch tunes the file-system watcher's debounce behaviour.
type Watch struct {
	Enabled       bool
	InitialPollMs int // initial poll before watches are considered live
	DebounceMs    int // debounce tick coalescing burst events
}

// Search tunes the BM25 index and Snapshot RPC result limits.
type Search struct {
	Stem       bool // opt-in porter2 stemming; default off, see DESIGN.md
	MaxResults int
}

// Default returns the configuration defaults, with Project.Root set to
// root (made absolute).
func Default(root string) *Config {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		absRoot = root
	}
	return &Config{
		Version: 1,
		Project: Project{Root: absRoot, Name: filepath.Base(absRoot)},
		Index: Index{
			MaxFileSize:      10 * 1024 * 1024,
			MaxFileCount:     50000,
			FollowSymlinks:   false,
			RespectGitignore: true,
			ParallelWorkers:  0,
		},
		Watch: Watch{
			Enabled:       true,
			InitialPollMs: 500,
			DebounceMs:    200,
		},
		Search: Search{
			Stem:       false,
			MaxResults: 50,
		},
		Include: []string{"**/*"},
		Exclude: []string{
			"**/.git/**", "**/node_modules/**", "**/.codelens/**",
			"**/target/**", "**/dist/**", "**/build/**", "**/vendor/**",
		},
	}
}

// Load returns the configuration for root: Default(root) overlaid with
// values found in root/.codelens.kdl, if that file exists.
func Load(root string) (*Config, error) {
	cfg := Default(root)
	kdlPath := filepath.Join(cfg.Project.Root, ".codelens.kdl")
	if _, err := os.Stat(kdlPath); os.IsNotExist(err) {
		return cfg, nil
	}
	return loadKDL(kdlPath, cfg)
}
