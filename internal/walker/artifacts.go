package walker

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// detectBuildOutputs scans root for language build-config files
// (package.json, tsconfig.json, Cargo.toml, pyproject.toml) and returns
// extra exclusion glob patterns for any custom output directory they
// declare, supplementing the config's static Exclude list. Adapted from
// internal/config BuildArtifactDetector; rust/python toml
// parsing is the one user of pelletier/go-toml/v2 in this module.
func detectBuildOutputs(root string) []string {
	var patterns []string
	patterns = append(patterns, detectJSOutputs(root)...)
	patterns = append(patterns, detectCargoOutputs(root)...)
	patterns = append(patterns, detectPyprojectOutputs(root)...)
	return dedupePatterns(patterns)
}

func detectJSOutputs(root string) []string {
	var patterns []string

	if data, err := os.ReadFile(filepath.Join(root, "package.json")); err == nil {
		var pkg map[string]any
		if json.Unmarshal(data, &pkg) == nil {
			if build, ok := pkg["build"].(map[string]any); ok {
				if outDir, ok := build["outDir"].(string); ok {
					patterns = append(patterns, "**/"+outDir+"/**")
				}
			}
		}
	}

	if data, err := os.ReadFile(filepath.Join(root, "tsconfig.json")); err == nil {
		var tsconfig map[string]any
		if json.Unmarshal(data, &tsconfig) == nil {
			if opts, ok := tsconfig["compilerOptions"].(map[string]any); ok {
				if outDir, ok := opts["outDir"].(string); ok {
					patterns = append(patterns, "**/"+outDir+"/**")
				}
			}
		}
	}

	for _, name := range []string{"vite.config.js", "vite.config.ts"} {
		data, err := os.ReadFile(filepath.Join(root, name))
		if err != nil {
			continue
		}
		content := string(data)
		idx := strings.Index(content, "outDir")
		if idx == -1 {
			continue
		}
		rest := content[idx+len("outDir"):]
		if colon := strings.Index(rest, ":"); colon != -1 {
			rest = rest[colon+1:]
		}
		for _, quote := range []string{"'", "\""} {
			parts := strings.SplitN(rest, quote, 3)
			if len(parts) >= 3 {
				if dir := strings.TrimSpace(parts[1]); dir != "" {
					patterns = append(patterns, "**/"+dir+"/**")
				}
				break
			}
		}
	}
	return patterns
}

func detectCargoOutputs(root string) []string {
	data, err := os.ReadFile(filepath.Join(root, "Cargo.toml"))
	if err != nil {
		return nil
	}
	var cargo map[string]any
	if toml.Unmarshal(data, &cargo) != nil {
		return nil
	}
	var patterns []string
	if profile, ok := cargo["profile"].(map[string]any); ok {
		if release, ok := profile["release"].(map[string]any); ok {
			if dir, ok := release["target-dir"].(string); ok {
				patterns = append(patterns, "**/"+dir+"/**")
			}
		}
	}
	return patterns
}

func detectPyprojectOutputs(root string) []string {
	data, err := os.ReadFile(filepath.Join(root, "pyproject.toml"))
	if err != nil {
		return nil
	}
	var pyproject map[string]any
	if toml.Unmarshal(data, &pyproject) != nil {
		return nil
	}
	var patterns []string
	if tool, ok := pyproject["tool"].(map[string]any); ok {
		if poetry, ok := tool["poetry"].(map[string]any); ok {
			if build, ok := poetry["build"].(map[string]any); ok {
				if dir, ok := build["target-dir"].(string); ok {
					patterns = append(patterns, "**/"+dir+"/**")
				}
			}
		}
	}
	return patterns
}

func dedupePatterns(patterns []string) []string {
	seen := make(map[string]bool, len(patterns))
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}
