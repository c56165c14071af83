package config

import (
	"bufio"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
)

// GitignoreParser parses .gitignore files (nested anywhere in the walked
// tree), the global git exclude file, and .git/info/exclude, and answers
// whether a relative path should be ignored. It skips a prefix/suffix
// fast-path cache since a walk's gitignore check runs once per visited
// path rather than on a hot search path.
type GitignoreParser struct {
	patterns []gitignorePattern
}

type gitignorePattern struct {
	// base is the repo-root-relative directory the pattern was declared
	// in ("" for the root .gitignore, the global exclude file, and
	// .git/info/exclude): the pattern only applies within that subtree,
	// matched against the path with base stripped off.
	base      string
	raw       string
	negate    bool
	directory bool
	absolute  bool
	compiled  *regexp.Regexp
}

// NewGitignoreParser returns an empty parser.
func NewGitignoreParser() *GitignoreParser {
	return &GitignoreParser{}
}

// LoadGitignore loads every ignore source git itself consults for
// rootPath: the global exclude file (core.excludesFile, falling back to
// $XDG_CONFIG_HOME/git/ignore or ~/.config/git/ignore), .git/info/exclude,
// and every .gitignore found anywhere under rootPath, each scoped to the
// directory it was found in so a nested .gitignore's patterns only apply
// within its own subtree. A missing source is not an error; patterns from
// sources discovered later (deeper .gitignore files, visited after their
// parents by filepath.Walk's top-down order) take precedence over earlier
// ones, matching ShouldIgnore's last-match-wins rule.
func (gp *GitignoreParser) LoadGitignore(rootPath string) error {
	gp.loadPatternFile(globalExcludesPath(), "")
	gp.loadPatternFile(filepath.Join(rootPath, ".git", "info", "exclude"), "")

	return filepath.Walk(rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if info.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if info.Name() != ".gitignore" {
			return nil
		}
		rel, relErr := filepath.Rel(rootPath, filepath.Dir(path))
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			rel = ""
		}
		gp.loadPatternFile(path, rel)
		return nil
	})
}

func (gp *GitignoreParser) loadPatternFile(path, base string) {
	if path == "" {
		return
	}
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		p := parseGitignoreLine(line)
		p.base = base
		gp.patterns = append(gp.patterns, p)
	}
}

// globalExcludesPath resolves the path to git's global exclude file, the
// same lookup chain the original implementation's walker gets for free
// from the `ignore` crate's git_global(true) option: core.excludesFile if
// git reports one, else $XDG_CONFIG_HOME/git/ignore, else
// ~/.config/git/ignore.
func globalExcludesPath() string {
	if out, err := exec.Command("git", "config", "--global", "core.excludesFile").Output(); err == nil {
		if p := strings.TrimSpace(string(out)); p != "" {
			return expandHome(p)
		}
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "git", "ignore")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "git", "ignore")
	}
	return ""
}

func expandHome(p string) string {
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[2:])
		}
	}
	return p
}

func parseGitignoreLine(line string) gitignorePattern {
	p := gitignorePattern{}
	if strings.HasPrefix(line, "!") {
		p.negate = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		p.directory = true
		line = strings.TrimSuffix(line, "/")
	}
	if strings.HasPrefix(line, "/") {
		p.absolute = true
		line = line[1:]
	}
	p.raw = line
	if strings.ContainsAny(line, "*?[") {
		p.compiled = globToRegex(line)
	}
	return p
}

func globToRegex(pattern string) *regexp.Regexp {
	regex := regexp.QuoteMeta(pattern)
	regex = strings.ReplaceAll(regex, `\*`, `.*`)
	regex = strings.ReplaceAll(regex, `\?`, `.`)
	regex = strings.ReplaceAll(regex, `\[`, `[`)
	regex = strings.ReplaceAll(regex, `\]`, `]`)
	compiled, err := regexp.Compile("^" + regex + "$")
	if err != nil {
		return nil
	}
	return compiled
}

// ShouldIgnore reports whether path (forward-slash, repo-root relative)
// matches the parser's patterns, honouring negation (last match wins) and
// each pattern's declaring directory (a nested .gitignore's patterns only
// apply within its own subtree).
func (gp *GitignoreParser) ShouldIgnore(path string, isDir bool) bool {
	path = filepath.ToSlash(path)
	ignored := false
	for _, p := range gp.patterns {
		scoped, ok := p.scopedPath(path)
		if !ok {
			continue
		}
		if p.matches(scoped, isDir) {
			ignored = !p.negate
		}
	}
	return ignored
}

// scopedPath returns path relative to p.base, if path is within p.base's
// subtree (or p.base is the root), else ("", false).
func (p gitignorePattern) scopedPath(path string) (string, bool) {
	if p.base == "" {
		return path, true
	}
	if path == p.base {
		return "", true
	}
	if rest, ok := strings.CutPrefix(path, p.base+"/"); ok {
		return rest, true
	}
	return "", false
}

func (p gitignorePattern) matches(path string, isDir bool) bool {
	if p.directory {
		if isDir {
			return p.matchOne(path) || strings.HasPrefix(path, p.raw+"/")
		}
		return strings.HasPrefix(path, p.raw+"/")
	}
	if p.absolute {
		return p.matchOne(path)
	}
	if p.matchOne(path) {
		return true
	}
	parts := strings.Split(path, "/")
	for i := 1; i < len(parts); i++ {
		if p.matchOne(strings.Join(parts[i:], "/")) {
			return true
		}
	}
	return false
}

func (p gitignorePattern) matchOne(path string) bool {
	if p.compiled != nil {
		return p.compiled.MatchString(path)
	}
	if matched, _ := filepath.Match(p.raw, path); matched {
		return true
	}
	return p.raw == path
}
