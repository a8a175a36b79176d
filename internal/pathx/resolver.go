// Package pathx expands user-supplied paths and glob patterns into a
// concrete set of candidate files.
package pathx

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrPattern is returned when a glob pattern is syntactically malformed.
var ErrPattern = errors.New("malformed glob pattern")

// Resolver expands patterns relative to a base directory. The zero value
// resolves against the process working directory.
type Resolver struct {
	// BaseDir anchors relative patterns. Empty means the current directory.
	BaseDir string
	// Supported decides whether a discovered file is a candidate. Nil
	// accepts everything. Only applied when walking directories, so an
	// explicitly named file is always returned.
	Supported func(path string) bool
}

// Resolve expands the given path/glob patterns into a deduplicated, sorted
// list of absolute paths of existing files. A leading "~/" expands to the
// user home directory before glob matching. Directories expand recursively
// to the supported files beneath them. A pattern matching nothing
// contributes no paths and is not an error; the caller decides whether an
// empty result is fatal.
func (r *Resolver) Resolve(patterns ...string) ([]string, error) {
	seen := make(map[string]struct{})
	var paths []string

	for _, pattern := range patterns {
		expanded, err := r.expandPattern(pattern)
		if err != nil {
			return nil, err
		}
		for _, match := range expanded {
			abs, err := filepath.Abs(match)
			if err != nil {
				return nil, fmt.Errorf("resolve %s: %w", match, err)
			}
			if _, dup := seen[abs]; dup {
				continue
			}
			seen[abs] = struct{}{}
			paths = append(paths, abs)
		}
	}

	sort.Strings(paths)
	return paths, nil
}

// expandPattern handles one pattern: home expansion, glob matching, then
// directory expansion of each match.
func (r *Resolver) expandPattern(pattern string) ([]string, error) {
	pattern, err := ExpandHome(pattern)
	if err != nil {
		return nil, err
	}
	if !filepath.IsAbs(pattern) && r.BaseDir != "" {
		pattern = filepath.Join(r.BaseDir, pattern)
	}

	// A literal existing path needs no glob semantics. This keeps names
	// containing glob metacharacters (e.g. "report[1].csv") addressable.
	if info, statErr := os.Stat(pattern); statErr == nil {
		if info.IsDir() {
			return r.walkDir(pattern)
		}
		return []string{pattern}, nil
	}

	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrPattern, pattern)
	}

	var paths []string
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil {
			continue // matched but vanished or unreadable; not a candidate
		}
		if info.IsDir() {
			sub, err := r.walkDir(match)
			if err != nil {
				return nil, err
			}
			paths = append(paths, sub...)
			continue
		}
		paths = append(paths, match)
	}
	return paths, nil
}

// walkDir collects supported regular files under dir recursively.
func (r *Resolver) walkDir(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if r.Supported != nil && !r.Supported(path) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory %s: %w", dir, err)
	}
	return paths, nil
}

// ExpandHome replaces a leading "~" or "~/" with the user's home directory.
// Other ~user forms are passed through untouched.
func ExpandHome(pattern string) (string, error) {
	if pattern != "~" && !strings.HasPrefix(pattern, "~/") {
		return pattern, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expand home directory: %w", err)
	}
	if pattern == "~" {
		return home, nil
	}
	return filepath.Join(home, pattern[2:]), nil
}
