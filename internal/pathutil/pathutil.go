// Package pathutil provides path joining rooted at the overlay prefix,
// rejecting any path that would escape it.
package pathutil

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Join joins prefix with an overlay-relative path (which must begin with
// "/"), rejecting any result that would escape prefix via ".." segments.
func Join(prefix, relPath string) (string, error) {
	cleanedPrefix := filepath.Clean(prefix)
	joined := filepath.Join(cleanedPrefix, relPath)
	if joined != cleanedPrefix && !strings.HasPrefix(joined, cleanedPrefix+string(filepath.Separator)) {
		return "", fmt.Errorf("pathutil: %q escapes prefix %q", relPath, prefix)
	}
	return joined, nil
}

// Rel returns path relative to prefix, rooted at "/" (e.g. Rel("/", "/a/b")
// == "/a/b"; Rel("/opt/root", "/opt/root/etc/x") == "/etc/x").
func Rel(prefix, path string) (string, error) {
	rel, err := filepath.Rel(filepath.Clean(prefix), path)
	if err != nil {
		return "", fmt.Errorf("pathutil: relativize %q against %q: %w", path, prefix, err)
	}
	if rel == "." {
		return "/", nil
	}
	return "/" + filepath.ToSlash(rel), nil
}

// Parents returns the sequence of ancestor overlay-relative paths of
// relPath, from its immediate parent up to (but not including) "/",
// stopping the walk is the caller's responsibility once an ancestor does
// not exist on disk.
func Parents(relPath string) []string {
	var out []string
	cur := filepath.Dir(relPath)
	for cur != "/" && cur != "." {
		out = append(out, cur)
		cur = filepath.Dir(cur)
	}
	return out
}
