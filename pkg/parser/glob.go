package parser

import (
	"fmt"
	"path/filepath"
	"sort"
)

// ExpandGlobs expands a list of file paths and glob patterns into a deduplicated
// list of matching file paths. Patterns that don't match any files are returned as-is
// (the caller should handle file-not-found errors).
func ExpandGlobs(patterns []string) ([]string, error) {
	return expand(patterns, true)
}

// MatchGlobs is ExpandGlobs without the literal fallback: only paths that
// exist are returned.
func MatchGlobs(patterns []string) ([]string, error) {
	return expand(patterns, false)
}

func expand(patterns []string, keepUnmatched bool) ([]string, error) {
	seen := make(map[string]bool)
	var result []string

	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			result = append(result, path)
		}
	}

	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}

		if len(matches) == 0 {
			if keepUnmatched {
				add(pattern)
			}
			continue
		}

		for _, match := range matches {
			add(match)
		}
	}

	// Sort for deterministic ordering
	sort.Strings(result)

	return result, nil
}

// ResolveSingle expands pattern and requires it to name exactly one file.
// Seeking is defined over a single file, so a pattern matching several is an
// error rather than a merge.
func ResolveSingle(pattern string) (string, error) {
	files, err := ExpandGlobs([]string{pattern})
	if err != nil {
		return "", err
	}
	if len(files) != 1 {
		return "", fmt.Errorf("%q matches %d files, expected exactly one", pattern, len(files))
	}
	return files[0], nil
}
