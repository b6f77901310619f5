// Package fswalk discovers the Go source files one generation run
// operates on and maps each of them to its companion output path.
package fswalk

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// SourceFile stores absolute and root-relative paths for one Go file.
type SourceFile struct {
	AbsPath string
	RelPath string
}

// normalizePattern returns a usable glob and defaults to **/*.go.
func normalizePattern(pattern string) string {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return "**/*.go"
	}
	return filepath.ToSlash(pattern)
}

// skipDir reports whether a directory never holds generation inputs:
// vendored code, testdata, and dot or underscore prefixed trees.
func skipDir(name string) bool {
	if name == "vendor" || name == "testdata" {
		return true
	}
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

// DiscoverSources finds Go files under root matching the glob pattern.
// Test files and previously generated companions are never inputs.
func DiscoverSources(root string, pattern string, suffix string) ([]SourceFile, error) {
	root = filepath.Clean(root)
	matcher := normalizePattern(pattern)

	var files []SourceFile
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if path != root && skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		base := d.Name()
		if !strings.HasSuffix(base, ".go") ||
			strings.HasSuffix(base, "_test.go") ||
			strings.HasSuffix(base, suffix+".go") {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("compute relative path for %q: %w", path, err)
		}

		matched, err := doublestar.PathMatch(matcher, filepath.ToSlash(relPath))
		if err != nil {
			return fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}
		if !matched {
			return nil
		}

		files = append(files, SourceFile{
			AbsPath: path,
			RelPath: relPath,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].RelPath < files[j].RelPath
	})

	return files, nil
}

// CompanionPath maps a source path to the generated sibling file:
// pkg/errors.go becomes pkg/errors<suffix>.go.
func CompanionPath(path string, suffix string) string {
	return strings.TrimSuffix(path, ".go") + suffix + ".go"
}

// EnsureParentDir creates the parent directory tree for a target file path.
func EnsureParentDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
