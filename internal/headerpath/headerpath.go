// Package headerpath computes the include spelling used to reference a
// source header from a generated mock header.
package headerpath

import (
	"path/filepath"
	"strings"
)

// IncludePath picks the path written into the generated #include directive.
// Preference order: the shortest relative path from any include directory
// (fewest components wins), then the path relative to the output directory,
// then the header path as given. Separators normalize to forward slashes so
// generated headers are portable.
func IncludePath(header string, includeDirs []string, outputDir string) string {
	canonical := canonicalize(header)

	best := ""
	bestCount := -1
	for _, dir := range includeDirs {
		rel, err := filepath.Rel(canonicalize(dir), canonical)
		if err != nil {
			continue
		}
		count := len(strings.Split(rel, string(filepath.Separator)))
		if bestCount == -1 || count < bestCount {
			best, bestCount = rel, count
		}
	}
	if bestCount != -1 {
		return filepath.ToSlash(best)
	}

	if outputDir != "" {
		if rel, err := filepath.Rel(canonicalize(outputDir), canonical); err == nil {
			return filepath.ToSlash(rel)
		}
	}

	return filepath.ToSlash(header)
}

// canonicalize resolves the path as far as the filesystem allows, falling
// back to the lexical absolute path for targets that do not exist yet.
func canonicalize(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}
