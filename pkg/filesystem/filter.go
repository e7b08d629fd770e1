package filesystem

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// FileFilter decides which discovered files are items.
type FileFilter interface {
	// ShouldInclude returns true if the file at the given relative path should be included
	ShouldInclude(relativePath string) bool
}

// GlobFilter implements FileFilter using glob patterns
type GlobFilter struct {
	normalizedPattern string
	isEmpty           bool
}

// NewGlobFilter creates a new GlobFilter with the given pattern
// Empty pattern matches all files
func NewGlobFilter(pattern string) *GlobFilter {
	normalized := strings.ToLower(pattern)

	return &GlobFilter{
		normalizedPattern: normalized,
		isEmpty:           pattern == "",
	}
}

// ValidatePattern reports a syntax error in a glob pattern.
func ValidatePattern(pattern string) error {
	if !doublestar.ValidatePattern(pattern) {
		return fmt.Errorf("%w: %q", doublestar.ErrBadPattern, pattern)
	}

	return nil
}

// ShouldInclude returns true if the file should be included based on the glob pattern
// Case-insensitive matching
func (f *GlobFilter) ShouldInclude(relativePath string) bool {
	if f.isEmpty {
		return true
	}

	normalizedPath := strings.ToLower(relativePath)

	// Use doublestar for glob matching with Fish-style patterns
	matched, err := doublestar.Match(f.normalizedPattern, normalizedPath)
	if err != nil {
		// If pattern is invalid, don't match
		return false
	}

	return matched
}

// Discover returns the regular files below root accepted by filter, in walk
// order. A nil filter accepts everything.
func Discover(root string, filter FileFilter) ([]FileInfo, error) {
	scanner := Scan(root)
	defer scanner.Close()

	var files []FileInfo

	for {
		file, ok := scanner.Next()
		if !ok {
			break
		}

		if !file.IsRegular {
			continue
		}

		if filter != nil && !filter.ShouldInclude(file.RelativePath) {
			continue
		}

		files = append(files, file)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	return files, nil
}
