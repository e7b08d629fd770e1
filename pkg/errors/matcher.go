package errors

import "strings"

// PatternMatcher matches error messages to categories using string patterns.
type PatternMatcher interface {
	Match(errorMsg string) ErrorCategory
}

// NewPatternMatcher creates a new PatternMatcher with predefined patterns.
// Rules are tried in order so a message matching several rules always gets
// the same category.
func NewPatternMatcher() PatternMatcher {
	return &patternMatcher{
		rules: []matchRule{
			{CategoryPermission, []string{"permission denied", "access denied", "operation not permitted"}},
			{CategoryDiskSpace, []string{"no space left on device", "disk full", "quota exceeded"}},
			{CategoryPath, []string{"no such file or directory", "file not found", "path does not exist", "cannot find the file"}},
			{CategoryExternalTool, []string{"executable file not found", "exited with code"}},
			{CategoryCompression, []string{"unsupported compression", "invalid header", "corrupt input", "checksum error"}},
			{CategoryCopy, []string{"short write", "input/output error", "i/o error", "unexpected eof", "size mismatch"}},
		},
	}
}

// matchRule assigns a category to messages containing any of its patterns.
type matchRule struct {
	category ErrorCategory
	patterns []string
}

// patternMatcher is the concrete implementation of PatternMatcher.
type patternMatcher struct {
	rules []matchRule
}

// Match returns the error category based on pattern matching.
func (m *patternMatcher) Match(errorMsg string) ErrorCategory {
	lowerMsg := strings.ToLower(errorMsg)

	for _, rule := range m.rules {
		for _, pattern := range rule.patterns {
			if strings.Contains(lowerMsg, pattern) {
				return rule.category
			}
		}
	}

	return CategoryUnknown
}
