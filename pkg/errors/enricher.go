package errors

import (
	"errors"
	"regexp"
	"strings"

	"github.com/joe/romio/pkg/archive"
	"github.com/joe/romio/pkg/compression"
	"github.com/joe/romio/pkg/process"
)

// Enricher enriches standard errors with actionable suggestions.
type Enricher interface {
	Enrich(err error, affectedPath string) error
}

// NewEnricher creates a new Enricher with default pattern matcher and suggestion generator.
func NewEnricher() Enricher {
	return &enricher{
		matcher:   NewPatternMatcher(),
		generator: NewSuggestionGenerator(),
	}
}

// unexported variables.
var (
	//nolint:gochecknoglobals // Compiled regexes shared across all enricher instances
	pathExtractionPatterns = []*regexp.Regexp{
		// Unix/Linux paths (absolute and relative)
		regexp.MustCompile(`\b\w+\s+([./][^\s:]+):`),
		// Windows paths with backslashes
		regexp.MustCompile(`\b\w+\s+([A-Za-z]:\\[^\s:]+):`),
		// Windows paths with forward slashes
		regexp.MustCompile(`\b\w+\s+([A-Za-z]:/[^\s:]+):`),
	}

	//nolint:gochecknoglobals // Fixed sentinel table, checked in order
	sentinelCategories = []struct {
		target   error
		category ErrorCategory
	}{
		{archive.ErrEntryNotFound, CategoryMissingEntry},
		{archive.ErrInvalidEntry, CategoryInvalidEntry},
		{archive.ErrEntryAbandoned, CategoryInvalidEntry},
		{compression.ErrUnsupportedAlgorithm, CategoryCompression},
		{compression.ErrUnknownAlgorithm, CategoryCompression},
		{archive.ErrNoTool, CategoryExternalTool},
		{process.ErrInterrupted, CategoryInterrupted},
		{process.ErrProcessFailed, CategoryExternalTool},
		{archive.ErrUnknownFormat, CategoryPath},
	}
)

// enricher is the concrete implementation of Enricher.
type enricher struct {
	matcher   PatternMatcher
	generator SuggestionGenerator
}

// Enrich takes a standard error and enriches it with category and actionable suggestions.
// If the error is already an ActionableError, it is returned unchanged.
// If affectedPath is empty, the path is taken from the error itself.
// The returned error unwraps to err.
func (e *enricher) Enrich(err error, affectedPath string) error {
	var actionableErr ActionableError
	if errors.As(err, &actionableErr) {
		return actionableErr
	}

	errMsg := err.Error()

	if affectedPath == "" {
		affectedPath = extractPath(err)
	}

	category := classify(err)
	if category == CategoryUnknown {
		category = e.matcher.Match(errMsg)
	}

	return &actionableError{
		originalError: errMsg,
		category:      category,
		suggestions:   e.generator.Generate(category, affectedPath),
		affectedPath:  affectedPath,
		cause:         err,
	}
}

// classify maps wrapped sentinels to categories.
func classify(err error) ErrorCategory {
	for _, candidate := range sentinelCategories {
		if errors.Is(err, candidate.target) {
			return candidate.category
		}
	}

	return CategoryUnknown
}

// extractPath finds the path an error is about: the archive of a typed
// archive error, otherwise a path in a standard Go error message such as
//   - "open /path/to/file: permission denied"
//   - "stat C:\roms\set.zip: The system cannot find the file specified."
//
// Returns empty string if no path is found.
func extractPath(err error) string {
	var notFound *archive.EntryNotFoundError
	if errors.As(err, &notFound) {
		return notFound.Archive
	}

	var invalid *archive.InvalidEntryError
	if errors.As(err, &invalid) {
		return invalid.Archive
	}

	errorMsg := err.Error()

	for _, pattern := range pathExtractionPatterns {
		if matches := pattern.FindStringSubmatch(errorMsg); len(matches) > 1 {
			path := strings.TrimSpace(matches[1])
			if path != "" {
				return path
			}
		}
	}

	return ""
}
