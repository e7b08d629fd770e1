// Package errors turns failures from scanning and rebuilding ROM sets into
// actionable messages.
//
// Errors are categorized first by the sentinel they wrap (missing archive
// entry, disabled compression, failed external tool, ...) and then by the
// wording of the underlying OS error. Each category carries suggestions the
// user can act on.
//
// Basic Usage:
//
//	enricher := errors.NewEnricher()
//	_, err := source.Next()
//	if err != nil {
//	    enriched := enricher.Enrich(err, source.Path())
//	    fmt.Println(enriched.Error())
//	    fmt.Println(errors.FormatSuggestions(enriched))
//	}
//
// The enricher extracts the affected path from the error when none is given:
//
//	err := errors.New("open /roms/set.zip: permission denied")
//	enriched := enricher.Enrich(err, "") // Path is /roms/set.zip
package errors

import "strings"

// Exported constants.
const (
	CategoryCompression  ErrorCategory = "compression"
	CategoryCopy         ErrorCategory = "copy"
	CategoryDiskSpace    ErrorCategory = "disk_space"
	CategoryExternalTool ErrorCategory = "external_tool"
	CategoryInterrupted  ErrorCategory = "interrupted"
	CategoryInvalidEntry ErrorCategory = "invalid_entry"
	CategoryMissingEntry ErrorCategory = "missing_entry"
	CategoryPath         ErrorCategory = "path"
	CategoryPermission   ErrorCategory = "permission"
	CategoryUnknown      ErrorCategory = "unknown"
)

// ActionableError represents an error with actionable suggestions for the user.
type ActionableError interface {
	error
	OriginalError() string
	Category() ErrorCategory
	Suggestions() []string
	AffectedPath() string
}

// NewActionableError creates a new ActionableError with the given details.
func NewActionableError(
	originalError string,
	category ErrorCategory,
	suggestions []string,
	affectedPath string,
) ActionableError {
	return &actionableError{
		originalError: originalError,
		category:      category,
		suggestions:   suggestions,
		affectedPath:  affectedPath,
	}
}

// ErrorCategory represents the type of error that occurred.
type ErrorCategory string

// FormatSuggestions formats the suggestions from an ActionableError as a bulleted list.
// Returns empty string if the error is nil or has no suggestions.
func FormatSuggestions(err error) string {
	if err == nil {
		return ""
	}

	actionable, ok := err.(ActionableError)
	if !ok {
		return ""
	}

	suggestions := actionable.Suggestions()
	if len(suggestions) == 0 {
		return ""
	}

	var builder strings.Builder
	for i, suggestion := range suggestions {
		if i > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString("  • ")
		builder.WriteString(suggestion)
	}

	return builder.String()
}

// actionableError is the concrete implementation of ActionableError.
type actionableError struct {
	originalError string
	category      ErrorCategory
	suggestions   []string
	affectedPath  string
	cause         error
}

// AffectedPath returns the file path affected by this error.
func (e *actionableError) AffectedPath() string {
	return e.affectedPath
}

// Category returns the error category.
func (e *actionableError) Category() ErrorCategory {
	return e.category
}

// Error implements the error interface.
func (e *actionableError) Error() string {
	return e.originalError
}

// OriginalError returns the original error message.
func (e *actionableError) OriginalError() string {
	return e.originalError
}

// Suggestions returns the list of actionable suggestions.
func (e *actionableError) Suggestions() []string {
	return e.suggestions
}

// Unwrap returns the enriched error, if any.
func (e *actionableError) Unwrap() error {
	return e.cause
}
