// Package filesystem discovers the loose files and archives under a root
// directory.
package filesystem

import (
	"time"
)

// FileScanner is an iterator over files in a directory.
// It provides a simple Next pattern for traversing directory contents.
type FileScanner interface {
	// Next advances to the next file and returns its info.
	// Returns (FileInfo{}, false) when done or on error.
	// Check Err() after Next() returns false to distinguish between end-of-scan and error.
	Next() (FileInfo, bool)

	// Err returns any error that occurred during scanning.
	// Should be checked after Next() returns false.
	Err() error

	// Close stops the walk early. Closing a finished scanner is a no-op.
	Close()
}

// FileInfo contains metadata about a file.
type FileInfo struct {
	// Path is the absolute path
	Path string

	// RelativePath is the slash-separated path relative to the scan root
	RelativePath string

	// Size is the file size in bytes
	Size int64

	// ModTime is the modification time
	ModTime time.Time

	// IsDir indicates if this is a directory
	IsDir bool

	// IsRegular indicates a regular file (not a directory, link or device)
	IsRegular bool
}

// Scan returns an iterator over every item below root, in lexical walk order.
func Scan(root string) FileScanner {
	return newRealFileScanner(root)
}
