package archive

import (
	"fmt"
	"os"

	"github.com/joe/romio/pkg/spec"
)

// DirectoryDestination writes entries as loose files below a directory.
type DirectoryDestination struct {
	containerBase

	closed bool
}

// CreateDirectory returns a destination rooted at path. The directory is
// created when the first entry is written.
func CreateDirectory(path string, _ Options) *DirectoryDestination {
	return &DirectoryDestination{containerBase: containerBase{path: spec.AbsPath(path)}}
}

// Close marks the destination finished. Entries close independently.
func (d *DirectoryDestination) Close() error {
	d.closed = true

	return nil
}

// CreateEntry prepares a loose file at path/name carrying source's times.
func (d *DirectoryDestination) CreateEntry(name string, source spec.SourceSpec) (InternalDestination, error) {
	if d.closed {
		return nil, fmt.Errorf("directory %s: %w", d.path, os.ErrClosed)
	}

	relative := NormalizeName(name)
	if relative == "" || relative == "." {
		return nil, &InvalidEntryError{Archive: d.path, Name: name, Reason: "empty name"}
	}

	entry := &directoryEntry{entryBase: entryBase{parent: d, name: relative}}
	entry.FileDestination = spec.CreateFile(entry.entryBase.Path(), source)

	return entry, nil
}

// Kind returns KindUnknown: a directory is not a container format.
func (d *DirectoryDestination) Kind() Kind {
	return KindUnknown
}

// directoryEntry is a loose file addressed relative to its directory.
type directoryEntry struct {
	*spec.FileDestination
	entryBase
}

// DisplayName resolves the ambiguity between the embedded types.
func (e *directoryEntry) DisplayName() string {
	return e.entryBase.DisplayName()
}

// Name returns the relative name.
func (e *directoryEntry) Name() string {
	return e.entryBase.Name()
}

// Path returns the file path.
func (e *directoryEntry) Path() string {
	return e.entryBase.Path()
}
