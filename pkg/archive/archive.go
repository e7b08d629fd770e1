// Package archive implements iteration over, and creation of, archive
// containers holding ROM files.
//
// Sources are pull-based: Next yields one entry at a time in the
// container's physical order and io.EOF once the container is exhausted.
// A name filter only drops entries, it never reorders them. Three backend
// families exist behind the same interfaces: zip (random access), tar
// wrapped by any compression algorithm (forward only) and external tools
// (7-Zip, UnRAR) whose single extraction stream is split into bounded
// per-entry views.
package archive

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/joe/romio/pkg/compression"
	"github.com/joe/romio/pkg/spec"
)

// Exported variables.
var (
	ErrEntryAbandoned = errors.New("archive entry stream abandoned")
	ErrEntryNotFound  = errors.New("archive entry not found")
	ErrInvalidEntry   = errors.New("invalid archive entry")
	ErrNoTool         = errors.New("no external tool available")
	ErrUnknownFormat  = errors.New("unknown archive format")
)

// Kind identifies an archive container format.
type Kind int

// Kinds.
const (
	KindUnknown Kind = iota
	KindZip
	KindTar
	KindRar
	KindSevenZip
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindZip:
		return "zip"
	case KindTar:
		return "tar"
	case KindRar:
		return "rar"
	case KindSevenZip:
		return "7z"
	case KindUnknown:
		return "unknown"
	default:
		return "unknown"
	}
}

// Source iterates over the entries of one opened container.
type Source interface {
	spec.Addressable
	Kind() Kind
	// Next returns the next entry in physical order, io.EOF when there are no
	// more entries, or *EntryNotFoundError when the container is exhausted
	// and requested names were never seen.
	Next() (InternalSource, error)
	// Close releases the container. Closing twice is a no-op.
	Close() error
}

// InternalSource is one readable entry of a Source.
type InternalSource interface {
	spec.SourceSpec
	spec.AddressableChild
}

// Destination creates entries in one container.
type Destination interface {
	spec.Addressable
	Kind() Kind
	// CreateEntry starts a new entry named name whose bytes and times come
	// from source. Containers that write sequentially finish the previous
	// entry first.
	CreateEntry(name string, source spec.SourceSpec) (InternalDestination, error)
	// Close finishes the container. Closing twice is a no-op.
	Close() error
}

// InternalDestination is one writable entry of a Destination.
type InternalDestination interface {
	spec.DestinationSpec
	spec.AddressableChild
}

// Options configures how containers are opened and created.
type Options struct {
	// Names restricts a Source to these entries. Empty means every entry.
	Names []string
	// Tools locates the external programs for process-backed containers.
	Tools Tools
	// ForceSevenZip reads every container 7-Zip understands through 7-Zip.
	ForceSevenZip bool
	// ForceUnrar reads RAR containers through UnRAR only.
	ForceUnrar bool
	// Compression wraps tar destinations. Nil picks it from the file extension.
	Compression *compression.Algorithm
	// Logger receives debug output. The zero value discards it.
	Logger zerolog.Logger
}

// EntryNotFoundError lists requested names a container did not hold.
type EntryNotFoundError struct {
	Archive string
	Names   []string
}

// Error implements the error interface.
func (e *EntryNotFoundError) Error() string {
	return fmt.Sprintf("%s in %s: %s", ErrEntryNotFound, e.Archive, strings.Join(e.Names, ", "))
}

// Is makes errors.Is(err, ErrEntryNotFound) match.
func (e *EntryNotFoundError) Is(target error) bool {
	return target == ErrEntryNotFound
}

// InvalidEntryError reports a requested entry that is not a regular file.
type InvalidEntryError struct {
	Archive string
	Name    string
	Reason  string
}

// Error implements the error interface.
func (e *InvalidEntryError) Error() string {
	return fmt.Sprintf("%s %s in %s: %s", ErrInvalidEntry, e.Name, e.Archive, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidEntry) match.
func (e *InvalidEntryError) Is(target error) bool {
	return target == ErrInvalidEntry
}
