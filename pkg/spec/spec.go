// Package spec defines the readable and writable item contracts shared by
// loose files and archive entries, together with their file-backed
// implementations.
package spec

import (
	"io"
	"path/filepath"
	"sync/atomic"

	"github.com/joe/romio/pkg/filetimes"
)

// Addressable is anything with an absolute, normalized path.
type Addressable interface {
	Path() string
	// DisplayName is computed on first use and never recomputed.
	DisplayName() string
}

// AddressableChild is an item owned by another addressable, such as an
// archive entry. Its effective path is the parent path joined with the
// relative name.
type AddressableChild interface {
	Addressable
	Parent() Addressable
	RelativeName() string
}

// SourceSpec is a single-use readable item.
type SourceSpec interface {
	Addressable
	Name() string
	Size() int64
	FileTimes() filetimes.FileTimes
	// OpenStream returns the item's stream. Repeated calls return the same stream.
	OpenStream() (io.Reader, error)
	// Close releases the stream if one was opened. Closing twice is a no-op.
	Close() error
}

// DestinationSpec is a single-use writable item.
type DestinationSpec interface {
	Addressable
	Name() string
	// OpenStream returns the item's stream. Repeated calls return the same stream.
	OpenStream() (io.Writer, error)
	// Close finishes the item and applies the associated source's times.
	Close() error
}

// ChildPath joins a parent path with a slash-separated relative name using
// the host separator.
func ChildPath(parent Addressable, relativeName string) string {
	return filepath.Join(parent.Path(), filepath.FromSlash(relativeName))
}

// MemoName caches a display name computed on first use.
// Concurrent first calls may both compute it; the value is identical either way.
type MemoName struct {
	value atomic.Pointer[string]
}

// Get returns the cached name, computing it with compute on first use.
func (m *MemoName) Get(compute func() string) string {
	if cached := m.value.Load(); cached != nil {
		return *cached
	}

	name := compute()
	m.value.CompareAndSwap(nil, &name)

	return *m.value.Load()
}

// AbsPath normalizes a caller-supplied path into the absolute, cleaned form
// stored by Addressable items.
func AbsPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}

	return abs
}
