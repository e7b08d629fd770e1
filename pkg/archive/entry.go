package archive

import (
	"io"
	"path"

	"github.com/rs/zerolog"

	"github.com/joe/romio/pkg/filetimes"
	"github.com/joe/romio/pkg/spec"
)

// entryBase carries the identity shared by every internal spec: the owning
// container and the normalized relative name.
type entryBase struct {
	parent  spec.Addressable
	name    string
	display spec.MemoName
}

// DisplayName returns the entry path as shown to users.
func (e *entryBase) DisplayName() string {
	return e.display.Get(e.Path)
}

// Name returns the relative name inside the container.
func (e *entryBase) Name() string {
	return e.name
}

// Parent returns the owning container.
func (e *entryBase) Parent() spec.Addressable {
	return e.parent
}

// Path returns the container path joined with the relative name.
func (e *entryBase) Path() string {
	return spec.ChildPath(e.parent, e.name)
}

// RelativeName returns the normalized name inside the container.
func (e *entryBase) RelativeName() string {
	return e.name
}

// sourceBase adds the readable metadata of a source entry.
type sourceBase struct {
	entryBase

	size  int64
	times filetimes.FileTimes
}

// BaseName returns the last path element of the entry name.
func (e *sourceBase) BaseName() string {
	return path.Base(e.name)
}

// FileTimes returns the times recorded in the container.
func (e *sourceBase) FileTimes() filetimes.FileTimes {
	return e.times
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (e *sourceBase) MarshalZerologObject(ev *zerolog.Event) {
	ev.Str("archive", e.parent.Path()).
		Str("entry", e.name).
		Int64("size", e.size).
		Object("times", e.times)
}

// Size returns the uncompressed size of the entry.
func (e *sourceBase) Size() int64 {
	return e.size
}

// guardedReader refuses reads once its container has moved past the entry.
type guardedReader struct {
	r     io.Reader
	stale bool
}

func (g *guardedReader) Read(p []byte) (int, error) {
	if g.stale {
		return 0, ErrEntryAbandoned
	}

	return g.r.Read(p)
}

func newSourceBase(parent spec.Addressable, name string, size int64, times filetimes.FileTimes) sourceBase {
	return sourceBase{
		entryBase: entryBase{parent: parent, name: name},
		size:      size,
		times:     times,
	}
}

type containerBase struct {
	path    string
	display spec.MemoName
}

// DisplayName returns the container path as shown to users.
func (c *containerBase) DisplayName() string {
	return c.display.Get(func() string { return c.path })
}

// Path returns the absolute container path.
func (c *containerBase) Path() string {
	return c.path
}
