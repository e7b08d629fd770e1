// Package filetimes provides the immutable timestamp triple carried by every
// readable item and applied to every written item.
//
// All instants are truncated to microsecond resolution on construction,
// which is the finest resolution shared by the filesystems and archive
// formats this module writes to. Coarser resolutions are derived from an
// existing FileTimes by further truncation only.
package filetimes

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Exported constants.
const (
	// Resolution is the resolution every stored instant is truncated to.
	Resolution = time.Microsecond
)

// FileTimes holds the modified, accessed and created instants of an item.
// A zero time.Time means the instant is unknown.
type FileTimes struct {
	modified time.Time
	accessed time.Time
	created  time.Time
}

// New creates a FileTimes from explicit instants. Zero values are treated as absent.
func New(modified, accessed, created time.Time) FileTimes {
	return FileTimes{
		modified: truncate(modified, Resolution),
		accessed: truncate(accessed, Resolution),
		created:  truncate(created, Resolution),
	}
}

// Modified creates a FileTimes that only knows the modification instant.
func Modified(modified time.Time) FileTimes {
	return New(modified, time.Time{}, time.Time{})
}

// FromInfo captures the times of a filesystem item. Access and creation
// times are only available on platforms that expose them.
func FromInfo(info os.FileInfo) FileTimes {
	accessed, created := platformTimes(info)

	return New(info.ModTime(), accessed, created)
}

// Stat reads the current times of the item at path.
func Stat(path string) (FileTimes, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileTimes{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	return FromInfo(info), nil
}

// ParseLocal parses a date/time printed without a zone (as archive tools do)
// in the zone captured by LocalZone.
func ParseLocal(layout, value string) (time.Time, error) {
	parsed, err := time.ParseInLocation(layout, strings.TrimSpace(value), LocalZone())
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse time %q: %w", value, err)
	}

	return parsed, nil
}

// LocalZone returns the host zone as observed the first time it was asked for.
// Later changes to the system zone are not picked up during a run.
func LocalZone() *time.Location {
	return localZone()
}

// unexported variables.
var (
	//nolint:gochecknoglobals // Captured once per process
	localZone = sync.OnceValue(func() *time.Location {
		return time.Local
	})
)

// Accessed returns the access instant and whether it is known.
func (ft FileTimes) Accessed() (time.Time, bool) {
	return ft.accessed, !ft.accessed.IsZero()
}

// Apply writes the times to the filesystem item at path.
// Unknown instants leave the corresponding attribute untouched.
func (ft FileTimes) Apply(path string) error {
	if ft.IsZero() {
		return nil
	}

	// os.Chtimes leaves an attribute untouched when given the zero time.
	err := os.Chtimes(path, ft.accessed, ft.modified)
	if err != nil {
		return fmt.Errorf("failed to change times for %s: %w", path, err)
	}

	if !ft.created.IsZero() {
		err = applyCreated(path, ft.created)
		if err != nil {
			return fmt.Errorf("failed to change creation time for %s: %w", path, err)
		}
	}

	return nil
}

// Created returns the creation instant and whether it is known.
func (ft FileTimes) Created() (time.Time, bool) {
	return ft.created, !ft.created.IsZero()
}

// Equal reports whether both triples hold the same instants.
func (ft FileTimes) Equal(other FileTimes) bool {
	return ft.modified.Equal(other.modified) &&
		ft.accessed.Equal(other.accessed) &&
		ft.created.Equal(other.created)
}

// IsZero reports whether no instant is known.
func (ft FileTimes) IsZero() bool {
	return ft.modified.IsZero() && ft.accessed.IsZero() && ft.created.IsZero()
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (ft FileTimes) MarshalZerologObject(e *zerolog.Event) {
	if !ft.modified.IsZero() {
		e.Time("modified", ft.modified)
	}
	if !ft.accessed.IsZero() {
		e.Time("accessed", ft.accessed)
	}
	if !ft.created.IsZero() {
		e.Time("created", ft.created)
	}
}

// Modified returns the modification instant and whether it is known.
func (ft FileTimes) Modified() (time.Time, bool) {
	return ft.modified, !ft.modified.IsZero()
}

// String returns a compact representation for logs and test failures.
func (ft FileTimes) String() string {
	return fmt.Sprintf("{modified: %s, accessed: %s, created: %s}",
		format(ft.modified), format(ft.accessed), format(ft.created))
}

// TruncatedTo derives a coarser FileTimes (milliseconds, seconds) from this one.
// Resolutions finer than Resolution are a no-op.
func (ft FileTimes) TruncatedTo(resolution time.Duration) FileTimes {
	if resolution <= Resolution {
		return ft
	}

	return FileTimes{
		modified: truncate(ft.modified, resolution),
		accessed: truncate(ft.accessed, resolution),
		created:  truncate(ft.created, resolution),
	}
}

// WithModified returns a copy with the modification instant replaced.
func (ft FileTimes) WithModified(modified time.Time) FileTimes {
	ft.modified = truncate(modified, Resolution)

	return ft
}

func format(t time.Time) string {
	if t.IsZero() {
		return "-"
	}

	return t.Format(time.RFC3339Nano)
}

// truncate drops sub-resolution precision and the monotonic clock reading.
func truncate(t time.Time, resolution time.Duration) time.Time {
	if t.IsZero() {
		return time.Time{}
	}

	return t.Truncate(resolution)
}
