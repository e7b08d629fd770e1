package archive

import (
	"path"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeName canonicalizes an entry name: forward slashes, no leading
// "./" or "/", cleaned, NFC-composed. Archives written on different
// platforms thereby match the same requested names.
func NormalizeName(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	name = norm.NFC.String(name)

	cleaned := path.Clean("/" + name)

	return strings.TrimPrefix(cleaned, "/")
}

// nameFilter tracks which requested names a pass over a container has seen.
type nameFilter struct {
	requested []string
	wanted    map[string]bool
	seen      map[string]bool
}

func newNameFilter(names []string) *nameFilter {
	filter := &nameFilter{
		wanted: make(map[string]bool, len(names)),
		seen:   make(map[string]bool, len(names)),
	}

	for _, name := range names {
		normalized := NormalizeName(name)
		if normalized == "" || filter.wanted[normalized] {
			continue
		}

		filter.wanted[normalized] = true
		filter.requested = append(filter.requested, normalized)
	}

	return filter
}

// accepts reports whether an entry passes the filter and marks it seen.
func (f *nameFilter) accepts(name string) bool {
	if f.isEmpty() {
		return true
	}

	if !f.wanted[name] {
		return false
	}

	f.seen[name] = true

	return true
}

// isEmpty reports whether the filter lets everything through.
func (f *nameFilter) isEmpty() bool {
	return len(f.requested) == 0
}

// isRequested reports whether name was explicitly asked for.
func (f *nameFilter) isRequested(name string) bool {
	return f.wanted[name]
}

// missing returns the requested names not seen so far, in request order.
func (f *nameFilter) missing() []string {
	var out []string

	for _, name := range f.requested {
		if !f.seen[name] {
			out = append(out, name)
		}
	}

	return out
}
