package archive

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/joe/romio/pkg/filetimes"
)

// Exported constants.
const (
	// UnrarTimeLayout is how `unrar l` prints member times.
	UnrarTimeLayout = "2006-01-02 15:04"
	// UnrarShortTimeLayout is the two-digit-year form printed by older releases.
	UnrarShortTimeLayout = "02-01-06 15:04"
)

// unrarLine matches one `unrar l` row: attributes, size, date, time, name.
// Header, separator and total rows do not match.
//
//nolint:gochecknoglobals // Compiled once
var unrarLine = regexp.MustCompile(
	`^\s*(\S{7,})\s+(\d+)\s+(\d{4}-\d{2}-\d{2}|\d{2}-\d{2}-\d{2})\s+(\d{2}:\d{2})\s+(.+)$`)

// unrarTool drives the UnRAR command-line program.
type unrarTool struct {
	path string
}

func (t unrarTool) extractArgs(archive string, names []string) []string {
	args := []string{t.path, "p", "-inul", archive}

	return append(args, names...)
}

func (t unrarTool) listArgs(archive string) []string {
	return []string{t.path, "l", archive}
}

func (t unrarTool) name() string {
	return "UnRAR"
}

func (t unrarTool) parseListing(lines []string) []processArchiveFile {
	var files []processArchiveFile

	for _, line := range lines {
		match := unrarLine.FindStringSubmatch(line)
		if match == nil {
			continue
		}

		size, err := strconv.ParseInt(match[2], 10, 64)
		if err != nil {
			continue
		}

		layout := UnrarTimeLayout
		if len(match[3]) == len("02-01-06") {
			layout = UnrarShortTimeLayout
		}

		var times filetimes.FileTimes
		if modified, err := filetimes.ParseLocal(layout, match[3]+" "+match[4]); err == nil {
			times = filetimes.Modified(modified)
		}

		attributes := match[1]
		name := strings.TrimRight(match[5], " ")

		files = append(files, processArchiveFile{
			name:     name,
			size:     size,
			times:    times,
			isDir:    strings.HasPrefix(attributes, "d") || strings.Contains(attributes, "D"),
			relative: NormalizeName(name),
		})
	}

	return files
}
