package archive

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/joe/romio/pkg/filetimes"
)

// Exported constants.
const (
	// SevenZipTimeLayout is how `7z l` prints member times.
	SevenZipTimeLayout = "2006-01-02 15:04:05"
)

// sevenZipLine matches one `7z l -ba` row: date and time (blank when
// unknown), five attribute flags, size and compressed size right-aligned in
// twelve columns (compressed size blank inside solid blocks), then the name.
//
//nolint:gochecknoglobals // Compiled once
var sevenZipLine = regexp.MustCompile(
	`^(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}|\s{19}) (\S{5}) ([ \d]{12}) ([ \d]{12})  (.+)$`)

// sevenZipTool drives the 7-Zip command-line program.
type sevenZipTool struct {
	path string
}

func (t sevenZipTool) extractArgs(archive string, names []string) []string {
	args := []string{t.path, "e", "-so", "-bd", "-ba", archive}

	return append(args, names...)
}

func (t sevenZipTool) listArgs(archive string) []string {
	return []string{t.path, "l", "-ba", archive}
}

func (t sevenZipTool) name() string {
	return "7-Zip"
}

func (t sevenZipTool) parseListing(lines []string) []processArchiveFile {
	var files []processArchiveFile

	for _, line := range lines {
		match := sevenZipLine.FindStringSubmatch(line)
		if match == nil {
			continue
		}

		size, err := parseSize(match[3])
		if err != nil {
			continue
		}

		var times filetimes.FileTimes
		if stamp := strings.TrimSpace(match[1]); stamp != "" {
			modified, err := filetimes.ParseLocal(SevenZipTimeLayout, stamp)
			if err == nil {
				times = filetimes.Modified(modified)
			}
		}

		files = append(files, processArchiveFile{
			name:     match[5],
			size:     size,
			times:    times,
			isDir:    strings.HasPrefix(match[2], "D"),
			relative: NormalizeName(match[5]),
		})
	}

	return files
}

func parseSize(field string) (int64, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		return 0, nil
	}

	return strconv.ParseInt(field, 10, 64)
}
