package pipeline

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Exported variables.
var (
	ErrBadJobLine = errors.New("malformed job line")
)

// ReadJobs parses a tab-separated job list. Each line is
//
//	destination <TAB> source [<TAB> entry [<TAB> target]]
//
// Lines sharing a destination form one CopyJob, in order of first
// appearance. Blank lines and lines starting with # are ignored.
func ReadJobs(r io.Reader, overwrite bool) ([]CopyJob, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.Comment = '#'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = true

	var jobs []CopyJob

	index := make(map[string]int)

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("failed to read job list: %w", err)
		}

		line, _ := reader.FieldPos(0)

		dest, ref, err := parseJobRecord(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		pos, seen := index[dest]
		if !seen {
			pos = len(jobs)
			index[dest] = pos
			jobs = append(jobs, CopyJob{Destination: dest, Overwrite: overwrite})
		}

		jobs[pos].Entries = append(jobs[pos].Entries, ref)
	}

	return jobs, nil
}

func parseJobRecord(record []string) (string, EntryRef, error) {
	const minFields, maxFields = 2, 4

	if len(record) < minFields || len(record) > maxFields {
		return "", EntryRef{}, fmt.Errorf("%w: want 2 to 4 fields, got %d", ErrBadJobLine, len(record))
	}

	fields := make([]string, maxFields)
	for i, field := range record {
		fields[i] = strings.TrimSpace(field)
	}

	if fields[0] == "" || fields[1] == "" {
		return "", EntryRef{}, fmt.Errorf("%w: destination and source are required", ErrBadJobLine)
	}

	return fields[0], EntryRef{Source: fields[1], Entry: fields[2], Target: fields[3]}, nil
}
