package pipeline

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"
)

// WriteReport prints one aligned line per record:
// crc32, sha1, size, modification time (RFC 3339 or -), path.
func WriteReport(w io.Writer, records []ScanRecord) error {
	table := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0) //nolint:mnd // Column padding

	for _, record := range records {
		modified := "-"
		if mtime, ok := record.Times.Modified(); ok {
			modified = mtime.Format(time.RFC3339)
		}

		_, err := fmt.Fprintf(table, "%s\t%s\t%d\t%s\t%s\n",
			record.Checksums.CRC32, record.Checksums.SHA1, record.Checksums.Size, modified, record.Path())
		if err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	err := table.Flush()
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}
