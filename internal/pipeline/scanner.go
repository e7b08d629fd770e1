package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/joe/romio/pkg/archive"
	"github.com/joe/romio/pkg/fileops"
	"github.com/joe/romio/pkg/filetimes"
	"github.com/joe/romio/pkg/spec"
)

// ScanRecord describes one readable item found by a scan.
type ScanRecord struct {
	// Container is the archive path, or empty for a loose file.
	Container string
	// Name is the entry name inside Container, or the loose file path.
	Name      string
	Checksums fileops.Checksums
	Times     filetimes.FileTimes
}

// Path returns where the item lives.
func (r ScanRecord) Path() string {
	if r.Container == "" {
		return r.Name
	}

	return r.Container + "/" + r.Name
}

// Scanner checksums loose files and every entry of archives. It is safe for
// use by every worker of a Pool at once.
type Scanner struct {
	Context context.Context //nolint:containedctx // Passed to the external tools of process-backed archives
	Options archive.Options
	Logger  zerolog.Logger

	mu      sync.Mutex
	records []ScanRecord
}

// Records returns the records gathered so far ordered by path.
func (s *Scanner) Records() []ScanRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := append([]ScanRecord(nil), s.records...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Path() < out[j].Path()
	})

	return out
}

// Scan is a WorkFunc. Archives are read entry by entry; anything else is
// checksummed as a loose file.
func (s *Scanner) Scan(task Task) error {
	if archive.IsArchive(task.Item.Path) {
		return s.scanArchive(task)
	}

	return s.scanFile(task)
}

func (s *Scanner) add(record ScanRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, record)
}

func (s *Scanner) context() context.Context {
	if s.Context == nil {
		return context.Background()
	}

	return s.Context
}

func (s *Scanner) scanArchive(task Task) (err error) {
	source, err := archive.OpenSource(s.context(), task.Item.Path, s.Options)
	if err != nil {
		return fmt.Errorf("failed to open archive %s: %w", task.Item.Path, err)
	}

	defer func() {
		closeErr := source.Close()
		if err == nil && closeErr != nil {
			err = closeErr
		}
	}()

	count := 0

	for {
		entry, err := source.Next()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return err
		}

		sums, err := fileops.Checksum(entry, task.Progress)

		closeErr := entry.Close()
		if err != nil {
			return err
		}

		if closeErr != nil {
			return fmt.Errorf("failed to close %s: %w", entry.DisplayName(), closeErr)
		}

		s.add(ScanRecord{
			Container: source.Path(),
			Name:      entry.RelativeName(),
			Checksums: *sums,
			Times:     entry.FileTimes(),
		})

		count++
	}

	if count == 0 {
		return Skip("archive holds no files")
	}

	s.Logger.Debug().Str("archive", source.Path()).Int("entries", count).Msg("archive scanned")

	return nil
}

func (s *Scanner) scanFile(task Task) (err error) {
	source, err := spec.OpenFile(task.Item.Path)
	if err != nil {
		return err
	}

	defer func() {
		closeErr := source.Close()
		if err == nil && closeErr != nil {
			err = fmt.Errorf("failed to close %s: %w", source.DisplayName(), closeErr)
		}
	}()

	sums, err := fileops.Checksum(source, task.Progress)
	if err != nil {
		return err
	}

	s.add(ScanRecord{
		Name:      source.Path(),
		Checksums: *sums,
		Times:     source.FileTimes(),
	})

	return nil
}
