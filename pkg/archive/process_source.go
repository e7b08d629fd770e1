package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/joe/romio/pkg/filetimes"
	"github.com/joe/romio/pkg/process"
)

// listingTool describes one external program: how to list a container,
// how to parse the listing and how to stream selected members to stdout.
type listingTool interface {
	name() string
	listArgs(archive string) []string
	parseListing(lines []string) []processArchiveFile
	extractArgs(archive string, names []string) []string
}

// processArchiveFile is one parsed listing line.
type processArchiveFile struct {
	name     string // as printed by the tool
	size     int64
	times    filetimes.FileTimes
	isDir    bool
	relative string // normalized
}

// processSource reads a container through an external program. The listing
// runs once, lazily; then one extraction process streams every selected
// member back to back and each entry reads a bounded view of that stream.
type processSource struct {
	containerBase

	ctx    context.Context //nolint:containedctx // Owned for the lifetime of the spawned processes
	kind   Kind
	tool   listingTool
	filter *nameFilter
	logger zerolog.Logger

	listed     bool
	files      []processArchiveFile
	index      int
	extraction *process.Process
	current    *processEntry
	err        error
	closed     bool
	// broken is set once the extraction output ended before an entry's
	// listed size; the process has exited and its status is reported.
	broken bool
}

func openProcessSource(ctx context.Context, path string, kind Kind, tool listingTool, opts Options) *processSource {
	return &processSource{
		containerBase: containerBase{path: path},
		ctx:           ctx,
		kind:          kind,
		tool:          tool,
		filter:        newNameFilter(opts.Names),
		logger:        opts.Logger,
	}
}

// Close closes the shared stdout stream and waits for the extraction
// process. When the caller left entries unread the process is killed first
// and its exit status is not reported, unless its output had already ended
// early.
func (s *processSource) Close() error {
	if s.closed {
		return nil
	}

	s.closed = true

	if s.extraction == nil {
		return nil
	}

	complete := s.index >= len(s.files) && (s.current == nil || s.current.view.Remaining() == 0)
	if s.current != nil {
		s.current.stream.stale = true
	}

	abandoned := !complete && !s.broken
	if abandoned {
		_ = s.extraction.Kill()
	}

	closeErr := s.extraction.Stdout.Close()
	waitErr := s.extraction.Wait()

	if abandoned {
		s.logger.Debug().Str("archive", s.path).Err(waitErr).Msg("extraction abandoned")
		return nil
	}

	if waitErr != nil {
		return fmt.Errorf("failed to extract %s with %s: %w", s.path, s.tool.name(), waitErr)
	}

	if closeErr != nil && !errors.Is(closeErr, io.ErrClosedPipe) && !errors.Is(closeErr, os.ErrClosed) {
		return fmt.Errorf("failed to close %s output for %s: %w", s.tool.name(), s.path, closeErr)
	}

	return nil
}

// Kind returns the container kind.
func (s *processSource) Kind() Kind {
	return s.kind
}

// Next returns the next selected member. The first call lists the container
// and fails with *EntryNotFoundError before any extraction starts if a
// requested name is absent.
func (s *processSource) Next() (InternalSource, error) {
	if s.closed {
		return nil, fmt.Errorf("%s: %w", s.path, io.ErrClosedPipe)
	}

	if s.err != nil {
		return nil, s.err
	}

	if !s.listed {
		s.listed = true

		s.files, s.err = s.list()
		if s.err != nil {
			return nil, s.err
		}
	}

	err := s.finishCurrent()
	if err != nil {
		s.err = err
		return nil, err
	}

	if s.index >= len(s.files) {
		s.err = io.EOF
		return nil, s.err
	}

	if s.extraction == nil {
		s.extraction, err = s.startExtraction()
		if err != nil {
			s.err = err
			return nil, err
		}
	}

	file := s.files[s.index]
	s.index++

	view := process.NewBoundedReader(s.extraction.Stdout, file.size, false)
	entry := &processEntry{
		sourceBase: newSourceBase(s, file.relative, file.size, file.times),
		view:       view,
	}
	entry.stream = &guardedReader{r: &extractionReader{source: s, entry: entry}}
	s.current = entry
	s.logger.Debug().Object("entry", entry).Msg("process entry")

	return entry, nil
}

// finishCurrent positions the shared stream after the current entry.
func (s *processSource) finishCurrent() error {
	if s.current == nil {
		return nil
	}

	current := s.current
	s.current = nil
	current.stream.stale = true

	err := current.view.Drain()
	if err != nil {
		if current.view.Truncated() {
			return s.outputEnded(current, err)
		}

		return fmt.Errorf("failed to read %s from %s output: %w", current.DisplayName(), s.tool.name(), err)
	}

	return nil
}

// outputEnded reaps the extraction process after its output stopped short
// of entry and reports why, preferring the exit status over the short read.
func (s *processSource) outputEnded(entry *processEntry, readErr error) error {
	s.broken = true

	waitErr := s.extraction.Wait()
	if waitErr != nil {
		return fmt.Errorf("failed to extract %s from %s with %s: %w",
			entry.DisplayName(), s.path, s.tool.name(), waitErr)
	}

	return fmt.Errorf("%s output ended inside %s: %w", s.tool.name(), entry.DisplayName(), readErr)
}

// list runs the listing command and applies the name filter in listing order.
func (s *processSource) list() ([]processArchiveFile, error) {
	args := s.tool.listArgs(s.path)

	lines, err := process.Lines(s.ctx, args)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s with %s: %w", s.path, s.tool.name(), err)
	}

	parsed := s.tool.parseListing(lines)
	s.logger.Debug().Str("archive", s.path).Int("entries", len(parsed)).Msg("listing parsed")

	var selected []processArchiveFile

	for _, file := range parsed {
		if !s.filter.accepts(file.relative) {
			continue
		}

		if file.isDir {
			if s.filter.isRequested(file.relative) {
				return nil, &InvalidEntryError{Archive: s.path, Name: file.relative, Reason: "directory"}
			}

			continue
		}

		selected = append(selected, file)
	}

	if missing := s.filter.missing(); len(missing) > 0 {
		return nil, &EntryNotFoundError{Archive: s.path, Names: missing}
	}

	return selected, nil
}

func (s *processSource) startExtraction() (*process.Process, error) {
	names := make([]string, 0, len(s.files))
	for _, file := range s.files {
		names = append(names, file.name)
	}

	proc, err := process.Spawn(s.ctx, s.tool.extractArgs(s.path, names))
	if err != nil {
		return nil, fmt.Errorf("failed to extract %s with %s: %w", s.path, s.tool.name(), err)
	}

	return proc, nil
}

// processEntry is one member inside the shared extraction stream.
type processEntry struct {
	sourceBase

	view   *process.BoundedReader
	stream *guardedReader
}

// Close closes the bounded view. The shared stream stays open for the next entry.
func (e *processEntry) Close() error {
	return e.view.Close()
}

// OpenStream returns the bounded view over the extraction output.
func (e *processEntry) OpenStream() (io.Reader, error) {
	if e.stream.stale {
		return nil, fmt.Errorf("%s: %w", e.DisplayName(), ErrEntryAbandoned)
	}

	return e.stream, nil
}

// extractionReader reads an entry's view and turns a short stream into the
// extraction process's failure.
type extractionReader struct {
	source *processSource
	entry  *processEntry
}

func (r *extractionReader) Read(p []byte) (int, error) {
	n, err := r.entry.view.Read(p)
	if err != nil && r.entry.view.Truncated() {
		return n, r.source.outputEnded(r.entry, err)
	}

	return n, err //nolint:wrapcheck // io.EOF must reach callers unwrapped
}

var _ InternalSource = (*processEntry)(nil)
