package archive

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/klauspost/compress/zip"
	"github.com/rs/zerolog"

	"github.com/joe/romio/pkg/filetimes"
)

// zipSource reads a zip container in-process. Entries are random access, so
// an entry's stream stays valid after Next moves on.
type zipSource struct {
	containerBase

	reader *zip.ReadCloser
	files  []*zip.File
	index  int
	filter *nameFilter
	logger zerolog.Logger
	err    error
	closed bool
}

func openZipSource(path string, opts Options) (*zipSource, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open zip %s: %w", path, err)
	}

	files := make([]*zip.File, len(reader.File))
	copy(files, reader.File)
	sortByPhysicalOffset(files)

	return &zipSource{
		containerBase: containerBase{path: path},
		reader:        reader,
		files:         files,
		filter:        newNameFilter(opts.Names),
		logger:        opts.Logger,
	}, nil
}

// Close releases the zip file.
func (s *zipSource) Close() error {
	if s.closed {
		return nil
	}

	s.closed = true

	err := s.reader.Close()
	if err != nil {
		return fmt.Errorf("failed to close zip %s: %w", s.path, err)
	}

	return nil
}

// Kind returns KindZip.
func (s *zipSource) Kind() Kind {
	return KindZip
}

// Next returns the next entry in physical order.
func (s *zipSource) Next() (InternalSource, error) {
	if s.closed {
		return nil, fmt.Errorf("zip %s: %w", s.path, io.ErrClosedPipe)
	}

	if s.err != nil {
		return nil, s.err
	}

	for s.index < len(s.files) {
		file := s.files[s.index]
		s.index++

		name := NormalizeName(file.Name)
		if !s.filter.accepts(name) {
			continue
		}

		if !file.Mode().IsRegular() {
			if s.filter.isRequested(name) {
				s.err = &InvalidEntryError{Archive: s.path, Name: name, Reason: "not a regular file"}
				return nil, s.err
			}

			continue
		}

		entry := &zipEntry{
			sourceBase: newSourceBase(s, name, int64(file.UncompressedSize64), zipTimes(file)), //nolint:gosec // Sizes fit int64
			file:       file,
		}
		s.logger.Debug().Object("entry", entry).Msg("zip entry")

		return entry, nil
	}

	if missing := s.filter.missing(); len(missing) > 0 {
		s.err = &EntryNotFoundError{Archive: s.path, Names: missing}
		return nil, s.err
	}

	s.err = io.EOF

	return nil, s.err
}

// zipEntry is one zip member. Its stream is opened on first use.
type zipEntry struct {
	sourceBase

	file   *zip.File
	stream io.ReadCloser
	closed bool
}

// Close closes the member stream if it was opened.
func (e *zipEntry) Close() error {
	if e.closed {
		return nil
	}

	e.closed = true

	if e.stream == nil {
		return nil
	}

	err := e.stream.Close()
	if err != nil {
		return fmt.Errorf("failed to close %s: %w", e.DisplayName(), err)
	}

	return nil
}

// OpenStream opens the decompressing member stream once.
func (e *zipEntry) OpenStream() (io.Reader, error) {
	if e.closed {
		return nil, fmt.Errorf("%s: %w", e.DisplayName(), io.ErrClosedPipe)
	}

	if e.stream != nil {
		return e.stream, nil
	}

	stream, err := e.file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", e.DisplayName(), err)
	}

	e.stream = stream

	return stream, nil
}

// sortByPhysicalOffset orders members by where their data starts in the file.
// Members whose offset cannot be read go last, in central directory order.
func sortByPhysicalOffset(files []*zip.File) {
	offsets := make(map[*zip.File]int64, len(files))

	for _, file := range files {
		offset, err := file.DataOffset()
		if err != nil {
			offset = math.MaxInt64
		}

		offsets[file] = offset
	}

	sort.SliceStable(files, func(i, j int) bool {
		return offsets[files[i]] < offsets[files[j]]
	})
}

func zipTimes(file *zip.File) filetimes.FileTimes {
	if file.Modified.IsZero() {
		return filetimes.FileTimes{}
	}

	return filetimes.Modified(file.Modified)
}

var _ InternalSource = (*zipEntry)(nil)
