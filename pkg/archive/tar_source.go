package archive

import (
	"archive/tar"
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/joe/romio/pkg/compression"
	"github.com/joe/romio/pkg/filetimes"
)

// tarSource reads a tar stream, optionally wrapped by a compression
// algorithm. The stream is forward only: asking for the next entry abandons
// whatever is left of the current one.
type tarSource struct {
	containerBase

	algorithm    *compression.Algorithm
	file         *os.File
	decompressed io.ReadCloser
	reader       *tar.Reader
	current      *tarEntry
	filter       *nameFilter
	logger       zerolog.Logger
	err          error
	closed       bool
}

func openTarSource(path string, algorithm *compression.Algorithm, opts Options) (*tarSource, error) {
	if algorithm == nil {
		algorithm = compression.None
	}

	file, err := os.Open(path) // #nosec G304 - file path is controlled by caller
	if err != nil {
		return nil, fmt.Errorf("failed to open tar %s: %w", path, err)
	}

	decompressed, err := algorithm.Decompress(bufio.NewReader(file))
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to open tar %s: %w", path, err)
	}

	return &tarSource{
		containerBase: containerBase{path: path},
		algorithm:     algorithm,
		file:          file,
		decompressed:  decompressed,
		reader:        tar.NewReader(decompressed),
		filter:        newNameFilter(opts.Names),
		logger:        opts.Logger,
	}, nil
}

// Close releases the decompressor and the file.
func (s *tarSource) Close() error {
	if s.closed {
		return nil
	}

	s.closed = true
	s.abandonCurrent()

	decompressErr := s.decompressed.Close()
	fileErr := s.file.Close()

	if decompressErr != nil {
		return fmt.Errorf("failed to close %s stream of %s: %w", s.algorithm, s.path, decompressErr)
	}

	if fileErr != nil {
		return fmt.Errorf("failed to close tar %s: %w", s.path, fileErr)
	}

	return nil
}

// Kind returns KindTar.
func (s *tarSource) Kind() Kind {
	return KindTar
}

// Next advances to the next entry in stream order.
func (s *tarSource) Next() (InternalSource, error) {
	if s.closed {
		return nil, fmt.Errorf("tar %s: %w", s.path, io.ErrClosedPipe)
	}

	if s.err != nil {
		return nil, s.err
	}

	s.abandonCurrent()

	for {
		header, err := s.reader.Next()
		if err == io.EOF { //nolint:errorlint // tar.Reader returns io.EOF unwrapped
			return nil, s.exhausted()
		}

		if err != nil {
			s.err = fmt.Errorf("failed to read tar %s: %w", s.path, err)
			return nil, s.err
		}

		name := NormalizeName(header.Name)
		if !s.filter.accepts(name) {
			continue
		}

		if header.Typeflag != tar.TypeReg && header.Typeflag != tar.TypeRegA { //nolint:staticcheck // TypeRegA still appears in old archives
			if s.filter.isRequested(name) {
				s.err = &InvalidEntryError{Archive: s.path, Name: name, Reason: fmt.Sprintf("tar type %q", header.Typeflag)}
				return nil, s.err
			}

			continue
		}

		entry := &tarEntry{
			sourceBase: newSourceBase(s, name, header.Size, tarTimes(header)),
			stream:     &guardedReader{r: s.reader},
		}
		s.current = entry
		s.logger.Debug().Object("entry", entry).Msg("tar entry")

		return entry, nil
	}
}

func (s *tarSource) abandonCurrent() {
	if s.current != nil {
		s.current.stream.stale = true
		s.current = nil
	}
}

func (s *tarSource) exhausted() error {
	if missing := s.filter.missing(); len(missing) > 0 {
		s.err = &EntryNotFoundError{Archive: s.path, Names: missing}
	} else {
		s.err = io.EOF
	}

	return s.err
}

// tarEntry is one tar member. Its stream is only valid until the source advances.
type tarEntry struct {
	sourceBase

	stream *guardedReader
	closed bool
}

// Close marks the member stream finished. The shared tar stream stays open.
func (e *tarEntry) Close() error {
	e.closed = true

	return nil
}

// OpenStream returns the member stream.
func (e *tarEntry) OpenStream() (io.Reader, error) {
	if e.closed {
		return nil, fmt.Errorf("%s: %w", e.DisplayName(), io.ErrClosedPipe)
	}

	if e.stream.stale {
		return nil, fmt.Errorf("%s: %w", e.DisplayName(), ErrEntryAbandoned)
	}

	return e.stream, nil
}

func tarTimes(header *tar.Header) filetimes.FileTimes {
	return filetimes.New(header.ModTime, header.AccessTime, time.Time{})
}

var _ InternalSource = (*tarEntry)(nil)
