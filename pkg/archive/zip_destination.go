package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zip"
	"github.com/rs/zerolog"

	"github.com/joe/romio/pkg/spec"
)

// zipDestination writes a zip container. Only one entry can be open at a
// time; creating the next entry finishes the previous one.
type zipDestination struct {
	containerBase

	file    *os.File
	writer  *zip.Writer
	current *zipEntryWriter
	logger  zerolog.Logger
	closed  bool
}

func createZipDestination(path string, opts Options) (*zipDestination, error) {
	err := os.MkdirAll(filepath.Dir(path), spec.DefaultDirPermissions)
	if err != nil {
		return nil, fmt.Errorf("failed to create destination directory for %s: %w", path, err)
	}

	file, err := os.Create(path) // #nosec G304 - file path is controlled by caller
	if err != nil {
		return nil, fmt.Errorf("failed to create zip %s: %w", path, err)
	}

	return &zipDestination{
		containerBase: containerBase{path: path},
		file:          file,
		writer:        zip.NewWriter(file),
		logger:        opts.Logger,
	}, nil
}

// Close finishes the open entry, the central directory and the file.
func (d *zipDestination) Close() error {
	if d.closed {
		return nil
	}

	d.closed = true

	entryErr := d.finishCurrent()
	writerErr := d.writer.Close()
	fileErr := d.file.Close()

	switch {
	case entryErr != nil:
		return entryErr
	case writerErr != nil:
		return fmt.Errorf("failed to finish zip %s: %w", d.path, writerErr)
	case fileErr != nil:
		return fmt.Errorf("failed to close zip %s: %w", d.path, fileErr)
	default:
		return nil
	}
}

// CreateEntry starts a deflated member named name.
func (d *zipDestination) CreateEntry(name string, source spec.SourceSpec) (InternalDestination, error) {
	if d.closed {
		return nil, fmt.Errorf("zip %s: %w", d.path, os.ErrClosed)
	}

	err := d.finishCurrent()
	if err != nil {
		return nil, err
	}

	entry := &zipEntryWriter{
		entryBase: entryBase{parent: d, name: NormalizeName(name)},
		owner:     d,
		source:    source,
	}
	d.current = entry

	return entry, nil
}

// Kind returns KindZip.
func (d *zipDestination) Kind() Kind {
	return KindZip
}

func (d *zipDestination) finishCurrent() error {
	if d.current == nil {
		return nil
	}

	current := d.current
	d.current = nil

	return current.Close()
}

// zipEntryWriter is one member being written.
type zipEntryWriter struct {
	entryBase

	owner  *zipDestination
	source spec.SourceSpec
	writer io.Writer
	closed bool
}

// Close finishes the member. A member whose stream was never opened is
// still written, empty.
func (e *zipEntryWriter) Close() error {
	if e.closed {
		return nil
	}

	if e.writer == nil {
		_, err := e.OpenStream()
		if err != nil {
			return err
		}
	}

	e.closed = true

	if e.owner.current == e {
		e.owner.current = nil
	}

	err := e.owner.writer.Flush()
	if err != nil {
		return fmt.Errorf("failed to flush %s: %w", e.DisplayName(), err)
	}

	return nil
}

// OpenStream writes the member header on first use. The zip local header
// precedes the data, so the source's modification time is recorded here;
// zip keeps no access or creation time and those are dropped.
func (e *zipEntryWriter) OpenStream() (io.Writer, error) {
	if e.closed {
		return nil, fmt.Errorf("%s: %w", e.DisplayName(), os.ErrClosed)
	}

	if e.writer != nil {
		return e.writer, nil
	}

	header := &zip.FileHeader{
		Name:   e.name,
		Method: zip.Deflate,
	}

	if e.source != nil {
		if modified, ok := e.source.FileTimes().Modified(); ok {
			header.Modified = modified
		}
	}

	writer, err := e.owner.writer.CreateHeader(header)
	if err != nil {
		return nil, fmt.Errorf("failed to create zip member %s: %w", e.DisplayName(), err)
	}

	e.owner.logger.Debug().Str("archive", e.owner.path).Str("entry", e.name).Msg("zip member created")
	e.writer = writer

	return writer, nil
}
