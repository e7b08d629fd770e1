package archive

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/joe/romio/pkg/compression"
	"github.com/joe/romio/pkg/spec"
)

// Exported constants.
const (
	// TarEntryMode is the permission mode recorded for written tar members.
	TarEntryMode = 0o644
)

// tarDestination writes a PAX tar stream through a compression algorithm.
type tarDestination struct {
	containerBase

	algorithm  *compression.Algorithm
	file       *os.File
	compressed io.WriteCloser
	writer     *tar.Writer
	current    *tarEntryWriter
	logger     zerolog.Logger
	closed     bool
}

func createTarDestination(path string, algorithm *compression.Algorithm, opts Options) (*tarDestination, error) {
	if algorithm == nil {
		algorithm = compression.None
	}

	err := os.MkdirAll(filepath.Dir(path), spec.DefaultDirPermissions)
	if err != nil {
		return nil, fmt.Errorf("failed to create destination directory for %s: %w", path, err)
	}

	file, err := os.Create(path) // #nosec G304 - file path is controlled by caller
	if err != nil {
		return nil, fmt.Errorf("failed to create tar %s: %w", path, err)
	}

	compressed, err := algorithm.Compress(file)
	if err != nil {
		_ = file.Close()
		_ = os.Remove(path)

		return nil, fmt.Errorf("failed to create tar %s: %w", path, err)
	}

	return &tarDestination{
		containerBase: containerBase{path: path},
		algorithm:     algorithm,
		file:          file,
		compressed:    compressed,
		writer:        tar.NewWriter(compressed),
		logger:        opts.Logger,
	}, nil
}

// Close finishes the open member, the tar trailer, the compressor and the file.
func (d *tarDestination) Close() error {
	if d.closed {
		return nil
	}

	d.closed = true

	entryErr := d.finishCurrent()
	tarErr := d.writer.Close()
	compressErr := d.compressed.Close()
	fileErr := d.file.Close()

	switch {
	case entryErr != nil:
		return entryErr
	case tarErr != nil:
		return fmt.Errorf("failed to finish tar %s: %w", d.path, tarErr)
	case compressErr != nil:
		return fmt.Errorf("failed to finish %s stream of %s: %w", d.algorithm, d.path, compressErr)
	case fileErr != nil:
		return fmt.Errorf("failed to close tar %s: %w", d.path, fileErr)
	default:
		return nil
	}
}

// CreateEntry starts a member whose size and times come from source.
func (d *tarDestination) CreateEntry(name string, source spec.SourceSpec) (InternalDestination, error) {
	if d.closed {
		return nil, fmt.Errorf("tar %s: %w", d.path, os.ErrClosed)
	}

	err := d.finishCurrent()
	if err != nil {
		return nil, err
	}

	entry := &tarEntryWriter{
		entryBase: entryBase{parent: d, name: NormalizeName(name)},
		owner:     d,
		source:    source,
	}
	d.current = entry

	return entry, nil
}

// Kind returns KindTar.
func (d *tarDestination) Kind() Kind {
	return KindTar
}

func (d *tarDestination) finishCurrent() error {
	if d.current == nil {
		return nil
	}

	current := d.current
	d.current = nil

	return current.Close()
}

// tarEntryWriter is one member being written.
type tarEntryWriter struct {
	entryBase

	owner         *tarDestination
	source        spec.SourceSpec
	headerWritten bool
	closed        bool
}

// Close checks that exactly the announced number of bytes was written.
func (e *tarEntryWriter) Close() error {
	if e.closed {
		return nil
	}

	if !e.headerWritten {
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
		return fmt.Errorf("failed to finish tar member %s: %w", e.DisplayName(), err)
	}

	return nil
}

// OpenStream writes the member header on first use. Tar headers precede the
// data, so the size and times are taken from the source here.
func (e *tarEntryWriter) OpenStream() (io.Writer, error) {
	if e.closed {
		return nil, fmt.Errorf("%s: %w", e.DisplayName(), os.ErrClosed)
	}

	if e.headerWritten {
		return e.owner.writer, nil
	}

	header := &tar.Header{
		Typeflag: tar.TypeReg,
		Name:     e.name,
		Mode:     TarEntryMode,
		Format:   tar.FormatPAX,
	}

	if e.source != nil {
		header.Size = e.source.Size()
		times := e.source.FileTimes()

		if modified, ok := times.Modified(); ok {
			header.ModTime = modified
		}

		if accessed, ok := times.Accessed(); ok {
			header.AccessTime = accessed
		}
	}

	err := e.owner.writer.WriteHeader(header)
	if err != nil {
		return nil, fmt.Errorf("failed to write tar header for %s: %w", e.DisplayName(), err)
	}

	e.owner.logger.Debug().Str("archive", e.owner.path).Str("entry", e.name).Int64("size", header.Size).Msg("tar member created")
	e.headerWritten = true

	return e.owner.writer, nil
}
