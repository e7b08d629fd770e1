package spec

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// Exported constants.
const (
	// DefaultDirPermissions is the permission mode for directories created on write.
	DefaultDirPermissions = 0o750
)

// FileDestination is a DestinationSpec backed by a loose file.
type FileDestination struct {
	path   string
	source SourceSpec
	name   MemoName

	mu     sync.Mutex
	file   *os.File
	closed bool
}

// CreateFile prepares a destination at path whose times will be copied from
// source on Close. Nothing is written until OpenStream is called.
func CreateFile(path string, source SourceSpec) *FileDestination {
	return &FileDestination{
		path:   AbsPath(path),
		source: source,
	}
}

// Close closes the stream and then applies the source's times to the file.
// A destination whose stream was never opened is left untouched.
func (d *FileDestination) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}

	d.closed = true

	if d.file == nil {
		return nil
	}

	err := d.file.Close()
	if err != nil {
		return fmt.Errorf("failed to close %s: %w", d.path, err)
	}

	if d.source == nil {
		return nil
	}

	return d.source.FileTimes().Apply(d.path)
}

// DisplayName returns the path as shown to users.
func (d *FileDestination) DisplayName() string {
	return d.name.Get(func() string { return d.path })
}

// Name returns the base name of the file.
func (d *FileDestination) Name() string {
	return filepath.Base(d.path)
}

// OpenStream creates (or truncates) the file on first use.
func (d *FileDestination) OpenStream() (io.Writer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, fmt.Errorf("%s: %w", d.path, os.ErrClosed)
	}

	if d.file != nil {
		return d.file, nil
	}

	dir := filepath.Dir(d.path)

	err := os.MkdirAll(dir, DefaultDirPermissions)
	if err != nil {
		return nil, fmt.Errorf("failed to create destination directory %s: %w", dir, err)
	}

	file, err := os.Create(d.path) // #nosec G304 - file path is controlled by caller
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", d.path, err)
	}

	d.file = file

	return file, nil
}

// Path returns the absolute path of the file.
func (d *FileDestination) Path() string {
	return d.path
}
