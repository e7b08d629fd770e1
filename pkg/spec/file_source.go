package spec

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/joe/romio/pkg/filetimes"
)

// Exported variables.
var (
	ErrNotRegularFile = errors.New("not a regular file")
)

// FileSource is a SourceSpec backed by a loose file.
type FileSource struct {
	path  string
	size  int64
	times filetimes.FileTimes
	name  MemoName

	mu     sync.Mutex
	file   *os.File
	closed bool
}

// OpenFile validates that path is a readable regular file and captures its
// size and times. The file itself is opened on the first OpenStream call.
func OpenFile(path string) (*FileSource, error) {
	abs := AbsPath(path)

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", abs, err)
	}

	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s: %w", abs, ErrNotRegularFile)
	}

	probe, err := os.Open(abs) // #nosec G304 - file path is controlled by caller
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", abs, err)
	}
	_ = probe.Close()

	return &FileSource{
		path:  abs,
		size:  info.Size(),
		times: filetimes.FromInfo(info),
	}, nil
}

// Close releases the stream if it was opened.
func (s *FileSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true

	if s.file == nil {
		return nil
	}

	err := s.file.Close()
	if err != nil {
		return fmt.Errorf("failed to close %s: %w", s.path, err)
	}

	return nil
}

// DisplayName returns the path as shown to users.
func (s *FileSource) DisplayName() string {
	return s.name.Get(func() string { return s.path })
}

// FileTimes returns the times captured when the source was opened.
func (s *FileSource) FileTimes() filetimes.FileTimes {
	return s.times
}

// Name returns the base name of the file.
func (s *FileSource) Name() string {
	return filepath.Base(s.path)
}

// OpenStream opens the file on first use and returns the same stream afterwards.
func (s *FileSource) OpenStream() (io.Reader, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, fmt.Errorf("%s: %w", s.path, os.ErrClosed)
	}

	if s.file != nil {
		return s.file, nil
	}

	file, err := os.Open(s.path) // #nosec G304 - file path is controlled by caller
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", s.path, err)
	}

	s.file = file

	return file, nil
}

// Path returns the absolute path of the file.
func (s *FileSource) Path() string {
	return s.path
}

// Size returns the size captured when the source was opened.
func (s *FileSource) Size() int64 {
	return s.size
}
