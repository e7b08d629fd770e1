package filesystem

import (
	"errors"
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/joe/romio/pkg/spec"
)

// Exported constants.
const (
	// ScanBufferSize is how many entries the walker may run ahead of Next.
	ScanBufferSize = 64
)

// unexported variables.
var (
	errScanStopped = errors.New("scan stopped")
)

// realFileScanner walks the tree in a goroutine and yields entries as they
// are found.
type realFileScanner struct {
	root    string
	started bool
	fileCh  chan FileInfo
	errCh   chan error
	done    chan struct{}
	once    sync.Once
	err     error
}

// newRealFileScanner creates a new scanner for the given directory.
// Nothing is read until the first Next.
func newRealFileScanner(root string) *realFileScanner {
	return &realFileScanner{
		root: spec.AbsPath(root),
		done: make(chan struct{}),
	}
}

// Close stops the walker goroutine.
func (s *realFileScanner) Close() {
	s.once.Do(func() {
		close(s.done)
	})
}

// Err returns any error that occurred during scanning.
func (s *realFileScanner) Err() error {
	return s.err
}

// Next advances to the next file and returns its info.
func (s *realFileScanner) Next() (FileInfo, bool) {
	if !s.started {
		s.start()
	}

	file, ok := <-s.fileCh
	if ok {
		return file, true
	}

	if err := <-s.errCh; err != nil && !errors.Is(err, errScanStopped) {
		s.err = err
	}

	// Later calls must not block on the drained channel.
	s.errCh = closedErrCh()

	return FileInfo{}, false
}

func (s *realFileScanner) start() {
	s.started = true
	s.fileCh = make(chan FileInfo, ScanBufferSize)
	s.errCh = make(chan error, 1)

	go func() {
		defer close(s.fileCh)

		s.errCh <- filepath.WalkDir(s.root, s.visit)
	}()
}

func (s *realFileScanner) visit(path string, entry fs.DirEntry, err error) error {
	if err != nil {
		return err
	}

	relPath, err := filepath.Rel(s.root, path)
	if err != nil {
		return err
	}

	// Skip the root directory itself
	if relPath == "." {
		return nil
	}

	info, err := entry.Info()
	if err != nil {
		return err
	}

	file := FileInfo{
		Path:         path,
		RelativePath: filepath.ToSlash(relPath),
		Size:         info.Size(),
		ModTime:      info.ModTime(),
		IsDir:        entry.IsDir(),
		IsRegular:    info.Mode().IsRegular(),
	}

	select {
	case s.fileCh <- file:
		return nil
	case <-s.done:
		return errScanStopped
	}
}

func closedErrCh() chan error {
	ch := make(chan error, 1)
	ch <- nil

	return ch
}
