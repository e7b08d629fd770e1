// Package compression is the fixed registry of stream compression algorithms
// used to wrap tar archives and to locate pre-compressed files.
//
// Each algorithm decides once, on first observation, whether it is usable in
// the current process: its codec must survive a round-trip self test and its
// label must not be listed in the ROMIO_DISABLED_COMPRESSION environment
// variable. The decision never changes afterwards. Using a disabled algorithm
// fails with *UnsupportedAlgorithmError; bytes are never passed through.
package compression

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Exported constants.
const (
	// DisabledEnv lists labels (comma-separated) that must be treated as unavailable.
	DisabledEnv = "ROMIO_DISABLED_COMPRESSION"
)

// Exported variables.
var (
	ErrUnsupportedAlgorithm = errors.New("unsupported compression algorithm")
	ErrUnknownAlgorithm     = errors.New("unknown compression algorithm")
)

// Compressor can compress data by wrapping a writer.
type Compressor interface {
	// OpenWriter wraps w with a writer that compresses what is written.
	// The writer must be closed when writing is finished.
	OpenWriter(w io.Writer) (io.WriteCloser, error)
}

// Decompressor can decompress data by wrapping a reader.
type Decompressor interface {
	// OpenReader wraps r with a reader that decompresses what is read.
	OpenReader(r io.Reader) (io.ReadCloser, error)
}

// Algorithm is one registry entry.
type Algorithm struct {
	label        string
	extension    string
	magic        []byte
	compressor   Compressor
	decompressor Decompressor
	enabled      func() bool
}

// UnsupportedAlgorithmError is returned when a disabled algorithm is used.
type UnsupportedAlgorithmError struct {
	Label string
}

// Error implements the error interface.
func (e *UnsupportedAlgorithmError) Error() string {
	return fmt.Sprintf("%s: %s", ErrUnsupportedAlgorithm, e.Label)
}

// Is makes errors.Is(err, ErrUnsupportedAlgorithm) match.
func (e *UnsupportedAlgorithmError) Is(target error) bool {
	return target == ErrUnsupportedAlgorithm
}

// Compress wraps w with this algorithm's compressor.
func (a *Algorithm) Compress(w io.Writer) (io.WriteCloser, error) {
	if !a.Enabled() {
		return nil, &UnsupportedAlgorithmError{Label: a.label}
	}

	writer, err := a.compressor.OpenWriter(w)
	if err != nil {
		return nil, fmt.Errorf("failed to start %s compressor: %w", a.label, err)
	}

	return writer, nil
}

// CompressBytes compresses data in memory.
func (a *Algorithm) CompressBytes(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	writer, err := a.Compress(&buf)
	if err != nil {
		return nil, err
	}

	_, err = writer.Write(data)
	if err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("failed to %s-compress: %w", a.label, err)
	}

	err = writer.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to finish %s stream: %w", a.label, err)
	}

	return buf.Bytes(), nil
}

// Decompress wraps r with this algorithm's decompressor.
func (a *Algorithm) Decompress(r io.Reader) (io.ReadCloser, error) {
	if !a.Enabled() {
		return nil, &UnsupportedAlgorithmError{Label: a.label}
	}

	reader, err := a.decompressor.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to start %s decompressor: %w", a.label, err)
	}

	return reader, nil
}

// DecompressBytes decompresses data in memory.
func (a *Algorithm) DecompressBytes(data []byte) ([]byte, error) {
	reader, err := a.Decompress(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = reader.Close()
	}()

	out, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to %s-decompress: %w", a.label, err)
	}

	return out, nil
}

// Enabled reports whether the algorithm can be used in this process.
func (a *Algorithm) Enabled() bool {
	return a.enabled()
}

// Extension returns the conventional file extension, including the dot.
// It is empty for the identity algorithm.
func (a *Algorithm) Extension() string {
	return a.extension
}

// Label returns the algorithm name.
func (a *Algorithm) Label() string {
	return a.label
}

// String returns the label.
func (a *Algorithm) String() string {
	return a.label
}

// newAlgorithm builds a registry entry whose capability is decided lazily, once.
func newAlgorithm(label, extension string, magic []byte, compressor Compressor, decompressor Decompressor) *Algorithm {
	algorithm := &Algorithm{
		label:        label,
		extension:    extension,
		magic:        magic,
		compressor:   compressor,
		decompressor: decompressor,
	}

	algorithm.enabled = sync.OnceValue(func() bool {
		if disabledByEnvironment()[label] {
			return false
		}

		return selfTest(compressor, decompressor)
	})

	return algorithm
}

// unexported variables.
var (
	//nolint:gochecknoglobals // Read once per process
	disabledByEnvironment = sync.OnceValue(func() map[string]bool {
		return parseDisabled(os.Getenv(DisabledEnv))
	})

	//nolint:gochecknoglobals // Fixed payload for the capability probe
	selfTestPayload = []byte("romio capability probe: the quick brown fox jumps over the lazy dog")
)

func parseDisabled(value string) map[string]bool {
	disabled := make(map[string]bool)

	for _, label := range strings.Split(value, ",") {
		label = strings.ToLower(strings.TrimSpace(label))
		if label != "" {
			disabled[label] = true
		}
	}

	return disabled
}

// selfTest round-trips a small payload through the codec.
func selfTest(compressor Compressor, decompressor Decompressor) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	var buf bytes.Buffer

	writer, err := compressor.OpenWriter(&buf)
	if err != nil {
		return false
	}

	_, err = writer.Write(selfTestPayload)
	if err != nil {
		return false
	}

	err = writer.Close()
	if err != nil {
		return false
	}

	reader, err := decompressor.OpenReader(&buf)
	if err != nil {
		return false
	}

	defer func() {
		_ = reader.Close()
	}()

	out, err := io.ReadAll(reader)
	if err != nil {
		return false
	}

	return bytes.Equal(out, selfTestPayload)
}
