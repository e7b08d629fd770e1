package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joe/romio/pkg/compression"
	"github.com/joe/romio/pkg/spec"
)

// Exported constants.
const (
	// HeaderProbeSize is how many leading bytes Detect inspects.
	HeaderProbeSize = 512
	// tarMagicOffset is where "ustar" sits in a tar header.
	tarMagicOffset = 257
)

// Signatures of the containers recognized from their first bytes.
//
//nolint:gochecknoglobals // Fixed signature tables
var (
	zipMagic      = []byte("PK\x03\x04")
	zipEmptyMagic = []byte("PK\x05\x06")
	rarMagic      = []byte("Rar!\x1a\x07")
	sevenZipMagic = []byte{'7', 'z', 0xbc, 0xaf, 0x27, 0x1c}
	tarMagic      = []byte("ustar")
)

// Format is a detected container kind plus, for tar, its wrapping algorithm.
type Format struct {
	Kind        Kind
	Compression *compression.Algorithm
}

// String returns e.g. "tar+xz".
func (f Format) String() string {
	if f.Kind == KindTar && f.Compression != nil && f.Compression != compression.None {
		return "tar+" + f.Compression.Label()
	}

	return f.Kind.String()
}

// Detect identifies the container at path from its signature, falling back
// to the file extension.
func Detect(path string) (Format, error) {
	file, err := os.Open(path) // #nosec G304 - file path is controlled by caller
	if err != nil {
		return Format{}, fmt.Errorf("failed to open %s: %w", path, err)
	}

	defer func() {
		_ = file.Close()
	}()

	header := make([]byte, HeaderProbeSize)

	n, err := io.ReadFull(file, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return Format{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	header = header[:n]

	if format, ok := detectHeader(header, file); ok {
		return format, nil
	}

	if format, ok := detectExtension(path); ok {
		return format, nil
	}

	return Format{}, fmt.Errorf("%s: %w", path, ErrUnknownFormat)
}

// IsArchive reports whether path holds a container this package can read.
func IsArchive(path string) bool {
	_, err := Detect(path)

	return err == nil
}

// OpenSource opens the container at path with the backend chosen by
// SelectBackend.
func OpenSource(ctx context.Context, path string, opts Options) (Source, error) {
	path = spec.AbsPath(path)

	format, err := Detect(path)
	if err != nil {
		return nil, err
	}

	backend, err := SelectBackend(format.Kind, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	opts.Logger.Debug().Str("archive", path).Stringer("format", format).Str("backend", backend.String()).Msg("opening archive")

	switch backend {
	case BackendZip:
		return openZipSource(path, opts)
	case BackendTar:
		return openTarSource(path, format.Compression, opts)
	case BackendSevenZip:
		return openProcessSource(ctx, path, format.Kind, sevenZipTool{path: opts.Tools.SevenZip}, opts), nil
	case BackendUnrar:
		return openProcessSource(ctx, path, format.Kind, unrarTool{path: opts.Tools.Unrar}, opts), nil
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnknownFormat)
	}
}

// CreateDestination creates a container at path: ".zip" makes a zip,
// ".tar" with an optional compression extension makes a tar. Any other path
// is treated as a directory receiving loose files.
func CreateDestination(path string, opts Options) (Destination, error) {
	path = spec.AbsPath(path)
	lower := strings.ToLower(path)

	switch {
	case strings.HasSuffix(lower, ".zip"):
		return createZipDestination(path, opts)
	case isTarName(lower):
		algorithm := opts.Compression
		if algorithm == nil {
			algorithm = compression.ByExtension(lower)
		}

		return createTarDestination(path, algorithm, opts)
	default:
		return CreateDirectory(path, opts), nil
	}
}

func detectExtension(path string) (Format, bool) {
	lower := strings.ToLower(path)

	switch {
	case strings.HasSuffix(lower, ".zip"):
		return Format{Kind: KindZip}, true
	case strings.HasSuffix(lower, ".rar"):
		return Format{Kind: KindRar}, true
	case strings.HasSuffix(lower, ".7z"):
		return Format{Kind: KindSevenZip}, true
	case isTarName(lower):
		return Format{Kind: KindTar, Compression: compression.ByExtension(lower)}, true
	default:
		return Format{}, false
	}
}

func detectHeader(header []byte, file io.ReadSeeker) (Format, bool) {
	switch {
	case bytes.HasPrefix(header, zipMagic), bytes.HasPrefix(header, zipEmptyMagic):
		return Format{Kind: KindZip}, true
	case bytes.HasPrefix(header, rarMagic):
		return Format{Kind: KindRar}, true
	case bytes.HasPrefix(header, sevenZipMagic):
		return Format{Kind: KindSevenZip}, true
	case hasTarMagic(header):
		return Format{Kind: KindTar, Compression: compression.None}, true
	}

	algorithm := compression.Detect(header)
	if algorithm == nil || !algorithm.Enabled() {
		return Format{}, false
	}

	// A compressed stream is only a container when a tar header is inside.
	_, err := file.Seek(0, io.SeekStart)
	if err != nil {
		return Format{}, false
	}

	reader, err := algorithm.Decompress(file)
	if err != nil {
		return Format{}, false
	}

	defer func() {
		_ = reader.Close()
	}()

	inner := make([]byte, HeaderProbeSize)

	n, _ := io.ReadFull(reader, inner)
	if !hasTarMagic(inner[:n]) {
		return Format{}, false
	}

	return Format{Kind: KindTar, Compression: algorithm}, true
}

func hasTarMagic(header []byte) bool {
	end := tarMagicOffset + len(tarMagic)

	return len(header) >= end && bytes.Equal(header[tarMagicOffset:end], tarMagic)
}

func isTarName(lower string) bool {
	if strings.HasSuffix(lower, ".tar") || strings.HasSuffix(lower, ".tgz") {
		return true
	}

	for _, algorithm := range compression.All() {
		if algorithm.Extension() != "" && strings.HasSuffix(lower, ".tar"+algorithm.Extension()) {
			return true
		}
	}

	return false
}
