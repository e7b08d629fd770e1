package compression

import (
	"bytes"
	"fmt"
	"strings"
)

// The registry. Entries are fixed at compile time.
//
//nolint:gochecknoglobals // Read-only capability table
var (
	None   = newAlgorithm("none", "", nil, identityCodec{}, identityCodec{})
	Bzip2  = newAlgorithm("bzip2", ".bz2", []byte("BZh"), bzip2Codec{}, bzip2Codec{})
	Gzip   = newAlgorithm("gzip", ".gz", []byte{0x1f, 0x8b}, gzipCodec{}, gzipCodec{})
	LZ4    = newAlgorithm("lz4", ".lz4", []byte{0x04, 0x22, 0x4d, 0x18}, lz4Codec{}, lz4Codec{})
	LZMA   = newAlgorithm("lzma", ".lzma", []byte{0x5d, 0x00, 0x00}, lzmaCodec{}, lzmaCodec{})
	XZ     = newAlgorithm("xz", ".xz", []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}, xzCodec{}, xzCodec{})
	Zstd   = newAlgorithm("zstd", ".zst", []byte{0x28, 0xb5, 0x2f, 0xfd}, zstdCodec{}, zstdCodec{})
	Brotli = newAlgorithm("brotli", ".br", nil, brotliCodec{}, brotliCodec{})

	all = []*Algorithm{None, Bzip2, Gzip, LZ4, LZMA, XZ, Zstd, Brotli}
)

// All returns every registered algorithm, enabled or not.
func All() []*Algorithm {
	out := make([]*Algorithm, len(all))
	copy(out, all)

	return out
}

// ByExtension finds the algorithm whose extension ends name (".tar.xz" → xz).
// Names without a known extension map to None.
func ByExtension(name string) *Algorithm {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, ".tgz") {
		return Gzip
	}

	for _, algorithm := range all {
		if algorithm.extension != "" && strings.HasSuffix(lower, algorithm.extension) {
			return algorithm
		}
	}

	return None
}

// ByLabel finds an algorithm by its label, case-insensitively.
func ByLabel(label string) (*Algorithm, error) {
	for _, algorithm := range all {
		if strings.EqualFold(algorithm.label, label) {
			return algorithm, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, label)
}

// Detect identifies a compressed stream from its first bytes.
// It returns nil when the header matches no algorithm with a signature.
func Detect(header []byte) *Algorithm {
	for _, algorithm := range all {
		if len(algorithm.magic) > 0 && bytes.HasPrefix(header, algorithm.magic) {
			return algorithm
		}
	}

	return nil
}

// Enabled returns the algorithms usable in this process.
func Enabled() []*Algorithm {
	var out []*Algorithm

	for _, algorithm := range all {
		if algorithm.Enabled() {
			out = append(out, algorithm)
		}
	}

	return out
}
