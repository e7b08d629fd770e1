//nolint:varnamelen // Test files use idiomatic short variable names (t, g, etc.)
package compression_test

import (
	"bytes"
	"errors"
	"testing"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/joe/romio/pkg/compression"
)

func TestRoundTrip_EveryEnabledAlgorithm(t *testing.T) {
	t.Parallel()

	payloads := map[string][]byte{
		"empty":     {},
		"short":     []byte("short-text"),
		"repeating": bytes.Repeat([]byte("lorem ipsum dolor sit amet "), 4096),
	}

	for _, algorithm := range compression.Enabled() {
		for name, payload := range payloads {
			t.Run(algorithm.Label()+"/"+name, func(t *testing.T) {
				t.Parallel()
				g := NewWithT(t)

				compressed, err := algorithm.CompressBytes(payload)
				g.Expect(err).ShouldNot(HaveOccurred())

				restored, err := algorithm.DecompressBytes(compressed)
				g.Expect(err).ShouldNot(HaveOccurred())
				g.Expect(bytes.Equal(restored, payload)).To(BeTrue())
			})
		}
	}
}

func TestRegistry_PureGoCodecsAreEnabled(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	for _, label := range []string{"none", "bzip2", "gzip", "lz4", "lzma", "xz", "zstd", "brotli"} {
		algorithm, err := compression.ByLabel(label)
		g.Expect(err).ShouldNot(HaveOccurred())
		g.Expect(algorithm.Enabled()).To(BeTrue(), "%s should pass its self test", label)
	}

	g.Expect(compression.All()).To(HaveLen(8))
}

func TestByLabel_Unknown(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	_, err := compression.ByLabel("arj")
	g.Expect(errors.Is(err, compression.ErrUnknownAlgorithm)).To(BeTrue())

	algorithm, err := compression.ByLabel("XZ")
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(algorithm).To(BeIdenticalTo(compression.XZ))
}

func TestByExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want *compression.Algorithm
	}{
		{name: "set.tar.bz2", want: compression.Bzip2},
		{name: "set.tar.gz", want: compression.Gzip},
		{name: "set.TGZ", want: compression.Gzip},
		{name: "set.tar.lz4", want: compression.LZ4},
		{name: "set.tar.lzma", want: compression.LZMA},
		{name: "set.tar.xz", want: compression.XZ},
		{name: "set.tar.zst", want: compression.Zstd},
		{name: "set.tar.br", want: compression.Brotli},
		{name: "set.tar", want: compression.None},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g := NewWithT(t)

			g.Expect(compression.ByExtension(tt.name)).To(BeIdenticalTo(tt.want))
		})
	}
}

func TestDetect_RecognizesOwnOutput(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	for _, algorithm := range []*compression.Algorithm{
		compression.Bzip2, compression.Gzip, compression.LZ4,
		compression.LZMA, compression.XZ, compression.Zstd,
	} {
		compressed, err := algorithm.CompressBytes([]byte("header probe"))
		g.Expect(err).ShouldNot(HaveOccurred())
		g.Expect(compression.Detect(compressed)).To(BeIdenticalTo(algorithm), algorithm.Label())
	}

	g.Expect(compression.Detect([]byte("plain text"))).To(BeNil())
}
