//nolint:varnamelen // Test files use idiomatic short variable names (t, g, etc.)
package fileops_test

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/joe/romio/pkg/fileops"
	"github.com/joe/romio/pkg/filetimes"
)

type memorySource struct {
	name   string
	data   []byte
	size   int64
	reader io.Reader
}

func newMemorySource(name, content string) *memorySource {
	return &memorySource{name: name, data: []byte(content), size: int64(len(content))}
}

func (s *memorySource) Path() string                   { return "/mem/" + s.name }
func (s *memorySource) DisplayName() string            { return s.name }
func (s *memorySource) Name() string                   { return s.name }
func (s *memorySource) Size() int64                    { return s.size }
func (s *memorySource) FileTimes() filetimes.FileTimes { return filetimes.Modified(time.Unix(1, 0)) }
func (s *memorySource) Close() error                   { return nil }

func (s *memorySource) OpenStream() (io.Reader, error) {
	if s.reader == nil {
		s.reader = bytes.NewReader(s.data)
	}

	return s.reader, nil
}

type memoryDestination struct {
	bytes.Buffer
}

func (d *memoryDestination) Path() string                   { return "/mem/out" }
func (d *memoryDestination) DisplayName() string            { return "out" }
func (d *memoryDestination) Name() string                   { return "out" }
func (d *memoryDestination) OpenStream() (io.Writer, error) { return &d.Buffer, nil }
func (d *memoryDestination) Close() error                   { return nil }

func TestCopy_ReportsProgressAndStats(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	content := strings.Repeat("rom-data", fileops.BufferSize/4)
	src := newMemorySource("game.bin", content)
	dst := &memoryDestination{}

	var deltas []int64
	stats, err := fileops.Copy(dst, src, func(delta int64) {
		deltas = append(deltas, delta)
	})

	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(stats.BytesCopied).To(Equal(int64(len(content))))
	g.Expect(dst.String()).To(Equal(content))
	g.Expect(len(deltas)).To(BeNumerically(">=", 2), "content spans several buffers")

	var total int64
	for _, delta := range deltas {
		g.Expect(delta).To(BeNumerically("<=", fileops.BufferSize))
		total += delta
	}
	g.Expect(total).To(Equal(int64(len(content))))
}

func TestCopy_DetectsSizeMismatch(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	src := newMemorySource("short.bin", "abc")
	src.size = 10

	_, err := fileops.Copy(&memoryDestination{}, src, nil)
	g.Expect(errors.Is(err, fileops.ErrSizeMismatch)).To(BeTrue())
}

func TestChecksum_KnownValues(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	sums, err := fileops.Checksum(newMemorySource("hello.txt", "hello"), nil)
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(sums.Size).To(Equal(int64(5)))
	g.Expect(sums.CRC32).To(Equal("3610a686"))
	g.Expect(sums.SHA1).To(Equal("aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d"))

	empty, err := fileops.Checksum(newMemorySource("empty", ""), nil)
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(empty.CRC32).To(Equal("00000000"))
}
