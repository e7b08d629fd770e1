package pipeline_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/joe/romio/internal/pipeline"
	"github.com/joe/romio/pkg/fileops"
	"github.com/joe/romio/pkg/filetimes"
)

func TestWriteReport(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	records := []pipeline.ScanRecord{
		{
			Container: "/roms/set.zip",
			Name:      "a.bin",
			Checksums: fileops.Checksums{Size: 5, CRC32: "3610a686", SHA1: "aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d"},
			Times:     filetimes.Modified(time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC)),
		},
		{
			Name:      "/roms/loose.bin",
			Checksums: fileops.Checksums{Size: 12, CRC32: "00000000", SHA1: "da39a3ee5e6b4b0d3255bfef95601890afd80709"},
		},
	}

	var out bytes.Buffer
	g.Expect(pipeline.WriteReport(&out, records)).To(Succeed())

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	g.Expect(lines).To(HaveLen(2))
	g.Expect(strings.Fields(lines[0])).To(Equal([]string{
		"3610a686", "aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d", "5", "2021-03-04T05:06:07Z", "/roms/set.zip/a.bin",
	}))
	g.Expect(strings.Fields(lines[1])).To(Equal([]string{
		"00000000", "da39a3ee5e6b4b0d3255bfef95601890afd80709", "12", "-", "/roms/loose.bin",
	}))
}
