//nolint:varnamelen // Test files use idiomatic short variable names (t, g, etc.)
package archive_test

import (
	"archive/tar"
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/joe/romio/pkg/archive"
	"github.com/joe/romio/pkg/compression"
)

// fixture is one member of a test container.
type fixture struct {
	name     string
	content  string
	modified time.Time
	dir      bool
}

// standardFixtures are written in this physical order.
func standardFixtures() []fixture {
	return []fixture{
		{name: "short-text.txt", content: "short-text\n", modified: time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC)},
		{
			name:     "lorem-ipsum.txt",
			content:  strings.Repeat("Lorem ipsum dolor sit amet, consectetur adipiscing elit. ", 200),
			modified: time.Date(2022, 8, 9, 10, 11, 12, 0, time.UTC),
		},
	}
}

func writeZipFixture(t *testing.T, path string, members []fixture) {
	t.Helper()
	g := NewWithT(t)

	file, err := os.Create(path)
	g.Expect(err).ShouldNot(HaveOccurred())

	writer := zip.NewWriter(file)

	for _, member := range members {
		header := &zip.FileHeader{Name: member.name, Method: zip.Deflate, Modified: member.modified}
		if member.dir {
			header.Name += "/"
			header.Method = zip.Store
		}

		w, err := writer.CreateHeader(header)
		g.Expect(err).ShouldNot(HaveOccurred())

		_, err = io.WriteString(w, member.content)
		g.Expect(err).ShouldNot(HaveOccurred())
	}

	g.Expect(writer.Close()).To(Succeed())
	g.Expect(file.Close()).To(Succeed())
}

func writeTarFixture(t *testing.T, path string, algorithm *compression.Algorithm, members []fixture) {
	t.Helper()
	g := NewWithT(t)

	file, err := os.Create(path)
	g.Expect(err).ShouldNot(HaveOccurred())

	compressed, err := algorithm.Compress(file)
	g.Expect(err).ShouldNot(HaveOccurred())

	writer := tar.NewWriter(compressed)

	for _, member := range members {
		header := &tar.Header{
			Typeflag: tar.TypeReg,
			Name:     member.name,
			Mode:     0o644,
			Size:     int64(len(member.content)),
			ModTime:  member.modified,
			Format:   tar.FormatPAX,
		}
		if member.dir {
			header.Typeflag = tar.TypeDir
			header.Name += "/"
			header.Size = 0
			header.Mode = 0o755
		}

		g.Expect(writer.WriteHeader(header)).To(Succeed())

		if !member.dir {
			_, err = io.WriteString(writer, member.content)
			g.Expect(err).ShouldNot(HaveOccurred())
		}
	}

	g.Expect(writer.Close()).To(Succeed())
	g.Expect(compressed.Close()).To(Succeed())
	g.Expect(file.Close()).To(Succeed())
}

// container names one fixture container built in a temp dir.
type container struct {
	label string
	build func(t *testing.T, members []fixture) string
}

// readableContainers covers zip and tar wrapped by every enabled algorithm.
func readableContainers() []container {
	containers := []container{{
		label: "zip",
		build: func(t *testing.T, members []fixture) string {
			t.Helper()
			path := filepath.Join(t.TempDir(), "set.zip")
			writeZipFixture(t, path, members)

			return path
		},
	}}

	for _, algorithm := range compression.Enabled() {
		containers = append(containers, container{
			label: "tar+" + algorithm.Label(),
			build: func(t *testing.T, members []fixture) string {
				t.Helper()
				path := filepath.Join(t.TempDir(), "set.tar"+algorithm.Extension())
				writeTarFixture(t, path, algorithm, members)

				return path
			},
		})
	}

	return containers
}

// drained is what a full pass over a source produced.
type drained struct {
	names    []string
	contents map[string]string
	err      error
}

// drain reads every entry and its bytes until Next fails.
func drain(t *testing.T, source archive.Source) drained {
	t.Helper()
	g := NewWithT(t)

	out := drained{contents: map[string]string{}}

	for {
		entry, err := source.Next()
		if err != nil {
			out.err = err
			return out
		}

		stream, err := entry.OpenStream()
		g.Expect(err).ShouldNot(HaveOccurred())

		var buf bytes.Buffer
		_, err = io.Copy(&buf, stream)
		g.Expect(err).ShouldNot(HaveOccurred())
		g.Expect(entry.Close()).To(Succeed())

		out.names = append(out.names, entry.RelativeName())
		out.contents[entry.RelativeName()] = buf.String()
	}
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF)
}
