//go:build integration

package integration_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers
	"github.com/rs/zerolog"

	"github.com/joe/romio/internal/pipeline"
	"github.com/joe/romio/pkg/archive"
	"github.com/joe/romio/pkg/compression"
	"github.com/joe/romio/pkg/fileops"
	"github.com/joe/romio/pkg/filesystem"
	"github.com/joe/romio/pkg/spec"
)

// pack writes each loose file into a new container at target.
func pack(t *testing.T, target string, loose []string) {
	t.Helper()
	g := NewWithT(t)

	destination, err := archive.CreateDestination(target, archive.Options{})
	g.Expect(err).ShouldNot(HaveOccurred())

	for _, path := range loose {
		source, err := spec.OpenFile(path)
		g.Expect(err).ShouldNot(HaveOccurred())

		entry, err := destination.CreateEntry(filepath.Base(path), source)
		g.Expect(err).ShouldNot(HaveOccurred())

		_, err = fileops.Copy(entry, source, nil)
		g.Expect(err).ShouldNot(HaveOccurred())
		g.Expect(entry.Close()).To(Succeed())
		g.Expect(source.Close()).To(Succeed())
	}

	g.Expect(destination.Close()).To(Succeed())
}

// TestIntegration_ScanThenRepack scans a tree of mixed containers, repacks
// every entry into one tar.gz and checks the rescanned checksums match.
func TestIntegration_ScanThenRepack(t *testing.T) {
	g := NewWithT(t)

	staging := t.TempDir()
	root := t.TempDir()

	var loose []string

	for i := range 10 {
		path := filepath.Join(staging, "rom"+string(rune('a'+i))+".bin")
		g.Expect(os.WriteFile(path, []byte("content "+string(rune('a'+i))), 0o600)).To(Succeed())
		loose = append(loose, path)
	}

	pack(t, filepath.Join(root, "first.zip"), loose[:4])
	g.Expect(os.MkdirAll(filepath.Join(root, "nested"), 0o750)).To(Succeed())
	pack(t, filepath.Join(root, "nested", "second.tar"), loose[4:8])

	for _, path := range loose[8:] {
		g.Expect(os.Rename(path, filepath.Join(root, filepath.Base(path)))).To(Succeed())
	}

	files, err := filesystem.Discover(root, nil)
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(files).To(HaveLen(4))

	items := make([]pipeline.Item, 0, len(files))
	for _, file := range files {
		items = append(items, pipeline.Item{Path: file.Path, Size: file.Size})
	}

	collector := pipeline.NewCollector()
	scanner := &pipeline.Scanner{Context: context.Background(), Logger: zerolog.Nop()}
	pool := &pipeline.Pool{Workers: 3, Listener: collector, Logger: zerolog.Nop()}

	result := pool.Run(items, scanner.Scan)
	g.Expect(result.HadErrors).To(BeFalse())
	g.Expect(result.Finished).To(Equal(4))

	events := collector.Events()
	g.Expect(events[0]).To(BeAssignableToTypeOf(pipeline.InitEvent{}))
	g.Expect(events[len(events)-1]).To(Equal(pipeline.AllFinishedEvent{}))

	records := scanner.Records()
	g.Expect(records).To(HaveLen(10))

	// Repack everything into one compressed tar.
	job := pipeline.CopyJob{Destination: filepath.Join(t.TempDir(), "all.tar.gz")}
	for _, record := range records {
		job.Entries = append(job.Entries, pipeline.EntryRef{
			Source: containerOrFile(record),
			Entry:  entryName(record),
		})
	}

	copier := &pipeline.Copier{Context: context.Background(), Logger: zerolog.Nop()}
	copied := pool.Run(pipeline.Items([]pipeline.CopyJob{job}), copier.Work([]pipeline.CopyJob{job}))
	g.Expect(copied.HadErrors).To(BeFalse(), "%v", copied.Errors)

	format, err := archive.Detect(job.Destination)
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(format.Compression).To(BeIdenticalTo(compression.Gzip))

	rescanner := &pipeline.Scanner{Context: context.Background(), Logger: zerolog.Nop()}
	rescan := pool.Run([]pipeline.Item{{Path: job.Destination}}, rescanner.Scan)
	g.Expect(rescan.HadErrors).To(BeFalse())

	want := map[string]fileops.Checksums{}
	for _, record := range records {
		want[filepath.Base(record.Name)] = record.Checksums
	}

	got := map[string]fileops.Checksums{}
	for _, record := range rescanner.Records() {
		got[record.Name] = record.Checksums
	}

	g.Expect(got).To(Equal(want))
}

func containerOrFile(record pipeline.ScanRecord) string {
	if record.Container == "" {
		return record.Name
	}

	return record.Container
}

func entryName(record pipeline.ScanRecord) string {
	if record.Container == "" {
		return ""
	}

	return record.Name
}
