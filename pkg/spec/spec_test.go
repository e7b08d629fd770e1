//nolint:varnamelen // Test files use idiomatic short variable names (t, g, etc.)
package spec_test

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/joe/romio/pkg/filetimes"
	"github.com/joe/romio/pkg/spec"
)

type fixedParent string

func (p fixedParent) Path() string        { return string(p) }
func (p fixedParent) DisplayName() string { return string(p) }

func writeFile(t *testing.T, dir, name, content string, modTime time.Time) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	if err := os.Chtimes(path, modTime, modTime); err != nil {
		t.Fatalf("Failed to set test file times: %v", err)
	}

	return path
}

func TestMemoName_ComputesOnce(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	var memo spec.MemoName
	var calls atomic.Int32

	names := make([]string, 16)

	var wg sync.WaitGroup
	for i := range names {
		wg.Go(func() {
			names[i] = memo.Get(func() string {
				calls.Add(1)
				return "roms/game.bin"
			})
		})
	}
	wg.Wait()

	for _, name := range names {
		g.Expect(name).To(Equal("roms/game.bin"))
	}

	g.Expect(calls.Load()).To(BeNumerically(">=", 1))
	before := calls.Load()
	g.Expect(memo.Get(func() string { return "other" })).To(Equal("roms/game.bin"))
	g.Expect(calls.Load()).To(Equal(before))
}

func TestChildPath_UsesHostSeparator(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	parent := fixedParent(filepath.Join(string(filepath.Separator)+"roms", "set.zip"))
	got := spec.ChildPath(parent, "dir/game.bin")

	g.Expect(got).To(Equal(filepath.Join(parent.Path(), "dir", "game.bin")))
}

func TestOpenFile_CapturesTimesAndReusesStream(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	modTime := time.Date(2020, 2, 3, 4, 5, 6, 789123456, time.UTC)
	path := writeFile(t, t.TempDir(), "short-text.txt", "hello", modTime)

	src, err := spec.OpenFile(path)
	g.Expect(err).ShouldNot(HaveOccurred())
	defer func() {
		_ = src.Close()
	}()

	g.Expect(src.Name()).To(Equal("short-text.txt"))
	g.Expect(src.Size()).To(Equal(int64(5)))
	g.Expect(src.DisplayName()).To(Equal(src.Path()))

	modified, ok := src.FileTimes().Modified()
	g.Expect(ok).To(BeTrue())
	g.Expect(modified.Equal(modTime.Truncate(time.Microsecond))).To(BeTrue())

	// Times are captured at open, not at read.
	later := modTime.Add(time.Hour)
	g.Expect(os.Chtimes(path, later, later)).To(Succeed())

	first, err := src.OpenStream()
	g.Expect(err).ShouldNot(HaveOccurred())
	second, err := src.OpenStream()
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(second).To(BeIdenticalTo(first))

	data, err := io.ReadAll(first)
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(string(data)).To(Equal("hello"))

	modified, _ = src.FileTimes().Modified()
	g.Expect(modified.Equal(modTime.Truncate(time.Microsecond))).To(BeTrue())
}

func TestOpenFile_RejectsDirectoriesAndMissingFiles(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	dir := t.TempDir()

	_, err := spec.OpenFile(dir)
	g.Expect(errors.Is(err, spec.ErrNotRegularFile)).To(BeTrue())

	_, err = spec.OpenFile(filepath.Join(dir, "missing.bin"))
	g.Expect(errors.Is(err, os.ErrNotExist)).To(BeTrue())
}

func TestFileSource_CloseIsIdempotent(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	path := writeFile(t, t.TempDir(), "a.bin", "abc", time.Now())

	unopened, err := spec.OpenFile(path)
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(unopened.Close()).To(Succeed())
	g.Expect(unopened.Close()).To(Succeed())

	opened, err := spec.OpenFile(path)
	g.Expect(err).ShouldNot(HaveOccurred())
	_, err = opened.OpenStream()
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(opened.Close()).To(Succeed())
	g.Expect(opened.Close()).To(Succeed())

	_, err = opened.OpenStream()
	g.Expect(errors.Is(err, os.ErrClosed)).To(BeTrue())
}

func TestFileDestination_PropagatesSourceTimes(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	dir := t.TempDir()
	modTime := time.Date(2019, 7, 8, 9, 10, 11, 121314151, time.UTC)
	srcPath := writeFile(t, dir, "lorem-ipsum.txt", "lorem ipsum dolor sit amet", modTime)

	src, err := spec.OpenFile(srcPath)
	g.Expect(err).ShouldNot(HaveOccurred())
	defer func() {
		_ = src.Close()
	}()

	dstPath := filepath.Join(dir, "out", "nested", "lorem-ipsum.txt")
	dst := spec.CreateFile(dstPath, src)

	reader, err := src.OpenStream()
	g.Expect(err).ShouldNot(HaveOccurred())
	writer, err := dst.OpenStream()
	g.Expect(err).ShouldNot(HaveOccurred())

	_, err = io.Copy(writer, reader)
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(dst.Close()).To(Succeed())
	g.Expect(dst.Close()).To(Succeed())

	reopened, err := spec.OpenFile(dstPath)
	g.Expect(err).ShouldNot(HaveOccurred())
	defer func() {
		_ = reopened.Close()
	}()

	gotModified, _ := reopened.FileTimes().Modified()
	wantModified, _ := src.FileTimes().Modified()
	g.Expect(gotModified.Equal(wantModified)).To(BeTrue(), "got %s want %s", gotModified, wantModified)
	g.Expect(reopened.Size()).To(Equal(src.Size()))
}

func TestFileDestination_ApplyFailureIsReported(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	dir := t.TempDir()
	dstPath := filepath.Join(dir, "out.bin")
	dst := spec.CreateFile(dstPath, &vanishingSource{remove: dstPath})

	_, err := dst.OpenStream()
	g.Expect(err).ShouldNot(HaveOccurred())

	err = dst.Close()
	g.Expect(err).Should(HaveOccurred())
	g.Expect(err.Error()).To(ContainSubstring("failed to change times"))
}

func TestFileDestination_UnopenedCloseWritesNothing(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	dstPath := filepath.Join(t.TempDir(), "never.bin")
	dst := spec.CreateFile(dstPath, nil)

	g.Expect(dst.Close()).To(Succeed())
	_, err := os.Stat(dstPath)
	g.Expect(os.IsNotExist(err)).To(BeTrue())
}

// vanishingSource removes the destination right before its times are read,
// so applying them must fail.
type vanishingSource struct {
	remove string
}

func (s *vanishingSource) Path() string                   { return "/vanishing" }
func (s *vanishingSource) DisplayName() string            { return "/vanishing" }
func (s *vanishingSource) Name() string                   { return "vanishing" }
func (s *vanishingSource) Size() int64                    { return 0 }
func (s *vanishingSource) OpenStream() (io.Reader, error) { return nil, io.EOF }
func (s *vanishingSource) Close() error                   { return nil }

func (s *vanishingSource) FileTimes() filetimes.FileTimes {
	_ = os.Remove(s.remove)

	return filetimes.Modified(time.Now())
}
