//nolint:varnamelen // Test files use idiomatic short variable names (t, g, etc.)
package filetimes_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/joe/romio/pkg/filetimes"
)

func TestNew_TruncatesToMicroseconds(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	precise := time.Date(2023, 12, 20, 21, 39, 6, 116054321, time.UTC)

	fromPrecise := filetimes.New(precise, precise, precise)
	fromTruncated := filetimes.New(
		precise.Truncate(time.Microsecond),
		precise.Truncate(time.Microsecond),
		precise.Truncate(time.Microsecond),
	)

	g.Expect(fromPrecise.Equal(fromTruncated)).To(BeTrue(), "%s != %s", fromPrecise, fromTruncated)

	modified, ok := fromPrecise.Modified()
	g.Expect(ok).To(BeTrue())
	g.Expect(modified.Nanosecond()).To(Equal(116054000))
}

func TestTruncatedTo_CascadesIdempotently(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	instants := []time.Time{
		time.Date(2023, 12, 20, 21, 39, 6, 116054321, time.UTC),
		time.Date(1999, 1, 1, 0, 0, 0, 999999999, time.UTC),
		time.Date(1965, 6, 1, 12, 30, 0, 123456789, time.UTC),
		time.Unix(0, 1),
	}

	for _, instant := range instants {
		micros := filetimes.Modified(instant)
		direct := filetimes.FileTimes{}.WithModified(instant).TruncatedTo(time.Millisecond)

		g.Expect(micros.TruncatedTo(time.Millisecond).Equal(direct)).To(BeTrue(),
			"millis of micros should equal millis for %s", instant)

		viaMillis := micros.TruncatedTo(time.Millisecond).TruncatedTo(time.Second)
		g.Expect(viaMillis.Equal(micros.TruncatedTo(time.Second))).To(BeTrue(),
			"seconds of millis should equal seconds for %s", instant)

		g.Expect(micros.TruncatedTo(time.Nanosecond).Equal(micros)).To(BeTrue(),
			"finer resolutions are a no-op")
	}
}

func TestFileTimes_AbsentInstants(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	ft := filetimes.Modified(time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC))

	_, ok := ft.Accessed()
	g.Expect(ok).To(BeFalse())
	_, ok = ft.Created()
	g.Expect(ok).To(BeFalse())
	g.Expect(ft.IsZero()).To(BeFalse())
	g.Expect(filetimes.FileTimes{}.IsZero()).To(BeTrue())
	g.Expect(filetimes.FileTimes{}.Apply("/does/not/matter")).To(Succeed())
}

func TestApply_RoundTripsThroughFilesystem(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	path := filepath.Join(t.TempDir(), "game.bin")
	g.Expect(os.WriteFile(path, []byte("rom"), 0o600)).To(Succeed())

	modified := time.Date(2021, 5, 1, 12, 0, 0, 123456789, time.UTC)
	accessed := time.Date(2022, 6, 2, 13, 1, 1, 987654321, time.UTC)
	want := filetimes.New(modified, accessed, time.Time{})

	g.Expect(want.Apply(path)).To(Succeed())

	got, err := filetimes.Stat(path)
	g.Expect(err).ShouldNot(HaveOccurred())

	gotModified, ok := got.Modified()
	g.Expect(ok).To(BeTrue())
	g.Expect(gotModified.Equal(modified.Truncate(time.Microsecond))).To(BeTrue(),
		"modified %s, want %s", gotModified, modified.Truncate(time.Microsecond))
}

func TestApply_MissingFileIsAnError(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	ft := filetimes.Modified(time.Now())
	err := ft.Apply(filepath.Join(t.TempDir(), "missing"))

	g.Expect(err).Should(HaveOccurred())
	g.Expect(err.Error()).To(ContainSubstring("failed to change times"))
}

func TestParseLocal_UsesCapturedZone(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	parsed, err := filetimes.ParseLocal("2006-01-02 15:04:05", " 2019-03-04 05:06:07 ")
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(parsed.Location()).To(Equal(filetimes.LocalZone()))
	g.Expect(parsed.Year()).To(Equal(2019))
	g.Expect(parsed.Second()).To(Equal(7))

	g.Expect(filetimes.LocalZone()).To(BeIdenticalTo(filetimes.LocalZone()))

	_, err = filetimes.ParseLocal("2006-01-02 15:04:05", "yesterday")
	g.Expect(err).Should(HaveOccurred())
}
