package pipeline_test

import (
	"strings"
	"testing"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/joe/romio/internal/pipeline"
)

func TestReadJobs_GroupsByDestination(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	input := strings.Join([]string{
		"# destination\tsource\tentry\ttarget",
		"out/set.zip\tin/a.zip\talpha.bin\trenamed-alpha.bin",
		"out/loose\tin/readme.txt",
		"",
		"out/set.zip\tin/b.7z\tbeta.bin",
	}, "\n")

	jobs, err := pipeline.ReadJobs(strings.NewReader(input), true)
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(jobs).To(Equal([]pipeline.CopyJob{
		{
			Destination: "out/set.zip",
			Overwrite:   true,
			Entries: []pipeline.EntryRef{
				{Source: "in/a.zip", Entry: "alpha.bin", Target: "renamed-alpha.bin"},
				{Source: "in/b.7z", Entry: "beta.bin"},
			},
		},
		{
			Destination: "out/loose",
			Overwrite:   true,
			Entries:     []pipeline.EntryRef{{Source: "in/readme.txt"}},
		},
	}))
}

func TestReadJobs_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{"one field", "out/set.zip\n"},
		{"too many fields", "a\tb\tc\td\te\n"},
		{"empty source", "out/set.zip\t \n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g := NewWithT(t)

			_, err := pipeline.ReadJobs(strings.NewReader(tt.input), false)
			g.Expect(err).Should(MatchError(pipeline.ErrBadJobLine))
			g.Expect(err.Error()).To(ContainSubstring("line 1"))
		})
	}
}

func TestReadJobs_Empty(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	jobs, err := pipeline.ReadJobs(strings.NewReader(""), false)
	g.Expect(err).ShouldNot(HaveOccurred())
	g.Expect(jobs).To(BeEmpty())
}
