//nolint:varnamelen // Test files use idiomatic short variable names (t, g, etc.)
package archive

import (
	"fmt"
	"testing"
	"time"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers
)

func TestNormalizeName(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"plain.bin":          "plain.bin",
		"./disk/track.bin":   "disk/track.bin",
		`disk\track.bin`:     "disk/track.bin",
		"/leading/slash.bin": "leading/slash.bin",
		"dir/":               "dir",
		"a//b/../c.bin":      "a/c.bin",
		"Poke\u0301mon.gb":   "Pok\u00e9mon.gb",
	}

	for input, want := range cases {
		t.Run(input, func(t *testing.T) {
			t.Parallel()
			NewWithT(t).Expect(NormalizeName(input)).To(Equal(want))
		})
	}
}

func TestNameFilter(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	filter := newNameFilter([]string{"b.bin", `dir\a.bin`, "b.bin", "", "zzz"})
	g.Expect(filter.isEmpty()).To(BeFalse())
	g.Expect(filter.requested).To(Equal([]string{"b.bin", "dir/a.bin", "zzz"}))

	g.Expect(filter.accepts("other.bin")).To(BeFalse())
	g.Expect(filter.accepts("dir/a.bin")).To(BeTrue())
	g.Expect(filter.missing()).To(Equal([]string{"b.bin", "zzz"}))

	g.Expect(filter.accepts("b.bin")).To(BeTrue())
	g.Expect(filter.missing()).To(Equal([]string{"zzz"}))

	empty := newNameFilter(nil)
	g.Expect(empty.isEmpty()).To(BeTrue())
	g.Expect(empty.accepts("anything")).To(BeTrue())
	g.Expect(empty.missing()).To(BeEmpty())
}

func TestSevenZipParseListing(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	lines := []string{
		fmt.Sprintf("2019-05-06 07:08:09 ....A %12d %12d  roms/game.bin", 1024, 512),
		fmt.Sprintf("%19s ....A %12d %12s  roms/solid member.bin", "", 16, ""),
		fmt.Sprintf("2019-05-06 07:08:09 D.... %12d %12d  roms", 0, 0),
		"garbage line",
		"",
	}

	files := sevenZipTool{path: "7z"}.parseListing(lines)
	g.Expect(files).To(HaveLen(3))

	g.Expect(files[0].name).To(Equal("roms/game.bin"))
	g.Expect(files[0].size).To(Equal(int64(1024)))
	g.Expect(files[0].isDir).To(BeFalse())

	modified, ok := files[0].times.Modified()
	g.Expect(ok).To(BeTrue())
	g.Expect(modified.Equal(time.Date(2019, 5, 6, 7, 8, 9, 0, time.Local))).To(BeTrue())

	g.Expect(files[1].relative).To(Equal("roms/solid member.bin"))
	g.Expect(files[1].size).To(Equal(int64(16)))
	g.Expect(files[1].times.IsZero()).To(BeTrue())

	g.Expect(files[2].isDir).To(BeTrue())
}

func TestSevenZipArgs(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	tool := sevenZipTool{path: "/usr/bin/7z"}
	g.Expect(tool.listArgs("/a.7z")).To(Equal([]string{"/usr/bin/7z", "l", "-ba", "/a.7z"}))
	g.Expect(tool.extractArgs("/a.7z", []string{"x", "y"})).To(
		Equal([]string{"/usr/bin/7z", "e", "-so", "-bd", "-ba", "/a.7z", "x", "y"}))
}

func TestUnrarParseListing(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	lines := []string{
		"UNRAR 6.24 freeware      Copyright (c) 1993-2023 Alexander Roshal",
		"",
		"Archive: set.rar",
		"Details: RAR 5",
		"",
		" Attributes      Size     Date    Time   Name",
		"----------- ---------  ---------- -----  ----",
		" -rw-r--r--      2048  2020-11-12 13:14  roms\\game one.bin",
		"    ..A....        64  12-11-20 13:14  legacy.bin",
		" drwxr-xr-x         0  2020-11-12 13:14  roms",
		"    ...D...         0  2020-11-12 13:14  windir",
		"----------- ---------  ---------- -----  ----",
		"                 2112                    4",
	}

	files := unrarTool{path: "unrar"}.parseListing(lines)
	g.Expect(files).To(HaveLen(4))

	g.Expect(files[0].name).To(Equal(`roms\game one.bin`))
	g.Expect(files[0].relative).To(Equal("roms/game one.bin"))
	g.Expect(files[0].size).To(Equal(int64(2048)))

	modified, ok := files[0].times.Modified()
	g.Expect(ok).To(BeTrue())
	g.Expect(modified.Equal(time.Date(2020, 11, 12, 13, 14, 0, 0, time.Local))).To(BeTrue())

	legacy, ok := files[1].times.Modified()
	g.Expect(ok).To(BeTrue())
	g.Expect(legacy.Equal(time.Date(2020, 11, 12, 13, 14, 0, 0, time.Local))).To(BeTrue())

	g.Expect(files[2].isDir).To(BeTrue())
	g.Expect(files[3].isDir).To(BeTrue())
}

func TestUnrarArgs(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	tool := unrarTool{path: "unrar"}
	g.Expect(tool.listArgs("/a.rar")).To(Equal([]string{"unrar", "l", "/a.rar"}))
	g.Expect(tool.extractArgs("/a.rar", []string{"x"})).To(Equal([]string{"unrar", "p", "-inul", "/a.rar", "x"}))
}
