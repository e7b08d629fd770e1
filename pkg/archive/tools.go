package archive

import (
	"os/exec"
)

// Tools holds the paths of the external archive programs. An empty path
// means the program is unavailable.
type Tools struct {
	SevenZip string
	Unrar    string
}

// Candidate executable names, in lookup order.
//
//nolint:gochecknoglobals // Fixed lookup tables
var (
	sevenZipNames = []string{"7z", "7zz", "7za"}
	unrarNames    = []string{"unrar"}
)

// FindTools looks the external programs up on PATH. Explicit paths in
// override win over the lookup.
func FindTools(override Tools) Tools {
	found := override

	if found.SevenZip == "" {
		found.SevenZip = lookFirst(sevenZipNames)
	}

	if found.Unrar == "" {
		found.Unrar = lookFirst(unrarNames)
	}

	return found
}

func lookFirst(names []string) string {
	for _, name := range names {
		path, err := exec.LookPath(name)
		if err == nil {
			return path
		}
	}

	return ""
}
