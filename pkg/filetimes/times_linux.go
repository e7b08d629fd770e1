package filetimes

import (
	"os"
	"syscall"
	"time"
)

// Linux stat does not carry a birth time.
func platformTimes(info os.FileInfo) (accessed, created time.Time) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return time.Time{}, time.Time{}
	}

	return time.Unix(stat.Atim.Unix()), time.Time{}
}
