package filetimes

import (
	"os"
	"syscall"
	"time"
)

func platformTimes(info os.FileInfo) (accessed, created time.Time) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return time.Time{}, time.Time{}
	}

	return time.Unix(stat.Atimespec.Unix()), time.Unix(stat.Birthtimespec.Unix())
}
