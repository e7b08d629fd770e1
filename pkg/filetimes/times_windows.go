package filetimes

import (
	"os"
	"syscall"
	"time"
)

func platformTimes(info os.FileInfo) (accessed, created time.Time) {
	data, ok := info.Sys().(*syscall.Win32FileAttributeData)
	if !ok {
		return time.Time{}, time.Time{}
	}

	return time.Unix(0, data.LastAccessTime.Nanoseconds()), time.Unix(0, data.CreationTime.Nanoseconds())
}

func applyCreated(path string, created time.Time) error {
	name, err := syscall.UTF16PtrFromString(path)
	if err != nil {
		return err
	}

	handle, err := syscall.CreateFile(name,
		syscall.FILE_WRITE_ATTRIBUTES, syscall.FILE_SHARE_WRITE, nil,
		syscall.OPEN_EXISTING, syscall.FILE_FLAG_BACKUP_SEMANTICS, 0)
	if err != nil {
		return err
	}
	defer func() {
		_ = syscall.CloseHandle(handle)
	}()

	ctime := syscall.NsecToFiletime(created.UnixNano())

	return syscall.SetFileTime(handle, &ctime, nil, nil)
}
