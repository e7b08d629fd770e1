//go:build !windows

package filetimes

import "time"

// Only Windows lets a process set the creation time; elsewhere it is dropped.
func applyCreated(_ string, _ time.Time) error {
	return nil
}
