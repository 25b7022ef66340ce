//go:build !windows

package render

import (
	"os"

	"golang.org/x/sys/unix"
)

// ioctlWidth returns the terminal width of f via ioctl, or 0 if unavailable.
func ioctlWidth(f *os.File) int {
	ws, err := unix.IoctlGetWinsize(int(f.Fd()), unix.TIOCGWINSZ)
	if err != nil || ws.Col == 0 {
		return 0
	}
	return int(ws.Col)
}
