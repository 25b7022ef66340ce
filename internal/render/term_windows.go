//go:build windows

package render

import "os"

// ioctlWidth returns 0 on Windows; width detection falls back to $COLUMNS.
func ioctlWidth(*os.File) int {
	return 0
}
