//go:build !windows

package cmd

import (
	"os"

	"golang.org/x/sys/unix"
)

// ttyColumns asks the kernel for the column count of the terminal behind f.
func ttyColumns(f *os.File) (int, error) {
	ws, err := unix.IoctlGetWinsize(int(f.Fd()), unix.TIOCGWINSZ)
	if err != nil {
		return 0, err
	}
	return int(ws.Col), nil
}
