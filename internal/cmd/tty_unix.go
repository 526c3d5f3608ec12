//go:build !windows

package cmd

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// minPickerWidth is the narrowest terminal the picker will draw in.
const minPickerWidth = 20

// openTTY opens the controlling terminal for the picker so stdout stays free
// for the result.
func openTTY() (*os.File, error) {
	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("no TTY available: %w", err)
	}
	return tty, nil
}

// checkTERM verifies that the TERM environment variable is not "dumb".
func checkTERM() error {
	if os.Getenv("TERM") == "dumb" {
		return errors.New("TERM=dumb is not supported")
	}
	return nil
}

// checkTermWidth verifies that tty is wide enough for the picker.
func checkTermWidth(tty *os.File) error {
	cols, err := ttyColumns(tty)
	if err != nil {
		return fmt.Errorf("cannot get terminal size: %w", err)
	}
	if cols < minPickerWidth {
		return fmt.Errorf("terminal too narrow (%d columns, need at least %d)", cols, minPickerWidth)
	}
	return nil
}

// acquireLock takes an advisory flock on path. The returned descriptor stays
// open until releaseLock.
func acquireLock(path string) (int, error) {
	fd, err := unix.Open(path, unix.O_CREAT|unix.O_RDWR|unix.O_CLOEXEC, 0o600)
	if err != nil {
		return -1, fmt.Errorf("cannot open lock file: %w", err)
	}

	if err := unix.Flock(fd, unix.LOCK_EX|unix.LOCK_NB); err != nil {
		_ = unix.Close(fd)
		return -1, errors.New("another instance of rpick is running")
	}

	return fd, nil
}

// releaseLock releases the advisory file lock.
func releaseLock(fd int) {
	if fd >= 0 {
		_ = unix.Flock(fd, unix.LOCK_UN)
		_ = unix.Close(fd)
	}
}
