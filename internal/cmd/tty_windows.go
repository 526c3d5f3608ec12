//go:build windows

package cmd

import (
	"errors"
	"os"
)

const minPickerWidth = 20

func openTTY() (*os.File, error) {
	return nil, errors.New("the interactive picker needs a Unix terminal; use --plain or --json")
}

func checkTERM() error {
	return nil
}

func checkTermWidth(*os.File) error {
	return nil
}

// acquireLock is a no-op on Windows; openTTY already refuses to run.
func acquireLock(string) (int, error) {
	return -1, nil
}

func releaseLock(int) {}
