//go:build windows

package cmd

import (
	"errors"
	"os"
)

// ttyColumns is not implemented for Windows consoles; --plain sizes rows
// from $COLUMNS instead.
func ttyColumns(*os.File) (int, error) {
	return 0, errors.ErrUnsupported
}
