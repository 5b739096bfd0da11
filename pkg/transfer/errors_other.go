//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package transfer

import (
	"errors"
	"syscall"
)

func diskFull(err error) bool {
	return errors.Is(err, syscall.ENOSPC)
}
