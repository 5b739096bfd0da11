//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package transfer

import (
	"os"
	"testing"

	"github.com/Wa4h1h/lockstep-tftp/pkg/types"
	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/unix"
)

func TestQuotaExceededIsDiskFull(t *testing.T) {
	err := &os.PathError{Op: "write", Path: "f", Err: unix.EDQUOT}

	assert.Equal(t, types.ErrDiskFull, CodeForFSError(err))
	assert.Equal(t, types.ErrDiskFull, CodeForFSError(unix.ENOSPC))
}
