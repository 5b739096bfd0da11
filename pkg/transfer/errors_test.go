package transfer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/Wa4h1h/lockstep-tftp/pkg/types"
	"github.com/Wa4h1h/lockstep-tftp/pkg/utils"
	"github.com/stretchr/testify/assert"
)

func TestCodeForFSError(t *testing.T) {
	dir := t.TempDir()

	_, errMissing := os.Open(filepath.Join(dir, "missing"))

	existing := filepath.Join(dir, "exists")
	assert.NoError(t, os.WriteFile(existing, nil, 0o600))
	_, errExists := os.OpenFile(existing, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)

	for _, _case := range []struct {
		err  error
		code types.ErrCode
	}{
		{errMissing, types.ErrFileNotFound},
		{errExists, types.ErrFileAlreadyExists},
		{&os.PathError{Op: "open", Path: "x", Err: syscall.EACCES}, types.ErrAccessViolation},
		{fmt.Errorf("write: %w", syscall.ENOSPC), types.ErrDiskFull},
		{errors.New("boom"), types.ErrNotDefined},
	} {
		assert.Equal(t, _case.code, CodeForFSError(_case.err), "%v", _case.err)
	}
}

func TestCodeForDecodeError(t *testing.T) {
	_, err := types.Decode([]byte{0, 9, 0, 0})
	assert.Equal(t, types.ErrIllegalTftpOp, CodeForDecodeError(err))

	_, err = types.Decode([]byte("\x00\x01f\x00mail\x00"))
	assert.Equal(t, types.ErrIllegalTftpOp, CodeForDecodeError(err))

	_, err = types.Decode([]byte("\x00\x01\x00octet\x00"))
	assert.Equal(t, types.ErrNotDefined, CodeForDecodeError(err))
}

func TestErrorFormatting(t *testing.T) {
	e := NewError(ClassProtocol, types.ErrNotDefined, "no valid reply", utils.ErrRetriesExhausted)
	assert.Equal(t, "protocol error 0: no valid reply: error: retries exhausted", e.Error())
	assert.ErrorIs(t, e, utils.ErrRetriesExhausted)
	assert.False(t, e.Remote())

	r := remoteError(types.NewError(types.ErrFileAlreadyExists, ""))
	assert.Equal(t, "remote error 6: File already exists", r.Error())
	assert.True(t, r.Remote())

	code, ok := CodeOf(fmt.Errorf("get: %w", r))
	assert.True(t, ok)
	assert.Equal(t, types.ErrFileAlreadyExists, code)

	_, ok = CodeOf(errors.New("plain"))
	assert.False(t, ok)
}
