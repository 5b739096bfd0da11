package transfer

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/Wa4h1h/lockstep-tftp/pkg/types"
	"github.com/Wa4h1h/lockstep-tftp/pkg/utils"
)

// Class groups failures by where they were detected.
type Class uint8

const (
	ClassMalformed Class = iota + 1
	ClassFilesystem
	ClassProtocol
	ClassTransport
	ClassRemote
)

var classNames = map[Class]string{
	ClassMalformed:  "malformed",
	ClassFilesystem: "filesystem",
	ClassProtocol:   "protocol",
	ClassTransport:  "transport",
	ClassRemote:     "remote",
}

func (c Class) String() string {
	if name, ok := classNames[c]; ok {
		return name
	}

	return fmt.Sprintf("class(%d)", uint8(c))
}

// Error is the outcome of a failed exchange. Remote errors carry the code and
// message the peer sent; local ones carry the code that was (or would be) reported.
type Error struct {
	Err     error
	Message string
	Class   Class
	Code    types.ErrCode
}

func NewError(class Class, code types.ErrCode, msg string, err error) *Error {
	return &Error{Class: class, Code: code, Message: msg, Err: err}
}

func remoteError(p *types.Error) *Error {
	return &Error{Class: ClassRemote, Code: p.ErrorCode, Message: p.ErrMsg}
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Code.Message()
	}

	if e.Err != nil && e.Err.Error() != msg {
		return fmt.Sprintf("%s error %d: %s: %v", e.Class, e.Code, msg, e.Err)
	}

	return fmt.Sprintf("%s error %d: %s", e.Class, e.Code, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Remote reports whether the peer sent the error.
func (e *Error) Remote() bool { return e.Class == ClassRemote }

// CodeOf extracts the protocol error code from err, if it carries one.
func CodeOf(err error) (types.ErrCode, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}

	return types.ErrNotDefined, false
}

// CodeForFSError maps an OS error onto the protocol error code reported for it.
func CodeForFSError(err error) types.ErrCode {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return types.ErrFileNotFound
	case errors.Is(err, fs.ErrPermission):
		return types.ErrAccessViolation
	case errors.Is(err, fs.ErrExist):
		return types.ErrFileAlreadyExists
	case diskFull(err):
		return types.ErrDiskFull
	default:
		return types.ErrNotDefined
	}
}

// CodeForDecodeError maps a codec failure onto the code answered to the sender.
func CodeForDecodeError(err error) types.ErrCode {
	switch {
	case errors.Is(err, utils.ErrWrongOpCode), errors.Is(err, utils.ErrBadMode):
		return types.ErrIllegalTftpOp
	default:
		return types.ErrNotDefined
	}
}

func fsMessage(err error, fallback string) string {
	if errors.Is(err, io.ErrShortWrite) {
		return "short write"
	}

	if CodeForFSError(err) == types.ErrNotDefined {
		return fmt.Sprintf("%s: %v", fallback, err)
	}

	return ""
}
