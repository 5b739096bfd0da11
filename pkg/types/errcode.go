package types

import (
	"fmt"
	"strings"
)

type ErrCode uint16

const (
	ErrNotDefined ErrCode = iota
	ErrFileNotFound
	ErrAccessViolation
	ErrDiskFull
	ErrIllegalTftpOp
	ErrUnknownTransferId
	ErrFileAlreadyExists
	ErrNoSuchUser
)

var errCodeMessages = map[ErrCode]string{
	ErrNotDefined:        "Undefined error",
	ErrFileNotFound:      "File not found",
	ErrAccessViolation:   "Access violation",
	ErrDiskFull:          "Disk full or allocation exceeded",
	ErrIllegalTftpOp:     "Illegal TFTP operation",
	ErrUnknownTransferId: "Unknown transfer ID",
	ErrFileAlreadyExists: "File already exists",
	ErrNoSuchUser:        "No such user",
}

// Message returns the fixed default message for c. Unknown codes read as undefined.
func (c ErrCode) Message() string {
	if msg, ok := errCodeMessages[c]; ok {
		return msg
	}

	return errCodeMessages[ErrNotDefined]
}

func (c ErrCode) String() string {
	return fmt.Sprintf("%d (%s)", uint16(c), c.Message())
}

// NewError builds an error packet carrying the default message for code,
// followed by custom when one is given.
func NewError(code ErrCode, custom string) *Error {
	msg := code.Message()
	if custom != "" {
		msg = fmt.Sprintf("%s - %s", msg, custom)
	}

	msg = strings.ReplaceAll(msg, "\x00", "")
	if len(msg) > maxErrMsgLen {
		msg = msg[:maxErrMsgLen]
	}

	return &Error{
		Opcode:    OpCodeError,
		ErrorCode: code,
		ErrMsg:    msg,
	}
}
