package types

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/Wa4h1h/lockstep-tftp/pkg/utils"
)

// maxErrMsgLen keeps an error packet within one datagram.
const maxErrMsgLen = DatagramSize - HeaderSize - 1

type Error struct {
	ErrMsg    string
	ErrorCode ErrCode
	Opcode    OpCode
}

func (e *Error) Op() OpCode { return e.Opcode }

func (e *Error) String() string {
	return fmt.Sprintf("ERROR[code=%d msg=%q]", e.ErrorCode, e.ErrMsg)
}

func (e *Error) MarshalBinary() ([]byte, error) {
	return e.AppendBinary(nil)
}

func (e *Error) AppendBinary(dst []byte) ([]byte, error) {
	if e.Opcode != OpCodeError {
		return nil, utils.ErrWrongOpCode
	}

	if len(e.ErrMsg) > maxErrMsgLen || strings.IndexByte(e.ErrMsg, 0) >= 0 {
		return nil, fmt.Errorf("%w: error message does not fit", utils.ErrMalformedPacket)
	}

	b := bytes.NewBuffer(dst)
	b.Grow(HeaderSize + len(e.ErrMsg) + 1)

	if err := binary.Write(b, binary.BigEndian, &e.Opcode); err != nil {
		return nil, fmt.Errorf("error while writing opcode: %w", err)
	}

	if err := binary.Write(b, binary.BigEndian, &e.ErrorCode); err != nil {
		return nil, fmt.Errorf("error while writing error code: %w", err)
	}

	b.WriteString(e.ErrMsg)
	b.WriteByte(0)

	return b.Bytes(), nil
}

func (e *Error) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderSize {
		return utils.ErrPacketTooShort
	}

	if op := OpCode(binary.BigEndian.Uint16(data)); op != OpCodeError {
		return utils.ErrWrongOpCode
	}

	msg := data[HeaderSize:]

	end := bytes.IndexByte(msg, 0)
	if end < 0 || end != len(msg)-1 {
		return fmt.Errorf("error while reading error message: %w", utils.ErrMalformedPacket)
	}

	e.Opcode = OpCodeError
	e.ErrorCode = ErrCode(binary.BigEndian.Uint16(data[2:]))
	e.ErrMsg = string(msg[:end])

	return nil
}
