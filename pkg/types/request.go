package types

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/Wa4h1h/lockstep-tftp/pkg/utils"
)

// Request is an RRQ, WRQ or DRQ. The mode field is carried by all three.
type Request struct {
	Filename string
	Mode     string
	Opcode   OpCode
}

func NewRequest(op OpCode, filename string) *Request {
	return &Request{Opcode: op, Filename: filename, Mode: ModeOctet}
}

func (r *Request) Op() OpCode { return r.Opcode }

func (r *Request) String() string {
	return fmt.Sprintf("%s[file=%q mode=%s]", r.Opcode, r.Filename, r.Mode)
}

// ValidateFilename checks the bounds every request name must satisfy.
func ValidateFilename(name string) error {
	switch {
	case name == "":
		return utils.ErrEmptyName
	case len(name) > MaxFilenameLen:
		return utils.ErrNameTooLong
	case strings.IndexByte(name, 0) >= 0:
		return fmt.Errorf("%w: filename contains a null byte", utils.ErrMalformedPacket)
	}

	return nil
}

func (r *Request) MarshalBinary() ([]byte, error) {
	return r.AppendBinary(nil)
}

func (r *Request) AppendBinary(dst []byte) ([]byte, error) {
	if !r.Opcode.IsRequest() {
		return nil, utils.ErrWrongOpCode
	}

	if err := ValidateFilename(r.Filename); err != nil {
		return nil, err
	}

	mode := r.Mode
	if mode == "" {
		mode = ModeOctet
	}

	if !strings.EqualFold(mode, ModeOctet) {
		return nil, utils.ErrBadMode
	}

	b := bytes.NewBuffer(dst)
	b.Grow(2 + len(r.Filename) + 1 + len(mode) + 1)

	if err := binary.Write(b, binary.BigEndian, &r.Opcode); err != nil {
		return nil, fmt.Errorf("error while writing opcode: %w", err)
	}

	b.WriteString(r.Filename)
	b.WriteByte(0)
	b.WriteString(mode)
	b.WriteByte(0)

	return b.Bytes(), nil
}

func (r *Request) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderSize {
		return utils.ErrPacketTooShort
	}

	op := OpCode(binary.BigEndian.Uint16(data))
	if !op.IsRequest() {
		return utils.ErrWrongOpCode
	}

	rest := data[2:]

	bound := rest
	if len(bound) > MaxFilenameLen+1 {
		bound = bound[:MaxFilenameLen+1]
	}

	end := bytes.IndexByte(bound, 0)

	switch {
	case end < 0 && len(rest) > MaxFilenameLen:
		return fmt.Errorf("error while decoding filename: %w", utils.ErrNameTooLong)
	case end < 0:
		return fmt.Errorf("error while decoding filename: %w", utils.ErrMalformedPacket)
	case end == 0:
		return fmt.Errorf("error while decoding filename: %w", utils.ErrEmptyName)
	}

	filename := string(rest[:end])
	rest = rest[end+1:]

	end = bytes.IndexByte(rest, 0)
	if end < 0 {
		return fmt.Errorf("error while decoding mode: %w", utils.ErrMalformedPacket)
	}

	if end != len(rest)-1 {
		return fmt.Errorf("error while decoding mode: %w: trailing bytes after mode", utils.ErrMalformedPacket)
	}

	mode := string(rest[:end])
	if !strings.EqualFold(mode, ModeOctet) {
		return fmt.Errorf("error while decoding mode %q: %w", mode, utils.ErrBadMode)
	}

	r.Opcode = op
	r.Filename = filename
	r.Mode = mode

	return nil
}
