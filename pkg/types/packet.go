package types

import (
	"encoding"
	"encoding/binary"
	"fmt"

	"github.com/Wa4h1h/lockstep-tftp/pkg/utils"
)

// Packet is implemented by every datagram kind.
type Packet interface {
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
	AppendBinary(dst []byte) ([]byte, error)
	Op() OpCode
}

// PeekOpCode reads the opcode of b without validating the rest.
func PeekOpCode(b []byte) (OpCode, error) {
	if len(b) < 2 {
		return 0, utils.ErrPacketTooShort
	}

	return OpCode(binary.BigEndian.Uint16(b)), nil
}

// Decode parses b into the packet kind named by its opcode.
func Decode(b []byte) (Packet, error) {
	if len(b) < HeaderSize {
		return nil, utils.ErrPacketTooShort
	}

	op, _ := PeekOpCode(b)

	var p Packet

	switch op {
	case OpCodeRRQ, OpCodeWRQ, OpCodeDRQ:
		p = new(Request)
	case OpCodeDATA:
		p = new(Data)
	case OpCodeACK:
		p = new(Ack)
	case OpCodeError:
		p = new(Error)
	default:
		return nil, fmt.Errorf("%w: %d", utils.ErrWrongOpCode, uint16(op))
	}

	if err := p.UnmarshalBinary(b); err != nil {
		return nil, err
	}

	return p, nil
}
