package types

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/Wa4h1h/lockstep-tftp/pkg/utils"
)

type Ack struct {
	Opcode   OpCode
	BlockNum uint16
}

func NewAck(blockNum uint16) *Ack {
	return &Ack{Opcode: OpCodeACK, BlockNum: blockNum}
}

func (a *Ack) Op() OpCode { return a.Opcode }

func (a *Ack) String() string {
	return fmt.Sprintf("ACK[block=%d]", a.BlockNum)
}

func (a *Ack) MarshalBinary() ([]byte, error) {
	return a.AppendBinary(nil)
}

func (a *Ack) AppendBinary(dst []byte) ([]byte, error) {
	if a.Opcode != OpCodeACK {
		return nil, utils.ErrWrongOpCode
	}

	b := bytes.NewBuffer(dst)
	b.Grow(HeaderSize)

	if err := binary.Write(b, binary.BigEndian, &a.Opcode); err != nil {
		return nil, fmt.Errorf("error while writing opcode: %w", err)
	}

	if err := binary.Write(b, binary.BigEndian, &a.BlockNum); err != nil {
		return nil, fmt.Errorf("error while writing block#: %w", err)
	}

	return b.Bytes(), nil
}

func (a *Ack) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderSize {
		return utils.ErrPacketTooShort
	}

	if op := OpCode(binary.BigEndian.Uint16(data)); op != OpCodeACK {
		return utils.ErrWrongOpCode
	}

	if len(data) != HeaderSize {
		return fmt.Errorf("%w: ack carries %d bytes", utils.ErrMalformedPacket, len(data))
	}

	a.Opcode = OpCodeACK
	a.BlockNum = binary.BigEndian.Uint16(data[2:])

	return nil
}
