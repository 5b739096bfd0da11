package types

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/Wa4h1h/lockstep-tftp/pkg/utils"
)

type Data struct {
	Payload  []byte
	BlockNum uint16
	Opcode   OpCode
}

func NewData(blockNum uint16, payload []byte) *Data {
	return &Data{Opcode: OpCodeDATA, BlockNum: blockNum, Payload: payload}
}

func (d *Data) Op() OpCode { return d.Opcode }

func (d *Data) String() string {
	return fmt.Sprintf("DATA[block=%d len=%d]", d.BlockNum, len(d.Payload))
}

// Final reports whether d is the last block of a transfer.
func (d *Data) Final() bool {
	return len(d.Payload) < MaxPayloadSize
}

func (d *Data) MarshalBinary() ([]byte, error) {
	return d.AppendBinary(nil)
}

func (d *Data) AppendBinary(dst []byte) ([]byte, error) {
	if d.Opcode != OpCodeDATA {
		return nil, utils.ErrWrongOpCode
	}

	if len(d.Payload) > MaxPayloadSize {
		return nil, utils.ErrDataPayloadTooBig
	}

	b := bytes.NewBuffer(dst)
	b.Grow(HeaderSize + len(d.Payload))

	if err := binary.Write(b, binary.BigEndian, &d.Opcode); err != nil {
		return nil, fmt.Errorf("error while writing opcode: %w", err)
	}

	if err := binary.Write(b, binary.BigEndian, &d.BlockNum); err != nil {
		return nil, fmt.Errorf("error while writing block#: %w", err)
	}

	b.Write(d.Payload)

	return b.Bytes(), nil
}

// UnmarshalBinary decodes data into d. Payload aliases data.
func (d *Data) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderSize {
		return utils.ErrPacketTooShort
	}

	if op := OpCode(binary.BigEndian.Uint16(data)); op != OpCodeDATA {
		return utils.ErrWrongOpCode
	}

	if len(data)-HeaderSize > MaxPayloadSize {
		return utils.ErrDataPayloadTooBig
	}

	d.Opcode = OpCodeDATA
	d.BlockNum = binary.BigEndian.Uint16(data[2:])
	d.Payload = data[HeaderSize:]

	return nil
}
