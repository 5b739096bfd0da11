package types

import "fmt"

type OpCode uint16

const (
	OpCodeRRQ OpCode = iota + 1
	OpCodeWRQ
	OpCodeDATA
	OpCodeACK
	OpCodeError
	OpCodeDRQ
)

var opCodeNames = map[OpCode]string{
	OpCodeRRQ:   "RRQ",
	OpCodeWRQ:   "WRQ",
	OpCodeDATA:  "DATA",
	OpCodeACK:   "ACK",
	OpCodeError: "ERROR",
	OpCodeDRQ:   "DRQ",
}

func (o OpCode) String() string {
	if name, ok := opCodeNames[o]; ok {
		return name
	}

	return fmt.Sprintf("OPCODE(%d)", uint16(o))
}

// IsRequest reports whether o opens a new exchange.
func (o OpCode) IsRequest() bool {
	return o == OpCodeRRQ || o == OpCodeWRQ || o == OpCodeDRQ
}

const (
	ModeOctet = "octet"

	// MaxFilenameLen bounds the name field, NUL excluded.
	MaxFilenameLen = 256
	MaxPayloadSize = 512
	HeaderSize     = 4
	DatagramSize   = HeaderSize + MaxPayloadSize
)

const (
	DefaultPort       = "69"
	DefaultTimeout    = 5
	DefaultMaxRetries = 3
)
