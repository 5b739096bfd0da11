package utils

import "errors"

var (
	ErrStartingServer    = errors.New("error: starting the udp server")
	ErrWrongOpCode       = errors.New("error: invalid operation code")
	ErrPacketTooShort    = errors.New("error: packet shorter than header")
	ErrMalformedPacket   = errors.New("error: malformed packet")
	ErrEmptyName         = errors.New("error: filename missing")
	ErrNameTooLong       = errors.New("error: filename exceeds 256 bytes")
	ErrBadMode           = errors.New("error: unsupported mode, only octet is allowed")
	ErrDataPayloadTooBig = errors.New("error: payload exceeds 512 bytes")
	ErrRetriesExhausted  = errors.New("error: retries exhausted")
	ErrUnexpectedPacket  = errors.New("error: unexpected packet")
	ErrNotConnected      = errors.New("error: client is not connected")
)
