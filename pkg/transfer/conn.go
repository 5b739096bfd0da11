package transfer

import (
	"errors"
	"net"
	"time"

	"github.com/Wa4h1h/lockstep-tftp/pkg/types"
)

// PacketConn is the datagram transport a transfer runs over. net.PacketConn satisfies it.
type PacketConn interface {
	ReadFrom(p []byte) (n int, addr net.Addr, err error)
	WriteTo(p []byte, addr net.Addr) (n int, err error)
	SetReadDeadline(t time.Time) error
}

var errTimeout = errors.New("receive timeout")

func (c *Connection) write(b []byte) error {
	if _, err := c.conn.WriteTo(b, c.peer); err != nil {
		c.l.Errorf("error while writing packet to %s: %s", c.peer, err.Error())

		return NewError(ClassTransport, types.ErrNotDefined, "send failed", err)
	}

	return nil
}

// read returns the next datagram from the bound peer received before deadline.
// Datagrams from any other address are answered with an unknown transfer ID error.
func (c *Connection) read(deadline time.Time) (types.Packet, error) {
	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return nil, NewError(ClassTransport, types.ErrNotDefined, "can not set read timeout", err)
	}

	for {
		n, addr, err := c.conn.ReadFrom(c.rx)
		if err != nil {
			var nerr net.Error
			if errors.As(err, &nerr) && nerr.Timeout() {
				return nil, errTimeout
			}

			return nil, NewError(ClassTransport, types.ErrNotDefined, "receive failed", err)
		}

		if !c.fromPeer(addr) {
			c.rejectStranger(addr, c.rx[:n])

			continue
		}

		// one spare byte in rx makes oversized datagrams fail to decode

		p, err := types.Decode(c.rx[:n])
		if err != nil {
			return nil, c.abort(ClassMalformed, CodeForDecodeError(err), err.Error(), err)
		}

		return p, nil
	}
}

// fromPeer binds the transfer to the first reply from the peer's host when
// it is still unbound, then only accepts that exact address.
func (c *Connection) fromPeer(addr net.Addr) bool {
	if c.bound {
		return sameAddr(addr, c.peer)
	}

	if !sameHost(addr, c.peer) {
		return false
	}

	if c.trace && !sameAddr(addr, c.peer) {
		c.l.Debugf("transfer bound to %s", addr)
	}

	c.peer = addr
	c.bound = true

	return true
}

// rejectStranger answers datagrams of a foreign transfer with an unknown
// transfer ID error. Requests are dropped so their sender can retry later.
func (c *Connection) rejectStranger(addr net.Addr, datagram []byte) {
	if op, err := types.PeekOpCode(datagram); err == nil && op.IsRequest() {
		c.l.Debugf("dropping %s from %s, busy with %s", op, addr, c.peer)

		return
	}

	c.l.Warnf("datagram from unknown transfer id %s, expected %s", addr, c.peer)

	b, err := types.NewError(types.ErrUnknownTransferId, "").MarshalBinary()
	if err != nil {
		return
	}

	if _, err := c.conn.WriteTo(b, addr); err != nil {
		c.l.Errorf("error while answering %s: %s", addr, err.Error())
	}
}

func (c *Connection) clearDeadline() {
	if err := c.conn.SetReadDeadline(time.Time{}); err != nil {
		c.l.Errorf("error while clearing read timeout: %s", err.Error())
	}
}

func sameAddr(a, b net.Addr) bool {
	ua, okA := a.(*net.UDPAddr)
	ub, okB := b.(*net.UDPAddr)

	if okA && okB {
		return ua.Port == ub.Port && ua.IP.Equal(ub.IP)
	}

	return a.String() == b.String()
}

func sameHost(a, b net.Addr) bool {
	ua, okA := a.(*net.UDPAddr)
	ub, okB := b.(*net.UDPAddr)

	if okA && okB {
		return ua.IP.Equal(ub.IP)
	}

	return sameAddr(a, b)
}
