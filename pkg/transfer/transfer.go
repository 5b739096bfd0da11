package transfer

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/Wa4h1h/lockstep-tftp/pkg/types"
	"github.com/Wa4h1h/lockstep-tftp/pkg/utils"
	"go.uber.org/zap"
)

type Config struct {
	Timeout    time.Duration
	MaxRetries int
	Trace      bool
}

// Result summarises a completed exchange.
type Result struct {
	Blocks      int
	Bytes       int64
	Retransmits int
}

// Connection drives one exchange with one peer, lock-step: at most one
// datagram is unacknowledged at any time. A Connection is used once.
type Connection struct {
	conn    PacketConn
	peer    net.Addr
	origin  *types.Request
	l       *zap.SugaredLogger
	retry   *Retry
	rx      []byte
	tx      []byte
	block   []byte
	timeout time.Duration
	result  Result
	state   State
	bound   bool
	trace   bool
}

func NewConnection(conn PacketConn, peer net.Addr, logger *zap.SugaredLogger, cfg Config) *Connection {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = types.DefaultTimeout * time.Second
	}

	return &Connection{
		conn:    conn,
		peer:    peer,
		bound:   true,
		l:       logger,
		timeout: timeout,
		retry:   NewRetry(cfg.MaxRetries),
		trace:   cfg.Trace,
		rx:      make([]byte, types.DatagramSize+1),
		tx:      make([]byte, 0, types.DatagramSize),
		block:   make([]byte, types.MaxPayloadSize),
	}
}

func (c *Connection) State() State { return c.state }

// Peer returns the address the exchange is bound to.
func (c *Connection) Peer() net.Addr { return c.peer }

// RespondTo records the request a server-side connection answers, so that
// only an identical request counts as a retransmission from the peer.
func (c *Connection) RespondTo(req *types.Request) *Connection {
	c.origin = req

	return c
}

// Download sends an RRQ for name and writes every received block to w.
func (c *Connection) Download(name string, w io.Writer) (*Result, error) {
	req, err := c.request(types.OpCodeRRQ, name)
	if err != nil {
		return c.fail(err)
	}

	defer c.clearDeadline()

	return c.receive(req, w)
}

// Upload sends a WRQ for name, waits for the block 0 ACK and streams r.
func (c *Connection) Upload(name string, r io.Reader) (*Result, error) {
	req, err := c.request(types.OpCodeWRQ, name)
	if err != nil {
		return c.fail(err)
	}

	defer c.clearDeadline()

	if err := c.exchange(req, c.expectAck(0)); err != nil {
		return c.fail(err)
	}

	return c.send(r)
}

// Send serves an accepted RRQ by streaming r to the peer.
func (c *Connection) Send(r io.Reader) (*Result, error) {
	if err := c.begin(); err != nil {
		return c.fail(err)
	}

	defer c.clearDeadline()

	return c.send(r)
}

// Receive serves an accepted WRQ: it acknowledges block 0 and writes every
// received block to w.
func (c *Connection) Receive(w io.Writer) (*Result, error) {
	if err := c.begin(); err != nil {
		return c.fail(err)
	}

	defer c.clearDeadline()

	ack, err := c.marshal(types.NewAck(0))
	if err != nil {
		return c.fail(err)
	}

	return c.receive(ack, w)
}

// SendError emits a single error datagram to the peer and fails the exchange.
func (c *Connection) SendError(code types.ErrCode, custom string) error {
	c.state = Failed

	b, err := c.marshal(types.NewError(code, custom))
	if err != nil {
		return err
	}

	return c.write(b)
}

func (c *Connection) begin() error {
	if c.state != Idle {
		return NewError(ClassProtocol, types.ErrNotDefined,
			fmt.Sprintf("connection already used, state %s", c.state), nil)
	}

	c.state = Transferring

	return nil
}

func (c *Connection) request(op types.OpCode, name string) ([]byte, error) {
	if c.state != Idle {
		return nil, NewError(ClassProtocol, types.ErrNotDefined,
			fmt.Sprintf("connection already used, state %s", c.state), nil)
	}

	b, err := c.marshal(types.NewRequest(op, name))
	if err != nil {
		return nil, err
	}

	// the peer's transfer id is learned from its first reply
	c.bound = false
	c.state = RequestSent

	return b, nil
}

func (c *Connection) marshal(p types.Packet) ([]byte, error) {
	b, err := p.AppendBinary(c.tx[:0])
	if err != nil {
		return nil, NewError(ClassMalformed, types.ErrNotDefined, err.Error(), err)
	}

	return b, nil
}

func (c *Connection) receive(out []byte, w io.Writer) (*Result, error) {
	var block uint16 = 1

	for {
		var payload []byte

		if err := c.exchange(out, c.expectData(block, &payload)); err != nil {
			return c.fail(err)
		}

		c.state = Transferring

		if err := c.store(w, payload); err != nil {
			return c.fail(err)
		}

		c.result.Blocks++
		c.result.Bytes += int64(len(payload))

		if c.trace {
			c.l.Debugf("received block#=%d, received #bytes=%d", block, len(payload))
		}

		final := len(payload) < types.MaxPayloadSize

		ack, err := c.marshal(types.NewAck(block))
		if err != nil {
			return c.fail(err)
		}

		if final {
			if err := c.write(ack); err != nil {
				return c.fail(err)
			}

			c.l.Debugf("received %d blocks, received %d bytes", c.result.Blocks, c.result.Bytes)

			return c.complete()
		}

		out = ack
		block++
	}
}

func (c *Connection) send(r io.Reader) (*Result, error) {
	c.state = Transferring

	var block uint16 = 1

	for {
		n, err := io.ReadFull(r, c.block)

		final := false

		switch {
		case err == nil:
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			final = true
		default:
			return c.fail(c.abort(ClassFilesystem, CodeForFSError(err), fsMessage(err, "read failure"), err))
		}

		out, err := c.marshal(types.NewData(block, c.block[:n]))
		if err != nil {
			return c.fail(err)
		}

		if err := c.exchange(out, c.expectAck(block)); err != nil {
			return c.fail(err)
		}

		c.result.Blocks++
		c.result.Bytes += int64(n)

		if c.trace {
			c.l.Debugf("sent block#=%d, sent #bytes=%d", block, n)
		}

		if final {
			c.l.Debugf("sent %d blocks, sent %d bytes", c.result.Blocks, c.result.Bytes)

			return c.complete()
		}

		block++
	}
}

func (c *Connection) store(w io.Writer, payload []byte) error {
	n, err := w.Write(payload)
	if err == nil && n < len(payload) {
		err = io.ErrShortWrite
	}

	if err != nil {
		return c.abort(ClassFilesystem, CodeForFSError(err), fsMessage(err, "write failure"), err)
	}

	return nil
}

// exchange sends out and waits for a reply accept approves. On timeout or
// rejection out is resent unchanged until the retry budget runs out.
func (c *Connection) exchange(out []byte, accept func(types.Packet) (bool, error)) error {
	for {
		if err := c.write(out); err != nil {
			return err
		}

		ok, err := c.await(accept)
		if err != nil {
			return err
		}

		if ok {
			c.retry.Accept()

			return nil
		}

		st := c.retry.Reject()
		if st.Phase == Exhausted {
			return NewError(ClassProtocol, types.ErrNotDefined,
				fmt.Sprintf("no valid reply from %s after %d retries", c.peer, st.Retries),
				utils.ErrRetriesExhausted)
		}

		c.result.Retransmits++
		c.l.Debugf("no valid reply from %s, %s", c.peer, st)
	}
}

// await reads until deadline for a reply accept approves. Requests other
// than a repeat of the one that opened the exchange are dropped.
func (c *Connection) await(accept func(types.Packet) (bool, error)) (bool, error) {
	deadline := time.Now().Add(c.timeout)

	for {
		p, err := c.read(deadline)

		switch {
		case errors.Is(err, errTimeout):
			c.l.Debugf("timeout: no response received after %s", c.timeout)

			return false, nil
		case err != nil:
			return false, err
		}

		switch pkt := p.(type) {
		case *types.Error:
			return false, remoteError(pkt)
		case *types.Request:
			// a repeated request means our first reply was lost
			if c.repeats(pkt) {
				return false, nil
			}

			c.l.Debugf("dropping %s from %s during transfer", pkt, c.peer)

			continue
		}

		return accept(p)
	}
}

func (c *Connection) repeats(req *types.Request) bool {
	return c.origin != nil &&
		req.Opcode == c.origin.Opcode &&
		req.Filename == c.origin.Filename &&
		strings.EqualFold(req.Mode, c.origin.Mode)
}

func (c *Connection) expectAck(block uint16) func(types.Packet) (bool, error) {
	return func(p types.Packet) (bool, error) {
		ack, ok := p.(*types.Ack)
		if !ok {
			return false, c.unexpected(p, types.OpCodeACK)
		}

		if ack.BlockNum != block {
			c.l.Debugf("ack block# %d != expected block# %d", ack.BlockNum, block)

			return false, nil
		}

		return true, nil
	}
}

func (c *Connection) expectData(block uint16, payload *[]byte) func(types.Packet) (bool, error) {
	return func(p types.Packet) (bool, error) {
		data, ok := p.(*types.Data)
		if !ok {
			return false, c.unexpected(p, types.OpCodeDATA)
		}

		if data.BlockNum != block {
			c.l.Debugf("data block# %d != expected block# %d", data.BlockNum, block)

			return false, nil
		}

		*payload = data.Payload

		return true, nil
	}
}

func (c *Connection) unexpected(p types.Packet, want types.OpCode) error {
	return c.abort(ClassProtocol, types.ErrIllegalTftpOp,
		fmt.Sprintf("expected %s, got %s", want, p.Op()), utils.ErrUnexpectedPacket)
}

// abort reports a locally detected failure to the peer and returns it.
func (c *Connection) abort(class Class, code types.ErrCode, custom string, cause error) *Error {
	if err := c.SendError(code, custom); err != nil {
		c.l.Errorf("error while sending error packet: %s", err.Error())
	}

	msg := code.Message()
	if custom != "" {
		msg = fmt.Sprintf("%s - %s", msg, custom)
	}

	return NewError(class, code, msg, cause)
}

func (c *Connection) complete() (*Result, error) {
	c.state = Complete
	r := c.result

	return &r, nil
}

func (c *Connection) fail(err error) (*Result, error) {
	c.state = Failed

	var e *Error
	if !errors.As(err, &e) {
		e = NewError(ClassProtocol, types.ErrNotDefined, err.Error(), err)
	}

	c.l.Debugf("transfer with %s failed: %s", c.peer, e.Error())

	return nil, e
}
