package transfer

import (
	"github.com/Wa4h1h/lockstep-tftp/pkg/types"
)

// Delete sends a DRQ for name and waits for the block 0 ACK that confirms it.
func (c *Connection) Delete(name string) (*Result, error) {
	req, err := c.request(types.OpCodeDRQ, name)
	if err != nil {
		return c.fail(err)
	}

	defer c.clearDeadline()

	if err := c.exchange(req, c.expectAck(0)); err != nil {
		return c.fail(err)
	}

	c.l.Debugf("%s deleted on %s", name, c.peer)

	return c.complete()
}

// AcknowledgeDelete confirms a served DRQ with a single block 0 ACK.
func (c *Connection) AcknowledgeDelete() (*Result, error) {
	if err := c.begin(); err != nil {
		return c.fail(err)
	}

	ack, err := c.marshal(types.NewAck(0))
	if err != nil {
		return c.fail(err)
	}

	if err := c.write(ack); err != nil {
		return c.fail(err)
	}

	return c.complete()
}
