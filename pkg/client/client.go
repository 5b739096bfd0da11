package client

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/Wa4h1h/lockstep-tftp/pkg/transfer"
	"github.com/Wa4h1h/lockstep-tftp/pkg/types"
	"github.com/Wa4h1h/lockstep-tftp/pkg/utils"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type Connector interface {
	Connect(addr string) error
	Get(filename string) (*transfer.Result, error)
	Put(filename string) (*transfer.Result, error)
	Delete(filename string) (*transfer.Result, error)
	SetTimeout(timeout uint)
	SetTrace() bool
	Close() error
}

// Client runs one exchange at a time against the connected server,
// reading and writing local files relative to dir. Every exchange gets its
// own local socket, so a late datagram of an earlier one never reaches it.
type Client struct {
	server   net.Addr
	l        *zap.SugaredLogger
	dir      string
	timeout  time.Duration
	numTries uint
	trace    bool
}

func NewClient(l *zap.SugaredLogger, numTries uint, dir string) *Client {
	if l == nil {
		l = zap.NewNop().Sugar()
	}

	return &Client{
		l:        l,
		dir:      dir,
		numTries: numTries,
		timeout:  time.Duration(types.DefaultTimeout) * time.Second,
	}
}

func (c *Client) SetTimeout(timeout uint) {
	c.timeout = time.Duration(timeout) * time.Second
}

func (c *Client) SetTimeoutDuration(timeout time.Duration) {
	c.timeout = timeout
}

// SetTrace toggles per-block tracing and returns the new setting.
func (c *Client) SetTrace() bool {
	c.trace = !c.trace

	return c.trace
}

// Connect resolves addr, defaulting to port 69.
func (c *Client) Connect(addr string) error {
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, types.DefaultPort)
	}

	server, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return fmt.Errorf("error while resolving %s: %w", addr, err)
	}

	c.server = server
	c.l.Debugf("connected to %s", server)

	return nil
}

func (c *Client) Close() error {
	c.server = nil

	return nil
}

// Get downloads filename into the local dir. An existing local file is never
// overwritten and a failed download leaves nothing behind.
func (c *Client) Get(filename string) (*transfer.Result, error) {
	local := filepath.Join(c.dir, filepath.Base(filepath.FromSlash(filename)))

	return c.exchange(filename, func(conn *transfer.Connection) (*transfer.Result, error) {
		f, err := os.OpenFile(local, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
		if err != nil {
			return nil, localError(err, local)
		}

		res, err := conn.Download(filename, f)
		err = multierr.Append(err, f.Close())

		if err != nil {
			if rmErr := os.Remove(local); rmErr != nil {
				err = multierr.Append(err, rmErr)
			}

			return nil, err
		}

		return res, nil
	})
}

// Put uploads a local file under its base name.
func (c *Client) Put(filename string) (*transfer.Result, error) {
	local := filename
	if !filepath.IsAbs(local) {
		local = filepath.Join(c.dir, local)
	}

	remote := filepath.Base(local)

	return c.exchange(remote, func(conn *transfer.Connection) (*transfer.Result, error) {
		f, err := os.Open(local)
		if err != nil {
			return nil, localError(err, local)
		}

		defer func() {
			if err := f.Close(); err != nil {
				c.l.Errorf("error while closing %s: %s", local, err.Error())
			}
		}()

		return conn.Upload(remote, f)
	})
}

func (c *Client) Delete(filename string) (*transfer.Result, error) {
	return c.exchange(filename, func(conn *transfer.Connection) (*transfer.Result, error) {
		return conn.Delete(filename)
	})
}

// exchange checks name before anything touches the disk or the network, then
// runs op over a fresh ephemeral socket.
func (c *Client) exchange(name string,
	op func(*transfer.Connection) (*transfer.Result, error),
) (*transfer.Result, error) {
	if c.server == nil {
		return nil, utils.ErrNotConnected
	}

	if err := types.ValidateFilename(name); err != nil {
		return nil, transfer.NewError(transfer.ClassMalformed, types.ErrNotDefined, err.Error(), err)
	}

	sock, err := net.ListenPacket("udp", ":0")
	if err != nil {
		return nil, transfer.NewError(transfer.ClassTransport, types.ErrNotDefined,
			"error while opening local socket", err)
	}

	defer func() {
		if err := sock.Close(); err != nil {
			c.l.Errorf("error while closing local socket: %s", err.Error())
		}
	}()

	return op(transfer.NewConnection(sock, c.server, c.l, transfer.Config{
		Timeout:    c.timeout,
		MaxRetries: int(c.numTries),
		Trace:      c.trace,
	}))
}

func localError(err error, path string) error {
	code := transfer.CodeForFSError(err)

	msg := code.Message()
	if errors.Is(err, fs.ErrExist) {
		msg = fmt.Sprintf("%s: %s", msg, path)
	}

	return transfer.NewError(transfer.ClassFilesystem, code, msg, err)
}
