package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/Wa4h1h/lockstep-tftp/pkg/transfer"
	"github.com/Wa4h1h/lockstep-tftp/pkg/types"
	"github.com/Wa4h1h/lockstep-tftp/pkg/utils"
	"go.uber.org/zap"
)

// Server answers requests one at a time on a single socket. While an
// exchange runs, datagrams from any other address are refused.
type Server struct {
	conn    net.PacketConn
	logger  *zap.SugaredLogger
	port    string
	baseDir string
	rx      []byte
	cfg     transfer.Config
}

func NewServer(l *zap.SugaredLogger, port string, timeout time.Duration,
	numTries int, baseDir string, trace bool,
) *Server {
	if l == nil {
		l = zap.NewNop().Sugar()
	}

	return &Server{
		logger:  l,
		port:    port,
		baseDir: baseDir,
		rx:      make([]byte, types.DatagramSize+1),
		cfg: transfer.Config{
			Timeout:    timeout,
			MaxRetries: numTries,
			Trace:      trace,
		},
	}
}

// Listen binds the server socket without serving it.
func (s *Server) Listen() error {
	if err := utils.EnsureDir(s.baseDir); err != nil {
		s.logger.Error(err.Error())

		return utils.ErrStartingServer
	}

	l := net.ListenConfig{
		Control: reusePort(),
	}

	conn, err := l.ListenPacket(context.Background(), "udp", fmt.Sprintf(":%s", s.port))
	if err != nil {
		s.logger.Error(err.Error())

		return utils.ErrStartingServer
	}

	s.conn = conn

	return nil
}

// Serve handles datagrams until the socket is closed.
func (s *Server) Serve() error {
	if s.conn == nil {
		return utils.ErrStartingServer
	}

	for {
		n, addr, err := s.conn.ReadFrom(s.rx)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}

			var nerr net.Error
			if errors.As(err, &nerr) && nerr.Timeout() {
				continue
			}

			return fmt.Errorf("error while reading datagram: %w", err)
		}

		s.handle(addr, s.rx[:n])
	}
}

func (s *Server) ListenAndServe() error {
	if err := s.Listen(); err != nil {
		return err
	}

	return s.Serve()
}

// Addr returns the bound address, nil before Listen.
func (s *Server) Addr() net.Addr {
	if s.conn == nil {
		return nil
	}

	return s.conn.LocalAddr()
}

func (s *Server) Close() error {
	if s.conn == nil {
		return nil
	}

	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("error while closing connection: %w", err)
	}

	return nil
}

func (s *Server) handle(addr net.Addr, datagram []byte) {
	c := transfer.NewConnection(s.conn, addr, s.logger, s.cfg)

	p, err := types.Decode(datagram)
	if err != nil {
		code, msg := rejectReason(err)
		s.logger.Debugf("invalid datagram from %s: %s", addr, err.Error())
		s.reply(c, code, msg)

		return
	}

	switch req := p.(type) {
	case *types.Request:
		s.serve(c.RespondTo(req), req)
	case *types.Error:
		s.logger.Debugf("ignoring error packet from %s: %s", addr, req.ErrMsg)
	default:
		s.logger.Debugf("%s from %s outside of any transfer", p.Op(), addr)
		s.reply(c, types.ErrUnknownTransferId, "")
	}
}

func (s *Server) serve(c *transfer.Connection, req *types.Request) {
	s.logger.Infof("%s from %s", req, c.Peer())

	start := time.Now()

	path, err := s.resolve(req.Filename)
	if err != nil {
		s.logger.Warnf("refusing %s: %s", req.Filename, err.Error())
		s.reply(c, types.ErrAccessViolation, "path outside of base dir")

		return
	}

	var res *transfer.Result

	switch req.Opcode {
	case types.OpCodeRRQ:
		res, err = s.serveRead(c, path)
	case types.OpCodeWRQ:
		res, err = s.serveWrite(c, path)
	case types.OpCodeDRQ:
		res, err = s.serveDelete(c, path)
	}

	if err != nil {
		s.logger.Errorf("error while responding to %s: %s", req.Opcode, err.Error())

		return
	}

	s.logger.Infof("%s %s done: %d blocks, %d bytes, %d retransmits in %s",
		req.Opcode, req.Filename, res.Blocks, res.Bytes, res.Retransmits, time.Since(start))
}

func (s *Server) reply(c *transfer.Connection, code types.ErrCode, msg string) {
	if err := c.SendError(code, msg); err != nil {
		s.logger.Errorf("error while responding to %s: %s", c.Peer(), err.Error())
	}
}

func rejectReason(err error) (types.ErrCode, string) {
	code := transfer.CodeForDecodeError(err)

	switch {
	case errors.Is(err, utils.ErrEmptyName):
		return code, "Filename missing"
	case errors.Is(err, utils.ErrNameTooLong):
		return code, "Filename too long"
	case errors.Is(err, utils.ErrBadMode):
		return code, "Only octet mode is supported"
	case errors.Is(err, utils.ErrWrongOpCode):
		return code, "Unknown operation"
	default:
		return code, "Invalid request received"
	}
}
