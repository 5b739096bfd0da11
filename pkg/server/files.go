package server

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Wa4h1h/lockstep-tftp/pkg/transfer"
	"github.com/Wa4h1h/lockstep-tftp/pkg/types"
	"go.uber.org/multierr"
)

var errOutsideBaseDir = errors.New("error: path escapes the base dir")

// resolve maps a requested name to a path below the base dir.
func (s *Server) resolve(name string) (string, error) {
	name = filepath.FromSlash(name)
	if !filepath.IsLocal(name) {
		return "", fmt.Errorf("%w: %s", errOutsideBaseDir, name)
	}

	return filepath.Join(s.baseDir, name), nil
}

func (s *Server) serveRead(c *transfer.Connection, path string) (*transfer.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, s.fsFailure(c, err, "Error opening file for reading")
	}

	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Errorf("error while closing %s: %s", path, err.Error())
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return nil, s.fsFailure(c, err, "Error reading file info")
	}

	if !info.Mode().IsRegular() {
		s.reply(c, types.ErrAccessViolation, "not a regular file")

		return nil, transfer.NewError(transfer.ClassFilesystem, types.ErrAccessViolation,
			fmt.Sprintf("%s is not a regular file", path), nil)
	}

	return c.Send(f)
}

func (s *Server) serveWrite(c *transfer.Connection, path string) (*transfer.Result, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return nil, s.fsFailure(c, err, "Error opening file for writing")
	}

	res, err := c.Receive(f)
	err = multierr.Append(err, f.Close())

	if err != nil {
		// never leave a partial upload behind
		if rmErr := os.Remove(path); rmErr != nil {
			err = multierr.Append(err, rmErr)
		}

		return nil, err
	}

	return res, nil
}

func (s *Server) serveDelete(c *transfer.Connection, path string) (*transfer.Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, s.fsFailure(c, err, "Error reading file info")
	}

	if info.IsDir() {
		s.reply(c, types.ErrAccessViolation, "is a directory")

		return nil, transfer.NewError(transfer.ClassFilesystem, types.ErrAccessViolation,
			fmt.Sprintf("%s is a directory", path), nil)
	}

	if err := os.Remove(path); err != nil {
		return nil, s.fsFailure(c, err, "Error deleting file")
	}

	return c.AcknowledgeDelete()
}

// fsFailure reports a filesystem error to the peer. Errors without a
// dedicated code carry the OS text.
func (s *Server) fsFailure(c *transfer.Connection, err error, what string) error {
	code := transfer.CodeForFSError(err)

	custom := ""
	if code == types.ErrNotDefined {
		custom = fmt.Sprintf("%s: %v", what, osText(err))
	}

	s.reply(c, code, custom)

	return transfer.NewError(transfer.ClassFilesystem, code, code.Message(), err)
}

func osText(err error) error {
	var pe *fs.PathError
	if errors.As(err, &pe) {
		return pe.Err
	}

	return err
}
