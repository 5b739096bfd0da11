//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package server

import (
	"fmt"
	"os"
	"os/user"
	"strconv"
	"syscall"

	"golang.org/x/sys/unix"
)

type control func(network, address string, c syscall.RawConn) error

func reusePort() control {
	return func(network, address string, c syscall.RawConn) error {
		var opErr error

		err := c.Control(func(fd uintptr) {
			opErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
		})
		if err != nil {
			return err
		}

		return opErr
	}
}

// DropPrivileges switches a root process to the named user, falling back to
// SUDO_USER. Non-root processes are left untouched.
func DropPrivileges(name string) (string, error) {
	if unix.Getuid() != 0 {
		return "", nil
	}

	if name == "" {
		name = os.Getenv("SUDO_USER")
	}

	if name == "" || name == "root" {
		return "", nil
	}

	u, err := user.Lookup(name)
	if err != nil {
		return "", fmt.Errorf("error while looking up user %s: %w", name, err)
	}

	uid, err := strconv.Atoi(u.Uid)
	if err != nil {
		return "", fmt.Errorf("error while parsing uid %s: %w", u.Uid, err)
	}

	gid, err := strconv.Atoi(u.Gid)
	if err != nil {
		return "", fmt.Errorf("error while parsing gid %s: %w", u.Gid, err)
	}

	// group first, setgid is refused once root is gone
	if err := unix.Setgroups([]int{gid}); err != nil {
		return "", fmt.Errorf("error while setting groups: %w", err)
	}

	if err := unix.Setgid(gid); err != nil {
		return "", fmt.Errorf("error while setting gid %d: %w", gid, err)
	}

	if err := unix.Setuid(uid); err != nil {
		return "", fmt.Errorf("error while setting uid %d: %w", uid, err)
	}

	return u.Username, nil
}
