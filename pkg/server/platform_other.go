//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package server

import "syscall"

type control func(network, address string, c syscall.RawConn) error

func reusePort() control {
	return nil
}

func DropPrivileges(string) (string, error) {
	return "", nil
}
