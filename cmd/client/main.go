package main

import (
	"fmt"
	"os"
	"time"

	"github.com/Wa4h1h/lockstep-tftp/pkg/client"
	"github.com/Wa4h1h/lockstep-tftp/pkg/transfer"
	"github.com/Wa4h1h/lockstep-tftp/pkg/utils"
)

var (
	logLevel = utils.GetEnv[string]("TFTP_LOG_LEVEL", "info", false)
	numTries = utils.GetEnv[uint]("TFTP_NUM_TRIES", "3", false)
	timeout  = utils.GetEnv[time.Duration]("TFTP_TIMEOUT", "5", false)
	trace    = utils.GetEnv[bool]("TFTP_TRACE", "false", false)
)

const usage = "usage: client [<download|upload|delete> <file> <server_ip[:port]>]"

func main() {
	l := utils.NewLogger(logLevel).Sugar()

	wd, err := os.Getwd()
	if err != nil {
		l.Fatal(err.Error())
	}

	c := client.NewClient(l, numTries, wd)
	c.SetTimeoutDuration(timeout)

	if trace {
		c.SetTrace()
	}

	defer func() {
		if err := c.Close(); err != nil {
			l.Error(err.Error())
		}
	}()

	args := os.Args[1:]

	switch len(args) {
	case 0:
		if err := client.NewCli(l, c, os.Stdin, os.Stdout).Read(); err != nil {
			l.Error(err.Error())
		}

		return
	case 3:
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	if err := run(c, args[0], args[1], args[2]); err != nil {
		l.Error(err.Error())

		if err := c.Close(); err != nil {
			l.Error(err.Error())
		}

		os.Exit(1)
	}
}

func run(c *client.Client, op, file, addr string) error {
	if err := c.Connect(addr); err != nil {
		return err
	}

	var (
		res *transfer.Result
		err error
	)

	start := time.Now()

	switch op {
	case "download":
		res, err = c.Get(file)
	case "upload":
		res, err = c.Put(file)
	case "delete":
		res, err = c.Delete(file)
	default:
		return fmt.Errorf("unknown operation %s\n%s", op, usage)
	}

	if err != nil {
		return err
	}

	fmt.Printf("%s %s: %d bytes in %d blocks, %d retransmits, %s\n",
		op, file, res.Bytes, res.Blocks, res.Retransmits, time.Since(start).Round(time.Millisecond))

	return nil
}
