package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Wa4h1h/lockstep-tftp/pkg/server"
	"github.com/Wa4h1h/lockstep-tftp/pkg/utils"
)

var (
	tftpPort    = utils.GetEnv[string]("TFTP_PORT", "69", false)
	logLevel    = utils.GetEnv[string]("LOG_LEVEL", "info", false)
	readTimeout = utils.GetEnv[time.Duration]("READ_TIMEOUT", "5", false)
	numTries    = utils.GetEnv[uint]("NUM_TRIES", "3", false)
	trace       = utils.GetEnv[bool]("TFTP_TRACE", "false", false)
	runAs       = utils.GetEnv[string]("TFTP_RUN_AS", "", false)
	tftpBaseDir = utils.GetEnv[string]("TFTP_BASE_DIR", utils.UserHomeDirPath(), false)
)

func main() {
	l := utils.NewLogger(logLevel).Sugar()
	s := server.NewServer(l, tftpPort, readTimeout, int(numTries), tftpBaseDir, trace)

	if err := s.Listen(); err != nil {
		l.Fatal(err.Error())
	}

	// the privileged port is bound, root is no longer needed
	user, err := server.DropPrivileges(runAs)
	if err != nil {
		l.Fatal(err.Error())
	}

	if user != "" {
		l.Infof("running as %s", user)
	}

	go func() {
		if err := s.Serve(); err != nil {
			l.Error(err.Error())
		}
	}()

	l.Infof("listening on %s, serving %s", s.Addr(), tftpBaseDir)

	defer func() {
		if err := s.Close(); err != nil {
			l.Error(err.Error())
		}

		l.Infof("closed connection on port %s", tftpPort)
	}()

	// listen shutdown signal
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	<-signalChan
}
