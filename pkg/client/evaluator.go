package client

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/Wa4h1h/lockstep-tftp/pkg/transfer"
	"go.uber.org/zap"
)

var (
	getRegex     = "^get\\s+(\\S+)$"
	putRegex     = "^put\\s+(\\S+)$"
	deleteRegex  = "^delete\\s+(\\S+)$"
	timeoutRegex = "^timeout\\s+(\\d+)$"
	connectRegex = "^connect\\s+(\\S+)(?:\\s+(\\d+))?$"
	traceRegex   = "^trace$"
	quitRegex    = "^quit$"
	helpRegex    = "^help$"
)

const helpText = `Commands:
	connect <host> [port]
	get <file>
	put <file>
	delete <file>
	timeout <seconds>
	trace
	help
	quit`

type Evaluator struct {
	l             *zap.SugaredLogger
	client        Connector
	out           io.Writer
	line          string
	regexPatterns map[string]*regexp.Regexp
}

func NewEvaluator(l *zap.SugaredLogger, client Connector, out io.Writer) *Evaluator {
	e := &Evaluator{
		l:      l,
		client: client,
		out:    out,
	}

	e.regexPatterns = make(map[string]*regexp.Regexp)

	e.regexPatterns["get"] = regexp.MustCompile(getRegex)
	e.regexPatterns["put"] = regexp.MustCompile(putRegex)
	e.regexPatterns["delete"] = regexp.MustCompile(deleteRegex)
	e.regexPatterns["timeout"] = regexp.MustCompile(timeoutRegex)
	e.regexPatterns["connect"] = regexp.MustCompile(connectRegex)
	e.regexPatterns["trace"] = regexp.MustCompile(traceRegex)
	e.regexPatterns["quit"] = regexp.MustCompile(quitRegex)
	e.regexPatterns["help"] = regexp.MustCompile(helpRegex)

	return e
}

// evaluate runs the current line and reports whether the session is over.
func (e *Evaluator) evaluate() (bool, error) {
	e.line = strings.TrimSpace(e.line)

	if e.line == "" {
		return false, nil
	}

	if matches := e.regexPatterns["get"].FindStringSubmatch(e.line); len(matches) == 2 {
		res, err := e.client.Get(matches[1])

		return false, e.report("Received", res, err)
	}

	if matches := e.regexPatterns["put"].FindStringSubmatch(e.line); len(matches) == 2 {
		res, err := e.client.Put(matches[1])

		return false, e.report("Sent", res, err)
	}

	if matches := e.regexPatterns["delete"].FindStringSubmatch(e.line); len(matches) == 2 {
		if _, err := e.client.Delete(matches[1]); err != nil {
			return false, err
		}

		fmt.Fprintf(e.out, "Deleted %s\n", matches[1])

		return false, nil
	}

	if matches := e.regexPatterns["timeout"].FindStringSubmatch(e.line); len(matches) == 2 {
		n, err := strconv.ParseUint(matches[1], 10, 32)
		if err != nil {
			return false, fmt.Errorf("timeout value can not be parsed: %w", err)
		}

		if n == 0 {
			return false, errors.New("timeout must be at least 1 second")
		}

		e.client.SetTimeout(uint(n))

		return false, nil
	}

	if matches := e.regexPatterns["connect"].FindStringSubmatch(e.line); len(matches) == 3 {
		addr := matches[1]
		if matches[2] != "" {
			addr = fmt.Sprintf("%s:%s", matches[1], matches[2])
		}

		return false, e.client.Connect(addr)
	}

	if e.regexPatterns["trace"].MatchString(e.line) {
		if e.client.SetTrace() {
			fmt.Fprintln(e.out, "Packet tracing on.")
		} else {
			fmt.Fprintln(e.out, "Packet tracing off.")
		}

		return false, nil
	}

	if e.regexPatterns["help"].MatchString(e.line) {
		fmt.Fprintln(e.out, helpText)

		return false, nil
	}

	if e.regexPatterns["quit"].MatchString(e.line) {
		return true, nil
	}

	return false, fmt.Errorf("unknown command or arguments: %s", e.line)
}

func (e *Evaluator) report(verb string, res *transfer.Result, err error) error {
	if err != nil {
		return err
	}

	fmt.Fprintf(e.out, "%s %d bytes in %d blocks\n", verb, res.Bytes, res.Blocks)

	return nil
}
