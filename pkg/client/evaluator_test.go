package client

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/Wa4h1h/lockstep-tftp/pkg/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConnector struct {
	calls   []string
	timeout uint
	trace   bool
	err     error
}

func (f *fakeConnector) Connect(addr string) error {
	f.calls = append(f.calls, "connect "+addr)

	return f.err
}

func (f *fakeConnector) Get(name string) (*transfer.Result, error) {
	f.calls = append(f.calls, "get "+name)

	if f.err != nil {
		return nil, f.err
	}

	return &transfer.Result{Blocks: 3, Bytes: 1100}, nil
}

func (f *fakeConnector) Put(name string) (*transfer.Result, error) {
	f.calls = append(f.calls, "put "+name)

	if f.err != nil {
		return nil, f.err
	}

	return &transfer.Result{Blocks: 1, Bytes: 10}, nil
}

func (f *fakeConnector) Delete(name string) (*transfer.Result, error) {
	f.calls = append(f.calls, "delete "+name)

	return &transfer.Result{}, f.err
}

func (f *fakeConnector) SetTimeout(timeout uint) { f.timeout = timeout }

func (f *fakeConnector) SetTrace() bool {
	f.trace = !f.trace

	return f.trace
}

func (f *fakeConnector) Close() error { return nil }

func eval(t *testing.T, e *Evaluator, line string) (bool, error) {
	t.Helper()

	e.line = line

	return e.evaluate()
}

func TestEvaluatorCommands(t *testing.T) {
	fc := &fakeConnector{}
	out := new(bytes.Buffer)
	e := NewEvaluator(nil, fc, out)

	for _, line := range []string{
		"connect 10.0.0.1 6969",
		"connect localhost",
		"get a.bin",
		"put  b.txt ",
		"delete c.txt",
		"",
	} {
		done, err := eval(t, e, line)
		require.NoError(t, err, line)
		assert.False(t, done)
	}

	assert.Equal(t, []string{
		"connect 10.0.0.1:6969",
		"connect localhost",
		"get a.bin",
		"put b.txt",
		"delete c.txt",
	}, fc.calls)

	assert.Contains(t, out.String(), "Received 1100 bytes in 3 blocks")
	assert.Contains(t, out.String(), "Sent 10 bytes in 1 blocks")
	assert.Contains(t, out.String(), "Deleted c.txt")
}

func TestEvaluatorSettings(t *testing.T) {
	fc := &fakeConnector{}
	out := new(bytes.Buffer)
	e := NewEvaluator(nil, fc, out)

	_, err := eval(t, e, "timeout 9")
	require.NoError(t, err)
	assert.Equal(t, uint(9), fc.timeout)

	_, err = eval(t, e, "timeout 0")
	assert.Error(t, err)
	assert.Equal(t, uint(9), fc.timeout)

	_, err = eval(t, e, "trace")
	require.NoError(t, err)
	assert.True(t, fc.trace)
	assert.Contains(t, out.String(), "Packet tracing on.")

	_, err = eval(t, e, "help")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "delete <file>")

	done, err := eval(t, e, "quit")
	require.NoError(t, err)
	assert.True(t, done)
}

func TestEvaluatorErrors(t *testing.T) {
	fc := &fakeConnector{err: errors.New("boom")}
	e := NewEvaluator(nil, fc, new(bytes.Buffer))

	_, err := eval(t, e, "get x")
	assert.EqualError(t, err, "boom")

	_, err = eval(t, e, "fetch x")
	assert.ErrorContains(t, err, "unknown command")
}

func TestCliRead(t *testing.T) {
	fc := &fakeConnector{}
	out := new(bytes.Buffer)
	in := strings.NewReader("connect 127.0.0.1\nbogus\nget f\nquit\nget never\n")

	require.NoError(t, NewCli(nil, fc, in, out).Read())

	assert.Equal(t, []string{"connect 127.0.0.1", "get f"}, fc.calls)
	assert.Contains(t, out.String(), "unknown command or arguments: bogus")
	assert.True(t, strings.HasPrefix(out.String(), "tftp> "))
}
