package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("TFTP_TEST_UINT", "7")
	t.Setenv("TFTP_TEST_BOOL", "true")
	t.Setenv("TFTP_TEST_SECS", "3")
	t.Setenv("TFTP_TEST_DUR", "250ms")

	assert.Equal(t, uint(7), GetEnv[uint]("TFTP_TEST_UINT", "1", false))
	assert.True(t, GetEnv[bool]("TFTP_TEST_BOOL", "false", false))
	assert.Equal(t, 3*time.Second, GetEnv[time.Duration]("TFTP_TEST_SECS", "5", false))
	assert.Equal(t, 250*time.Millisecond, GetEnv[time.Duration]("TFTP_TEST_DUR", "5", false))
	assert.Equal(t, "fallback", GetEnv[string]("TFTP_TEST_UNSET", "fallback", false))
	assert.Equal(t, 5*time.Second, GetEnv[time.Duration]("TFTP_TEST_UNSET", "5", false))
}

func TestGetEnvPanics(t *testing.T) {
	t.Setenv("TFTP_TEST_BAD", "abc")

	assert.Panics(t, func() { GetEnv[uint]("TFTP_TEST_BAD", "1", false) })
	assert.Panics(t, func() { GetEnv[bool]("TFTP_TEST_BAD", "false", false) })
	assert.Panics(t, func() { GetEnv[time.Duration]("TFTP_TEST_BAD", "5", false) })
	assert.Panics(t, func() { GetEnv[string]("TFTP_TEST_UNSET", "", true) })
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	require.NoError(t, EnsureDir(dir))
	require.NoError(t, EnsureDir(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	file := filepath.Join(dir, "f")
	require.NoError(t, os.WriteFile(file, nil, 0o600))
	assert.Error(t, EnsureDir(file))
}

func TestNewLogger(t *testing.T) {
	assert.True(t, NewLogger("debug").Core().Enabled(-1))
	assert.False(t, NewLogger("bogus").Core().Enabled(-1))
}
