package options

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	opts := NewWithModifiers()

	require.Equal(t, "qnet", opts.AppName)
	require.Equal(t, 30*time.Second, opts.EPRWaitTimeout)
	require.Equal(t, int64(0), opts.RandomSeed)
	require.Equal(t, "info", opts.LogLevel)
	require.Equal(t, "none", opts.TracerConfig.TracerType)
}

func TestModifiersWin(t *testing.T) {
	opts := NewWithModifiers(
		AppName("testnet"),
		EPRWaitTimeout(5*time.Second),
		RandomSeed(42),
	)

	require.Equal(t, "testnet", opts.AppName)
	require.Equal(t, 5*time.Second, opts.EPRWaitTimeout)
	require.Equal(t, int64(42), opts.RandomSeed)
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("QNET_APP_NAME", "envnet")
	t.Setenv("QNET_EPR_WAIT_TIMEOUT", "2s")
	t.Setenv("QNET_RANDOM_SEED", "7")

	opts := NewWithModifiers()

	require.Equal(t, "envnet", opts.AppName)
	require.Equal(t, 2*time.Second, opts.EPRWaitTimeout)
	require.Equal(t, int64(7), opts.RandomSeed)
}

func TestNegativeTimeoutDisablesBound(t *testing.T) {
	opts := NewWithModifiers(EPRWaitTimeout(-1))

	require.Negative(t, opts.EPRWaitTimeout)
}
