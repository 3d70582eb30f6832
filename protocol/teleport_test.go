package protocol

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/entanglab/qnet/backend"
	"github.com/entanglab/qnet/backend/simbackend"
	"github.com/entanglab/qnet/engine/gate"
	"github.com/entanglab/qnet/engine/statevec"
	"github.com/entanglab/qnet/simulation"
)

func newTeleportBackend(t *testing.T, seed int64) *simbackend.Simulator {
	t.Helper()

	sim := simulation.NewContext(zerolog.Nop())
	s := simbackend.NewWithContext(sim, statevec.NewWithSeed(seed))

	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(func() { _ = s.Stop() })

	require.NoError(t, s.AddHost(backend.NewHost("alice")))
	require.NoError(t, s.AddHost(backend.NewHost("bob")))

	return s
}

func requireDensityEqual(t *testing.T, got, want gate.Matrix) {
	t.Helper()

	require.Equal(t, want.Dim(), got.Dim())
	for i := 0; i < want.Dim(); i++ {
		for j := 0; j < want.Dim(); j++ {
			require.InDelta(t, real(want.At(i, j)), real(got.At(i, j)), 1e-9)
			require.InDelta(t, imag(want.At(i, j)), imag(got.At(i, j)), 1e-9)
		}
	}
}

func TestTeleportPreservesRotatedState(t *testing.T) {
	// run across several seeds so every correction branch gets exercised
	for seed := int64(1); seed <= 8; seed++ {
		s := newTeleportBackend(t, seed)

		payload, err := s.CreateQubit("alice")
		require.NoError(t, err)
		require.NoError(t, s.Rx(payload, 0.7))

		out, err := Teleport(context.Background(), s, payload, "alice", "bob")
		require.NoError(t, err)
		require.Equal(t, "bob", out.HostID())
		require.True(t, payload.Released())

		rx := gate.Rx(0.7)
		proj, err := gate.New(2, 1, 0, 0, 0)
		require.NoError(t, err)
		want := rx.Mul(proj).Mul(rx.Dagger())

		got, err := s.DensityOperator(out)
		require.NoError(t, err)
		requireDensityEqual(t, got, want)
	}
}

func TestTeleportBasisState(t *testing.T) {
	s := newTeleportBackend(t, 42)

	payload, err := s.CreateQubit("alice")
	require.NoError(t, err)
	require.NoError(t, s.X(payload))

	out, err := Teleport(context.Background(), s, payload, "alice", "bob")
	require.NoError(t, err)

	bit, err := s.Measure(out, false)
	require.NoError(t, err)
	require.Equal(t, 1, bit)
}

func TestTeleportUnknownHost(t *testing.T) {
	s := newTeleportBackend(t, 42)

	payload, err := s.CreateQubit("alice")
	require.NoError(t, err)

	_, err = Teleport(context.Background(), s, payload, "alice", "nobody")
	require.ErrorIs(t, err, backend.ErrUnknownHost)
}
