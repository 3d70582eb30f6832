package backend

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/entanglab/qnet/registry"
)

func TestHostAdoptAndDisown(t *testing.T) {
	alice := NewHost("alice")

	q := NewQubit("alice", nil)

	require.NoError(t, alice.Adopt(q))
	require.True(t, alice.Owns(q.ID()))
	require.Equal(t, 1, alice.QubitCount())

	err := alice.Adopt(q)
	require.ErrorIs(t, err, registry.ErrDuplicateKey)

	require.NoError(t, alice.Disown(q))
	require.False(t, alice.Owns(q.ID()))

	err = alice.Disown(q)
	require.ErrorIs(t, err, registry.ErrKeyNotFound)
}

func TestTransferMovesOwnership(t *testing.T) {
	alice := NewHost("alice")
	bob := NewHost("bob")

	q := NewQubit("alice", nil)
	require.NoError(t, alice.Adopt(q))

	require.NoError(t, q.TransferTo(alice, bob))

	require.Equal(t, "bob", q.HostID())
	require.False(t, alice.Owns(q.ID()))
	require.True(t, bob.Owns(q.ID()))
}

func TestTransferOwnershipMismatch(t *testing.T) {
	alice := NewHost("alice")
	bob := NewHost("bob")
	eve := NewHost("eve")

	q := NewQubit("alice", nil)
	require.NoError(t, alice.Adopt(q))

	err := q.TransferTo(eve, bob)
	require.ErrorIs(t, err, ErrOwnershipMismatch)

	// nothing moved
	require.Equal(t, "alice", q.HostID())
	require.True(t, alice.Owns(q.ID()))
}

func TestInvalidateIsIdempotentFailure(t *testing.T) {
	q := NewQubit("alice", nil)

	require.NoError(t, q.Invalidate())
	require.True(t, q.Released())

	err := q.Invalidate()
	require.ErrorIs(t, err, ErrAlreadyReleased)
}

func TestTransferReleasedQubit(t *testing.T) {
	alice := NewHost("alice")
	bob := NewHost("bob")

	q := NewQubit("alice", nil)
	require.NoError(t, alice.Adopt(q))
	require.NoError(t, q.Invalidate())

	err := q.TransferTo(alice, bob)
	require.ErrorIs(t, err, ErrAlreadyReleased)
}

func TestExclusiveRejectsReleased(t *testing.T) {
	q := NewQubit("alice", nil)
	require.NoError(t, q.Invalidate())

	err := Exclusive(func() error { return nil }, q)
	require.ErrorIs(t, err, ErrAlreadyReleased)
}

func TestExclusiveMultiQubitNoDeadlock(t *testing.T) {
	a := NewQubitWithID("a", "alice", nil)
	b := NewQubitWithID("b", "bob", nil)

	wg := sync.WaitGroup{}

	// opposite lock orders must not deadlock; Exclusive sorts by id
	for i := 0; i < 64; i++ {
		wg.Add(2)

		go func() {
			defer wg.Done()
			require.NoError(t, Exclusive(func() error { return nil }, a, b))
		}()

		go func() {
			defer wg.Done()
			require.NoError(t, Exclusive(func() error { return nil }, b, a))
		}()
	}

	wg.Wait()
}

func TestExclusiveStableUnderTransfer(t *testing.T) {
	alice := NewHost("alice")
	bob := NewHost("bob")
	carol := NewHost("carol")

	// EPR halves share an id, so ordering must not depend on id or on
	// the mutable owner
	a := NewQubitWithID("e1", "alice", nil)
	b := NewQubitWithID("e1", "bob", nil)
	require.NoError(t, alice.Adopt(a))
	require.NoError(t, bob.Adopt(b))

	done := make(chan struct{})

	go func() {
		defer close(done)

		for i := 0; i < 128; i++ {
			if err := a.TransferTo(alice, carol); err != nil {
				t.Error(err)
				return
			}

			if err := a.TransferTo(carol, alice); err != nil {
				t.Error(err)
				return
			}
		}
	}()

	wg := sync.WaitGroup{}

	for i := 0; i < 64; i++ {
		wg.Add(2)

		go func() {
			defer wg.Done()
			require.NoError(t, Exclusive(func() error { return nil }, a, b))
		}()

		go func() {
			defer wg.Done()
			require.NoError(t, Exclusive(func() error { return nil }, b, a))
		}()
	}

	wg.Wait()
	<-done
}

func TestUnimplementedSurfacesMisuse(t *testing.T) {
	var b Backend = Unimplemented{}

	require.ErrorIs(t, b.Start(context.Background()), ErrNotImplemented)

	_, err := b.CreateQubit("alice")
	require.ErrorIs(t, err, ErrNotImplemented)

	_, err = b.CreateEPR(context.Background(), "alice", "bob", "", false)
	require.ErrorIs(t, err, ErrNotImplemented)

	require.ErrorIs(t, b.H(nil), ErrNotImplemented)

	_, err = b.Measure(nil, false)
	require.ErrorIs(t, err, ErrNotImplemented)
}
