package entangle

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/entanglab/qnet/backend"
)

func newTestLedger() *Ledger {
	return NewLedger(zerolog.Nop())
}

func pairQubits(id string) (*backend.Qubit, *backend.Qubit) {
	return backend.NewQubitWithID(id, "alice", nil), backend.NewQubitWithID(id, "bob", nil)
}

func TestCreateAndClaim(t *testing.T) {
	l := newTestLedger()

	qa, qb := pairQubits("e1")

	rec, err := l.Create("e1", "alice", "bob", qa, qb)
	require.NoError(t, err)
	require.Equal(t, StatusPending, rec.Status())

	claimed, err := l.Claim("bob", "alice", "e1")
	require.NoError(t, err)
	require.Same(t, rec, claimed)
	require.Equal(t, StatusFulfilled, claimed.Status())
	require.Same(t, qb, claimed.QubitB())
}

func TestClaimTwiceFails(t *testing.T) {
	l := newTestLedger()

	qa, qb := pairQubits("e1")
	_, err := l.Create("e1", "alice", "bob", qa, qb)
	require.NoError(t, err)

	_, err = l.Claim("bob", "alice", "e1")
	require.NoError(t, err)

	_, err = l.Claim("bob", "alice", "e1")
	require.ErrorIs(t, err, ErrAlreadyFulfilled)
}

func TestClaimUnknownID(t *testing.T) {
	l := newTestLedger()

	_, err := l.Claim("bob", "alice", "ghost")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestClaimWrongPair(t *testing.T) {
	l := newTestLedger()

	qa, qb := pairQubits("e1")
	_, err := l.Create("e1", "alice", "bob", qa, qb)
	require.NoError(t, err)

	// eve cannot claim bob's half
	_, err = l.Claim("eve", "alice", "e1")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDuplicateIDRejected(t *testing.T) {
	l := newTestLedger()

	qa, qb := pairQubits("e1")
	_, err := l.Create("e1", "alice", "bob", qa, qb)
	require.NoError(t, err)

	_, err = l.Create("e1", "alice", "bob", qa, qb)
	require.ErrorIs(t, err, ErrDuplicateID)
}

func TestAnonymousClaimTakesMostRecent(t *testing.T) {
	l := newTestLedger()

	for _, id := range []string{"e1", "e2", "e3"} {
		qa, qb := pairQubits(id)
		_, err := l.Create(id, "alice", "bob", qa, qb)
		require.NoError(t, err)
	}

	for _, want := range []string{"e3", "e2", "e1"} {
		rec, err := l.Claim("bob", "alice", "")
		require.NoError(t, err)
		require.Equal(t, want, rec.ID())
	}

	_, err := l.Claim("bob", "alice", "")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAwaitFulfilledResolvesOnClaim(t *testing.T) {
	l := newTestLedger()

	qa, qb := pairQubits("e1")
	rec, err := l.Create("e1", "alice", "bob", qa, qb)
	require.NoError(t, err)

	go func() {
		time.Sleep(20 * time.Millisecond)

		if _, err := l.Claim("bob", "alice", "e1"); err != nil {
			t.Error(err)
		}
	}()

	err = l.AwaitFulfilled(context.Background(), rec, time.Second)
	require.NoError(t, err)
	require.Equal(t, StatusFulfilled, rec.Status())
}

func TestAwaitFulfilledTimesOut(t *testing.T) {
	l := newTestLedger()

	qa, qb := pairQubits("e1")
	rec, err := l.Create("e1", "alice", "bob", qa, qb)
	require.NoError(t, err)

	err = l.AwaitFulfilled(context.Background(), rec, 20*time.Millisecond)
	require.ErrorIs(t, err, ErrTimeout)
}

func TestAwaitClaimParksUntilCreate(t *testing.T) {
	l := newTestLedger()

	go func() {
		time.Sleep(20 * time.Millisecond)

		qa, qb := pairQubits("e1")
		if _, err := l.Create("e1", "alice", "bob", qa, qb); err != nil {
			t.Error(err)
		}
	}()

	rec, err := l.AwaitClaim(context.Background(), "bob", "alice", "e1", time.Second)
	require.NoError(t, err)
	require.Equal(t, "e1", rec.ID())
	require.Equal(t, StatusFulfilled, rec.Status())
}

func TestAwaitClaimAnonymous(t *testing.T) {
	l := newTestLedger()

	go func() {
		time.Sleep(20 * time.Millisecond)

		qa, qb := pairQubits("e9")
		if _, err := l.Create("e9", "alice", "bob", qa, qb); err != nil {
			t.Error(err)
		}
	}()

	rec, err := l.AwaitClaim(context.Background(), "bob", "alice", "", time.Second)
	require.NoError(t, err)
	require.Equal(t, "e9", rec.ID())
}

func TestAwaitClaimTimesOut(t *testing.T) {
	l := newTestLedger()

	_, err := l.AwaitClaim(context.Background(), "bob", "alice", "never", 20*time.Millisecond)
	require.ErrorIs(t, err, ErrTimeout)
}

func TestAwaitClaimHonorsContext(t *testing.T) {
	l := newTestLedger()

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := l.AwaitClaim(ctx, "bob", "alice", "never", time.Second)
	require.ErrorIs(t, err, context.Canceled)
}

func TestAwaitClaimIgnoresForeignID(t *testing.T) {
	l := newTestLedger()

	done := make(chan struct{})

	go func() {
		defer close(done)

		// a record with a different id appears first; the waiter must
		// stay parked until its own id shows up
		time.Sleep(10 * time.Millisecond)

		qa, qb := pairQubits("other")
		if _, err := l.Create("other", "alice", "bob", qa, qb); err != nil {
			t.Error(err)
		}

		time.Sleep(10 * time.Millisecond)

		qa2, qb2 := pairQubits("mine")
		if _, err := l.Create("mine", "alice", "bob", qa2, qb2); err != nil {
			t.Error(err)
		}
	}()

	rec, err := l.AwaitClaim(context.Background(), "bob", "alice", "mine", time.Second)
	require.NoError(t, err)
	require.Equal(t, "mine", rec.ID())

	<-done

	// the unrelated record is still claimable
	other, err := l.Claim("bob", "alice", "other")
	require.NoError(t, err)
	require.Equal(t, "other", other.ID())
}

func TestDrainPendingRemovesRecords(t *testing.T) {
	l := newTestLedger()

	for _, id := range []string{"e1", "e2"} {
		qa, qb := pairQubits(id)
		_, err := l.Create(id, "alice", "bob", qa, qb)
		require.NoError(t, err)
	}

	_, err := l.Claim("bob", "alice", "e2")
	require.NoError(t, err)

	drained := l.DrainPending()
	require.Len(t, drained, 1)
	require.Equal(t, "e1", drained[0].ID())
	require.Equal(t, 0, l.PendingCount())

	_, err = l.Get("e1")
	require.ErrorIs(t, err, ErrNotFound)

	// the fulfilled record stays so a late claim still surfaces misuse
	_, err = l.Get("e2")
	require.NoError(t, err)
}

func TestDropRemovesPending(t *testing.T) {
	l := newTestLedger()

	qa, qb := pairQubits("e1")
	_, err := l.Create("e1", "alice", "bob", qa, qb)
	require.NoError(t, err)
	require.Equal(t, 1, l.PendingCount())

	require.NoError(t, l.Drop("e1"))
	require.Equal(t, 0, l.PendingCount())

	_, err = l.Claim("bob", "alice", "e1")
	require.ErrorIs(t, err, ErrNotFound)

	require.ErrorIs(t, l.Drop("e1"), ErrNotFound)
}
