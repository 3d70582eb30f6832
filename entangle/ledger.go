// Package entangle implements the create/receive handshake for EPR
// pairs: a process-wide ledger of pending and fulfilled pair records
// with condition-signal blocking semantics.
package entangle

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/entanglab/qnet/backend"
)

// ErrNotFound and others are errors related to the EPR handshake
var (
	ErrNotFound         = errors.New("entanglement not found")
	ErrAlreadyFulfilled = errors.New("entanglement already fulfilled")
	ErrDuplicateID      = errors.New("duplicate entanglement id")
	ErrTimeout          = errors.New("timed out waiting for entanglement")
)

// pairKey identifies the directed (sender, receiver) host pair
type pairKey struct {
	sender   string
	receiver string
}

// waiter is a parked ReceiveEPR caller. Its channel is closed when a
// candidate record for the pair appears; the caller then retries the
// claim, so a wake never hands over a record another caller already won.
type waiter struct {
	id string
	ch chan struct{}
}

// Ledger is the entanglement registry: records keyed by id, plus
// queues of unfulfilled records per host pair (claimed newest-first)
// and the waiters parked on pairs that do not exist yet. One mutex guards it all; the fulfilled
// transition only becomes observable after the creating insert is fully
// visible.
type Ledger struct {
	records map[string]*Record
	queues  map[pairKey][]*Record
	waiters map[pairKey][]*waiter
	seq     uint64

	log  zerolog.Logger
	lock sync.Mutex
}

// NewLedger returns an empty Ledger
func NewLedger(log zerolog.Logger) *Ledger {
	l := &Ledger{
		records: map[string]*Record{},
		queues:  map[pairKey][]*Record{},
		waiters: map[pairKey][]*waiter{},
		log:     log.With().Str("component", "entangle").Logger(),
		lock:    sync.Mutex{},
	}

	return l
}

// Create inserts a Pending record for the pair, holding both qubit
// halves. The id must be non-empty and unused; any receiver parked on
// the host pair is woken to retry its claim.
func (l *Ledger) Create(id, hostA, hostB string, qubitA, qubitB *backend.Qubit) (*Record, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	if id == "" {
		return nil, errors.New("entanglement id must not be empty")
	}

	if _, exists := l.records[id]; exists {
		return nil, errors.Wrapf(ErrDuplicateID, "failed to Create record %s", id)
	}

	l.seq++

	rec := &Record{
		id:        id,
		hostA:     hostA,
		hostB:     hostB,
		qubitA:    qubitA,
		qubitB:    qubitB,
		fulfilled: make(chan struct{}),
		seq:       l.seq,
	}

	key := pairKey{sender: hostA, receiver: hostB}

	l.records[id] = rec
	l.queues[key] = append(l.queues[key], rec)

	l.wakeWaiters(key, id)

	l.log.Debug().Str("eprID", id).Str("hostA", hostA).Str("hostB", hostB).Msg("created pending entanglement record")

	return rec, nil
}

// Claim fulfills the record for (senderID -> receiverID). With a
// non-empty id the exact record is claimed; otherwise the most recent
// unfulfilled record for the pair is taken. Only the first claim against
// an id succeeds.
func (l *Ledger) Claim(receiverID, senderID, id string) (*Record, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	return l.claimLocked(receiverID, senderID, id)
}

func (l *Ledger) claimLocked(receiverID, senderID, id string) (*Record, error) {
	key := pairKey{sender: senderID, receiver: receiverID}

	var rec *Record

	if id != "" {
		found, exists := l.records[id]
		if !exists {
			return nil, errors.Wrapf(ErrNotFound, "failed to Claim record %s", id)
		}

		if found.hostA != senderID || found.hostB != receiverID {
			return nil, errors.Wrapf(ErrNotFound, "record %s does not belong to pair %s -> %s", id, senderID, receiverID)
		}

		if found.Status() == StatusFulfilled {
			return nil, errors.Wrapf(ErrAlreadyFulfilled, "failed to Claim record %s", id)
		}

		rec = found
	} else {
		queue := l.queues[key]
		if len(queue) == 0 {
			return nil, errors.Wrapf(ErrNotFound, "no pending entanglement for pair %s -> %s", senderID, receiverID)
		}

		rec = queue[len(queue)-1]
	}

	close(rec.fulfilled)
	l.dequeue(key, rec)

	l.log.Debug().Str("eprID", rec.id).Str("sender", senderID).Str("receiver", receiverID).Msg("entanglement record fulfilled")

	return rec, nil
}

// AwaitFulfilled suspends until the record transitions to Fulfilled,
// the timeout expires, or ctx is cancelled. A zero timeout waits
// indefinitely.
func (l *Ledger) AwaitFulfilled(ctx context.Context, rec *Record, timeout time.Duration) error {
	var expired <-chan time.Time

	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()

		expired = timer.C
	}

	select {
	case <-rec.fulfilled:
		return nil
	case <-expired:
		return errors.Wrapf(ErrTimeout, "record %s was never claimed", rec.id)
	case <-ctx.Done():
		return errors.Wrapf(ctx.Err(), "interrupted waiting on record %s", rec.id)
	}
}

// AwaitClaim blocks until a matching record can be claimed, the timeout
// expires, or ctx is cancelled. Waiting is a condition-signal park keyed
// by the host pair, never a busy spin; a woken caller retries the claim
// so racing receivers stay correct.
func (l *Ledger) AwaitClaim(ctx context.Context, receiverID, senderID, id string, timeout time.Duration) (*Record, error) {
	key := pairKey{sender: senderID, receiver: receiverID}

	var expired <-chan time.Time

	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()

		expired = timer.C
	}

	for {
		l.lock.Lock()

		rec, err := l.claimLocked(receiverID, senderID, id)
		if err == nil {
			l.lock.Unlock()
			return rec, nil
		}

		if !errors.Is(err, ErrNotFound) {
			l.lock.Unlock()
			return nil, err
		}

		w := &waiter{id: id, ch: make(chan struct{})}
		l.waiters[key] = append(l.waiters[key], w)

		l.lock.Unlock()

		select {
		case <-w.ch:
			// a candidate appeared; loop and race for the claim
		case <-expired:
			l.removeWaiter(key, w)
			return nil, errors.Wrapf(ErrTimeout, "no entanglement appeared for pair %s -> %s", senderID, receiverID)
		case <-ctx.Done():
			l.removeWaiter(key, w)
			return nil, errors.Wrapf(ctx.Err(), "interrupted waiting on pair %s -> %s", senderID, receiverID)
		}
	}
}

// Get returns the record stored under id
func (l *Ledger) Get(id string) (*Record, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	rec, exists := l.records[id]
	if !exists {
		return nil, errors.Wrapf(ErrNotFound, "failed to Get record %s", id)
	}

	return rec, nil
}

// Drop removes a record entirely, pending or fulfilled. Cleanup for
// pairs that will never be claimed.
func (l *Ledger) Drop(id string) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	rec, exists := l.records[id]
	if !exists {
		return errors.Wrapf(ErrNotFound, "failed to Drop record %s", id)
	}

	delete(l.records, id)
	l.dequeue(pairKey{sender: rec.hostA, receiver: rec.hostB}, rec)

	return nil
}

// DrainPending removes and returns every record still awaiting a
// claim. Teardown uses this to reach the unclaimed qubit halves that no
// host owns.
func (l *Ledger) DrainPending() []*Record {
	l.lock.Lock()
	defer l.lock.Unlock()

	var drained []*Record

	for key, queue := range l.queues {
		for _, rec := range queue {
			delete(l.records, rec.id)
			drained = append(drained, rec)
		}

		delete(l.queues, key)
	}

	return drained
}

// PendingCount returns the number of records still awaiting a claim
func (l *Ledger) PendingCount() int {
	l.lock.Lock()
	defer l.lock.Unlock()

	count := 0
	for _, queue := range l.queues {
		count += len(queue)
	}

	return count
}

// dequeue removes rec from its pair's FIFO queue if present
func (l *Ledger) dequeue(key pairKey, rec *Record) {
	queue := l.queues[key]

	for i, candidate := range queue {
		if candidate == rec {
			l.queues[key] = append(queue[:i], queue[i+1:]...)
			return
		}
	}
}

// wakeWaiters signals every parked receiver whose wait matches the new
// record; waiters parked on a different explicit id stay parked
func (l *Ledger) wakeWaiters(key pairKey, id string) {
	remaining := l.waiters[key][:0]

	for _, w := range l.waiters[key] {
		if w.id == "" || w.id == id {
			close(w.ch)
			continue
		}

		remaining = append(remaining, w)
	}

	l.waiters[key] = remaining
}

func (l *Ledger) removeWaiter(key pairKey, w *waiter) {
	l.lock.Lock()
	defer l.lock.Unlock()

	for i, candidate := range l.waiters[key] {
		if candidate == w {
			l.waiters[key] = append(l.waiters[key][:i], l.waiters[key][i+1:]...)
			return
		}
	}
}
