package backend

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/entanglab/qnet/engine"
)

// qubitSeq hands every handle an immutable allocation number, the key
// Exclusive orders its lock acquisition by
var qubitSeq uint64

// Qubit is a handle to one simulated qubit. Exactly one host owns it at
// any time; the handle carries its own lock so gate application,
// transfer and release are mutually exclusive.
type Qubit struct {
	id       string
	seq      uint64
	hostID   string
	state    engine.State
	released bool
	lock     sync.Mutex
}

// NewQubit returns a Qubit bound to hostID with a generated id
func NewQubit(hostID string, state engine.State) *Qubit {
	return NewQubitWithID(uuid.New().String(), hostID, state)
}

// NewQubitWithID returns a Qubit with a caller-supplied id. EPR halves
// share their entanglement id this way.
func NewQubitWithID(id, hostID string, state engine.State) *Qubit {
	q := &Qubit{
		id:     id,
		seq:    atomic.AddUint64(&qubitSeq, 1),
		hostID: hostID,
		state:  state,
		lock:   sync.Mutex{},
	}

	return q
}

// ID returns the qubit's id, unique within its owning host's lifetime
func (q *Qubit) ID() string {
	return q.id
}

// HostID returns the id of the current owner
func (q *Qubit) HostID() string {
	q.lock.Lock()
	defer q.lock.Unlock()

	return q.hostID
}

// State returns the opaque math-engine handle
func (q *Qubit) State() engine.State {
	return q.state
}

// Released returns true once the handle has been invalidated
func (q *Qubit) Released() bool {
	q.lock.Lock()
	defer q.lock.Unlock()

	return q.released
}

// TransferTo atomically reassigns ownership from one host to another,
// failing with ErrOwnershipMismatch if q is not currently owned by from
func (q *Qubit) TransferTo(from, to *Host) error {
	q.lock.Lock()
	defer q.lock.Unlock()

	if q.released {
		return errors.Wrapf(ErrAlreadyReleased, "failed to transfer qubit %s", q.id)
	}

	if q.hostID != from.ID() {
		return errors.Wrapf(ErrOwnershipMismatch, "qubit %s is owned by %s, not %s", q.id, q.hostID, from.ID())
	}

	if err := from.Disown(q); err != nil {
		return errors.Wrap(err, "failed to Disown")
	}

	if err := to.Adopt(q); err != nil {
		// put it back; the failed insert never became visible
		from.qubits.Set(q.id, q)
		return errors.Wrap(err, "failed to Adopt")
	}

	q.hostID = to.ID()

	return nil
}

// Invalidate marks the handle released, failing with ErrAlreadyReleased
// if it already was. The engine-side teardown is the caller's job.
func (q *Qubit) Invalidate() error {
	q.lock.Lock()
	defer q.lock.Unlock()

	if q.released {
		return errors.Wrapf(ErrAlreadyReleased, "failed to invalidate qubit %s", q.id)
	}

	q.released = true

	return nil
}

// Exclusive runs fn while holding every listed qubit's lock, failing
// with ErrAlreadyReleased if any handle has been invalidated. Locks are
// taken in allocation order; the ordering key is immutable, so
// concurrent multi-qubit gates racing a transfer cannot deadlock.
func Exclusive(fn func() error, qubits ...*Qubit) error {
	ordered := append([]*Qubit(nil), qubits...)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].seq < ordered[j].seq
	})

	for i, q := range ordered {
		q.lock.Lock()

		if q.released {
			for j := i; j >= 0; j-- {
				ordered[j].lock.Unlock()
			}

			return errors.Wrapf(ErrAlreadyReleased, "cannot operate on qubit %s", q.id)
		}
	}

	defer func() {
		for i := len(ordered) - 1; i >= 0; i-- {
			ordered[i].lock.Unlock()
		}
	}()

	return fn()
}
