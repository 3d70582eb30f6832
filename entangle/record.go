package entangle

import (
	"github.com/entanglab/qnet/backend"
)

// Status is the lifecycle state of an entanglement record
type Status int

const (
	// StatusPending means the pair was created but the partner has not
	// claimed its half yet
	StatusPending Status = iota

	// StatusFulfilled means both halves have been claimed
	StatusFulfilled
)

func (s Status) String() string {
	if s == StatusFulfilled {
		return "fulfilled"
	}

	return "pending"
}

// Record tracks one EPR pair from creation to fulfillment. Its id is
// immutable once fulfilled; the fulfilled channel is the one-shot
// completion signal blocked creators and receivers wait on.
type Record struct {
	id        string
	hostA     string
	hostB     string
	qubitA    *backend.Qubit
	qubitB    *backend.Qubit
	fulfilled chan struct{}
	seq       uint64
}

// ID returns the entanglement id shared by both qubit halves
func (r *Record) ID() string {
	return r.id
}

// HostA returns the creating host's id
func (r *Record) HostA() string {
	return r.hostA
}

// HostB returns the receiving host's id
func (r *Record) HostB() string {
	return r.hostB
}

// QubitA returns the creator's half of the pair
func (r *Record) QubitA() *backend.Qubit {
	return r.qubitA
}

// QubitB returns the receiver's half of the pair
func (r *Record) QubitB() *backend.Qubit {
	return r.qubitB
}

// Status derives the record's state from its completion signal
func (r *Record) Status() Status {
	select {
	case <-r.fulfilled:
		return StatusFulfilled
	default:
		return StatusPending
	}
}

// Fulfilled returns the channel closed when the pair is claimed
func (r *Record) Fulfilled() <-chan struct{} {
	return r.fulfilled
}
