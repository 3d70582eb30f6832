package backend

import (
	"github.com/pkg/errors"

	"github.com/entanglab/qnet/registry"
)

// Host is one simulated network party. It is created externally,
// registered with a backend exactly once, and never removed during a
// run. The qubit set it owns is a registry so host bookkeeping gets the
// same concurrency discipline as the process-wide maps.
type Host struct {
	id     string
	qubits *registry.Registry[string, *Qubit]
}

// NewHost returns a Host with the given unique id
func NewHost(id string) *Host {
	h := &Host{
		id:     id,
		qubits: registry.New[string, *Qubit](),
	}

	return h
}

// ID returns the host's id
func (h *Host) ID() string {
	return h.id
}

// Adopt inserts q into the host's qubit set
func (h *Host) Adopt(q *Qubit) error {
	if err := h.qubits.Add(q.ID(), q); err != nil {
		return errors.Wrapf(err, "host %s failed to Adopt qubit %s", h.id, q.ID())
	}

	return nil
}

// Disown removes q from the host's qubit set
func (h *Host) Disown(q *Qubit) error {
	if err := h.qubits.Remove(q.ID()); err != nil {
		return errors.Wrapf(err, "host %s failed to Disown qubit %s", h.id, q.ID())
	}

	return nil
}

// Owns returns true if the host currently holds a qubit with the id
func (h *Host) Owns(qubitID string) bool {
	return h.qubits.Has(qubitID)
}

// QubitCount returns the number of qubits the host currently owns
func (h *Host) QubitCount() int {
	return h.qubits.Len()
}

// EachQubit visits every owned qubit; used for teardown sweeps
func (h *Host) EachQubit(fn func(q *Qubit)) {
	h.qubits.Each(func(_ string, q *Qubit) {
		fn(q)
	})
}
