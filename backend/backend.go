// Package backend defines the contract a concrete quantum-state
// simulator must satisfy to participate in a multi-host network
// simulation, plus the host and qubit handle types every backend shares.
package backend

import (
	"context"

	"github.com/pkg/errors"

	"github.com/entanglab/qnet/engine/gate"
)

// ErrNotImplemented and others are errors related to backend misuse
var (
	ErrNotImplemented    = errors.New("not implemented by this backend")
	ErrOwnershipMismatch = errors.New("qubit is not owned by the claimed host")
	ErrAlreadyReleased   = errors.New("qubit has already been released")
	ErrUnknownHost       = errors.New("host is not registered with the backend")
)

// Backend is the single entry point consumed by simulation hosts. A
// concrete implementation wires a math engine behind this surface;
// embed Unimplemented to satisfy the interface partially.
type Backend interface {
	// Start acquires any backend-owned execution context. It must be
	// called before any other method.
	Start(ctx context.Context) error

	// Stop tears the execution context down, releasing every live
	// qubit even after partial failures
	Stop() error

	// AddHost registers a host exactly once for the simulation run
	AddHost(host *Host) error

	// CreateQubit allocates a fresh qubit owned by hostID
	CreateQubit(hostID string) (*Qubit, error)

	// SendQubitTo atomically reassigns ownership of q from one host to
	// another
	SendQubitTo(q *Qubit, fromHostID, toHostID string) error

	// CreateEPR prepares an EPR pair between two hosts and returns
	// host A's half immediately. An empty eprID gets a generated one.
	// With block set, the call suspends until the partner claims its
	// half or the wait times out.
	CreateEPR(ctx context.Context, hostAID, hostBID string, eprID string, block bool) (*Qubit, error)

	// ReceiveEPR claims the receiver's half of an EPR pair created by
	// senderID. An empty eprID claims the most recent unfulfilled pair
	// for the host pair. With block set, the call suspends until a
	// matching pair appears.
	ReceiveEPR(ctx context.Context, hostID, senderID string, eprID string, block bool) (*Qubit, error)

	I(q *Qubit) error
	X(q *Qubit) error
	Y(q *Qubit) error
	Z(q *Qubit) error
	H(q *Qubit) error
	T(q *Qubit) error

	Rx(q *Qubit, phi float64) error
	Ry(q *Qubit, phi float64) error
	Rz(q *Qubit, phi float64) error

	// CNOT applies a controlled X to target
	CNOT(control, target *Qubit) error

	// CPhase applies a controlled Z to target
	CPhase(control, target *Qubit) error

	// CustomGate applies an arbitrary 2x2 unitary to q
	CustomGate(q *Qubit, m gate.Matrix) error

	// CustomControlledGate applies an arbitrary 2x2 unitary to target,
	// conditioned on control
	CustomControlledGate(control, target *Qubit, m gate.Matrix) error

	// CustomTwoQubitGate applies an arbitrary 4x4 unitary to the joint
	// subspace of a and b
	CustomTwoQubitGate(a, b *Qubit, m gate.Matrix) error

	// CustomControlledTwoQubitGate applies an arbitrary 4x4 unitary to
	// the two targets, conditioned on control
	CustomControlledTwoQubitGate(control, target1, target2 *Qubit, m gate.Matrix) error

	// DensityOperator returns q's reduced density matrix
	DensityOperator(q *Qubit) (gate.Matrix, error)

	// Measure samples a classical bit from q. Destructive measurement
	// invalidates the handle.
	Measure(q *Qubit, nonDestructive bool) (int, error)

	// Release removes q from its owner and invalidates the handle
	Release(q *Qubit) error
}
