// Package engine defines the math-engine contract a concrete quantum
// simulator must satisfy. The backend facade owns qubit lifecycle and
// entanglement bookkeeping; everything numeric is delegated here.
package engine

import "github.com/entanglab/qnet/engine/gate"

// State is an opaque handle to a single qubit's state inside an engine.
// The representation behind it (vector, matrix, hardware proxy) is the
// engine's business.
type State interface{}

// Engine is the pluggable math collaborator. Implementations must be
// safe for concurrent use; callers guarantee exclusive access to each
// State handle for the duration of a call.
type Engine interface {
	// NewState allocates a fresh qubit in |0⟩
	NewState() (State, error)

	// BellPair allocates two qubits prepared in |Φ+⟩
	BellPair() (State, State, error)

	// ApplySingle applies a validated 2x2 unitary to a qubit
	ApplySingle(s State, m gate.Matrix) error

	// ApplyControlled applies a validated 2x2 unitary to target,
	// conditioned on control
	ApplyControlled(control, target State, m gate.Matrix) error

	// ApplyTwoQubit applies a validated 4x4 unitary to the joint
	// subspace of a and b, a being the high-order qubit
	ApplyTwoQubit(a, b State, m gate.Matrix) error

	// ApplyControlledTwoQubit applies a validated 4x4 unitary to the
	// joint subspace of t1 and t2, conditioned on control
	ApplyControlledTwoQubit(control, t1, t2 State, m gate.Matrix) error

	// Measure samples a classical bit per the Born rule on the qubit's
	// reduced state. A destructive measurement removes the qubit from
	// the engine; a non-destructive one collapses it in place.
	Measure(s State, nonDestructive bool) (int, error)

	// Density returns the qubit's reduced 2x2 density operator,
	// tracing out every entangled partner
	Density(s State) (gate.Matrix, error)

	// Release removes the qubit from the engine, disentangling it from
	// any partners first
	Release(s State) error
}
