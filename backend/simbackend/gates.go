package simbackend

import (
	"github.com/pkg/errors"

	"github.com/entanglab/qnet/backend"
	"github.com/entanglab/qnet/engine/gate"
)

// I applies the identity gate to q
func (s *Simulator) I(q *backend.Qubit) error {
	return s.applySingle(gate.Describe("I", 1, 2), q, gate.I())
}

// X applies the Pauli X gate to q
func (s *Simulator) X(q *backend.Qubit) error {
	return s.applySingle(gate.Describe("X", 1, 2), q, gate.X())
}

// Y applies the Pauli Y gate to q
func (s *Simulator) Y(q *backend.Qubit) error {
	return s.applySingle(gate.Describe("Y", 1, 2), q, gate.Y())
}

// Z applies the Pauli Z gate to q
func (s *Simulator) Z(q *backend.Qubit) error {
	return s.applySingle(gate.Describe("Z", 1, 2), q, gate.Z())
}

// H applies the Hadamard gate to q
func (s *Simulator) H(q *backend.Qubit) error {
	return s.applySingle(gate.Describe("H", 1, 2), q, gate.H())
}

// T applies the T gate to q
func (s *Simulator) T(q *backend.Qubit) error {
	return s.applySingle(gate.Describe("T", 1, 2), q, gate.T())
}

// Rx rotates q by phi radians around the x axis
func (s *Simulator) Rx(q *backend.Qubit, phi float64) error {
	return s.applySingle(gate.Describe("Rx", 1, 2), q, gate.Rx(phi))
}

// Ry rotates q by phi radians around the y axis
func (s *Simulator) Ry(q *backend.Qubit, phi float64) error {
	return s.applySingle(gate.Describe("Ry", 1, 2), q, gate.Ry(phi))
}

// Rz rotates q by phi radians around the z axis
func (s *Simulator) Rz(q *backend.Qubit, phi float64) error {
	return s.applySingle(gate.Describe("Rz", 1, 2), q, gate.Rz(phi))
}

// CNOT applies a controlled X to target
func (s *Simulator) CNOT(control, target *backend.Qubit) error {
	return s.applyControlled(gate.Describe("CNOT", 2, 2), control, target, gate.X())
}

// CPhase applies a controlled Z to target
func (s *Simulator) CPhase(control, target *backend.Qubit) error {
	return s.applyControlled(gate.Describe("CPhase", 2, 2), control, target, gate.Z())
}

// CustomGate applies an arbitrary 2x2 unitary to q, rejecting malformed
// matrices before any state mutation
func (s *Simulator) CustomGate(q *backend.Qubit, m gate.Matrix) error {
	if err := gate.Validate(m, 2); err != nil {
		return errors.Wrap(err, "failed to Validate custom gate")
	}

	return s.applySingle(gate.Describe("custom", 1, 2), q, m)
}

// CustomControlledGate applies an arbitrary 2x2 unitary to target,
// conditioned on control
func (s *Simulator) CustomControlledGate(control, target *backend.Qubit, m gate.Matrix) error {
	if err := gate.Validate(m, 2); err != nil {
		return errors.Wrap(err, "failed to Validate custom gate")
	}

	return s.applyControlled(gate.Describe("custom-controlled", 2, 2), control, target, m)
}

// CustomTwoQubitGate applies an arbitrary 4x4 unitary to the joint
// subspace of a and b
func (s *Simulator) CustomTwoQubitGate(a, b *backend.Qubit, m gate.Matrix) error {
	if err := s.ensureStarted(); err != nil {
		return err
	}

	if err := gate.Validate(m, 4); err != nil {
		return errors.Wrap(err, "failed to Validate custom gate")
	}

	desc := gate.Describe("custom-two-qubit", 2, 4)

	err := backend.Exclusive(func() error {
		return s.engine.ApplyTwoQubit(a.State(), b.State(), m)
	}, a, b)
	if err != nil {
		return errors.Wrapf(err, "failed to apply %s", desc.Name)
	}

	s.logGate(desc, a, b)

	return nil
}

// CustomControlledTwoQubitGate applies an arbitrary 4x4 unitary to the
// two targets, conditioned on control
func (s *Simulator) CustomControlledTwoQubitGate(control, target1, target2 *backend.Qubit, m gate.Matrix) error {
	if err := s.ensureStarted(); err != nil {
		return err
	}

	if err := gate.Validate(m, 4); err != nil {
		return errors.Wrap(err, "failed to Validate custom gate")
	}

	desc := gate.Describe("custom-controlled-two-qubit", 3, 4)

	err := backend.Exclusive(func() error {
		return s.engine.ApplyControlledTwoQubit(control.State(), target1.State(), target2.State(), m)
	}, control, target1, target2)
	if err != nil {
		return errors.Wrapf(err, "failed to apply %s", desc.Name)
	}

	s.logGate(desc, control, target1, target2)

	return nil
}

func (s *Simulator) applySingle(desc gate.Descriptor, q *backend.Qubit, m gate.Matrix) error {
	if err := s.ensureStarted(); err != nil {
		return err
	}

	err := backend.Exclusive(func() error {
		return s.engine.ApplySingle(q.State(), m)
	}, q)
	if err != nil {
		return errors.Wrapf(err, "failed to apply %s", desc.Name)
	}

	s.logGate(desc, q)

	return nil
}

func (s *Simulator) applyControlled(desc gate.Descriptor, control, target *backend.Qubit, m gate.Matrix) error {
	if err := s.ensureStarted(); err != nil {
		return err
	}

	err := backend.Exclusive(func() error {
		return s.engine.ApplyControlled(control.State(), target.State(), m)
	}, control, target)
	if err != nil {
		return errors.Wrapf(err, "failed to apply %s", desc.Name)
	}

	s.logGate(desc, control, target)

	return nil
}

func (s *Simulator) logGate(desc gate.Descriptor, qubits ...*backend.Qubit) {
	ids := make([]string, len(qubits))
	for i, q := range qubits {
		ids[i] = q.ID()
	}

	s.log.Debug().Str("gate", desc.Name).Int("arity", desc.Arity).Strs("qubitIDs", ids).Msg("gate applied")
}
