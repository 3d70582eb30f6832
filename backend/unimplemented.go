package backend

import (
	"context"

	"github.com/pkg/errors"

	"github.com/entanglab/qnet/engine/gate"
)

// Unimplemented satisfies every Backend method with ErrNotImplemented.
// Partial backends embed it so a missing math engine surfaces as an
// explicit misuse error instead of a silent crash.
type Unimplemented struct{}

var _ Backend = Unimplemented{}

func (Unimplemented) Start(ctx context.Context) error {
	return errors.Wrap(ErrNotImplemented, "Start")
}

func (Unimplemented) Stop() error {
	return errors.Wrap(ErrNotImplemented, "Stop")
}

func (Unimplemented) AddHost(host *Host) error {
	return errors.Wrap(ErrNotImplemented, "AddHost")
}

func (Unimplemented) CreateQubit(hostID string) (*Qubit, error) {
	return nil, errors.Wrap(ErrNotImplemented, "CreateQubit")
}

func (Unimplemented) SendQubitTo(q *Qubit, fromHostID, toHostID string) error {
	return errors.Wrap(ErrNotImplemented, "SendQubitTo")
}

func (Unimplemented) CreateEPR(ctx context.Context, hostAID, hostBID string, eprID string, block bool) (*Qubit, error) {
	return nil, errors.Wrap(ErrNotImplemented, "CreateEPR")
}

func (Unimplemented) ReceiveEPR(ctx context.Context, hostID, senderID string, eprID string, block bool) (*Qubit, error) {
	return nil, errors.Wrap(ErrNotImplemented, "ReceiveEPR")
}

func (Unimplemented) I(q *Qubit) error { return errors.Wrap(ErrNotImplemented, "I") }
func (Unimplemented) X(q *Qubit) error { return errors.Wrap(ErrNotImplemented, "X") }
func (Unimplemented) Y(q *Qubit) error { return errors.Wrap(ErrNotImplemented, "Y") }
func (Unimplemented) Z(q *Qubit) error { return errors.Wrap(ErrNotImplemented, "Z") }
func (Unimplemented) H(q *Qubit) error { return errors.Wrap(ErrNotImplemented, "H") }
func (Unimplemented) T(q *Qubit) error { return errors.Wrap(ErrNotImplemented, "T") }

func (Unimplemented) Rx(q *Qubit, phi float64) error { return errors.Wrap(ErrNotImplemented, "Rx") }
func (Unimplemented) Ry(q *Qubit, phi float64) error { return errors.Wrap(ErrNotImplemented, "Ry") }
func (Unimplemented) Rz(q *Qubit, phi float64) error { return errors.Wrap(ErrNotImplemented, "Rz") }

func (Unimplemented) CNOT(control, target *Qubit) error {
	return errors.Wrap(ErrNotImplemented, "CNOT")
}

func (Unimplemented) CPhase(control, target *Qubit) error {
	return errors.Wrap(ErrNotImplemented, "CPhase")
}

func (Unimplemented) CustomGate(q *Qubit, m gate.Matrix) error {
	return errors.Wrap(ErrNotImplemented, "CustomGate")
}

func (Unimplemented) CustomControlledGate(control, target *Qubit, m gate.Matrix) error {
	return errors.Wrap(ErrNotImplemented, "CustomControlledGate")
}

func (Unimplemented) CustomTwoQubitGate(a, b *Qubit, m gate.Matrix) error {
	return errors.Wrap(ErrNotImplemented, "CustomTwoQubitGate")
}

func (Unimplemented) CustomControlledTwoQubitGate(control, target1, target2 *Qubit, m gate.Matrix) error {
	return errors.Wrap(ErrNotImplemented, "CustomControlledTwoQubitGate")
}

func (Unimplemented) DensityOperator(q *Qubit) (gate.Matrix, error) {
	return gate.Matrix{}, errors.Wrap(ErrNotImplemented, "DensityOperator")
}

func (Unimplemented) Measure(q *Qubit, nonDestructive bool) (int, error) {
	return 0, errors.Wrap(ErrNotImplemented, "Measure")
}

func (Unimplemented) Release(q *Qubit) error {
	return errors.Wrap(ErrNotImplemented, "Release")
}
