// Package protocol implements host-to-host procedures built purely on
// the backend surface, with no reach into engine internals.
package protocol

import (
	"context"

	"github.com/pkg/errors"

	"github.com/entanglab/qnet/backend"
)

// Teleport moves the state of payload from senderID to receiverID using
// one EPR pair and two classical bits. The payload handle is consumed;
// the returned qubit is owned by the receiver and carries the state.
func Teleport(ctx context.Context, b backend.Backend, payload *backend.Qubit, senderID, receiverID string) (*backend.Qubit, error) {
	eprA, err := b.CreateEPR(ctx, senderID, receiverID, "", false)
	if err != nil {
		return nil, errors.Wrap(err, "failed to CreateEPR")
	}

	eprB, err := b.ReceiveEPR(ctx, receiverID, senderID, eprA.ID(), false)
	if err != nil {
		return nil, errors.Wrap(err, "failed to ReceiveEPR")
	}

	// Bell measurement on the sender's side
	if err := b.CNOT(payload, eprA); err != nil {
		return nil, errors.Wrap(err, "failed to CNOT")
	}

	if err := b.H(payload); err != nil {
		return nil, errors.Wrap(err, "failed to H")
	}

	phaseBit, err := b.Measure(payload, false)
	if err != nil {
		return nil, errors.Wrap(err, "failed to Measure payload")
	}

	parityBit, err := b.Measure(eprA, false)
	if err != nil {
		return nil, errors.Wrap(err, "failed to Measure EPR half")
	}

	// the two classical bits select the receiver's correction
	if parityBit == 1 {
		if err := b.X(eprB); err != nil {
			return nil, errors.Wrap(err, "failed to apply X correction")
		}
	}

	if phaseBit == 1 {
		if err := b.Z(eprB); err != nil {
			return nil, errors.Wrap(err, "failed to apply Z correction")
		}
	}

	return eprB, nil
}
