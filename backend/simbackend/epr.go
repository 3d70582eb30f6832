package simbackend

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/entanglab/qnet/backend"
	"github.com/entanglab/qnet/entangle"
	"github.com/entanglab/qnet/foundation/tracing"
)

// CreateEPR prepares a |Φ+⟩ pair between two hosts, adopts host A's
// half and parks host B's half in the ledger for the partner to claim.
// With block set, the call suspends until the partner claims or the
// configured wait bound expires.
func (s *Simulator) CreateEPR(ctx context.Context, hostAID, hostBID string, eprID string, block bool) (*backend.Qubit, error) {
	if err := s.ensureStarted(); err != nil {
		return nil, err
	}

	ctx, span := tracing.Tracer.Start(ctx, "simbackend.CreateEPR", trace.WithAttributes(
		attribute.String("hostA", hostAID),
		attribute.String("hostB", hostBID)))
	defer span.End()

	hostA, err := s.host(hostAID)
	if err != nil {
		return nil, err
	}

	if _, err := s.host(hostBID); err != nil {
		return nil, err
	}

	if eprID == "" {
		eprID = uuid.New().String()
	}

	span.SetAttributes(attribute.String("eprID", eprID))

	stateA, stateB, err := s.engine.BellPair()
	if err != nil {
		return nil, errors.Wrap(err, "failed to prepare Bell pair")
	}

	qA := backend.NewQubitWithID(eprID, hostAID, stateA)
	qB := backend.NewQubitWithID(eprID, hostBID, stateB)

	if err := hostA.Adopt(qA); err != nil {
		_ = s.engine.Release(stateA)
		_ = s.engine.Release(stateB)

		return nil, errors.Wrap(err, "failed to Adopt")
	}

	rec, err := s.sim.Ledger().Create(eprID, hostAID, hostBID, qA, qB)
	if err != nil {
		_ = hostA.Disown(qA)
		_ = s.engine.Release(stateA)
		_ = s.engine.Release(stateB)

		return nil, errors.Wrap(err, "failed to Create entanglement record")
	}

	s.log.Debug().Str("eprID", eprID).Str("hostA", hostAID).Str("hostB", hostBID).Bool("block", block).Msg("EPR pair created")

	if block {
		span.AddEvent("awaiting fulfillment")

		if err := s.sim.Ledger().AwaitFulfilled(ctx, rec, s.waitTimeout()); err != nil {
			return nil, errors.Wrap(err, "failed to await fulfillment")
		}
	}

	return qA, nil
}

// ReceiveEPR claims the local half of an EPR pair created by senderID.
// An empty eprID claims the most recent unfulfilled pair for the host
// pair. With block set, the call suspends until a matching pair appears.
func (s *Simulator) ReceiveEPR(ctx context.Context, hostID, senderID string, eprID string, block bool) (*backend.Qubit, error) {
	if err := s.ensureStarted(); err != nil {
		return nil, err
	}

	ctx, span := tracing.Tracer.Start(ctx, "simbackend.ReceiveEPR", trace.WithAttributes(
		attribute.String("host", hostID),
		attribute.String("sender", senderID),
		attribute.String("eprID", eprID)))
	defer span.End()

	host, err := s.host(hostID)
	if err != nil {
		return nil, err
	}

	var rec *entangle.Record
	if block {
		rec, err = s.sim.Ledger().AwaitClaim(ctx, hostID, senderID, eprID, s.waitTimeout())
	} else {
		rec, err = s.sim.Ledger().Claim(hostID, senderID, eprID)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to Claim entanglement")
	}

	qB := rec.QubitB()

	if err := host.Adopt(qB); err != nil {
		return nil, errors.Wrap(err, "failed to Adopt")
	}

	s.log.Debug().Str("eprID", rec.ID()).Str("host", hostID).Str("sender", senderID).Msg("EPR pair received")

	return qB, nil
}
