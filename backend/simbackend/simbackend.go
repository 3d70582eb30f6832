// Package simbackend is the concrete backend facade: it composes the
// simulation context, the entanglement ledger and an injected math
// engine into the single entry point hosts consume.
package simbackend

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/entanglab/qnet/backend"
	"github.com/entanglab/qnet/common"
	"github.com/entanglab/qnet/engine"
	"github.com/entanglab/qnet/engine/gate"
	"github.com/entanglab/qnet/options"
	"github.com/entanglab/qnet/simulation"
)

// ErrNotStarted is returned when the backend is used before Start
var ErrNotStarted = errors.New("backend has not been started")

// Simulator drives one math engine against the shared simulation
// context. It satisfies backend.Backend; construct with New.
type Simulator struct {
	sim    *simulation.Context
	engine engine.Engine
	opts   *options.Options

	log     zerolog.Logger
	started *common.AtomicReference[bool]
}

var _ backend.Backend = (*Simulator)(nil)

// New returns a Simulator using eng for everything numeric, bound to
// the process-wide simulation context unless UseContext overrides it
func New(eng engine.Engine, mods ...options.Modifier) *Simulator {
	opts := options.NewWithModifiers(mods...)

	s := &Simulator{
		sim:     simulation.Shared(),
		engine:  eng,
		opts:    opts,
		log:     opts.Logger().With().Str("component", "simbackend").Logger(),
		started: common.NewAtomicReference(false),
	}

	return s
}

// NewWithContext returns a Simulator bound to an explicit simulation
// context instead of the shared one. Tests and multi-run processes use
// this to keep registries isolated.
func NewWithContext(sim *simulation.Context, eng engine.Engine, mods ...options.Modifier) *Simulator {
	s := New(eng, mods...)
	s.sim = sim

	return s
}

// Start acquires the backend's execution context. It is idempotent;
// only the first call does the work.
func (s *Simulator) Start(ctx context.Context) error {
	if s.engine == nil {
		return errors.Wrap(backend.ErrNotImplemented, "no math engine attached")
	}

	if !s.started.CompareAndSwap(false, true) {
		return nil
	}

	s.log.Info().Str("app", s.opts.AppName).Msg("backend started")

	return nil
}

// Stop tears the backend down, releasing every live qubit. Teardown
// continues past individual failures and reports the first one.
func (s *Simulator) Stop() error {
	if !s.started.CompareAndSwap(true, false) {
		return nil
	}

	var firstErr error

	s.sim.Hosts().Each(func(hostID string, host *backend.Host) {
		var leaked []*backend.Qubit

		host.EachQubit(func(q *backend.Qubit) {
			leaked = append(leaked, q)
		})

		for _, q := range leaked {
			if err := s.releaseQubit(host, q); err != nil && firstErr == nil {
				firstErr = errors.Wrapf(err, "failed to release qubit %s of host %s", q.ID(), hostID)
			}
		}
	})

	// pending EPR records hold a half that no host ever adopted; drain
	// them so their engine state goes down with everything else
	for _, rec := range s.sim.Ledger().DrainPending() {
		q := rec.QubitB()

		if err := q.Invalidate(); err != nil {
			if firstErr == nil {
				firstErr = errors.Wrapf(err, "failed to invalidate unclaimed half of %s", rec.ID())
			}

			continue
		}

		if err := s.engine.Release(q.State()); err != nil && firstErr == nil {
			firstErr = errors.Wrapf(err, "failed to release unclaimed half of %s", rec.ID())
		}

		s.log.Debug().Str("eprID", rec.ID()).Msg("dropped unclaimed entanglement record")
	}

	s.log.Info().Msg("backend stopped")

	return firstErr
}

// AddHost registers a host exactly once for this simulation run
func (s *Simulator) AddHost(host *backend.Host) error {
	if err := s.sim.Hosts().Add(host.ID(), host); err != nil {
		return errors.Wrapf(err, "failed to AddHost %s", host.ID())
	}

	s.log.Debug().Str("hostID", host.ID()).Msg("host registered")

	return nil
}

// CreateQubit allocates a fresh |0⟩ qubit owned by hostID
func (s *Simulator) CreateQubit(hostID string) (*backend.Qubit, error) {
	if err := s.ensureStarted(); err != nil {
		return nil, err
	}

	host, err := s.host(hostID)
	if err != nil {
		return nil, err
	}

	state, err := s.engine.NewState()
	if err != nil {
		return nil, errors.Wrap(err, "failed to allocate engine state")
	}

	q := backend.NewQubit(hostID, state)

	if err := host.Adopt(q); err != nil {
		_ = s.engine.Release(state)
		return nil, errors.Wrap(err, "failed to Adopt")
	}

	s.log.Debug().Str("hostID", hostID).Str("qubitID", q.ID()).Msg("qubit created")

	return q, nil
}

// SendQubitTo atomically reassigns ownership of q between two
// registered hosts
func (s *Simulator) SendQubitTo(q *backend.Qubit, fromHostID, toHostID string) error {
	if err := s.ensureStarted(); err != nil {
		return err
	}

	from, err := s.host(fromHostID)
	if err != nil {
		return err
	}

	to, err := s.host(toHostID)
	if err != nil {
		return err
	}

	if err := q.TransferTo(from, to); err != nil {
		return errors.Wrapf(err, "failed to send qubit %s", q.ID())
	}

	s.log.Debug().Str("qubitID", q.ID()).Str("from", fromHostID).Str("to", toHostID).Msg("qubit transferred")

	return nil
}

// DensityOperator returns q's reduced density matrix
func (s *Simulator) DensityOperator(q *backend.Qubit) (gate.Matrix, error) {
	if err := s.ensureStarted(); err != nil {
		return gate.Matrix{}, err
	}

	var rho gate.Matrix

	err := backend.Exclusive(func() error {
		var err error
		rho, err = s.engine.Density(q.State())

		return err
	}, q)
	if err != nil {
		return gate.Matrix{}, errors.Wrapf(err, "failed to compute density operator of qubit %s", q.ID())
	}

	return rho, nil
}

// Measure samples a classical bit from q. A destructive measurement
// removes the qubit from its owner and invalidates the handle.
func (s *Simulator) Measure(q *backend.Qubit, nonDestructive bool) (int, error) {
	if err := s.ensureStarted(); err != nil {
		return 0, err
	}

	hostID := q.HostID()

	var bit int

	err := backend.Exclusive(func() error {
		var err error
		bit, err = s.engine.Measure(q.State(), nonDestructive)

		return err
	}, q)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to Measure qubit %s", q.ID())
	}

	if !nonDestructive {
		if err := q.Invalidate(); err != nil {
			return bit, errors.Wrap(err, "failed to Invalidate")
		}

		host, err := s.host(hostID)
		if err != nil {
			return bit, err
		}

		if err := host.Disown(q); err != nil {
			return bit, errors.Wrap(err, "failed to Disown")
		}
	}

	s.log.Debug().Str("qubitID", q.ID()).Bool("nonDestructive", nonDestructive).Int("bit", bit).Msg("qubit measured")

	return bit, nil
}

// Release removes q from its owner and invalidates the handle. A second
// Release fails with backend.ErrAlreadyReleased.
func (s *Simulator) Release(q *backend.Qubit) error {
	if err := s.ensureStarted(); err != nil {
		return err
	}

	host, err := s.host(q.HostID())
	if err != nil {
		return err
	}

	return s.releaseQubit(host, q)
}

func (s *Simulator) releaseQubit(host *backend.Host, q *backend.Qubit) error {
	if err := q.Invalidate(); err != nil {
		return errors.Wrapf(err, "failed to Release qubit %s", q.ID())
	}

	if err := host.Disown(q); err != nil {
		return errors.Wrap(err, "failed to Disown")
	}

	if err := s.engine.Release(q.State()); err != nil {
		return errors.Wrap(err, "failed to release engine state")
	}

	s.log.Debug().Str("qubitID", q.ID()).Str("hostID", host.ID()).Msg("qubit released")

	return nil
}

// host resolves a registered host by id
func (s *Simulator) host(hostID string) (*backend.Host, error) {
	host, err := s.sim.Hosts().Get(hostID)
	if err != nil {
		return nil, errors.Wrapf(backend.ErrUnknownHost, "no host %s", hostID)
	}

	return host, nil
}

func (s *Simulator) ensureStarted() error {
	if s.engine == nil {
		return errors.Wrap(backend.ErrNotImplemented, "no math engine attached")
	}

	if !s.started.Load() {
		return ErrNotStarted
	}

	return nil
}

// waitTimeout maps the configured EPR timeout onto the ledger contract:
// negative disables the bound entirely
func (s *Simulator) waitTimeout() time.Duration {
	if s.opts.EPRWaitTimeout < 0 {
		return 0
	}

	return s.opts.EPRWaitTimeout
}
