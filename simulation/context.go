// Package simulation holds the process-wide simulation context: the
// host registry and the entanglement ledger every backend in the run
// shares. The context is constructed once and passed by injection;
// hidden global state is limited to the guarded Shared instance.
package simulation

import (
	"github.com/rs/zerolog"

	"github.com/entanglab/qnet/backend"
	"github.com/entanglab/qnet/entangle"
	"github.com/entanglab/qnet/registry"
)

// Context owns the two process-wide registries of a simulation run.
// Hosts and entanglement records are the only mutable state shared
// between concurrent hosts; each registry guards itself.
type Context struct {
	hosts  *registry.Registry[string, *backend.Host]
	ledger *entangle.Ledger
	log    zerolog.Logger
}

// NewContext returns an isolated Context, typically one per simulation
// run
func NewContext(log zerolog.Logger) *Context {
	c := &Context{
		hosts:  registry.New[string, *backend.Host](),
		ledger: entangle.NewLedger(log),
		log:    log,
	}

	return c
}

// Hosts returns the host registry
func (c *Context) Hosts() *registry.Registry[string, *backend.Host] {
	return c.hosts
}

// Ledger returns the entanglement ledger
func (c *Context) Ledger() *entangle.Ledger {
	return c.ledger
}

// Logger returns the context's logger
func (c *Context) Logger() zerolog.Logger {
	return c.log
}

// shared guards the single process-wide Context
var shared = registry.NewHolder(func() *Context {
	return NewContext(zerolog.Nop())
})

// Shared returns the process-wide Context, constructing it exactly once
func Shared() *Context {
	return shared.GetInstance()
}

// NewShared constructs the process-wide Context, failing with
// registry.ErrSingletonViolation if one is already live. Prefer Shared.
func NewShared() (*Context, error) {
	return shared.New()
}

// ReleaseShared drops the process-wide Context so the next Shared call
// builds a fresh one. Teardown between simulation runs.
func ReleaseShared() {
	shared.Release()
}
