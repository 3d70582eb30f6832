// Package statevec is the reference math engine: a dense state-vector
// simulator over complex128 amplitudes. Qubits live in shared registers
// that are merged lazily the first time a multi-qubit gate spans them.
package statevec

import (
	"math"
	"math/cmplx"
	"math/rand"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/entanglab/qnet/engine"
	"github.com/entanglab/qnet/engine/gate"
)

// ErrReleasedState and others are errors related to state handles
var (
	ErrReleasedState = errors.New("state has been released")
	ErrForeignState  = errors.New("state does not belong to this engine")
)

// register is a joint system of one or more qubits. amps holds 2^n
// amplitudes; states[i] owns the bit with stride 1<<(n-1-i).
type register struct {
	amps   []complex128
	states []*state
}

// state is the concrete handle behind engine.State. reg is nil once the
// qubit has been measured destructively or released.
type state struct {
	reg *register
}

// Engine implements engine.Engine with dense state vectors. A single
// engine-wide lock guards every operation; registers merge freely under
// it, so no finer lock ordering is needed.
type Engine struct {
	rng  *rand.Rand
	lock sync.Mutex
}

var _ engine.Engine = (*Engine)(nil)

// New returns an Engine seeded from the wall clock
func New() *Engine {
	return NewWithSeed(time.Now().UnixNano())
}

// NewWithSeed returns an Engine with a deterministic measurement stream
func NewWithSeed(seed int64) *Engine {
	e := &Engine{
		rng:  rand.New(rand.NewSource(seed)),
		lock: sync.Mutex{},
	}

	return e
}

// NewState allocates a fresh qubit in |0⟩
func (e *Engine) NewState() (engine.State, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	st := &state{}
	st.reg = &register{
		amps:   []complex128{1, 0},
		states: []*state{st},
	}

	return st, nil
}

// BellPair allocates two qubits prepared in |Φ+⟩
func (e *Engine) BellPair() (engine.State, engine.State, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	a := &state{}
	b := &state{}

	s := complex(1/math.Sqrt2, 0)
	reg := &register{
		amps:   []complex128{s, 0, 0, s},
		states: []*state{a, b},
	}

	a.reg = reg
	b.reg = reg

	return a, b, nil
}

// ApplySingle applies a 2x2 unitary to a qubit
func (e *Engine) ApplySingle(s engine.State, m gate.Matrix) error {
	if m.Dim() != 2 {
		return errors.Wrapf(gate.ErrInvalidDimension, "ApplySingle needs a 2x2 matrix, got %dx%d", m.Dim(), m.Dim())
	}

	e.lock.Lock()
	defer e.lock.Unlock()

	st, err := e.toState(s)
	if err != nil {
		return errors.Wrap(err, "failed to resolve state")
	}

	applySingle(st, m)

	return nil
}

// ApplyControlled applies a 2x2 unitary to target conditioned on control
func (e *Engine) ApplyControlled(control, target engine.State, m gate.Matrix) error {
	if m.Dim() != 2 {
		return errors.Wrapf(gate.ErrInvalidDimension, "ApplyControlled needs a 2x2 matrix, got %dx%d", m.Dim(), m.Dim())
	}

	e.lock.Lock()
	defer e.lock.Unlock()

	c, err := e.toState(control)
	if err != nil {
		return errors.Wrap(err, "failed to resolve control")
	}

	t, err := e.toState(target)
	if err != nil {
		return errors.Wrap(err, "failed to resolve target")
	}

	// lifting the control into the matrix keeps one code path for all
	// two-qubit application
	return applyTwoQubit(c, t, gate.Controlled(m), nil)
}

// ApplyTwoQubit applies a 4x4 unitary to the joint subspace of a and b
func (e *Engine) ApplyTwoQubit(a, b engine.State, m gate.Matrix) error {
	if m.Dim() != 4 {
		return errors.Wrapf(gate.ErrInvalidDimension, "ApplyTwoQubit needs a 4x4 matrix, got %dx%d", m.Dim(), m.Dim())
	}

	e.lock.Lock()
	defer e.lock.Unlock()

	sa, err := e.toState(a)
	if err != nil {
		return errors.Wrap(err, "failed to resolve first qubit")
	}

	sb, err := e.toState(b)
	if err != nil {
		return errors.Wrap(err, "failed to resolve second qubit")
	}

	return applyTwoQubit(sa, sb, m, nil)
}

// ApplyControlledTwoQubit applies a 4x4 unitary to t1 and t2 conditioned
// on control
func (e *Engine) ApplyControlledTwoQubit(control, t1, t2 engine.State, m gate.Matrix) error {
	if m.Dim() != 4 {
		return errors.Wrapf(gate.ErrInvalidDimension, "ApplyControlledTwoQubit needs a 4x4 matrix, got %dx%d", m.Dim(), m.Dim())
	}

	e.lock.Lock()
	defer e.lock.Unlock()

	c, err := e.toState(control)
	if err != nil {
		return errors.Wrap(err, "failed to resolve control")
	}

	s1, err := e.toState(t1)
	if err != nil {
		return errors.Wrap(err, "failed to resolve first target")
	}

	s2, err := e.toState(t2)
	if err != nil {
		return errors.Wrap(err, "failed to resolve second target")
	}

	return applyTwoQubit(s1, s2, m, c)
}

// Measure samples a classical bit per the Born rule and collapses the
// qubit. Destructive measurement removes it from its register.
func (e *Engine) Measure(s engine.State, nonDestructive bool) (int, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	st, err := e.toState(s)
	if err != nil {
		return 0, errors.Wrap(err, "failed to resolve state")
	}

	return e.measure(st, nonDestructive), nil
}

// Density returns the qubit's reduced 2x2 density operator
func (e *Engine) Density(s engine.State) (gate.Matrix, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	st, err := e.toState(s)
	if err != nil {
		return gate.Matrix{}, errors.Wrap(err, "failed to resolve state")
	}

	reg := st.reg
	stride := strideOf(reg, st)

	var r00, r01, r10, r11 complex128

	for base := 0; base < len(reg.amps); base++ {
		if base&stride != 0 {
			continue
		}

		v0 := reg.amps[base]
		v1 := reg.amps[base|stride]

		r00 += v0 * cmplx.Conj(v0)
		r01 += v0 * cmplx.Conj(v1)
		r10 += v1 * cmplx.Conj(v0)
		r11 += v1 * cmplx.Conj(v1)
	}

	return gate.New(2, r00, r01, r10, r11)
}

// Release removes the qubit from the engine, measuring it out first if
// it is entangled with partners
func (e *Engine) Release(s engine.State) error {
	e.lock.Lock()
	defer e.lock.Unlock()

	st, err := e.toState(s)
	if err != nil {
		return errors.Wrap(err, "failed to resolve state")
	}

	// a destructive measurement disentangles the qubit from any
	// partners before it is dropped
	e.measure(st, false)

	return nil
}

func (e *Engine) toState(s engine.State) (*state, error) {
	st, ok := s.(*state)
	if !ok {
		return nil, ErrForeignState
	}

	if st.reg == nil {
		return nil, ErrReleasedState
	}

	return st, nil
}

func (e *Engine) measure(st *state, nonDestructive bool) int {
	reg := st.reg
	stride := strideOf(reg, st)

	p1 := 0.0
	for idx, amp := range reg.amps {
		if idx&stride != 0 {
			p1 += real(amp)*real(amp) + imag(amp)*imag(amp)
		}
	}

	outcome := 0
	if e.rng.Float64() < p1 {
		outcome = 1
	}

	if nonDestructive {
		collapse(reg, stride, outcome)
		return outcome
	}

	removeQubit(st, outcome)

	return outcome
}

// posOf returns the index of st within its register's qubit list
func posOf(reg *register, st *state) int {
	for i, candidate := range reg.states {
		if candidate == st {
			return i
		}
	}

	return -1
}

// strideOf returns the bit owned by st: qubit i of n holds stride
// 1<<(n-1-i), making the first qubit the high-order bit
func strideOf(reg *register, st *state) int {
	n := len(reg.states)

	return 1 << (n - 1 - posOf(reg, st))
}

// merge joins the registers of a and b (tensor product, a's register
// high-order) and repoints every moved qubit
func merge(a, b *state) *register {
	if a.reg == b.reg {
		return a.reg
	}

	left := a.reg
	right := b.reg

	amps := make([]complex128, len(left.amps)*len(right.amps))
	for i, la := range left.amps {
		for j, ra := range right.amps {
			amps[i*len(right.amps)+j] = la * ra
		}
	}

	left.amps = amps
	left.states = append(left.states, right.states...)

	for _, moved := range right.states {
		moved.reg = left
	}

	return left
}

func applySingle(st *state, m gate.Matrix) {
	reg := st.reg
	stride := strideOf(reg, st)

	for base := 0; base < len(reg.amps); base++ {
		if base&stride != 0 {
			continue
		}

		a0 := reg.amps[base]
		a1 := reg.amps[base|stride]

		reg.amps[base] = m.At(0, 0)*a0 + m.At(0, 1)*a1
		reg.amps[base|stride] = m.At(1, 0)*a0 + m.At(1, 1)*a1
	}
}

// applyTwoQubit applies a 4x4 matrix to the joint subspace of hi and lo
// (hi owning the high-order bit of the matrix basis). A non-nil control
// restricts application to the control-truthy subspace.
func applyTwoQubit(hi, lo *state, m gate.Matrix, control *state) error {
	if hi == lo || hi == control || lo == control {
		return errors.New("gate operands must be distinct qubits")
	}

	reg := merge(hi, lo)
	if control != nil {
		reg = merge(hi, control)
	}

	sh := strideOf(reg, hi)
	sl := strideOf(reg, lo)

	sc := 0
	if control != nil {
		sc = strideOf(reg, control)
	}

	for base := 0; base < len(reg.amps); base++ {
		if base&sh != 0 || base&sl != 0 {
			continue
		}

		if control != nil && base&sc == 0 {
			continue
		}

		idx := [4]int{base, base | sl, base | sh, base | sh | sl}

		var v [4]complex128
		for k := 0; k < 4; k++ {
			v[k] = reg.amps[idx[k]]
		}

		for r := 0; r < 4; r++ {
			var sum complex128
			for c := 0; c < 4; c++ {
				sum += m.At(r, c) * v[c]
			}

			reg.amps[idx[r]] = sum
		}
	}

	return nil
}

// collapse projects the register onto the measured eigenstate of the
// qubit owning stride and renormalizes
func collapse(reg *register, stride, outcome int) {
	norm := 0.0

	for idx := range reg.amps {
		bitSet := idx&stride != 0
		if bitSet != (outcome == 1) {
			reg.amps[idx] = 0
			continue
		}

		amp := reg.amps[idx]
		norm += real(amp)*real(amp) + imag(amp)*imag(amp)
	}

	scale := complex(1/math.Sqrt(norm), 0)
	for idx := range reg.amps {
		reg.amps[idx] *= scale
	}
}

// removeQubit projects onto the measured outcome and drops the qubit
// from its register, halving the amplitude vector
func removeQubit(st *state, outcome int) {
	reg := st.reg
	pos := posOf(reg, st)
	stride := strideOf(reg, st)

	kept := make([]complex128, len(reg.amps)/2)

	norm := 0.0
	j := 0

	// ascending iteration preserves the ordering of the remaining bits
	for idx, amp := range reg.amps {
		bitSet := idx&stride != 0
		if bitSet != (outcome == 1) {
			continue
		}

		kept[j] = amp
		norm += real(amp)*real(amp) + imag(amp)*imag(amp)
		j++
	}

	scale := complex(1/math.Sqrt(norm), 0)
	for idx := range kept {
		kept[idx] *= scale
	}

	reg.amps = kept
	reg.states = append(reg.states[:pos], reg.states[pos+1:]...)
	st.reg = nil
}
