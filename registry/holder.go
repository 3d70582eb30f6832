package registry

import (
	"sync"

	"github.com/pkg/errors"
)

// ErrSingletonViolation is returned when a second live instance of a
// held value is constructed
var ErrSingletonViolation = errors.New("singleton violation")

// Holder guards the single live instance of a process-wide value such as
// the host or entanglement registry. GetInstance lazily constructs the
// value exactly once; constructing directly via New while an instance is
// live is a misuse error rather than a silent no-op.
type Holder[T any] struct {
	construct func() T
	instance  T
	live      bool
	lock      sync.Mutex
}

// NewHolder returns a Holder that builds its value with construct
func NewHolder[T any](construct func() T) *Holder[T] {
	h := &Holder[T]{
		construct: construct,
		lock:      sync.Mutex{},
	}

	return h
}

// GetInstance returns the live instance, constructing it if needed.
// Every concurrent caller observes the identical instance.
func (h *Holder[T]) GetInstance() T {
	h.lock.Lock()
	defer h.lock.Unlock()

	if !h.live {
		h.instance = h.construct()
		h.live = true
	}

	return h.instance
}

// New constructs a fresh instance and marks it live, failing with
// ErrSingletonViolation if an instance already exists
func (h *Holder[T]) New() (T, error) {
	h.lock.Lock()
	defer h.lock.Unlock()

	if h.live {
		var zero T
		return zero, errors.Wrap(ErrSingletonViolation, "an instance is already live, call GetInstance")
	}

	h.instance = h.construct()
	h.live = true

	return h.instance, nil
}

// Live returns true if an instance currently exists
func (h *Holder[T]) Live() bool {
	h.lock.Lock()
	defer h.lock.Unlock()

	return h.live
}

// Release drops the live instance so a future GetInstance or New
// constructs a new one. Used on simulation teardown.
func (h *Holder[T]) Release() {
	h.lock.Lock()
	defer h.lock.Unlock()

	var zero T
	h.instance = zero
	h.live = false
}
