package registry

import (
	"sync"

	"github.com/pkg/errors"
)

// ErrDuplicateKey and others are errors related to registry access
var (
	ErrDuplicateKey = errors.New("duplicate key")
	ErrKeyNotFound  = errors.New("key not found")
)

// Registry is a mutex-guarded mapping shared between concurrent hosts.
// Every method is a single critical section; a caller never observes a
// partially applied insert or remove.
type Registry[K comparable, V any] struct {
	entries map[K]V
	lock    sync.Mutex
}

// New returns an empty Registry ready for concurrent use
func New[K comparable, V any]() *Registry[K, V] {
	r := &Registry[K, V]{
		entries: map[K]V{},
		lock:    sync.Mutex{},
	}

	return r
}

// Add inserts value under key, failing with ErrDuplicateKey if the key
// is already present
func (r *Registry[K, V]) Add(key K, value V) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, exists := r.entries[key]; exists {
		return errors.Wrapf(ErrDuplicateKey, "failed to Add %v", key)
	}

	r.entries[key] = value

	return nil
}

// Set inserts or overwrites value under key. Only registry variants that
// explicitly allow updates should reach for Set; everything else uses Add.
func (r *Registry[K, V]) Set(key K, value V) {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.entries[key] = value
}

// Get returns the value stored under key
func (r *Registry[K, V]) Get(key K) (V, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	value, exists := r.entries[key]
	if !exists {
		var zero V
		return zero, errors.Wrapf(ErrKeyNotFound, "failed to Get %v", key)
	}

	return value, nil
}

// Remove deletes the value stored under key
func (r *Registry[K, V]) Remove(key K) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, exists := r.entries[key]; !exists {
		return errors.Wrapf(ErrKeyNotFound, "failed to Remove %v", key)
	}

	delete(r.entries, key)

	return nil
}

// Has returns true if key is present
func (r *Registry[K, V]) Has(key K) bool {
	r.lock.Lock()
	defer r.lock.Unlock()

	_, exists := r.entries[key]

	return exists
}

// Len returns the number of stored entries
func (r *Registry[K, V]) Len() int {
	r.lock.Lock()
	defer r.lock.Unlock()

	return len(r.entries)
}

// Each calls fn for every entry while holding the registry lock
func (r *Registry[K, V]) Each(fn func(key K, value V)) {
	r.lock.Lock()
	defer r.lock.Unlock()

	for key, value := range r.entries {
		fn(key, value)
	}
}
