package common

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAtomicReferenceLoadStore(t *testing.T) {
	ref := NewAtomicReference(false)

	require.False(t, ref.Load())

	ref.Store(true)
	require.True(t, ref.Load())
}

func TestAtomicReferenceSwap(t *testing.T) {
	ref := NewAtomicReference(1)

	old := ref.Swap(2)
	require.Equal(t, 1, old)
	require.Equal(t, 2, ref.Load())
}

func TestAtomicReferenceCompareAndSwap(t *testing.T) {
	ref := NewAtomicReference(false)

	// exactly one of many racing swaps can win
	wins := 0
	lock := sync.Mutex{}
	wg := sync.WaitGroup{}

	for i := 0; i < 16; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			if ref.CompareAndSwap(false, true) {
				lock.Lock()
				wins++
				lock.Unlock()
			}
		}()
	}

	wg.Wait()

	require.Equal(t, 1, wins)
	require.True(t, ref.Load())
}
