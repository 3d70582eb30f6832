package signaler

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestTasksCancelInUnison(t *testing.T) {
	s := Setup()

	finished := make(chan struct{}, 2)

	for i := 0; i < 2; i++ {
		s.Start(func(ctx context.Context) error {
			<-ctx.Done()
			finished <- struct{}{}
			return nil
		})
	}

	require.NoError(t, s.ManualShutdown(time.Second))

	for i := 0; i < 2; i++ {
		select {
		case <-finished:
		case <-time.After(time.Second):
			t.Fatal("task never observed cancellation")
		}
	}
}

func TestTaskErrorSurfaces(t *testing.T) {
	s := Setup()

	boom := errors.New("boom")

	s.Start(func(ctx context.Context) error {
		return boom
	})

	err := s.Wait(time.Second)
	require.ErrorIs(t, err, boom)
}

func TestWaitReturnsWhenTasksFinish(t *testing.T) {
	s := Setup()

	s.Start(func(ctx context.Context) error {
		time.Sleep(10 * time.Millisecond)
		return nil
	})

	require.NoError(t, s.Wait(time.Second))
}
