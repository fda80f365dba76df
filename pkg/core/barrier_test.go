package core_test

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/arthur-debert/stgcore/pkg/core"
	"github.com/arthur-debert/stgcore/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSingleProcess(t *testing.T) {
	assert.NoError(t, core.SingleProcess{}.Wait(context.Background()))
}

func TestLocalGroupReleasesTogether(t *testing.T) {
	const size = 4
	g := core.NewLocalGroup(size)

	var arrived, passed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < size; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for round := 0; round < 3; round++ {
				arrived.Add(1)
				assert.NoError(t, g.Wait(context.Background()))
				// Nobody passes a round before everyone arrived at it.
				assert.GreaterOrEqual(t, arrived.Load(), int32(size*(round+1)))
				passed.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(size*3), passed.Load())
}

func TestLocalGroupCancel(t *testing.T) {
	g := core.NewLocalGroup(2)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := g.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// The cancelled caller withdrew, so a fresh pair still meets.
	done := make(chan error, 1)
	go func() { done <- g.Wait(context.Background()) }()
	require.NoError(t, g.Wait(context.Background()))
	require.NoError(t, <-done)
}

func TestRunLocal(t *testing.T) {
	t.Run("every_rank_runs", func(t *testing.T) {
		var seen sync.Map
		err := core.RunLocal(context.Background(), 3, func(ctx context.Context, rank int, b core.Barrier) error {
			seen.Store(rank, true)
			return b.Wait(ctx)
		})
		require.NoError(t, err)
		for rank := 0; rank < 3; rank++ {
			_, ok := seen.Load(rank)
			assert.True(t, ok, "rank %d", rank)
		}
	})

	t.Run("failure_releases_waiters", func(t *testing.T) {
		boom := stderrors.New("boom")
		err := core.RunLocal(context.Background(), 3, func(ctx context.Context, rank int, b core.Barrier) error {
			if rank == 1 {
				return boom
			}
			return b.Wait(ctx)
		})
		assert.ErrorIs(t, err, boom)
	})

	t.Run("invalid_size", func(t *testing.T) {
		err := core.RunLocal(context.Background(), 0, nil)
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	})
}
