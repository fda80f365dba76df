package core

import (
	"context"
	"sync"

	"github.com/arthur-debert/stgcore/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Barrier blocks until every rank of the job has reached it.
type Barrier interface {
	Wait(ctx context.Context) error
}

// SingleProcess is the barrier of a one-rank job. Wait returns at once.
type SingleProcess struct{}

func (SingleProcess) Wait(context.Context) error { return nil }

// LocalGroup is a reusable barrier for size goroutines in one process.
type LocalGroup struct {
	mu      sync.Mutex
	size    int
	waiting int
	release chan struct{}
}

// NewLocalGroup creates a barrier for size participants.
func NewLocalGroup(size int) *LocalGroup {
	if size < 1 {
		size = 1
	}
	return &LocalGroup{size: size, release: make(chan struct{})}
}

// Size returns the number of participants.
func (g *LocalGroup) Size() int { return g.size }

// Wait blocks until size callers are waiting, then releases them all and
// resets for the next round. A cancelled caller withdraws from the round.
func (g *LocalGroup) Wait(ctx context.Context) error {
	g.mu.Lock()
	release := g.release
	g.waiting++
	if g.waiting == g.size {
		g.waiting = 0
		g.release = make(chan struct{})
		g.mu.Unlock()
		close(release)
		return nil
	}
	g.mu.Unlock()

	select {
	case <-release:
		return nil
	case <-ctx.Done():
		g.mu.Lock()
		select {
		case <-release:
			// Released while we were taking the lock.
			g.mu.Unlock()
			return nil
		default:
		}
		g.waiting--
		g.mu.Unlock()
		return ctx.Err()
	}
}

// RankFunc runs one rank of a local job.
type RankFunc func(ctx context.Context, rank int, barrier Barrier) error

// RunLocal runs size ranks as goroutines sharing one LocalGroup and
// returns the first error. The context passed to the ranks is cancelled
// as soon as any rank fails, which releases ranks blocked on the barrier.
func RunLocal(ctx context.Context, size int, fn RankFunc) error {
	if size < 1 {
		return errors.Newf(errors.ErrInvalidInput, "job size must be at least 1, got %d", size).
			WithDetail("size", size)
	}
	group := NewLocalGroup(size)
	eg, egctx := errgroup.WithContext(ctx)
	for rank := 0; rank < size; rank++ {
		eg.Go(func() error {
			return fn(egctx, rank, group)
		})
	}
	return eg.Wait()
}
