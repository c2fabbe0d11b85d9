package dag

import (
	"context"
	"fmt"

	"github.com/vk/jigsaw/internal/ctxlog"
	"github.com/vk/jigsaw/internal/scheduler"
	"golang.org/x/sync/errgroup"
)

// parallel dispatches ready nodes to up to cfg.workers goroutines. A single
// coordinator owns the scheduler; workers report completions over a buffered
// channel so they never block on it.
func (r *run) parallel(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	sched := scheduler.New(r.plan.dependents)
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(r.cfg.workers)

	done := make(chan int, sched.Len())
	inflight, completed := 0, 0

loop:
	for completed < sched.Len() {
		for {
			i, ok := sched.Next()
			if !ok {
				break
			}
			if gctx.Err() != nil {
				break loop
			}
			inflight++
			eg.Go(func() error {
				if gctx.Err() != nil {
					return nil
				}
				if err := r.invoke(gctx, i); err != nil {
					return err
				}
				done <- i
				return nil
			})
		}
		if inflight == 0 {
			// Nothing running and nothing ready. begin rules out cycles, so
			// this means the dependency table is inconsistent.
			return fmt.Errorf("scheduler stalled: %d of %d nodes issued", sched.Issued(), sched.Len())
		}
		select {
		case i := <-done:
			inflight--
			completed++
			sched.Complete(i)
		case <-gctx.Done():
			break loop
		}
	}

	if err := eg.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	logger.Debug("Parallel run drained.", "issued", sched.Issued(), "completed", completed)
	return nil
}
