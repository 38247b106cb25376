package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Dispatcher runs lanes of point indexes. Points of one lane are handled in
// order on a single goroutine; lanes run in parallel, at most workers at a
// time.
type Dispatcher struct {
	workers int
}

func NewDispatcher(workers int) *Dispatcher {
	return &Dispatcher{workers: workers}
}

// Run returns once every lane is drained or ctx is done. A lane stops between
// points when ctx ends; the point being handled at that moment is not
// interrupted by Run itself.
func (d *Dispatcher) Run(ctx context.Context, lanes [][]int, handle func(ctx context.Context, idx int)) {
	var g errgroup.Group
	if d.workers > 0 {
		g.SetLimit(d.workers)
	}

	for _, lane := range lanes {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			for _, idx := range lane {
				if ctx.Err() != nil {
					return nil
				}
				handle(ctx, idx)
			}
			return nil
		})
	}
	_ = g.Wait()
}
