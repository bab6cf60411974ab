package executor

import (
	"context"

	"github.com/soumendrak/ragas/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// Result holds the outcome of one batch item: either a value or the error
// that item failed with. Failures never abort the batch for sibling items.
type Result[T any] struct {
	Value T
	Err   error
}

// Ok reports whether the item completed without error.
func (r Result[T]) Ok() bool {
	return r.Err == nil
}

// RunBatch runs fn over all inputs concurrently and returns one Result per
// input, in input order regardless of completion order.
//
// limit caps how many items run at once; limit <= 0 means unbounded. A
// per-item error is captured in that item's Result and logged; it does not
// stop the other items. Only context cancellation stops the batch early, and
// items not started by then report ctx.Err().
func RunBatch[In, Out any](
	ctx context.Context,
	desc string,
	limit int,
	fn func(context.Context, In) (Out, error),
	inputs []In,
) []Result[Out] {
	results := make([]Result[Out], len(inputs))
	if len(inputs) == 0 {
		return results
	}

	logger.Debug("[Batch] Starting", "desc", desc, "items", len(inputs))

	eg := errgroup.Group{}
	if limit > 0 {
		eg.SetLimit(limit)
	}

	for i := range inputs {
		idx := i
		input := inputs[i]
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[idx] = Result[Out]{Err: err}
				return nil
			}
			value, err := fn(ctx, input)
			if err != nil {
				logger.Warn("[Batch] Item failed", "desc", desc, "item", idx, "err", err)
				results[idx] = Result[Out]{Err: err}
				return nil
			}
			results[idx] = Result[Out]{Value: value}
			return nil
		})
	}

	// Item errors are captured per slot, never returned from the group.
	_ = eg.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		logger.Warn("[Batch] Completed with failures", "desc", desc, "items", len(inputs), "failed", failed)
	} else {
		logger.Debug("[Batch] Completed", "desc", desc, "items", len(inputs))
	}

	return results
}
