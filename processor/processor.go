package processor

import (
	"context"
	"fmt"

	"github.com/MasterOfBinary/gonagle/sender"
)

// Processor processes the items of a batch before it is flushed. It returns
// the items to pass on, which may be fewer than it was given.
type Processor[T any] interface {
	Process(ctx context.Context, items []T) ([]T, error)
}

// Chain returns a FlushFunc that runs the batch items through procs in
// order and then calls flush. If a processor fails, the batch is not
// flushed and the error is returned. If no items are left, flush is not
// called.
func Chain[T any](flush sender.FlushFunc[T], procs ...Processor[T]) sender.FlushFunc[T] {
	return func(ctx context.Context, b sender.Batch[T]) error {
		items := b.Items
		for i, p := range procs {
			if p == nil {
				continue
			}

			var err error
			if items, err = p.Process(ctx, items); err != nil {
				return fmt.Errorf("processor %d: %w", i, err)
			}
			if len(items) == 0 {
				return nil
			}
		}

		b.Items = items
		return flush(ctx, b)
	}
}
