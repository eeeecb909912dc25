package processor

import "context"

// Transform is a processor that replaces every item with the result of Func.
type Transform[T any] struct {
	// Func transforms one item. If nil, items pass through unchanged.
	Func func(item T) (T, error)

	// StopOnError makes Process return the first error from Func. Otherwise
	// the failing item is dropped, OnError is called if set, and the rest
	// of the batch is kept.
	StopOnError bool

	// OnError is called for every dropped item when StopOnError is false.
	OnError func(item T, err error)
}

// Process implements the Processor interface.
func (p *Transform[T]) Process(ctx context.Context, items []T) ([]T, error) {
	if len(items) == 0 || p.Func == nil {
		return items, nil
	}

	result := make([]T, 0, len(items))
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		out, err := p.Func(item)
		if err != nil {
			if p.StopOnError {
				return nil, err
			}
			if p.OnError != nil {
				p.OnError(item, err)
			}
			continue
		}
		result = append(result, out)
	}
	return result, nil
}
