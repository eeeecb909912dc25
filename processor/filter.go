package processor

import "context"

// Filter is a processor that drops items based on a predicate.
type Filter[T any] struct {
	// Predicate returns true for items that should be kept and false for
	// items that should be dropped. If nil, all items pass through.
	Predicate func(item T) bool

	// InvertMatch inverts the predicate: matching items are dropped
	// instead of kept.
	InvertMatch bool
}

// Process implements the Processor interface. The result shares the backing
// array of items.
func (p *Filter[T]) Process(_ context.Context, items []T) ([]T, error) {
	if len(items) == 0 || p.Predicate == nil {
		return items, nil
	}

	result := items[:0]
	for _, item := range items {
		if p.Predicate(item) != p.InvertMatch {
			result = append(result, item)
		}
	}

	var zero T
	for i := len(result); i < len(items); i++ {
		items[i] = zero
	}
	return result, nil
}
