package source

import "context"

// Adder is the producer side of a collection. *nagle.Collection satisfies it.
type Adder[T any] interface {
	AddContext(ctx context.Context, item T) error
}

// Source reads items from somewhere and adds them to dst. Read returns nil
// when the input is exhausted.
type Source[T any] interface {
	Read(ctx context.Context, dst Adder[T]) error
}
