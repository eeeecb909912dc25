package source

import "context"

// Channel is a Source that adds every value received from Input.
type Channel[T any] struct {
	Input <-chan T
}

// Read implements the Source interface. It returns nil once Input is closed.
func (s *Channel[T]) Read(ctx context.Context, dst Adder[T]) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case item, ok := <-s.Input:
			if !ok {
				return nil
			}
			if err := dst.AddContext(ctx, item); err != nil {
				return err
			}
		}
	}
}
