package nagle

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is matched by every *ClosedError. Use errors.Is to check for it
	// without caring whether the collection was completed or disposed.
	ErrClosed = errors.New("nagle: collection closed")

	// ErrInvalidArgument is matched by every *ArgumentError.
	ErrInvalidArgument = errors.New("nagle: invalid argument")
)

// ClosedError is returned when an operation is rejected because the collection
// has left StateOpen. State tells a graceful CompleteAdding apart from Close.
type ClosedError struct {
	// Op is the rejected operation, e.g. "Add".
	Op string
	// State is the state that caused the rejection.
	State State
}

func (e *ClosedError) Error() string {
	return fmt.Sprintf("nagle: %s on %s collection", e.Op, e.State)
}

func (e *ClosedError) Unwrap() error {
	return ErrClosed
}

// ArgumentError is returned for malformed arguments such as a non-positive
// capacity or batch size.
type ArgumentError struct {
	Name  string
	Value interface{}
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("nagle: invalid %s: %v", e.Name, e.Value)
}

func (e *ArgumentError) Unwrap() error {
	return ErrInvalidArgument
}

// IsCompleted reports whether err was caused by CompleteAdding.
func IsCompleted(err error) bool {
	var ce *ClosedError
	return errors.As(err, &ce) && ce.State == StateCompleted
}

// IsDisposed reports whether err was caused by Close.
func IsDisposed(err error) bool {
	var ce *ClosedError
	return errors.As(err, &ce) && ce.State == StateDisposed
}
