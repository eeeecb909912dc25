package nagle

import (
	"context"
	"sync"
	"time"
)

// closedTimer is a pre-fired timer channel used when TakeBatch must not wait.
var closedTimer = func() chan time.Time {
	ch := make(chan time.Time)
	close(ch)
	return ch
}()

// Collection is a bounded FIFO buffer that hands items to a consumer in
// batches. Create one with New; the zero value is not usable.
//
// Any number of goroutines may call Add, AddRange, Count and the lifecycle
// methods concurrently. TakeBatch may also be called concurrently, but calls
// are served one at a time in the order they acquire the turn.
type Collection[T any] struct {
	capacity int
	opts     *options

	// turn holds a token while a TakeBatch call is active.
	turn chan struct{}

	// mu protects the following variables
	mu      sync.Mutex
	notFull *sync.Cond
	items   []T
	state   State
	pending *batchRequest
	done    chan struct{}
}

// batchRequest is the TakeBatch call currently waiting for items. ready is
// closed by the writer that makes the buffer reach want items.
type batchRequest struct {
	want  int
	ready chan struct{}
}

// New creates an open Collection that holds at most capacity items.
// capacity must be positive.
func New[T any](capacity int, opts ...Option) (*Collection[T], error) {
	if capacity <= 0 {
		return nil, &ArgumentError{Name: "capacity", Value: capacity}
	}

	o, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}

	c := &Collection[T]{
		capacity: capacity,
		opts:     o,
		turn:     make(chan struct{}, 1),
		items:    make([]T, 0, capacity),
		done:     make(chan struct{}),
	}
	c.notFull = sync.NewCond(&c.mu)

	return c, nil
}

// Capacity returns the maximum number of buffered items.
func (c *Collection[T]) Capacity() int {
	return c.capacity
}

// Count returns the number of buffered items at the time of the call.
func (c *Collection[T]) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Add appends item, blocking while the collection is full. It returns a
// *ClosedError if the collection is not open, or stops being open while Add
// is waiting.
func (c *Collection[T]) Add(item T) error {
	return c.add(nil, "Add", item)
}

// AddContext is like Add, but also stops waiting for capacity when ctx is
// done, in which case it returns ctx.Err() and item is not added.
func (c *Collection[T]) AddContext(ctx context.Context, item T) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.add(ctx, "AddContext", item)
}

// AddRange adds items one at a time, in order, with the same blocking
// behavior as Add. It returns the number of items added. If the collection
// stops being open part way through, the items before that point stay in the
// collection and the *ClosedError for the first rejected item is returned.
func (c *Collection[T]) AddRange(items []T) (int, error) {
	for i, item := range items {
		if err := c.add(nil, "AddRange", item); err != nil {
			return i, err
		}
	}
	return len(items), nil
}

func (c *Collection[T]) add(ctx context.Context, op string, item T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateOpen && len(c.items) >= c.capacity {
		c.opts.stats.RecordBlocked()
		if ctx != nil {
			stop := context.AfterFunc(ctx, c.wakeWriters)
			defer stop()
		}

		for c.state == StateOpen && len(c.items) >= c.capacity {
			if ctx != nil && ctx.Err() != nil {
				// A removal may have signaled us rather than a writer that
				// can use the slot.
				if len(c.items) < c.capacity {
					c.notFull.Signal()
				}
				return ctx.Err()
			}
			c.notFull.Wait()
		}
	}

	if c.state != StateOpen {
		c.opts.stats.RecordRejected(c.state)
		c.opts.logger.Debug("nagle: %s rejected, collection is %s", op, c.state)
		return &ClosedError{Op: op, State: c.state}
	}

	c.items = append(c.items, item)
	c.opts.stats.RecordAdd(len(c.items))

	if p := c.pending; p != nil && len(c.items) >= p.want {
		close(p.ready)
		c.pending = nil
	}

	return nil
}

func (c *Collection[T]) wakeWriters() {
	c.mu.Lock()
	c.notFull.Broadcast()
	c.mu.Unlock()
}

// TakeBatch removes and returns up to maxBatchSize items from the front of
// the collection.
//
// If maxBatchSize items are already buffered they are returned right away.
// Otherwise TakeBatch waits until the first of:
//
//   - enough items are added to fill the batch (exactly maxBatchSize returned)
//   - timeout elapses (the buffered items returned, possibly none)
//   - ctx is done (the buffered items returned, possibly none)
//   - the collection stops being open (see DrainPolicy)
//
// A timeout of zero does not wait at all. A timeout or a done context is not
// an error. The only errors are an *ArgumentError for a non-positive
// maxBatchSize or negative timeout, and a *ClosedError when the collection is
// not open and the policy is RejectAfterClose.
func (c *Collection[T]) TakeBatch(ctx context.Context, maxBatchSize int, timeout time.Duration) ([]T, error) {
	if maxBatchSize <= 0 {
		return nil, &ArgumentError{Name: "maxBatchSize", Value: maxBatchSize}
	}
	if timeout < 0 {
		return nil, &ArgumentError{Name: "timeout", Value: timeout}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	start := c.opts.clock.Now()
	expired := (<-chan time.Time)(closedTimer)
	if timeout > 0 {
		timer := c.opts.clock.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.Chan()
	}

	select {
	case c.turn <- struct{}{}:
	default:
		select {
		case c.turn <- struct{}{}:
		case <-expired:
			return c.emptyBatch(ReasonTimeout, start), nil
		case <-ctx.Done():
			return c.emptyBatch(ReasonCanceled, start), nil
		}
	}
	defer func() { <-c.turn }()

	c.mu.Lock()
	if c.state != StateOpen {
		defer c.mu.Unlock()
		return c.takeClosedLocked(maxBatchSize, start)
	}
	if len(c.items) >= maxBatchSize {
		defer c.mu.Unlock()
		return c.takeLocked(maxBatchSize, ReasonFull, start), nil
	}

	req := &batchRequest{want: maxBatchSize, ready: make(chan struct{})}
	c.pending = req
	done := c.done
	c.mu.Unlock()

	var reason BatchReason
	select {
	case <-req.ready:
		reason = ReasonFull
	case <-expired:
		reason = ReasonTimeout
	case <-ctx.Done():
		reason = ReasonCanceled
	case <-done:
		reason = ReasonClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending == req {
		c.pending = nil
	}
	if len(c.items) >= maxBatchSize {
		// Several cases may have been ready at once; a full batch wins.
		reason = ReasonFull
	}
	if reason == ReasonClosed {
		return c.takeClosedLocked(maxBatchSize, start)
	}
	return c.takeLocked(maxBatchSize, reason, start), nil
}

func (c *Collection[T]) takeClosedLocked(maxBatchSize int, start time.Time) ([]T, error) {
	if c.opts.drain == RejectAfterClose {
		return nil, &ClosedError{Op: "TakeBatch", State: c.state}
	}
	return c.takeLocked(maxBatchSize, ReasonClosed, start), nil
}

// takeLocked removes up to n items from the front of the buffer and wakes
// one blocked writer per removed item. c.mu must be held.
func (c *Collection[T]) takeLocked(n int, reason BatchReason, start time.Time) []T {
	if n > len(c.items) {
		n = len(c.items)
	}

	batch := make([]T, n)
	copy(batch, c.items[:n])

	remaining := copy(c.items, c.items[n:])
	clear(c.items[remaining:])
	c.items = c.items[:remaining]

	for i := 0; i < n; i++ {
		c.notFull.Signal()
	}

	wait := c.opts.clock.Since(start)
	c.opts.stats.RecordBatch(n, remaining, reason, wait)
	c.opts.logger.Debug("nagle: released %s batch of %d item(s) after %v, %d left", reason, n, wait, remaining)

	return batch
}

func (c *Collection[T]) emptyBatch(reason BatchReason, start time.Time) []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opts.stats.RecordBatch(0, len(c.items), reason, c.opts.clock.Since(start))
	return []T{}
}

// CompleteAdding stops the collection from accepting items. Writers blocked
// in Add fail with a *ClosedError, and a waiting TakeBatch is released.
// Calling it again, or after Close, has no effect.
func (c *Collection[T]) CompleteAdding() {
	c.mu.Lock()
	if c.state != StateOpen {
		c.mu.Unlock()
		return
	}
	c.state = StateCompleted
	close(c.done)
	c.notFull.Broadcast()
	n := len(c.items)
	c.mu.Unlock()

	c.opts.logger.Info("nagle: collection completed with %d item(s) buffered", n)
}

// IsCompleted reports whether the collection has stopped accepting items,
// either through CompleteAdding or Close.
func (c *Collection[T]) IsCompleted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state != StateOpen
}

// State returns the current lifecycle state.
func (c *Collection[T]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Done returns a channel that is closed once the collection stops accepting
// items.
func (c *Collection[T]) Done() <-chan struct{} {
	return c.done
}

// Close moves the collection to StateDisposed from any state. Like
// CompleteAdding, it fails blocked writers and releases a waiting TakeBatch.
// Buffered items are kept. Close is idempotent and always returns nil.
func (c *Collection[T]) Close() error {
	c.mu.Lock()
	if c.state == StateDisposed {
		c.mu.Unlock()
		return nil
	}
	if c.state == StateOpen {
		close(c.done)
	}
	c.state = StateDisposed
	c.notFull.Broadcast()
	n := len(c.items)
	c.mu.Unlock()

	c.opts.logger.Info("nagle: collection disposed with %d item(s) buffered", n)
	return nil
}
