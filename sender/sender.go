package sender

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/MasterOfBinary/gonagle/nagle"
)

// closedDone is returned by Done when Go has not been called yet.
var closedDone = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// Batch is a group of items taken from the collection in one TakeBatch call.
type Batch[T any] struct {
	// ID uniquely identifies the batch, e.g. for tracing a network send.
	ID uuid.UUID

	// Seq numbers the batches flushed by one Sender, starting at 1.
	Seq uint64

	// Items are the batch contents in arrival order.
	Items []T
}

// FlushFunc sends a batch downstream. It is called from a single goroutine,
// one batch at a time, in batch order.
type FlushFunc[T any] func(ctx context.Context, b Batch[T]) error

// ErrUnflushed is reported when the send loop stops while items are still
// buffered, for example because the collection uses nagle.RejectAfterClose.
var ErrUnflushed = errors.New("sender: items left unflushed")

// FlushError is sent on the error channel when a FlushFunc fails.
type FlushError struct {
	BatchID uuid.UUID
	Size    int
	Err     error
}

func (e *FlushError) Error() string {
	return fmt.Sprintf("sender: flushing batch %s (%d items): %v", e.BatchID, e.Size, e.Err)
}

func (e *FlushError) Unwrap() error {
	return e.Err
}

// Option configures a Sender.
type Option func(*options)

type options struct {
	logger     nagle.Logger
	errHandler func(error)
}

// WithLogger sets the logger. If not set, nothing is logged.
func WithLogger(logger nagle.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithErrorHandler registers f to be called with every error, in addition to
// the error being sent on the channel returned by Go.
func WithErrorHandler(f func(error)) Option {
	return func(o *options) {
		o.errHandler = f
	}
}

// Sender is the consumer side of a nagle.Collection. It takes batches in a
// loop and hands each non-empty batch to a FlushFunc, so producers only ever
// call Add.
//
//	c, _ := nagle.New[[]byte](1000)
//	s := sender.New(c, sender.NewConstantConfig(&sender.ConfigValues{
//		MaxBatchSize: 50,
//		MaxWait:      20 * time.Millisecond,
//	}), flush)
//	sender.IgnoreErrors(s.Go(ctx))
//
//	// producers call c.Add(...)
//
//	_ = s.Close(ctx) // stop accepting, flush what is left, dispose
type Sender[T any] struct {
	coll   *nagle.Collection[T]
	config Config
	flush  FlushFunc[T]
	opts   options

	limiter *rate.Limiter

	// mu protects the following variables
	mu      sync.Mutex
	running bool
	closed  bool
	errs    chan error
	done    chan struct{}
}

// New creates a Sender for c. If config is nil the defaults are used. If
// flush is nil, batches are taken and discarded.
func New[T any](c *nagle.Collection[T], config Config, flush FlushFunc[T], opts ...Option) *Sender[T] {
	if config == nil {
		config = NewConstantConfig(nil)
	}
	if flush == nil {
		flush = func(context.Context, Batch[T]) error { return nil }
	}

	o := options{logger: nagle.NoOpLogger{}}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return &Sender[T]{
		coll:    c,
		config:  config,
		flush:   flush,
		opts:    o,
		limiter: rate.NewLimiter(rate.Inf, 1),
	}
}

// Go starts the send loop in the background and returns the error channel.
// The channel is closed when the loop exits, which happens once the
// collection has stopped accepting items and has been drained, or ctx is
// done.
//
// Errors must be received, or passed to IgnoreErrors; otherwise the loop
// blocks once the channel buffer is full.
//
// If ctx is done while a batch has already been taken, that batch is still
// flushed, bounded by FlushTimeout, so that taken items are not lost.
//
// Go must only be called once. Calling it again panics.
func (s *Sender[T]) Go(ctx context.Context) <-chan error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running || s.done != nil {
		panic("sender: Go called more than once")
	}

	s.running = true
	s.errs = make(chan error, DefaultErrorBufferSize)
	s.done = make(chan struct{})

	s.opts.logger.Info("sender: starting")
	go s.run(ctx)

	return s.errs
}

// Done returns a channel that is closed when the send loop has exited.
func (s *Sender[T]) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done == nil {
		return closedDone
	}
	return s.done
}

// Close shuts down in two stages: it calls CompleteAdding on the collection,
// waits for the send loop to flush what is left, then calls Close on the
// collection. If ctx is done first, the collection is still closed and
// ctx.Err() is returned. If the loop stopped with items still buffered, the
// returned error wraps ErrUnflushed. Close is idempotent.
func (s *Sender[T]) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	done := s.done
	s.mu.Unlock()

	s.coll.CompleteAdding()

	var err error
	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
			err = ctx.Err()
			s.opts.logger.Warn("sender: stopped waiting for drain with %d item(s) left: %v", s.coll.Count(), err)
		}
	}

	_ = s.coll.Close()
	if err == nil && done != nil {
		if n := s.coll.Count(); n > 0 {
			err = fmt.Errorf("%w: %d item(s) still buffered", ErrUnflushed, n)
		}
	}
	return err
}

func (s *Sender[T]) run(ctx context.Context) {
	var seq uint64

	defer func() {
		s.opts.logger.Info("sender: stopped after %d batch(es)", seq)
		close(s.errs)
		close(s.done)
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	for {
		if ctx.Err() != nil {
			return
		}

		values := fixConfig(s.config.Get())
		s.applyRate(values)
		if err := s.limiter.Wait(ctx); err != nil {
			return
		}

		items, err := s.coll.TakeBatch(ctx, values.MaxBatchSize, values.MaxWait)
		if err != nil {
			if !errors.Is(err, nagle.ErrClosed) {
				s.report(err)
			} else if n := s.coll.Count(); n > 0 {
				s.opts.logger.Warn("sender: collection is %s, %d item(s) cannot be taken", s.coll.State(), n)
				s.report(fmt.Errorf("%w: %d item(s) stranded: %w", ErrUnflushed, n, err))
			}
			return
		}

		if len(items) == 0 {
			if s.coll.IsCompleted() && s.coll.Count() == 0 {
				return
			}
			continue
		}

		seq++
		s.send(ctx, values, Batch[T]{ID: uuid.New(), Seq: seq, Items: items})
	}
}

func (s *Sender[T]) send(ctx context.Context, values ConfigValues, b Batch[T]) {
	flushCtx := context.WithoutCancel(ctx)
	if values.FlushTimeout > 0 {
		var cancel context.CancelFunc
		flushCtx, cancel = context.WithTimeout(flushCtx, values.FlushTimeout)
		defer cancel()
	} else if ctx.Err() == nil {
		var cancel context.CancelFunc
		flushCtx, cancel = context.WithCancel(ctx)
		defer cancel()
	}

	if err := s.flush(flushCtx, b); err != nil {
		s.opts.logger.Error("sender: batch %d (%s) of %d item(s) failed: %v", b.Seq, b.ID, len(b.Items), err)
		s.report(&FlushError{BatchID: b.ID, Size: len(b.Items), Err: err})
		return
	}
	s.opts.logger.Debug("sender: flushed batch %d (%s) of %d item(s)", b.Seq, b.ID, len(b.Items))
}

func (s *Sender[T]) applyRate(values ConfigValues) {
	limit := rate.Inf
	if values.FlushRate > 0 {
		limit = rate.Limit(values.FlushRate)
	}
	if s.limiter.Limit() != limit {
		s.limiter.SetLimit(limit)
	}
	if s.limiter.Burst() != values.FlushBurst {
		s.limiter.SetBurst(values.FlushBurst)
	}
}

func (s *Sender[T]) report(err error) {
	if s.opts.errHandler != nil {
		s.opts.errHandler(err)
	}
	s.errs <- err
}

// IgnoreErrors starts a goroutine that reads errors from errs but ignores them.
// It can be used with Sender.Go if errors aren't needed:
//
//	sender.IgnoreErrors(s.Go(ctx))
func IgnoreErrors(errs <-chan error) {
	if errs != nil {
		go func() {
			for range errs {
			}
		}()
	}
}
