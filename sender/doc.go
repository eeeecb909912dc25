// Package sender drains a nagle.Collection in the background and hands each
// batch to a FlushFunc, typically a network write.
//
// A Sender runs a single loop. Each iteration reloads its Config, waits on
// an optional rate limiter and calls TakeBatch with MaxBatchSize and
// MaxWait. Non-empty batches are given a UUID and a sequence number and
// passed to the FlushFunc. A failing flush is reported as a *FlushError on
// the error channel returned by Go and does not stop the loop.
//
// Shutdown is two-staged, matching the collection lifecycle. Close calls
// CompleteAdding so producers are turned away, lets the loop flush whatever
// is still buffered, and then disposes the collection. With the
// nagle.RejectAfterClose policy the loop stops as soon as adding completes;
// items still buffered are not flushed, and both the error channel and Close
// report ErrUnflushed.
//
// FileConfig and LoadConfig read the collection and sender settings from
// YAML.
package sender
