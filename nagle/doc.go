// Package nagle contains a bounded, thread-safe collection that releases
// buffered items to a consumer in batches. The main type is Collection, which
// can be created using New.
//
// Writers call Add or AddRange. When the collection holds Capacity items,
// writers block until a batch is taken, which is how backpressure reaches the
// producers. A consumer calls TakeBatch, which returns as soon as one of the
// following happens:
//
//   - maxBatchSize items are buffered. Exactly maxBatchSize items are returned.
//   - timeout elapses. Whatever is buffered (up to maxBatchSize) is returned.
//   - ctx is done. Whatever is buffered (up to maxBatchSize) is returned.
//   - the collection stops accepting items. See DrainPolicy.
//
// Neither a timeout nor a canceled context is an error. Callers compare the
// length of the returned slice with maxBatchSize to see whether they received a
// full batch. This is the same trade-off Nagle's algorithm makes for small TCP
// writes: a bounded amount of extra latency in exchange for fewer, larger sends.
//
// A collection moves through three states:
//
//	Open --CompleteAdding--> Completed --Close--> Disposed
//	Open --Close--> Disposed
//
// Once it has left Open, Add fails with a *ClosedError carrying the state that
// rejected it, and any writer blocked on capacity is woken and fails the same
// way. Items that were already buffered are kept, and with the default
// DrainAfterClose policy they can still be taken.
//
// TakeBatch calls are served one at a time. A second caller waits for the
// first to finish, and the time it spends waiting counts against its own
// timeout and context.
package nagle
