// Package transport provides sender.FlushFunc implementations that write
// batches of []byte items to an already established connection.
//
// Batches sent as a single message are encoded with EncodeBatch: each item
// is prefixed with its length as an unsigned varint. DecodeBatch reverses
// this on the receiving end.
//
// Connection management is left to the caller. A flusher never redials; a
// failed write is returned to the sender and reported on its error channel.
package transport
