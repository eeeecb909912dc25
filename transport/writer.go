package transport

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/MasterOfBinary/gonagle/sender"
)

// WriterFlusher writes each item of a batch followed by a newline to an
// io.Writer. The whole batch is assembled first and handed to the writer in
// a single Write call. A failed write affects only that batch.
type WriterFlusher struct {
	mu  sync.Mutex
	w   io.Writer
	buf []byte
}

// NewWriterFlusher returns a flusher writing to w.
func NewWriterFlusher(w io.Writer) *WriterFlusher {
	return &WriterFlusher{w: w}
}

// Flush implements sender.FlushFunc.
func (f *WriterFlusher) Flush(ctx context.Context, b sender.Batch[[]byte]) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.buf = f.buf[:0]
	for _, item := range b.Items {
		f.buf = append(f.buf, item...)
		f.buf = append(f.buf, '\n')
	}

	n, err := f.w.Write(f.buf)
	if err == nil && n < len(f.buf) {
		err = io.ErrShortWrite
	}
	if err != nil {
		return fmt.Errorf("transport: writing batch %s: %w", b.ID, err)
	}
	return nil
}
