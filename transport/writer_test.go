package transport_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MasterOfBinary/gonagle/nagle"
	"github.com/MasterOfBinary/gonagle/sender"
	"github.com/MasterOfBinary/gonagle/transport"
)

type countingWriter struct {
	bytes.Buffer
	writes int
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.writes++
	return w.Buffer.Write(p)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

// flakyWriter fails its first write and accepts the rest.
type flakyWriter struct {
	bytes.Buffer
	failed bool
}

func (w *flakyWriter) Write(p []byte) (int, error) {
	if !w.failed {
		w.failed = true
		return 0, errors.New("connection reset")
	}
	return w.Buffer.Write(p)
}

type shortWriter struct{}

func (shortWriter) Write(p []byte) (int, error) {
	return len(p) / 2, nil
}

func TestWriterFlusher(t *testing.T) {
	w := &countingWriter{}
	f := transport.NewWriterFlusher(w)

	b := sender.Batch[[]byte]{ID: uuid.New(), Items: [][]byte{[]byte("a"), []byte("b"), []byte("c")}}
	require.NoError(t, f.Flush(context.Background(), b))

	assert.Equal(t, "a\nb\nc\n", w.String())
	assert.Equal(t, 1, w.writes, "a batch should reach the writer in one write")
}

func TestWriterFlusher_LargeBatchIsOneWrite(t *testing.T) {
	w := &countingWriter{}
	f := transport.NewWriterFlusher(w)

	items := make([][]byte, 20)
	for i := range items {
		items[i] = bytes.Repeat([]byte{'a' + byte(i)}, 1000)
	}
	require.NoError(t, f.Flush(context.Background(), sender.Batch[[]byte]{ID: uuid.New(), Items: items}))

	assert.Equal(t, 1, w.writes)
	assert.Equal(t, 20*1001, w.Len())
}

func TestWriterFlusher_RecoversAfterError(t *testing.T) {
	w := &flakyWriter{}
	f := transport.NewWriterFlusher(w)

	err := f.Flush(context.Background(), sender.Batch[[]byte]{ID: uuid.New(), Items: [][]byte{[]byte("lost")}})
	assert.ErrorContains(t, err, "connection reset")

	require.NoError(t, f.Flush(context.Background(), sender.Batch[[]byte]{ID: uuid.New(), Items: [][]byte{[]byte("kept")}}))
	assert.Equal(t, "kept\n", w.String())
}

func TestWriterFlusher_ShortWrite(t *testing.T) {
	f := transport.NewWriterFlusher(shortWriter{})

	err := f.Flush(context.Background(), sender.Batch[[]byte]{ID: uuid.New(), Items: [][]byte{[]byte("abcd")}})
	assert.ErrorIs(t, err, io.ErrShortWrite)
}

func TestWriterFlusher_Error(t *testing.T) {
	f := transport.NewWriterFlusher(failingWriter{})

	err := f.Flush(context.Background(), sender.Batch[[]byte]{ID: uuid.New(), Items: [][]byte{[]byte("a")}})
	assert.ErrorContains(t, err, "disk full")
}

func TestWriterFlusher_WithSender(t *testing.T) {
	var buf bytes.Buffer
	f := transport.NewWriterFlusher(&buf)

	c, err := nagle.New[[]byte](8)
	require.NoError(t, err)

	s := sender.New(c, nil, f.Flush)
	sender.IgnoreErrors(s.Go(context.Background()))

	for _, line := range []string{"x", "y", "z"} {
		require.NoError(t, c.Add([]byte(line)))
	}
	require.NoError(t, s.Close(context.Background()))

	assert.Equal(t, "x\ny\nz\n", buf.String())
}
