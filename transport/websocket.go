package transport

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MasterOfBinary/gonagle/sender"
)

// DefaultWriteTimeout bounds a WebSocket write when the flush context has
// no deadline.
const DefaultWriteTimeout = 10 * time.Second

// WebSocketFlusher sends each batch as one binary WebSocket message encoded
// with EncodeBatch.
type WebSocketFlusher struct {
	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
}

// NewWebSocketFlusher wraps an open connection. The flusher owns conn from
// now on and closes it in Close.
func NewWebSocketFlusher(conn *websocket.Conn) *WebSocketFlusher {
	return &WebSocketFlusher{conn: conn}
}

// DialWebSocket connects to url and returns a flusher for the connection.
func DialWebSocket(ctx context.Context, url string, header http.Header) (*WebSocketFlusher, error) {
	dialer := &websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, resp, err := dialer.DialContext(ctx, url, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("transport: dialing %s: %w", url, err)
	}
	return NewWebSocketFlusher(conn), nil
}

// Flush implements sender.FlushFunc.
func (f *WebSocketFlusher) Flush(ctx context.Context, b sender.Batch[[]byte]) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(DefaultWriteTimeout)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return fmt.Errorf("transport: websocket flusher closed")
	}

	if err := f.conn.SetWriteDeadline(deadline); err != nil {
		return fmt.Errorf("transport: setting write deadline: %w", err)
	}

	w, err := f.conn.NextWriter(websocket.BinaryMessage)
	if err != nil {
		return fmt.Errorf("transport: websocket batch %s: %w", b.ID, err)
	}

	var frame []byte
	for _, item := range b.Items {
		frame = AppendFrame(frame[:0], item)
		if _, err := w.Write(frame); err != nil {
			_ = w.Close()
			return fmt.Errorf("transport: websocket batch %s: %w", b.ID, err)
		}
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("transport: websocket batch %s: %w", b.ID, err)
	}
	return nil
}

// Close sends a close message and closes the connection. It is safe to call
// more than once.
func (f *WebSocketFlusher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil
	}
	f.closed = true

	_ = f.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return f.conn.Close()
}
