package transport

import (
	"context"
	"fmt"
	"strconv"

	"github.com/nats-io/nats.go"

	"github.com/MasterOfBinary/gonagle/sender"
)

// Headers set on every message published by NATSFlusher.
const (
	HeaderBatchID   = "Nagle-Batch-Id"
	HeaderBatchSize = "Nagle-Batch-Size"
	HeaderBatchSeq  = "Nagle-Batch-Seq"
)

// Publisher publishes a single message. *nats.Conn satisfies it.
type Publisher interface {
	PublishMsg(m *nats.Msg) error
}

// NATSFlusher publishes each batch as one NATS message on a fixed subject.
// The payload is encoded with EncodeBatch.
type NATSFlusher struct {
	pub     Publisher
	subject string
}

// NewNATSFlusher returns a flusher publishing to subject.
func NewNATSFlusher(pub Publisher, subject string) (*NATSFlusher, error) {
	if pub == nil {
		return nil, fmt.Errorf("transport: nil publisher")
	}
	if subject == "" {
		return nil, fmt.Errorf("transport: empty subject")
	}
	return &NATSFlusher{pub: pub, subject: subject}, nil
}

// Flush implements sender.FlushFunc. Publishing is asynchronous in the NATS
// client, so ctx is only checked before the message is handed over.
func (f *NATSFlusher) Flush(ctx context.Context, b sender.Batch[[]byte]) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := nats.NewMsg(f.subject)
	msg.Header.Set(HeaderBatchID, b.ID.String())
	msg.Header.Set(HeaderBatchSize, strconv.Itoa(len(b.Items)))
	msg.Header.Set(HeaderBatchSeq, strconv.FormatUint(b.Seq, 10))
	msg.Data = EncodeBatch(b.Items)

	if err := f.pub.PublishMsg(msg); err != nil {
		return fmt.Errorf("transport: publishing batch %s to %s: %w", b.ID, f.subject, err)
	}
	return nil
}
