package transport

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrTruncatedFrame is returned by DecodeBatch when the input ends in the
// middle of a frame.
var ErrTruncatedFrame = errors.New("transport: truncated frame")

// AppendFrame appends item to dst prefixed with its uvarint length and
// returns the extended slice.
func AppendFrame(dst, item []byte) []byte {
	dst = binary.AppendUvarint(dst, uint64(len(item)))
	return append(dst, item...)
}

// EncodeBatch frames every item into a single buffer.
func EncodeBatch(items [][]byte) []byte {
	size := 0
	for _, item := range items {
		size += binary.MaxVarintLen64 + len(item)
	}

	buf := make([]byte, 0, size)
	for _, item := range items {
		buf = AppendFrame(buf, item)
	}
	return buf
}

// DecodeBatch splits data produced by EncodeBatch back into items. The
// returned items alias data.
func DecodeBatch(data []byte) ([][]byte, error) {
	var items [][]byte
	for off := 0; off < len(data); {
		n, w := binary.Uvarint(data[off:])
		if w <= 0 {
			return items, fmt.Errorf("%w: bad length at offset %d", ErrTruncatedFrame, off)
		}
		off += w

		if n > uint64(len(data)-off) {
			return items, fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrTruncatedFrame, n, off, len(data)-off)
		}
		end := off + int(n)
		items = append(items, data[off:end:end])
		off = end
	}
	return items, nil
}
