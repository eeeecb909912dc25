package source

import (
	"bufio"
	"context"
	"io"
)

// DefaultMaxLineSize is the longest line Lines accepts when MaxLineSize is
// not set.
const DefaultMaxLineSize = 1 << 20

// Lines is a Source that adds each line of Reader, without the line ending.
type Lines struct {
	Reader io.Reader

	// MaxLineSize is the longest accepted line. A longer line makes Read
	// fail with bufio.ErrTooLong. Default: DefaultMaxLineSize.
	MaxLineSize int
}

// Read implements the Source interface. The Reader is not interrupted when
// ctx is done, so Read returns only after the current line is read.
func (s *Lines) Read(ctx context.Context, dst Adder[[]byte]) error {
	limit := s.MaxLineSize
	if limit <= 0 {
		limit = DefaultMaxLineSize
	}

	// The scanner buffer also has to hold the "\r\n" ending.
	scanner := bufio.NewScanner(s.Reader)
	scanner.Buffer(make([]byte, 0, min(64*1024, limit+2)), limit+2)

	for scanner.Scan() {
		if len(scanner.Bytes()) > limit {
			return bufio.ErrTooLong
		}
		// Scanner reuses its buffer.
		line := append([]byte(nil), scanner.Bytes()...)
		if err := dst.AddContext(ctx, line); err != nil {
			return err
		}
	}
	return scanner.Err()
}
