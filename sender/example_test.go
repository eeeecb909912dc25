package sender_test

import (
	"context"
	"fmt"
	"time"

	"github.com/MasterOfBinary/gonagle/nagle"
	"github.com/MasterOfBinary/gonagle/sender"
)

func Example() {
	c, err := nagle.New[string](100)
	if err != nil {
		panic(err)
	}

	s := sender.New(c, sender.NewConstantConfig(&sender.ConfigValues{
		MaxBatchSize: 3,
		MaxWait:      50 * time.Millisecond,
	}), func(_ context.Context, b sender.Batch[string]) error {
		fmt.Println(b.Seq, b.Items)
		return nil
	})

	for i := 0; i < 7; i++ {
		_ = c.Add(fmt.Sprintf("msg-%d", i))
	}

	ctx := context.Background()
	sender.IgnoreErrors(s.Go(ctx))

	if err := s.Close(ctx); err != nil {
		panic(err)
	}

	// Output:
	// 1 [msg-0 msg-1 msg-2]
	// 2 [msg-3 msg-4 msg-5]
	// 3 [msg-6]
}
