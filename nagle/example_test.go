package nagle_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MasterOfBinary/gonagle/nagle"
)

func Example() {
	// Hold at most 100 items; writers block beyond that.
	c, err := nagle.New[string](100)
	if err != nil {
		panic(err)
	}
	defer c.Close()

	go func() {
		for i := 0; i < 7; i++ {
			_ = c.Add(fmt.Sprintf("msg-%d", i))
		}
		c.CompleteAdding()
	}()

	// Take batches of up to 3, waiting at most 50ms for each one to fill.
	// After CompleteAdding the remaining items drain without waiting and an
	// empty batch means there is nothing left.
	var total int
	for {
		batch, err := c.TakeBatch(context.Background(), 3, 50*time.Millisecond)
		if err != nil {
			panic(err)
		}
		if len(batch) == 0 && c.IsCompleted() && c.Count() == 0 {
			break
		}
		total += len(batch)
	}
	fmt.Println("sent", total, "messages")

	err = c.Add("late")
	fmt.Println(errors.Is(err, nagle.ErrClosed), nagle.IsCompleted(err))

	// Output:
	// sent 7 messages
	// true true
}

func ExampleCollection_TakeBatch_partial() {
	c, _ := nagle.New[int](10)
	defer c.Close()

	_, _ = c.AddRange([]int{1, 2, 3})

	// Only 3 of the requested 5 items arrive before the timeout; that is a
	// normal result, not an error.
	batch, err := c.TakeBatch(context.Background(), 5, 20*time.Millisecond)
	fmt.Println(batch, err)

	// Output:
	// [1 2 3] <nil>
}
