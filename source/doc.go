// Package source contains producers that feed a nagle.Collection,
// including:
//
// - Channel: For draining an existing channel into a collection
// - Lines: For adding every line of an io.Reader
//
// Each source blocks on the collection when it is full and stops when its
// input ends, the context is done, or the collection stops accepting items.
// A source never calls CompleteAdding; the caller decides when adding is
// complete.
//
// Basic usage of the Channel source:
//
//	input := make(chan string, 2)
//	input <- "a"
//	input <- "b"
//	close(input)
//
//	c, _ := nagle.New[string](10)
//	_ = (&source.Channel[string]{Input: input}).Read(ctx, c)
//	fmt.Println(c.Count())
//
// Output:
//
//	2
package source
