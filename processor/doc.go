// Package processor contains Processor implementations that reshape a batch
// between TakeBatch and the flush, including:
//
// - Filter: For dropping items based on a predicate
// - Transform: For rewriting items one at a time
//
// Processors are attached to a flush function with Chain:
//
//	flush := processor.Chain(ws.Flush,
//	    &processor.Filter[[]byte]{Predicate: func(b []byte) bool { return len(b) > 0 }},
//	    &processor.Transform[[]byte]{Func: func(b []byte) ([]byte, error) {
//	        return bytes.TrimSpace(b), nil
//	    }},
//	)
//
// A batch left empty by its processors is not flushed.
package processor
