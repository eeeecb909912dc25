package nagle

import (
	"fmt"
	"strings"
)

// State is the lifecycle state of a Collection.
type State int

const (
	// StateOpen accepts new items.
	StateOpen State = iota
	// StateCompleted rejects new items. Reached through CompleteAdding.
	StateCompleted
	// StateDisposed rejects new items. Reached through Close. No transition
	// leaves it.
	StateDisposed
)

// String returns the lower-case name of the state.
func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateCompleted:
		return "completed"
	case StateDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// DrainPolicy decides what TakeBatch does once a collection has stopped
// accepting items.
type DrainPolicy int

const (
	// DrainAfterClose lets TakeBatch keep returning buffered items without
	// waiting, and an empty batch once the buffer is empty.
	DrainAfterClose DrainPolicy = iota
	// RejectAfterClose makes TakeBatch fail with a *ClosedError and leaves
	// buffered items where they are.
	RejectAfterClose
)

// String returns the name used for the policy in configuration files.
func (p DrainPolicy) String() string {
	switch p {
	case DrainAfterClose:
		return "drain"
	case RejectAfterClose:
		return "reject"
	default:
		return "unknown"
	}
}

// ParseDrainPolicy parses "drain" or "reject". The empty string is DrainAfterClose.
func ParseDrainPolicy(s string) (DrainPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "drain":
		return DrainAfterClose, nil
	case "reject":
		return RejectAfterClose, nil
	default:
		return 0, &ArgumentError{Name: "drainPolicy", Value: s}
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p DrainPolicy) MarshalText() ([]byte, error) {
	if p != DrainAfterClose && p != RejectAfterClose {
		return nil, fmt.Errorf("nagle: unknown drain policy %d", int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *DrainPolicy) UnmarshalText(text []byte) error {
	v, err := ParseDrainPolicy(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// BatchReason records which condition released a batch.
type BatchReason int

const (
	// ReasonFull means maxBatchSize items were available.
	ReasonFull BatchReason = iota
	// ReasonTimeout means the timeout elapsed first.
	ReasonTimeout
	// ReasonCanceled means the caller's context was done first.
	ReasonCanceled
	// ReasonClosed means the collection was no longer accepting items.
	ReasonClosed
)

// String returns the lower-case name of the reason.
func (r BatchReason) String() string {
	switch r {
	case ReasonFull:
		return "full"
	case ReasonTimeout:
		return "timeout"
	case ReasonCanceled:
		return "canceled"
	case ReasonClosed:
		return "closed"
	default:
		return "unknown"
	}
}
