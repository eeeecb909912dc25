package nagle

import "github.com/jonboulle/clockwork"

// Option configures a Collection.
type Option func(*options)

type options struct {
	logger Logger
	stats  StatsCollector
	clock  clockwork.Clock
	drain  DrainPolicy
}

// WithLogger sets the logger. If not set, or if logger is nil, nothing is logged.
func WithLogger(logger Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithStats sets the stats collector. If not set, or if stats is nil, no
// statistics are collected.
func WithStats(stats StatsCollector) Option {
	return func(o *options) {
		if stats != nil {
			o.stats = stats
		}
	}
}

// WithClock changes the clock used for TakeBatch timeouts. Its main purpose is
// testing with clockwork.NewFakeClock.
func WithClock(clock clockwork.Clock) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithDrainPolicy sets what TakeBatch does after the collection has stopped
// accepting items. The default is DrainAfterClose.
func WithDrainPolicy(policy DrainPolicy) Option {
	return func(o *options) {
		o.drain = policy
	}
}

func applyOptions(opts []Option) (*options, error) {
	o := &options{
		logger: NoOpLogger{},
		stats:  &NoOpStatsCollector{},
		clock:  clockwork.NewRealClock(),
		drain:  DrainAfterClose,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	if o.drain != DrainAfterClose && o.drain != RejectAfterClose {
		return nil, &ArgumentError{Name: "drainPolicy", Value: int(o.drain)}
	}
	return o, nil
}
