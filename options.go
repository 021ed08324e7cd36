package swmesh

type options struct {
	maxConcurrent int64
	readLimit     int
	logger        *Logger
}

func defaultOptions() options {
	return options{
		maxConcurrent: DefaultMaxConcurrent,
		logger:        NoopLogger(),
	}
}

// Option configures Loader construction.
type Option func(*options)

// WithMaxConcurrent sets the admission limit: the maximum number of loads
// that may be simultaneously I/O-active. Throughput on most storage peaks
// well below unbounded concurrency; tune against the target disk or object
// store rather than the input count.
//
// Values <= 0 are rejected by NewLoader with ErrInvalidConcurrency.
func WithMaxConcurrent(n int) Option {
	return func(o *options) {
		o.maxConcurrent = int64(n)
	}
}

// WithReadLimit throttles blob reads to approximately bytesPerSec across the
// whole loader. Zero (the default) disables throttling.
func WithReadLimit(bytesPerSec int) Option {
	return func(o *options) {
		o.readLimit = bytesPerSec
	}
}

// WithLogger sets the loader's logger. Passing nil restores the no-op
// default.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}
