package summary

import "time"

type daemonOptions struct {
	batchSize int
	idleSleep time.Duration
	now       func() time.Time
}

func defaultDaemonOptions() daemonOptions {
	return daemonOptions{
		batchSize: 256,
		idleSleep: 200 * time.Millisecond,
		now:       time.Now,
	}
}

func newDaemonOptions(options ...DaemonOption) daemonOptions {
	opts := defaultDaemonOptions()
	for _, fn := range options {
		fn(&opts)
	}
	return opts
}

// DaemonOption ...
type DaemonOption func(opts *daemonOptions)

// WithBatchSize ...
func WithBatchSize(size int) DaemonOption {
	return func(opts *daemonOptions) {
		opts.batchSize = size
	}
}

// WithIdleSleep ...
func WithIdleSleep(d time.Duration) DaemonOption {
	return func(opts *daemonOptions) {
		opts.idleSleep = d
	}
}

// WithNowFunc overrides the clock, for tests.
func WithNowFunc(now func() time.Time) DaemonOption {
	return func(opts *daemonOptions) {
		opts.now = now
	}
}
