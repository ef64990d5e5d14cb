package taskpool

import "github.com/sirupsen/logrus"

// Option configures ambient behavior of a Pool at construction time. The
// core constructor signature (minWorkers, maxWorkers, prioWorkers, F,
// funcName, opaque) stays fixed, matching the original virThreadPoolNewFull
// contract; Option is the idiomatic Go way to layer optional configuration
// on top without growing that signature.
type Option[T any] func(*Pool[T])

// WithLogger overrides the pool's logger. Defaults to logrus.StandardLogger().
func WithLogger[T any](logger *logrus.Logger) Option[T] {
	return func(p *Pool[T]) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMetricsEnabled turns on the atomic job counters returned by Metrics.
// Counters are always zero-cost to read; this only gates whether Submit and
// the worker loop bother incrementing them.
func WithMetricsEnabled[T any](enabled bool) Option[T] {
	return func(p *Pool[T]) {
		p.metricsEnabled = enabled
	}
}

// WithPanicHandler installs a callback invoked when a job function panics.
// The panic is always recovered by the worker loop regardless of whether a
// handler is set — a panicking job never takes down the pool — but without
// a handler the recovery is only logged.
func WithPanicHandler[T any](h func(priority int, recovered any)) Option[T] {
	return func(p *Pool[T]) {
		p.panicHandler = h
	}
}
