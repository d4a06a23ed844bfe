package postgresengine

import (
	"github.com/pagehaven/bookstore-fulfillment-go/fulfillment"
)

// Option defines a functional option for configuring a Store.
type Option func(*Store) error

// WithTableNames sets the table names used by the Store.
// All four names must be non-empty.
func WithTableNames(tables TableNames) Option {
	return func(s *Store) error {
		if tables.Books == "" || tables.Customers == "" || tables.Orders == "" || tables.OrderLines == "" {
			return fulfillment.ErrEmptyTableNameSupplied
		}

		s.tables = tables

		return nil
	}
}

// WithLogger sets the logger for the Store.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL queries with execution timing (development use)
// Info level: fulfillment summaries, durations, conflicts (production-safe)
// Warn level: non-critical issues like rows cleanup failures
// Error level: critical failures that cause operation failures.
func WithLogger(logger fulfillment.Logger) Option {
	return func(s *Store) error {
		s.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Store.
// The contextual logger receives log messages with context information,
// including automatic trace/span correlation when tracing is enabled.
func WithContextualLogger(logger fulfillment.ContextualLogger) Option {
	return func(s *Store) error {
		s.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Store.
// The collector receives fulfillment durations, conflict counters, and
// database error counters.
func WithMetrics(collector fulfillment.MetricsCollector) Option {
	return func(s *Store) error {
		s.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Store.
// The collector receives span creation for fulfillment and catalog
// operations, context propagation, and error tracking.
func WithTracing(collector fulfillment.TracingCollector) Option {
	return func(s *Store) error {
		s.tracingCollector = collector
		return nil
	}
}
