// Package shell provides shared application-shell infrastructure for the
// fulfillment command handlers, currently the exponential-backoff retry
// loop for transaction conflicts.
package shell

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/pagehaven/bookstore-fulfillment-go/fulfillment"
)

const (
	defaultMaxAttempts  = 6
	defaultBaseDelay    = 10 * time.Millisecond
	defaultJitterFactor = 0.3

	retryDelayMetric        = "fulfillment_retry_delay_seconds"
	retryAttemptsMetric     = "fulfillment_retries_total"
	maxRetriesReachedMetric = "fulfillment_max_retries_reached_total"

	labelOperation      = "operation"
	labelAttemptNumber  = "attempt_number"
	labelErrorType      = "error_type"
	labelFinalErrorType = "final_error_type"
)

var (
	// ErrNilMetricsCollector is returned when a nil metrics collector is provided to WithMetrics.
	ErrNilMetricsCollector = errors.New("metrics collector must not be nil")

	// ErrEmptyOperationName is returned when an empty operation name is provided to WithMetrics.
	ErrEmptyOperationName = errors.New("operation name must not be empty")

	// ErrInvalidMaxAttempts is returned when max attempts are not positive.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")

	// ErrNegativeBaseDelay is returned when the base delay is negative.
	ErrNegativeBaseDelay = errors.New("base delay must not be negative")

	// ErrInvalidJitterFactor is returned when the jitter factor is not between 0.0 and 1.0.
	ErrInvalidJitterFactor = errors.New("jitter factor must be between 0.0 and 1.0")
)

// RetryableFunc represents a function that can be retried.
type RetryableFunc func(ctx context.Context) error

// RetryMetadata carries execution details of a retry loop for observability.
type RetryMetadata struct {
	Attempts      int
	TotalDelay    time.Duration
	LastErrorType string
}

// retryConfig holds configuration for exponential backoff retry logic.
type retryConfig struct {
	maxAttempts      int
	baseDelay        time.Duration
	jitterFactor     float64
	metricsCollector fulfillment.MetricsCollector
	operationName    string
}

// RetryWithExponentialBackoff executes the provided function with
// exponential backoff, retrying only on transaction conflicts up to
// maxAttempts times.
//
// Retry Schedule (default): 0 ms, 10 ms, 20 ms, 40 ms, 80 ms, 160 ms (with 30% jitter)
// Use Case: row-lock and serialization conflicts between concurrent
// fulfillment calls contending for the same books.
//
// Only fulfillment.ErrTransactionConflict is retried - all other errors
// fail fast. Business-rule failures are deterministic, and retrying
// timeouts during overload creates cascade failures.
func RetryWithExponentialBackoff(
	ctx context.Context,
	fn RetryableFunc,
	options ...RetryOption,
) (RetryMetadata, error) {
	config := &retryConfig{
		maxAttempts:  defaultMaxAttempts,
		baseDelay:    defaultBaseDelay,
		jitterFactor: defaultJitterFactor,
	}

	meta := RetryMetadata{LastErrorType: "none"}

	for _, option := range options {
		if err := option(config); err != nil {
			return meta, err
		}
	}

	var lastErr error

	for attempt := 0; attempt < config.maxAttempts; attempt++ {
		if attempt > 0 {
			// Exponential backoff: baseDelay * 2^(attempt-1)
			delay := config.baseDelay * time.Duration(1<<(attempt-1))

			// Add jitter to prevent thundering herd
			jitter := rand.Float64() * float64(delay) * config.jitterFactor //nolint:gosec //math/rand is sufficient for jitter
			backoffDelay := delay + time.Duration(jitter)

			recordRetryDelayMetric(config, attempt, backoffDelay)

			select {
			case <-time.After(backoffDelay):
				meta.TotalDelay += backoffDelay
			case <-ctx.Done():
				meta.LastErrorType = errorTypeOf(ctx.Err())
				return meta, ctx.Err()
			}
		}

		meta.Attempts = attempt + 1

		lastErr = fn(ctx)
		if lastErr == nil {
			meta.LastErrorType = "none"
			return meta, nil
		}

		meta.LastErrorType = errorTypeOf(lastErr)

		if !isRetryableError(lastErr) {
			return meta, lastErr // Permanent failure
		}

		recordRetryAttemptMetric(config, attempt, lastErr)
	}

	recordMaxRetriesReachedMetric(config, lastErr)

	return meta, lastErr // Max attempts reached
}

// recordRetryDelayMetric records the actual backoff delay before each retry attempt.
func recordRetryDelayMetric(config *retryConfig, attempt int, backoffDelay time.Duration) {
	if config.metricsCollector != nil {
		config.metricsCollector.RecordDuration(retryDelayMetric, backoffDelay, map[string]string{
			labelOperation:     config.operationName,
			labelAttemptNumber: fmt.Sprintf("%d", attempt),
		})
	}
}

// recordRetryAttemptMetric tracks retry attempts by operation, attempt number, and error type.
func recordRetryAttemptMetric(config *retryConfig, attempt int, lastErr error) {
	if attempt < config.maxAttempts-1 && config.metricsCollector != nil {
		config.metricsCollector.IncrementCounter(retryAttemptsMetric, map[string]string{
			labelOperation:     config.operationName,
			labelAttemptNumber: fmt.Sprintf("%d", attempt+1),
			labelErrorType:     errorTypeOf(lastErr),
		})
	}
}

// recordMaxRetriesReachedMetric tracks retry exhaustion with the final error type.
func recordMaxRetriesReachedMetric(config *retryConfig, lastErr error) {
	if config.metricsCollector != nil {
		config.metricsCollector.IncrementCounter(maxRetriesReachedMetric, map[string]string{
			labelOperation:      config.operationName,
			labelFinalErrorType: errorTypeOf(lastErr),
		})
	}
}

// isRetryableError determines if an error should be retried.
// Only transaction conflicts are retryable; business-rule failures are
// deterministic and storage outages need intervention, not hammering.
func isRetryableError(err error) bool {
	return errors.Is(err, fulfillment.ErrTransactionConflict)
}

// errorTypeOf extracts a string representation of the error type for metrics labeling.
func errorTypeOf(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, fulfillment.ErrTransactionConflict):
		return "transaction_conflict"
	case errors.Is(err, fulfillment.ErrBookAlreadyPurchased):
		return "book_already_purchased"
	case errors.Is(err, fulfillment.ErrBookNotFound):
		return "book_not_found"
	case errors.Is(err, fulfillment.ErrCustomerProfileInvalid):
		return "customer_profile_invalid"
	case errors.Is(err, fulfillment.ErrStorageUnavailable):
		return "storage_unavailable"
	case errors.Is(err, context.Canceled):
		return "context_canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "context_deadline_exceeded"
	default:
		return "other"
	}
}

// RetryOption configures retry behavior using the functional options pattern.
type RetryOption func(*retryConfig) error

// WithMaxAttempts sets the maximum number of retry attempts.
func WithMaxAttempts(attempts int) RetryOption {
	return func(config *retryConfig) error {
		if attempts <= 0 {
			return ErrInvalidMaxAttempts
		}

		config.maxAttempts = attempts

		return nil
	}
}

// WithBaseDelay sets the base delay for exponential backoff.
// Actual delays: baseDelay, baseDelay*2, baseDelay*4, baseDelay*8, etc.
func WithBaseDelay(delay time.Duration) RetryOption {
	return func(config *retryConfig) error {
		if delay < 0 {
			return ErrNegativeBaseDelay
		}

		config.baseDelay = delay

		return nil
	}
}

// WithJitterFactor sets the jitter factor to prevent thundering herd problems.
// Jitter is added as a percentage of the calculated backoff delay.
// Valid range: 0.0 (no jitter) to 1.0 (100% jitter).
func WithJitterFactor(factor float64) RetryOption {
	return func(config *retryConfig) error {
		if factor < 0.0 || factor > 1.0 {
			return ErrInvalidJitterFactor
		}

		config.jitterFactor = factor

		return nil
	}
}

// WithMetrics sets the metrics collector for retry instrumentation.
// Requires an operation name to properly label metrics.
func WithMetrics(collector fulfillment.MetricsCollector, operationName string) RetryOption {
	return func(config *retryConfig) error {
		if collector == nil {
			return ErrNilMetricsCollector
		}

		if operationName == "" {
			return ErrEmptyOperationName
		}

		config.metricsCollector = collector
		config.operationName = operationName

		return nil
	}
}
