package shell

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pagehaven/bookstore-fulfillment-go/fulfillment"
)

func Test_RetryWithExponentialBackoff_Success_NoRetries(t *testing.T) {
	ctx := context.Background()
	callCount := 0

	fn := func(_ context.Context) error {
		callCount++
		return nil // Success on the first attempt
	}

	meta, err := RetryWithExponentialBackoff(ctx, fn)

	assert.NoError(t, err)
	assert.Equal(t, 1, callCount)
	assert.Equal(t, 1, meta.Attempts)
	assert.Equal(t, time.Duration(0), meta.TotalDelay)
	assert.Equal(t, "none", meta.LastErrorType)
}

func Test_RetryWithExponentialBackoff_RetryOnTransactionConflict(t *testing.T) {
	ctx := context.Background()
	callCount := 0

	fn := func(_ context.Context) error {
		callCount++
		if callCount < 3 {
			return fulfillment.ErrTransactionConflict // Fail twice
		}
		return nil // Success on the third attempt
	}

	meta, err := RetryWithExponentialBackoff(ctx, fn)

	assert.NoError(t, err)
	assert.Equal(t, 3, callCount)
	assert.Equal(t, 3, meta.Attempts)
	assert.Greater(t, meta.TotalDelay, time.Duration(0))
	assert.Equal(t, "none", meta.LastErrorType)
}

func Test_RetryWithExponentialBackoff_WithAllOptions(t *testing.T) {
	ctx := context.Background()
	callCount := 0

	fn := func(_ context.Context) error {
		callCount++
		if callCount < 2 {
			return fulfillment.ErrTransactionConflict
		}
		return nil
	}

	meta, err := RetryWithExponentialBackoff(ctx, fn,
		WithMaxAttempts(3),
		WithBaseDelay(5*time.Millisecond),
		WithJitterFactor(0.1),
	)

	assert.NoError(t, err)
	assert.Equal(t, 2, callCount)
	assert.Equal(t, 2, meta.Attempts)
	assert.Greater(t, meta.TotalDelay, time.Duration(0))
	assert.Equal(t, "none", meta.LastErrorType)
}

func Test_RetryWithExponentialBackoff_PermanentFailure_FailsFast(t *testing.T) {
	ctx := context.Background()
	callCount := 0
	permanentErr := fulfillment.ErrBookAlreadyPurchased

	fn := func(_ context.Context) error {
		callCount++
		return permanentErr
	}

	meta, err := RetryWithExponentialBackoff(ctx, fn)

	assert.ErrorIs(t, err, permanentErr)
	assert.Equal(t, 1, callCount)
	assert.Equal(t, "book_already_purchased", meta.LastErrorType)
}

func Test_RetryWithExponentialBackoff_MaxAttemptsReached(t *testing.T) {
	ctx := context.Background()
	callCount := 0

	fn := func(_ context.Context) error {
		callCount++
		return fulfillment.ErrTransactionConflict
	}

	meta, err := RetryWithExponentialBackoff(ctx, fn,
		WithMaxAttempts(3),
		WithBaseDelay(time.Millisecond),
	)

	assert.ErrorIs(t, err, fulfillment.ErrTransactionConflict)
	assert.Equal(t, 3, callCount)
	assert.Equal(t, 3, meta.Attempts)
	assert.Equal(t, "transaction_conflict", meta.LastErrorType)
}

func Test_RetryWithExponentialBackoff_ContextCanceledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	callCount := 0

	fn := func(_ context.Context) error {
		callCount++
		cancel() // Cancel during the first backoff wait
		return fulfillment.ErrTransactionConflict
	}

	_, err := RetryWithExponentialBackoff(ctx, fn, WithBaseDelay(time.Second))

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, callCount)
}

func Test_RetryWithExponentialBackoff_InvalidOptions(t *testing.T) {
	ctx := context.Background()
	fn := func(_ context.Context) error { return nil }

	// Test invalid max attempts
	_, err := RetryWithExponentialBackoff(ctx, fn, WithMaxAttempts(0))
	assert.ErrorIs(t, err, ErrInvalidMaxAttempts)

	// Test negative base delay
	_, err = RetryWithExponentialBackoff(ctx, fn, WithBaseDelay(-1*time.Second))
	assert.ErrorIs(t, err, ErrNegativeBaseDelay)

	// Test invalid jitter factor
	_, err = RetryWithExponentialBackoff(ctx, fn, WithJitterFactor(1.5))
	assert.ErrorIs(t, err, ErrInvalidJitterFactor)

	// Test nil metrics collector
	_, err = RetryWithExponentialBackoff(ctx, fn, WithMetrics(nil, "FulfillOrder"))
	assert.ErrorIs(t, err, ErrNilMetricsCollector)
}

func Test_RetryWithExponentialBackoff_RecordsRetryMetrics(t *testing.T) {
	ctx := context.Background()
	collector := &metricsCollectorSpy{counters: map[string]int{}}
	callCount := 0

	fn := func(_ context.Context) error {
		callCount++
		if callCount < 2 {
			return fulfillment.ErrTransactionConflict
		}
		return nil
	}

	_, err := RetryWithExponentialBackoff(ctx, fn,
		WithBaseDelay(time.Millisecond),
		WithMetrics(collector, "FulfillOrder"),
	)

	assert.NoError(t, err)
	assert.Equal(t, 1, collector.counters[retryAttemptsMetric])
	assert.Equal(t, 1, collector.durations)
}

func Test_ErrorTypeOf_ClassifiesTheTaxonomy(t *testing.T) {
	assert.Equal(t, "none", errorTypeOf(nil))
	assert.Equal(t, "transaction_conflict", errorTypeOf(fulfillment.ErrTransactionConflict))
	assert.Equal(t, "book_not_found", errorTypeOf(fulfillment.ErrBookNotFound))
	assert.Equal(t, "customer_profile_invalid", errorTypeOf(fulfillment.ErrCustomerProfileInvalid))
	assert.Equal(t, "storage_unavailable", errorTypeOf(fulfillment.ErrStorageUnavailable))
	assert.Equal(t, "other", errorTypeOf(errors.New("boom")))
}

// metricsCollectorSpy counts collector calls for assertions.
type metricsCollectorSpy struct {
	counters  map[string]int
	durations int
}

func (s *metricsCollectorSpy) RecordDuration(_ string, _ time.Duration, _ map[string]string) {
	s.durations++
}

func (s *metricsCollectorSpy) IncrementCounter(metric string, _ map[string]string) {
	s.counters[metric]++
}

func (s *metricsCollectorSpy) RecordValue(_ string, _ float64, _ map[string]string) {}
