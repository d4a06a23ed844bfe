package postgresengine

import (
	"context"
	"math"
	"time"

	"github.com/pagehaven/bookstore-fulfillment-go/fulfillment"
)

const (
	metricFulfillmentDuration = "fulfillment_duration_seconds"
	metricPurchaseConflicts   = "fulfillment_purchase_conflicts_total"
	metricDatabaseErrors      = "fulfillment_database_errors_total"

	spanFulfillOrder     = "postgresengine.fulfill_order"
	spanAttrOperation    = "operation"
	spanAttrErrorType    = "error_type"
	spanAttrLineCount    = "line_count"
	statusOK             = "ok"
	statusError          = "error"
	statusConflict       = "conflict"
	errorTypeBusiness    = "business_rule"
	errorTypeConflict    = "transaction_conflict"
	errorTypeStorage     = "storage"
)

// logQueryWithDuration logs SQL queries with execution time at debug level if a logger is configured.
func (s Store) logQueryWithDuration(ctx context.Context, sqlQuery string, action string, duration time.Duration) {
	if s.contextualLogger != nil {
		s.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+action, logAttrDurationMS, s.toMilliseconds(duration), logAttrQuery, sqlQuery)
		return
	}

	if s.logger != nil {
		s.logger.Debug(logMsgSQLExecuted+action, logAttrDurationMS, s.toMilliseconds(duration), logAttrQuery, sqlQuery)
	}
}

// logOperation logs operational information at info level if a logger is configured.
func (s Store) logOperation(ctx context.Context, action string, args ...any) {
	if s.contextualLogger != nil {
		s.contextualLogger.InfoContext(ctx, logMsgOperation+action, args...)
		return
	}

	if s.logger != nil {
		s.logger.Info(logMsgOperation+action, args...)
	}
}

// logWarn logs non-critical issues at warn level if a logger is configured.
func (s Store) logWarn(ctx context.Context, message string, err error) {
	if s.contextualLogger != nil {
		s.contextualLogger.WarnContext(ctx, message, logAttrError, err.Error())
		return
	}

	if s.logger != nil {
		s.logger.Warn(message, logAttrError, err.Error())
	}
}

// logError logs error information at the error level if a logger is configured.
func (s Store) logError(ctx context.Context, message string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if s.contextualLogger != nil {
		s.contextualLogger.ErrorContext(ctx, message, allArgs...)
		return
	}

	if s.logger != nil {
		s.logger.Error(message, allArgs...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func (s Store) toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

// recordDurationMetrics records operation duration if the metrics collector is configured.
func (s Store) recordDurationMetrics(operation string, status string, duration time.Duration) {
	if s.metricsCollector != nil {
		labels := map[string]string{
			spanAttrOperation: operation,
			"status":          status,
		}
		s.metricsCollector.RecordDuration(metricFulfillmentDuration, duration, labels)
	}
}

// recordErrorMetrics records error counters if the metrics collector is configured.
func (s Store) recordErrorMetrics(operation string, errorType string) {
	if s.metricsCollector != nil {
		labels := map[string]string{
			spanAttrOperation: operation,
			"status":          statusError,
			spanAttrErrorType: errorType,
		}
		s.metricsCollector.IncrementCounter(metricDatabaseErrors, labels)
	}
}

// recordConflictMetrics records purchase conflict counters if the metrics collector is configured.
func (s Store) recordConflictMetrics(operation string) {
	if s.metricsCollector != nil {
		labels := map[string]string{
			spanAttrOperation: operation,
			"conflict_type":   "purchase",
		}
		s.metricsCollector.IncrementCounter(metricPurchaseConflicts, labels)
	}
}

// startTraceSpan starts a tracing span if the tracing collector is configured.
func (s Store) startTraceSpan(ctx context.Context, operation string, attrs map[string]string) (context.Context, fulfillment.SpanContext) {
	if s.tracingCollector != nil {
		return s.tracingCollector.StartSpan(ctx, operation, attrs)
	}

	return ctx, nil
}

// finishTraceSpan finishes a tracing span if the tracing collector is configured.
func (s Store) finishTraceSpan(spanCtx fulfillment.SpanContext, status string, attrs map[string]string) {
	if s.tracingCollector != nil && spanCtx != nil {
		s.tracingCollector.FinishSpan(spanCtx, status, attrs)
	}
}
